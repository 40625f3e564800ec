// Package domain contains the core value types of the provisioning
// engine: platforms, probe results, resolution choices, provisioning
// outcomes, and token records. Types here have no dependencies on
// adapters and are treated as immutable values once produced.
package domain
