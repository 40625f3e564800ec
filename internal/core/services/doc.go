// Package services implements the provisioning engine's core
// components: the token lifecycle manager, the per-platform duplicate
// probes, the duplicate aggregator, the resolution policy, and the
// provisioning orchestrator.
package services
