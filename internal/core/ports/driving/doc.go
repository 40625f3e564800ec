// Package driving defines the entry-point interfaces of the
// provisioning engine. The surrounding CLI and MCP surfaces only ever
// call these; platform clients are never reached directly.
package driving
