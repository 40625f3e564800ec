// Package mcp provides an MCP (Model Context Protocol) server adapter for Kickoff.
// It enables AI assistants to check for duplicate projects and provision new ones.
package mcp

import "errors"

// ErrMissingChecker is returned when the duplicate checker is not provided.
var ErrMissingChecker = errors.New("mcp: duplicate checker is required")

// ErrMissingResolution is returned when the resolution service is not provided.
var ErrMissingResolution = errors.New("mcp: resolution service is required")

// ErrMissingProvisioner is returned when the provisioner is not provided.
var ErrMissingProvisioner = errors.New("mcp: provisioner is required")
