package mcp

import (
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Checker probes the platforms for existing projects.
	Checker driving.DuplicateChecker

	// Resolution derives and validates resolution plans.
	Resolution driving.ResolutionService

	// Provisioner executes validated plans.
	Provisioner driving.Provisioner
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Checker == nil {
		return ErrMissingChecker
	}
	if p.Resolution == nil {
		return ErrMissingResolution
	}
	if p.Provisioner == nil {
		return ErrMissingProvisioner
	}
	return nil
}
