// Package cli implements the kickoff command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/relay"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
	"github.com/meridian-labs/kickoff-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set once from the composition root before Execute.
var (
	tokenManager      driving.TokenManager
	duplicateChecker  driving.DuplicateChecker
	resolutionService driving.ResolutionService
	provisioner       driving.Provisioner
	runStore          driven.RunStore
	configStore       driven.ConfigStore
	tokenRelay        *relay.Relay
)

// Services aggregates everything the CLI commands need.
// This provides a single injection point for dependency injection.
type Services struct {
	TokenManager      driving.TokenManager
	DuplicateChecker  driving.DuplicateChecker
	ResolutionService driving.ResolutionService
	Provisioner       driving.Provisioner
	RunStore          driven.RunStore
	ConfigStore       driven.ConfigStore
	TokenRelay        *relay.Relay
}

// SetServices wires the services into the command tree.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	tokenManager = s.TokenManager
	duplicateChecker = s.DuplicateChecker
	resolutionService = s.ResolutionService
	provisioner = s.Provisioner
	runStore = s.RunStore
	configStore = s.ConfigStore
	tokenRelay = s.TokenRelay
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "kickoff",
	Short: "Duplicate-aware project provisioning across your platforms",
	Long: `Kickoff checks the record store, task board, and document store for an
existing project before provisioning a new one, so a project intake never
produces a second set of half-linked resources.

Typical flow:
  kickoff connect record-store     # once per platform
  kickoff check "Harbor Survey"    # probe all platforms for duplicates
  kickoff provision "Harbor Survey" --lead "J. Ortiz"`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
