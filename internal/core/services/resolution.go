package services

import (
	"fmt"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
	"github.com/meridian-labs/kickoff-cli/internal/logger"
)

// Ensure PolicyService implements the interface.
var _ driving.ResolutionService = (*PolicyService)(nil)

// Config keys for resolution defaults.
const (
	keyRecordStoreDefault = "resolution.record_store_default"
	keyTaskBoardDefault   = "resolution.task_board_default"
	keyDocStoreDefault    = "resolution.doc_store_default"
	keyAllowRecreate      = "resolution.allow_recreate"
)

// defaultKeys maps each platform to its config key.
var defaultKeys = map[domain.PlatformID]string{
	domain.PlatformRecordStore: keyRecordStoreDefault,
	domain.PlatformTaskBoard:   keyTaskBoardDefault,
	domain.PlatformDocStore:    keyDocStoreDefault,
}

// PolicyService holds the configured per-platform default strategies
// and validates operator choices against a duplicate report.
type PolicyService struct {
	configStore driven.ConfigStore
}

// NewPolicyService creates a resolution policy service.
func NewPolicyService(configStore driven.ConfigStore) *PolicyService {
	return &PolicyService{configStore: configStore}
}

// Defaults derives the default plan from configuration. The derivation
// is a pure function of the config contents: computing it twice yields
// identical plans, so refreshing a report never disturbs operator edits.
func (s *PolicyService) Defaults() domain.ResolutionPlan {
	plan := make(domain.ResolutionPlan, len(domain.AllPlatforms()))
	for _, platform := range domain.AllPlatforms() {
		plan[platform] = s.defaultFor(platform)
	}
	return plan
}

// defaultFor reads one platform's configured default, falling back to
// create-new for missing or illegal values.
func (s *PolicyService) defaultFor(platform domain.PlatformID) domain.ResolutionChoice {
	raw := s.configStore.GetString(defaultKeys[platform])
	if raw == "" {
		return domain.ChoiceCreateNew
	}
	choice, err := domain.ParseResolutionChoice(raw)
	if err != nil || !domain.IsChoiceFor(platform, choice) {
		logger.Warn("ignoring invalid configured default %q for %s", raw, platform)
		return domain.ChoiceCreateNew
	}
	if choice == domain.ChoiceRecreate && !s.AllowRecreate() {
		logger.Warn("ignoring recreate default for %s: allow_recreate disabled", platform)
		return domain.ChoiceCreateNew
	}
	return choice
}

// AllowRecreate reports whether the destructive recreate capability is
// enabled in configuration.
func (s *PolicyService) AllowRecreate() bool {
	return s.configStore.GetBool(keyAllowRecreate)
}

// ValidateChoice rejects choices that are illegal given the probe outcome.
func (s *PolicyService) ValidateChoice(platform domain.PlatformID, choice domain.ResolutionChoice, report *domain.DuplicateReport) error {
	if report == nil {
		return fmt.Errorf("%w: missing duplicate report", domain.ErrInvalidInput)
	}
	if !domain.IsChoiceFor(platform, choice) {
		return fmt.Errorf("%w: %s is not available on %s", domain.ErrPolicyViolation, choice, platform)
	}
	if choice == domain.ChoiceRecreate && !s.AllowRecreate() {
		return fmt.Errorf("%w (%s)", domain.ErrRecreateDisabled, platform)
	}
	if choice.RequiresMatch() && !report.Result(platform).Found {
		return fmt.Errorf("%w: %s on %s requires an existing match", domain.ErrPolicyViolation, choice, platform)
	}
	return nil
}

// ValidatePlan checks that the plan covers all three platforms and
// that every choice is legal.
func (s *PolicyService) ValidatePlan(plan domain.ResolutionPlan, report *domain.DuplicateReport) error {
	for _, platform := range domain.AllPlatforms() {
		choice, ok := plan[platform]
		if !ok {
			return fmt.Errorf("%w: plan is missing %s", domain.ErrInvalidInput, platform)
		}
		if err := s.ValidateChoice(platform, choice, report); err != nil {
			return err
		}
	}
	return nil
}
