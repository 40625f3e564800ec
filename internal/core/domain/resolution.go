package domain

import "fmt"

// ResolutionChoice is the operator's reconciliation action for one platform.
type ResolutionChoice string

const (
	// ChoiceCreateNew creates a fresh resource. Legal on every platform.
	ChoiceCreateNew ResolutionChoice = "create-new"
	// ChoiceSkip provisions nothing on the platform. Legal everywhere.
	ChoiceSkip ResolutionChoice = "skip"
	// ChoiceUpdateExisting updates the matched record-store entry.
	ChoiceUpdateExisting ResolutionChoice = "update-existing"
	// ChoiceUseExisting adopts the matched task-board project.
	ChoiceUseExisting ResolutionChoice = "use-existing"
	// ChoiceKeepExisting keeps the matched doc-store folder untouched.
	ChoiceKeepExisting ResolutionChoice = "keep-existing"
	// ChoiceRecreate deletes the matched doc-store folder and rebuilds it.
	// Destructive; gated by the allow_recreate capability.
	ChoiceRecreate ResolutionChoice = "recreate"
)

// platformChoices is the closed choice set per platform.
var platformChoices = map[PlatformID][]ResolutionChoice{
	PlatformRecordStore: {ChoiceUpdateExisting, ChoiceCreateNew, ChoiceSkip},
	PlatformTaskBoard:   {ChoiceUseExisting, ChoiceCreateNew, ChoiceSkip},
	PlatformDocStore:    {ChoiceKeepExisting, ChoiceCreateNew, ChoiceSkip, ChoiceRecreate},
}

// ChoicesFor returns the closed choice set for a platform.
// Recreate is excluded unless allowRecreate is set.
func ChoicesFor(p PlatformID, allowRecreate bool) []ResolutionChoice {
	choices, ok := platformChoices[p]
	if !ok {
		return nil
	}
	result := make([]ResolutionChoice, 0, len(choices))
	for _, c := range choices {
		if c == ChoiceRecreate && !allowRecreate {
			continue
		}
		result = append(result, c)
	}
	return result
}

// IsChoiceFor returns true if the choice belongs to the platform's
// closed set, regardless of capability gating.
func IsChoiceFor(p PlatformID, c ResolutionChoice) bool {
	for _, candidate := range platformChoices[p] {
		if candidate == c {
			return true
		}
	}
	return false
}

// RequiresMatch returns true if the choice only makes sense against an
// existing matched resource.
func (c ResolutionChoice) RequiresMatch() bool {
	switch c {
	case ChoiceUpdateExisting, ChoiceUseExisting, ChoiceKeepExisting, ChoiceRecreate:
		return true
	default:
		return false
	}
}

// ParseResolutionChoice converts a string to a ResolutionChoice.
func ParseResolutionChoice(s string) (ResolutionChoice, error) {
	switch ResolutionChoice(s) {
	case ChoiceCreateNew, ChoiceSkip, ChoiceUpdateExisting,
		ChoiceUseExisting, ChoiceKeepExisting, ChoiceRecreate:
		return ResolutionChoice(s), nil
	default:
		return "", fmt.Errorf("%w: unknown resolution choice %q", ErrInvalidInput, s)
	}
}

// String returns the choice identifier.
func (c ResolutionChoice) String() string {
	return string(c)
}

// ResolutionPlan maps each platform to the operator's chosen action.
type ResolutionPlan map[PlatformID]ResolutionChoice

// Clone returns an independent copy of the plan.
func (p ResolutionPlan) Clone() ResolutionPlan {
	clone := make(ResolutionPlan, len(p))
	for platform, choice := range p {
		clone[platform] = choice
	}
	return clone
}

// Equal reports whether two plans pick identical choices.
func (p ResolutionPlan) Equal(other ResolutionPlan) bool {
	if len(p) != len(other) {
		return false
	}
	for platform, choice := range p {
		if other[platform] != choice {
			return false
		}
	}
	return true
}
