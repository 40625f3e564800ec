package domain

import (
	"net/url"
	"time"
)

// ProbeResult is the outcome of one platform's duplicate probe.
//
// The three-way distinction matters: Found (a match exists), not found
// (the probe ran and saw nothing), and SkippedProbe (the probe could
// not run). An unreachable platform must never be reported as
// "confirmed no duplicate".
type ProbeResult struct {
	// Platform identifies which platform was probed.
	Platform PlatformID `json:"platform"`
	// Found is true if an existing resource matched the candidate name.
	Found bool `json:"found"`
	// MatchedResourceID is the platform identifier of the best match.
	MatchedResourceID string `json:"matched_resource_id,omitempty"`
	// MatchedURL is the canonical viewer URL of the best match.
	MatchedURL string `json:"matched_url,omitempty"`
	// MatchedLabel is the display name of the best match.
	MatchedLabel string `json:"matched_label,omitempty"`
	// CreatedAt is when the matched resource was created, if known.
	CreatedAt time.Time `json:"created_at,omitempty"`
	// AllMatches carries every match for operator inspection.
	// The first entry is the best match. No ranking beyond API order.
	AllMatches []ResourceRef `json:"all_matches,omitempty"`
	// UserProvided is true when the operator supplied the URL directly,
	// bypassing the probe. Treated as an affirmed match, never re-validated.
	UserProvided bool `json:"user_provided"`
	// SkippedProbe is true when the probe could not run (platform not
	// connected, transport failure). Distinct from "not found".
	SkippedProbe bool `json:"skipped_probe"`
	// ProbeError describes why the probe was skipped, if it was.
	ProbeError string `json:"probe_error,omitempty"`
}

// ResourceRef is a lightweight reference to an existing platform resource.
type ResourceRef struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ExistingURLs carries operator-supplied resource URLs, one per
// platform. A non-empty entry means "link to this, do not probe".
type ExistingURLs struct {
	RecordStore string `json:"record_store,omitempty"`
	TaskBoard   string `json:"task_board,omitempty"`
	DocStore    string `json:"doc_store,omitempty"`
}

// ForPlatform returns the operator-supplied URL for a platform.
func (e ExistingURLs) ForPlatform(p PlatformID) string {
	switch p {
	case PlatformRecordStore:
		return e.RecordStore
	case PlatformTaskBoard:
		return e.TaskBoard
	case PlatformDocStore:
		return e.DocStore
	default:
		return ""
	}
}

// ValidateResourceURL checks an operator-provided URL before a
// user-provided ProbeResult is ever constructed.
func ValidateResourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// DuplicateReport aggregates one ProbeResult per platform.
// Immutable once produced; a new search produces a new report.
type DuplicateReport struct {
	// CandidateName is the project name that was checked.
	CandidateName string `json:"candidate_name"`
	// Results holds one entry per platform.
	Results map[PlatformID]ProbeResult `json:"results"`
	// CheckedAt is when the report was produced.
	CheckedAt time.Time `json:"checked_at"`
}

// Result returns the probe result for a platform.
func (r *DuplicateReport) Result(p PlatformID) ProbeResult {
	return r.Results[p]
}

// HasDuplicates is true if any platform found a match the operator did
// not already affirm by providing its URL.
func (r *DuplicateReport) HasDuplicates() bool {
	for _, res := range r.Results {
		if res.Found && !res.UserProvided {
			return true
		}
	}
	return false
}

// HasSkippedProbes is true if any platform could not be checked. A
// skipped platform may still hold a duplicate, so callers must not
// treat such a report as a clean "no duplicates".
func (r *DuplicateReport) HasSkippedProbes() bool {
	for _, res := range r.Results {
		if res.SkippedProbe {
			return true
		}
	}
	return false
}
