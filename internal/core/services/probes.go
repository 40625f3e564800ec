package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// Probe is a read-only existence check against one platform.
// A probe returns an error only for transport or auth failure; "no
// match" is a successful result with Found=false.
type Probe interface {
	// Platform returns the platform this probe checks.
	Platform() domain.PlatformID

	// Probe searches the platform for resources matching the candidate name.
	Probe(ctx context.Context, candidateName string) (*domain.ProbeResult, error)
}

// namesOverlap implements the bidirectional case-insensitive substring
// match: names carry prefixes and suffixes (status tags, year codes)
// inconsistently, so strict equality misses too much. False positives
// are accepted; the operator judges relevance.
func namesOverlap(candidate, existing string) bool {
	a := strings.ToLower(strings.TrimSpace(candidate))
	b := strings.ToLower(strings.TrimSpace(existing))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// RecordStoreProbe checks the tabular record store for matching entries.
type RecordStoreProbe struct {
	client driven.RecordStoreClient
}

// NewRecordStoreProbe creates a record-store probe.
func NewRecordStoreProbe(client driven.RecordStoreClient) *RecordStoreProbe {
	return &RecordStoreProbe{client: client}
}

// Platform returns PlatformRecordStore.
func (p *RecordStoreProbe) Platform() domain.PlatformID {
	return domain.PlatformRecordStore
}

// Probe searches entries and keeps those overlapping the candidate in
// either direction. The first match is surfaced as best; all matches
// are carried for operator inspection, in API order, unranked.
func (p *RecordStoreProbe) Probe(ctx context.Context, candidateName string) (*domain.ProbeResult, error) {
	entries, err := p.client.Search(ctx, candidateName)
	if err != nil {
		return nil, fmt.Errorf("record store search: %w", err)
	}

	result := &domain.ProbeResult{Platform: domain.PlatformRecordStore}
	for _, entry := range entries {
		if !namesOverlap(candidateName, entry.Label) {
			continue
		}
		result.AllMatches = append(result.AllMatches, domain.ResourceRef{
			ID:        entry.ID,
			Label:     entry.Label,
			URL:       entry.URL,
			CreatedAt: entry.CreatedAt,
		})
	}
	if len(result.AllMatches) > 0 {
		best := result.AllMatches[0]
		result.Found = true
		result.MatchedResourceID = best.ID
		result.MatchedURL = best.URL
		result.MatchedLabel = best.Label
		result.CreatedAt = best.CreatedAt
	}
	return result, nil
}

// TaskBoardProbe checks the work-tracking platform for matching boards.
type TaskBoardProbe struct {
	client driven.TaskBoardClient
}

// NewTaskBoardProbe creates a task-board probe.
func NewTaskBoardProbe(client driven.TaskBoardClient) *TaskBoardProbe {
	return &TaskBoardProbe{client: client}
}

// Platform returns PlatformTaskBoard.
func (p *TaskBoardProbe) Platform() domain.PlatformID {
	return domain.PlatformTaskBoard
}

// Probe runs the platform's typeahead search, then applies the
// bidirectional substring filter client-side: the platform's own
// search is not substring-exact.
func (p *TaskBoardProbe) Probe(ctx context.Context, candidateName string) (*domain.ProbeResult, error) {
	projects, err := p.client.TypeaheadSearch(ctx, candidateName)
	if err != nil {
		return nil, fmt.Errorf("task board search: %w", err)
	}

	result := &domain.ProbeResult{Platform: domain.PlatformTaskBoard}
	for _, project := range projects {
		if !namesOverlap(candidateName, project.Name) {
			continue
		}
		result.AllMatches = append(result.AllMatches, domain.ResourceRef{
			ID:    project.GID,
			Label: project.Name,
			URL:   project.URL,
		})
	}
	if len(result.AllMatches) > 0 {
		best := result.AllMatches[0]
		result.Found = true
		result.MatchedResourceID = best.ID
		result.MatchedURL = best.URL
		result.MatchedLabel = best.Label
	}
	return result, nil
}

// DocStoreProbe checks the document store for a matching project folder.
type DocStoreProbe struct {
	client driven.DocStoreClient
}

// NewDocStoreProbe creates a doc-store probe.
func NewDocStoreProbe(client driven.DocStoreClient) *DocStoreProbe {
	return &DocStoreProbe{client: client}
}

// Platform returns PlatformDocStore.
func (p *DocStoreProbe) Platform() domain.PlatformID {
	return domain.PlatformDocStore
}

// Probe looks the folder up by name. The platform does not support
// substring search, so matching is case-insensitive equality on folder
// name only, never document content.
func (p *DocStoreProbe) Probe(ctx context.Context, candidateName string) (*domain.ProbeResult, error) {
	folder, err := p.client.FindFolderByName(ctx, candidateName)
	if err != nil {
		return nil, fmt.Errorf("doc store folder lookup: %w", err)
	}

	result := &domain.ProbeResult{Platform: domain.PlatformDocStore}
	if folder != nil && strings.EqualFold(strings.TrimSpace(folder.Name), strings.TrimSpace(candidateName)) {
		result.Found = true
		result.MatchedResourceID = folder.ID
		result.MatchedURL = folder.URL
		result.MatchedLabel = folder.Name
		result.AllMatches = []domain.ResourceRef{{ID: folder.ID, Label: folder.Name, URL: folder.URL}}
	}
	return result, nil
}
