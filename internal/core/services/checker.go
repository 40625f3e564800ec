package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
	"github.com/meridian-labs/kickoff-cli/internal/logger"
)

// Ensure CheckerService implements the interface.
var _ driving.DuplicateChecker = (*CheckerService)(nil)

// CheckerService is the duplicate aggregator. It fans out to the three
// platform probes for one candidate name and normalises the results
// into a single report.
type CheckerService struct {
	probes map[domain.PlatformID]Probe
}

// NewCheckerService creates a duplicate aggregator over the given probes.
// A platform without a probe is reported as SkippedProbe, not as clear.
func NewCheckerService(probes ...Probe) *CheckerService {
	m := make(map[domain.PlatformID]Probe, len(probes))
	for _, p := range probes {
		m[p.Platform()] = p
	}
	return &CheckerService{probes: m}
}

// CheckAll probes every platform concurrently and waits for all three
// to settle. A failure in one probe never blocks or fails the others.
//
// Platforms with an operator-supplied URL are not probed at all: the
// URL is validated, then reported as an affirmed user-provided match.
func (s *CheckerService) CheckAll(ctx context.Context, candidateName string, existing domain.ExistingURLs) (*domain.DuplicateReport, error) {
	if candidateName == "" {
		return nil, fmt.Errorf("%w: empty candidate name", domain.ErrInvalidInput)
	}

	// Malformed operator URLs are rejected here, before any
	// user-provided ProbeResult exists.
	for _, platform := range domain.AllPlatforms() {
		if url := existing.ForPlatform(platform); url != "" {
			if err := domain.ValidateResourceURL(url); err != nil {
				return nil, fmt.Errorf("%s: %w", platform, err)
			}
		}
	}

	results := make(map[domain.PlatformID]domain.ProbeResult, len(domain.AllPlatforms()))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	// Settle the non-probed platforms first, before any probe goroutine
	// exists, so every later write to results happens under mu.
	var toProbe []domain.PlatformID
	for _, platform := range domain.AllPlatforms() {
		if url := existing.ForPlatform(platform); url != "" {
			results[platform] = domain.ProbeResult{
				Platform:     platform,
				Found:        true,
				UserProvided: true,
				MatchedURL:   url,
			}
			continue
		}

		if _, ok := s.probes[platform]; !ok {
			results[platform] = domain.ProbeResult{
				Platform:     platform,
				SkippedProbe: true,
				ProbeError:   "platform not configured",
			}
			continue
		}

		toProbe = append(toProbe, platform)
	}

	for _, platform := range toProbe {
		wg.Add(1)
		go func(platform domain.PlatformID, probe Probe) {
			defer wg.Done()
			result, err := probe.Probe(ctx, candidateName)
			if err != nil {
				// An unreachable platform is never "confirmed clear".
				logger.Warn("probe %s: %v", platform, err)
				result = &domain.ProbeResult{
					Platform:     platform,
					SkippedProbe: true,
					ProbeError:   err.Error(),
				}
			}
			mu.Lock()
			results[platform] = *result
			mu.Unlock()
		}(platform, s.probes[platform])
	}

	wg.Wait()

	report := &domain.DuplicateReport{
		CandidateName: candidateName,
		Results:       results,
		CheckedAt:     time.Now(),
	}
	logger.Debug("duplicate check %q: hasDuplicates=%v", candidateName, report.HasDuplicates())
	return report, nil
}
