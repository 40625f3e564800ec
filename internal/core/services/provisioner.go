package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driving"
	"github.com/meridian-labs/kickoff-cli/internal/logger"
)

// Ensure ProvisionService implements the interface.
var _ driving.Provisioner = (*ProvisionService)(nil)

// Config keys for provisioning templates.
const (
	keyBoardTemplateID = "task_board.template_id"
	keyDocTemplateID   = "doc_store.template_id"
)

// ProvisionService walks a resolution plan in the fixed platform order,
// isolating failures per platform and collecting partial successes and
// failures into a single outcome.
type ProvisionService struct {
	clients     driven.PlatformClients
	linkWriter  driven.LinkWriter
	policy      driving.ResolutionService
	configStore driven.ConfigStore
	runStore    driven.RunStore

	mu      sync.Mutex
	running bool
}

// NewProvisionService creates a provisioning orchestrator.
// linkWriter and runStore may be nil; write-back and run history are
// then disabled.
func NewProvisionService(
	clients driven.PlatformClients,
	linkWriter driven.LinkWriter,
	policy driving.ResolutionService,
	configStore driven.ConfigStore,
	runStore driven.RunStore,
) *ProvisionService {
	return &ProvisionService{
		clients:     clients,
		linkWriter:  linkWriter,
		policy:      policy,
		configStore: configStore,
		runStore:    runStore,
	}
}

// Execute runs the plan. Platforms are processed strictly in the order
// record store, task board, doc store: the write-back of board and
// folder links depends on the record-store id produced first.
//
// A failure on one platform never aborts provisioning on the others.
// There is no mid-run cancellation once execution starts: the creation
// calls are non-idempotent and non-reversible.
func (s *ProvisionService) Execute(
	ctx context.Context,
	form domain.IntakeForm,
	report *domain.DuplicateReport,
	plan domain.ResolutionPlan,
) (*domain.ProvisioningOutcome, error) {
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("intake form: %w", err)
	}
	// Policy errors are rejected here, before any network call.
	if err := s.policy.ValidatePlan(plan, report); err != nil {
		return nil, err
	}

	if !s.tryAcquire() {
		return nil, domain.ErrRunInFlight
	}
	defer s.release()

	outcome := &domain.ProvisioningOutcome{
		RunID:       uuid.NewString(),
		ProjectName: form.ProjectName,
		Resources:   make(map[domain.PlatformID]domain.ProvisionedResource, len(domain.ProvisionOrder)),
		StartedAt:   time.Now(),
	}

	for _, platform := range domain.ProvisionOrder {
		resource := s.provisionPlatform(ctx, platform, form, report.Result(platform), plan[platform])
		outcome.Resources[platform] = resource
		logger.Info("provision %s: %s", platform, resource.Status)
	}

	s.writeBackLinks(ctx, outcome)
	outcome.FinishedAt = time.Now()

	if s.runStore != nil {
		if err := s.runStore.SaveRun(ctx, *outcome); err != nil {
			logger.Warn("save run history: %v", err)
		}
	}

	return outcome, nil
}

// tryAcquire marks a run as in flight. Returns false if one already is.
func (s *ProvisionService) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *ProvisionService) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// provisionPlatform executes one platform's action and returns its
// terminal state. All client errors end up in the resource's Error
// field rather than propagating.
func (s *ProvisionService) provisionPlatform(
	ctx context.Context,
	platform domain.PlatformID,
	form domain.IntakeForm,
	probe domain.ProbeResult,
	choice domain.ResolutionChoice,
) domain.ProvisionedResource {
	resource := domain.ProvisionedResource{Platform: platform}

	if choice == domain.ChoiceSkip {
		resource.Status = domain.StatusSkipped
		return resource
	}

	// An operator-supplied URL is linked verbatim; no creation call.
	if probe.UserProvided {
		resource.Status = domain.StatusLinked
		resource.ResourceID = probe.MatchedResourceID
		resource.URL = probe.MatchedURL
		return resource
	}

	var err error
	switch platform {
	case domain.PlatformRecordStore:
		resource, err = s.provisionRecordStore(ctx, form, probe, choice)
	case domain.PlatformTaskBoard:
		resource, err = s.provisionTaskBoard(ctx, form, probe, choice)
	case domain.PlatformDocStore:
		resource, err = s.provisionDocStore(ctx, form, probe, choice)
	default:
		err = fmt.Errorf("%w: unknown platform %q", domain.ErrInvalidInput, platform)
	}
	resource.Platform = platform

	if err != nil {
		resource.Status = domain.StatusFailed
		resource.Error = err.Error()
		logger.Warn("provision %s failed: %v", platform, err)
	}
	return resource
}

// provisionRecordStore handles create-new and update-existing.
func (s *ProvisionService) provisionRecordStore(
	ctx context.Context,
	form domain.IntakeForm,
	probe domain.ProbeResult,
	choice domain.ResolutionChoice,
) (domain.ProvisionedResource, error) {
	resource := domain.ProvisionedResource{Platform: domain.PlatformRecordStore}
	fields := recordFields(form)

	switch choice {
	case domain.ChoiceCreateNew:
		created, err := s.clients.RecordStore.Create(ctx, fields)
		if err != nil {
			return resource, fmt.Errorf("create record: %w", err)
		}
		resource.Status = domain.StatusCreated
		resource.ResourceID = created.ID
		resource.URL = created.URL
	case domain.ChoiceUpdateExisting:
		updated, err := s.clients.RecordStore.Update(ctx, probe.MatchedResourceID, fields)
		if err != nil {
			return resource, fmt.Errorf("update record %s: %w", probe.MatchedResourceID, err)
		}
		resource.Status = domain.StatusUpdated
		resource.ResourceID = updated.ID
		resource.URL = updated.URL
	default:
		return resource, fmt.Errorf("%w: %s on record store", domain.ErrPolicyViolation, choice)
	}
	return resource, nil
}

// provisionTaskBoard handles create-new and use-existing.
func (s *ProvisionService) provisionTaskBoard(
	ctx context.Context,
	form domain.IntakeForm,
	probe domain.ProbeResult,
	choice domain.ResolutionChoice,
) (domain.ProvisionedResource, error) {
	resource := domain.ProvisionedResource{Platform: domain.PlatformTaskBoard}

	switch choice {
	case domain.ChoiceCreateNew:
		templateID := s.configStore.GetString(keyBoardTemplateID)
		created, err := s.clients.TaskBoard.CreateFromTemplate(ctx, templateID, form.Placeholders())
		if err != nil {
			return resource, fmt.Errorf("create board: %w", err)
		}
		resource.Status = domain.StatusCreated
		resource.ResourceID = created.ID
		resource.URL = created.URL
		if len(form.InitialTasks) > 0 {
			// The board exists; a failed seeding is not a failed platform.
			if err := s.clients.TaskBoard.AddItems(ctx, created.ID, form.InitialTasks); err != nil {
				logger.Warn("seed board items: %v", err)
			}
		}
	case domain.ChoiceUseExisting:
		resource.Status = domain.StatusUpdated
		resource.ResourceID = probe.MatchedResourceID
		resource.URL = probe.MatchedURL
		if len(form.InitialTasks) > 0 {
			if err := s.clients.TaskBoard.AddItems(ctx, probe.MatchedResourceID, form.InitialTasks); err != nil {
				return resource, fmt.Errorf("add items to board %s: %w", probe.MatchedResourceID, err)
			}
		}
	default:
		return resource, fmt.Errorf("%w: %s on task board", domain.ErrPolicyViolation, choice)
	}
	return resource, nil
}

// provisionDocStore handles create-new, keep-existing and recreate.
func (s *ProvisionService) provisionDocStore(
	ctx context.Context,
	form domain.IntakeForm,
	probe domain.ProbeResult,
	choice domain.ResolutionChoice,
) (domain.ProvisionedResource, error) {
	resource := domain.ProvisionedResource{Platform: domain.PlatformDocStore}

	switch choice {
	case domain.ChoiceKeepExisting:
		// No network call; the existing folder is affirmed as-is.
		resource.Status = domain.StatusUpdated
		resource.ResourceID = probe.MatchedResourceID
		resource.URL = probe.MatchedURL
		return resource, nil
	case domain.ChoiceRecreate:
		if err := s.clients.DocStore.DeleteFolder(ctx, probe.MatchedResourceID); err != nil {
			return resource, fmt.Errorf("delete folder %s: %w", probe.MatchedResourceID, err)
		}
	case domain.ChoiceCreateNew:
		// Fall through to folder creation.
	default:
		return resource, fmt.Errorf("%w: %s on doc store", domain.ErrPolicyViolation, choice)
	}

	folder, err := s.clients.DocStore.CreateFolder(ctx, form.ProjectName)
	if err != nil {
		return resource, fmt.Errorf("create folder: %w", err)
	}
	resource.Status = domain.StatusCreated
	resource.ResourceID = folder.ID
	resource.URL = folder.URL

	if templateID := s.configStore.GetString(keyDocTemplateID); templateID != "" {
		if _, err := s.clients.DocStore.CreateFromTemplate(ctx, templateID, folder.ID, form.Placeholders()); err != nil {
			// The folder is usable even without template docs.
			logger.Warn("create template docs in folder %s: %v", folder.ID, err)
		}
	}
	return resource, nil
}

// writeBackLinks writes the board and folder URLs onto the record-store
// entry after all platforms settle. Best effort: a failure here is
// reported on the outcome, never rolled back, and no compensating
// deletes are issued.
func (s *ProvisionService) writeBackLinks(ctx context.Context, outcome *domain.ProvisioningOutcome) {
	if s.linkWriter == nil {
		return
	}
	record := outcome.Resource(domain.PlatformRecordStore)
	if !record.Status.Succeeded() || record.ResourceID == "" {
		return
	}

	links := make(map[domain.PlatformID]string)
	for _, platform := range []domain.PlatformID{domain.PlatformTaskBoard, domain.PlatformDocStore} {
		if res := outcome.Resource(platform); res.Status.Succeeded() && res.URL != "" {
			links[platform] = res.URL
		}
	}
	if len(links) == 0 {
		return
	}

	if err := s.linkWriter.WriteLinks(ctx, record.ResourceID, links); err != nil {
		outcome.LinkWriteBackError = err.Error()
		logger.Warn("write links onto record %s: %v", record.ResourceID, err)
	}
}

// recordFields builds the record-store column values from the form.
func recordFields(form domain.IntakeForm) map[string]string {
	fields := make(map[string]string, len(form.Fields)+3)
	for k, v := range form.Fields {
		fields[k] = v
	}
	fields["Name"] = form.ProjectName
	if form.Description != "" {
		fields["Description"] = form.Description
	}
	if form.Lead != "" {
		fields["Lead"] = form.Lead
	}
	return fields
}
