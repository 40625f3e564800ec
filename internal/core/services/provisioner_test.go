package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// scriptedRecordStore records calls and returns scripted results.
type scriptedRecordStore struct {
	mu          sync.Mutex
	createErr   error
	updateErr   error
	linksErr    error
	createCalls int
	updateCalls int
	linkCalls   int
	lastLinks   map[domain.PlatformID]string
	lastFields  map[string]string
	entered     chan struct{}
	blockCreate chan struct{}
}

func (s *scriptedRecordStore) Search(_ context.Context, _ string) ([]driven.RecordEntry, error) {
	return nil, nil
}

func (s *scriptedRecordStore) Create(_ context.Context, fields map[string]string) (*driven.CreatedResource, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.blockCreate != nil {
		<-s.blockCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.lastFields = fields
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &driven.CreatedResource{ID: "rec-1", URL: "https://records.example.com/e/rec-1"}, nil
}

func (s *scriptedRecordStore) Update(_ context.Context, id string, fields map[string]string) (*driven.CreatedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	s.lastFields = fields
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &driven.CreatedResource{ID: id, URL: "https://records.example.com/e/" + id}, nil
}

func (s *scriptedRecordStore) Get(_ context.Context, _ string) (*driven.RecordEntry, error) {
	return nil, domain.ErrNotFound
}

func (s *scriptedRecordStore) WriteLinks(_ context.Context, _ string, links map[domain.PlatformID]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkCalls++
	s.lastLinks = links
	return s.linksErr
}

// scriptedTaskBoard records calls and returns scripted results.
type scriptedTaskBoard struct {
	mu           sync.Mutex
	createErr    error
	addItemsErr  error
	createCalls  int
	addItemCalls int
	lastItems    []string
}

func (s *scriptedTaskBoard) TypeaheadSearch(_ context.Context, _ string) ([]driven.BoardProject, error) {
	return nil, nil
}

func (s *scriptedTaskBoard) CreateFromTemplate(_ context.Context, _ string, _ map[string]string) (*driven.CreatedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &driven.CreatedResource{ID: "board-1", URL: "https://board.example.com/p/board-1"}, nil
}

func (s *scriptedTaskBoard) AddItems(_ context.Context, _ string, items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addItemCalls++
	s.lastItems = items
	return s.addItemsErr
}

// scriptedDocStore records calls and returns scripted results.
type scriptedDocStore struct {
	mu            sync.Mutex
	createErr     error
	deleteErr     error
	templateErr   error
	createCalls   int
	deleteCalls   int
	templateCalls int
	deletedID     string
}

func (s *scriptedDocStore) FindFolderByName(_ context.Context, _ string) (*driven.Folder, error) {
	return nil, nil
}

func (s *scriptedDocStore) CreateFolder(_ context.Context, _ string) (*driven.CreatedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &driven.CreatedResource{ID: "folder-1", URL: "https://docs.example.com/f/folder-1"}, nil
}

func (s *scriptedDocStore) CreateFromTemplate(_ context.Context, _, _ string, _ map[string]string) (*driven.CreatedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templateCalls++
	if s.templateErr != nil {
		return nil, s.templateErr
	}
	return &driven.CreatedResource{ID: "doc-1", URL: "https://docs.example.com/d/doc-1"}, nil
}

func (s *scriptedDocStore) DeleteFolder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.deletedID = id
	return s.deleteErr
}

type provisionFixture struct {
	record *scriptedRecordStore
	board  *scriptedTaskBoard
	doc    *scriptedDocStore
	config *memory.ConfigStore
	runs   driven.RunStore
	svc    *ProvisionService
}

func newProvisionFixture(t *testing.T) *provisionFixture {
	t.Helper()

	f := &provisionFixture{
		record: &scriptedRecordStore{},
		board:  &scriptedTaskBoard{},
		doc:    &scriptedDocStore{},
		config: memory.NewConfigStore(),
	}
	f.svc = NewProvisionService(
		driven.PlatformClients{RecordStore: f.record, TaskBoard: f.board, DocStore: f.doc},
		f.record,
		NewPolicyService(f.config),
		f.config,
		nil,
	)
	return f
}

func allCreateNew() domain.ResolutionPlan {
	return domain.ResolutionPlan{
		domain.PlatformRecordStore: domain.ChoiceCreateNew,
		domain.PlatformTaskBoard:   domain.ChoiceCreateNew,
		domain.PlatformDocStore:    domain.ChoiceCreateNew,
	}
}

func TestProvisionService_Execute_CreateAll(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey", Lead: "J. Ortiz"}

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, "Harbor Survey", outcome.ProjectName)

	record := outcome.Resource(domain.PlatformRecordStore)
	assert.Equal(t, domain.StatusCreated, record.Status)
	assert.Equal(t, "rec-1", record.ResourceID)

	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformTaskBoard).Status)
	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformDocStore).Status)

	// Name and Lead land in the record fields.
	assert.Equal(t, "Harbor Survey", f.record.lastFields["Name"])
	assert.Equal(t, "J. Ortiz", f.record.lastFields["Lead"])

	// Board and folder links were written back onto the entry.
	assert.Equal(t, 1, f.record.linkCalls)
	assert.Equal(t, "https://board.example.com/p/board-1", f.record.lastLinks[domain.PlatformTaskBoard])
	assert.Equal(t, "https://docs.example.com/f/folder-1", f.record.lastLinks[domain.PlatformDocStore])
	assert.Empty(t, outcome.LinkWriteBackError)
}

func TestProvisionService_Execute_PartialFailureContinues(t *testing.T) {
	f := newProvisionFixture(t)
	f.board.createErr = errors.New("template not found")
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	// The board failed but the record entry and folder still provisioned.
	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformRecordStore).Status)
	board := outcome.Resource(domain.PlatformTaskBoard)
	assert.Equal(t, domain.StatusFailed, board.Status)
	assert.Contains(t, board.Error, "template not found")
	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformDocStore).Status)

	// Only the folder link is written back; the failed board has none.
	assert.Equal(t, 1, f.record.linkCalls)
	assert.NotContains(t, f.record.lastLinks, domain.PlatformTaskBoard)
	assert.Contains(t, f.record.lastLinks, domain.PlatformDocStore)
}

func TestProvisionService_Execute_SkipMakesNoCalls(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}
	plan := allCreateNew()
	plan[domain.PlatformTaskBoard] = domain.ChoiceSkip

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), plan)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSkipped, outcome.Resource(domain.PlatformTaskBoard).Status)
	assert.Zero(t, f.board.createCalls)
	assert.Zero(t, f.board.addItemCalls)
}

func TestProvisionService_Execute_UserProvidedIsLinkedVerbatim(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	report := reportWithMatches()
	report.Results[domain.PlatformTaskBoard] = domain.ProbeResult{
		Platform:     domain.PlatformTaskBoard,
		Found:        true,
		UserProvided: true,
		MatchedURL:   "https://board.example.com/p/existing",
	}

	outcome, err := f.svc.Execute(context.Background(), form, report, allCreateNew())
	require.NoError(t, err)

	board := outcome.Resource(domain.PlatformTaskBoard)
	assert.Equal(t, domain.StatusLinked, board.Status)
	assert.Equal(t, "https://board.example.com/p/existing", board.URL)
	assert.Zero(t, f.board.createCalls)

	// The linked URL is still written back onto the record entry.
	assert.Equal(t, "https://board.example.com/p/existing", f.record.lastLinks[domain.PlatformTaskBoard])
}

func TestProvisionService_Execute_NoWriteBackForOperatorLinkedRecord(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	// An operator-supplied record-store URL carries no entry id, and the
	// platform contract offers no way to derive one from a URL. Without
	// an id there is nothing to write the links onto.
	report := reportWithMatches()
	report.Results[domain.PlatformRecordStore] = domain.ProbeResult{
		Platform:     domain.PlatformRecordStore,
		Found:        true,
		UserProvided: true,
		MatchedURL:   "https://records.example.com/entries/manual",
	}

	outcome, err := f.svc.Execute(context.Background(), form, report, allCreateNew())
	require.NoError(t, err)

	record := outcome.Resource(domain.PlatformRecordStore)
	assert.Equal(t, domain.StatusLinked, record.Status)
	assert.Empty(t, record.ResourceID)
	assert.Zero(t, f.record.linkCalls)
	assert.Empty(t, outcome.LinkWriteBackError)
}

func TestProvisionService_Execute_UpdateExisting(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	report := reportWithMatches(domain.PlatformRecordStore)
	plan := allCreateNew()
	plan[domain.PlatformRecordStore] = domain.ChoiceUpdateExisting

	outcome, err := f.svc.Execute(context.Background(), form, report, plan)
	require.NoError(t, err)

	record := outcome.Resource(domain.PlatformRecordStore)
	assert.Equal(t, domain.StatusUpdated, record.Status)
	assert.Equal(t, "existing-record-store", record.ResourceID)
	assert.Equal(t, 1, f.record.updateCalls)
	assert.Zero(t, f.record.createCalls)
}

func TestProvisionService_Execute_UseExistingSeedsTasks(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey", InitialTasks: []string{"Kickoff meeting", "Scope doc"}}

	report := reportWithMatches(domain.PlatformTaskBoard)
	plan := allCreateNew()
	plan[domain.PlatformTaskBoard] = domain.ChoiceUseExisting

	outcome, err := f.svc.Execute(context.Background(), form, report, plan)
	require.NoError(t, err)

	board := outcome.Resource(domain.PlatformTaskBoard)
	assert.Equal(t, domain.StatusUpdated, board.Status)
	assert.Zero(t, f.board.createCalls)
	assert.Equal(t, 1, f.board.addItemCalls)
	assert.Equal(t, []string{"Kickoff meeting", "Scope doc"}, f.board.lastItems)
}

func TestProvisionService_Execute_KeepExistingMakesNoCalls(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	report := reportWithMatches(domain.PlatformDocStore)
	plan := allCreateNew()
	plan[domain.PlatformDocStore] = domain.ChoiceKeepExisting

	outcome, err := f.svc.Execute(context.Background(), form, report, plan)
	require.NoError(t, err)

	folder := outcome.Resource(domain.PlatformDocStore)
	assert.Equal(t, domain.StatusUpdated, folder.Status)
	assert.Equal(t, "existing-doc-store", folder.ResourceID)
	assert.Zero(t, f.doc.createCalls)
	assert.Zero(t, f.doc.deleteCalls)
}

func TestProvisionService_Execute_RecreateDeletesThenCreates(t *testing.T) {
	f := newProvisionFixture(t)
	require.NoError(t, f.config.Set("resolution.allow_recreate", true))
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	report := reportWithMatches(domain.PlatformDocStore)
	plan := allCreateNew()
	plan[domain.PlatformDocStore] = domain.ChoiceRecreate

	outcome, err := f.svc.Execute(context.Background(), form, report, plan)
	require.NoError(t, err)

	assert.Equal(t, 1, f.doc.deleteCalls)
	assert.Equal(t, "existing-doc-store", f.doc.deletedID)
	assert.Equal(t, 1, f.doc.createCalls)
	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformDocStore).Status)
}

func TestProvisionService_Execute_RecreateDeleteFailureStopsThatPlatform(t *testing.T) {
	f := newProvisionFixture(t)
	require.NoError(t, f.config.Set("resolution.allow_recreate", true))
	f.doc.deleteErr = errors.New("permission denied")
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	report := reportWithMatches(domain.PlatformDocStore)
	plan := allCreateNew()
	plan[domain.PlatformDocStore] = domain.ChoiceRecreate

	outcome, err := f.svc.Execute(context.Background(), form, report, plan)
	require.NoError(t, err)

	folder := outcome.Resource(domain.PlatformDocStore)
	assert.Equal(t, domain.StatusFailed, folder.Status)
	// No creation after a failed delete.
	assert.Zero(t, f.doc.createCalls)
}

func TestProvisionService_Execute_WriteBackFailureIsNotAPlatformFailure(t *testing.T) {
	f := newProvisionFixture(t)
	f.record.linksErr = errors.New("409 conflict")
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	// All platforms still report success; only the write-back is flagged.
	for _, platform := range domain.AllPlatforms() {
		assert.True(t, outcome.Resource(platform).Status.Succeeded(), "%s", platform)
	}
	assert.Contains(t, outcome.LinkWriteBackError, "409")
}

func TestProvisionService_Execute_NoWriteBackWhenRecordFailed(t *testing.T) {
	f := newProvisionFixture(t)
	f.record.createErr = errors.New("500")
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, outcome.Resource(domain.PlatformRecordStore).Status)
	assert.Zero(t, f.record.linkCalls)
}

func TestProvisionService_Execute_SeedFailureDoesNotFailBoard(t *testing.T) {
	f := newProvisionFixture(t)
	f.board.addItemsErr = errors.New("rate limited")
	form := domain.IntakeForm{ProjectName: "Harbor Survey", InitialTasks: []string{"Kickoff meeting"}}

	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	// The board was created; failed seeding is only a warning.
	assert.Equal(t, domain.StatusCreated, outcome.Resource(domain.PlatformTaskBoard).Status)
}

func TestProvisionService_Execute_RejectsInvalidPlanBeforeNetwork(t *testing.T) {
	f := newProvisionFixture(t)
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	plan := allCreateNew()
	plan[domain.PlatformRecordStore] = domain.ChoiceUpdateExisting // no match

	_, err := f.svc.Execute(context.Background(), form, reportWithMatches(), plan)
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
	assert.Zero(t, f.record.createCalls)
	assert.Zero(t, f.record.updateCalls)
}

func TestProvisionService_Execute_RejectsEmptyForm(t *testing.T) {
	f := newProvisionFixture(t)

	_, err := f.svc.Execute(context.Background(), domain.IntakeForm{}, reportWithMatches(), allCreateNew())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProvisionService_Execute_SingleRunInFlight(t *testing.T) {
	f := newProvisionFixture(t)
	f.record.entered = make(chan struct{})
	f.record.blockCreate = make(chan struct{})
	form := domain.IntakeForm{ProjectName: "Harbor Survey"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
		assert.NoError(t, err)
	}()

	// Wait until the first run is inside the record-store call.
	select {
	case <-f.record.entered:
	case <-time.After(time.Second):
		t.Fatal("first run never reached the record store")
	}

	_, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	assert.ErrorIs(t, err, domain.ErrRunInFlight)

	close(f.record.blockCreate)
	<-done
	f.record.entered = nil

	// With the first run finished a new run is accepted again.
	_, err = f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	assert.NoError(t, err)
}

func TestProvisionService_Execute_SavesRunHistory(t *testing.T) {
	f := newProvisionFixture(t)
	runs := &recordingRunStore{}
	f.svc = NewProvisionService(
		driven.PlatformClients{RecordStore: f.record, TaskBoard: f.board, DocStore: f.doc},
		f.record,
		NewPolicyService(f.config),
		f.config,
		runs,
	)

	form := domain.IntakeForm{ProjectName: "Harbor Survey"}
	outcome, err := f.svc.Execute(context.Background(), form, reportWithMatches(), allCreateNew())
	require.NoError(t, err)

	require.Len(t, runs.saved, 1)
	assert.Equal(t, outcome.RunID, runs.saved[0].RunID)
}

// recordingRunStore captures saved outcomes.
type recordingRunStore struct {
	mu    sync.Mutex
	saved []domain.ProvisioningOutcome
}

func (r *recordingRunStore) SaveRun(_ context.Context, outcome domain.ProvisioningOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, outcome)
	return nil
}

func (r *recordingRunStore) GetRun(_ context.Context, _ string) (*domain.ProvisioningOutcome, error) {
	return nil, domain.ErrNotFound
}

func (r *recordingRunStore) ListRuns(_ context.Context, _ int) ([]domain.ProvisioningOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ProvisioningOutcome(nil), r.saved...), nil
}
