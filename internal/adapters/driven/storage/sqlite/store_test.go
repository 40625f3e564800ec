package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestTokenStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	tokens := store.TokenStore()
	ctx := context.Background()

	record := domain.TokenRecord{
		Platform:     domain.PlatformRecordStore,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
		ObtainedAt:   time.Now(),
	}
	require.NoError(t, tokens.Save(ctx, record))

	got, err := tokens.Get(ctx, domain.PlatformRecordStore)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformRecordStore, got.Platform)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.WithinDuration(t, record.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestTokenStore_SaveUpserts(t *testing.T) {
	store := setupTestStore(t)
	tokens := store.TokenStore()
	ctx := context.Background()

	record := domain.TokenRecord{Platform: domain.PlatformTaskBoard, AccessToken: "old"}
	require.NoError(t, tokens.Save(ctx, record))

	record.AccessToken = "new"
	require.NoError(t, tokens.Save(ctx, record))

	got, err := tokens.Get(ctx, domain.PlatformTaskBoard)
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)
}

func TestTokenStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.TokenStore().Get(context.Background(), domain.PlatformDocStore)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	tokens := store.TokenStore()
	ctx := context.Background()

	require.NoError(t, tokens.Save(ctx, domain.TokenRecord{Platform: domain.PlatformDocStore, AccessToken: "a"}))
	require.NoError(t, tokens.Delete(ctx, domain.PlatformDocStore))

	_, err := tokens.Get(ctx, domain.PlatformDocStore)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent record is not an error.
	assert.NoError(t, tokens.Delete(ctx, domain.PlatformDocStore))
}

func TestTokenStore_RejectsEmptyPlatform(t *testing.T) {
	store := setupTestStore(t)

	err := store.TokenStore().Save(context.Background(), domain.TokenRecord{AccessToken: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func sampleOutcome(runID, name string, startedAt time.Time) domain.ProvisioningOutcome {
	return domain.ProvisioningOutcome{
		RunID:       runID,
		ProjectName: name,
		Resources: map[domain.PlatformID]domain.ProvisionedResource{
			domain.PlatformRecordStore: {
				Platform:   domain.PlatformRecordStore,
				Status:     domain.StatusCreated,
				ResourceID: "rec-1",
				URL:        "https://records.example.com/e/rec-1",
			},
			domain.PlatformTaskBoard: {
				Platform: domain.PlatformTaskBoard,
				Status:   domain.StatusFailed,
				Error:    "template not found",
			},
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(3 * time.Second),
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	runs := store.RunStore()
	ctx := context.Background()

	outcome := sampleOutcome("run-1", "Harbor Survey", time.Now())
	outcome.LinkWriteBackError = "409 conflict"
	require.NoError(t, runs.SaveRun(ctx, outcome))

	got, err := runs.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Survey", got.ProjectName)
	assert.Equal(t, "409 conflict", got.LinkWriteBackError)
	assert.Equal(t, domain.StatusCreated, got.Resources[domain.PlatformRecordStore].Status)
	assert.Equal(t, "template not found", got.Resources[domain.PlatformTaskBoard].Error)
}

func TestRunStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.RunStore().GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	runs := store.RunStore()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, runs.SaveRun(ctx, sampleOutcome("run-1", "First", base)))
	require.NoError(t, runs.SaveRun(ctx, sampleOutcome("run-2", "Second", base.Add(time.Minute))))
	require.NoError(t, runs.SaveRun(ctx, sampleOutcome("run-3", "Third", base.Add(2*time.Minute))))

	listed, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "run-3", listed[0].RunID)
	assert.Equal(t, "run-1", listed[2].RunID)

	limited, err := runs.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-3", limited[0].RunID)
}

func TestRunStore_RejectsEmptyRunID(t *testing.T) {
	store := setupTestStore(t)

	err := store.RunStore().SaveRun(context.Background(), domain.ProvisioningOutcome{ProjectName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
