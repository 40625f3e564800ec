package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the token and run-history store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kickoff/data/kickoff.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kickoff", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "kickoff.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore interface backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Token Store ====================

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Save stores or replaces the token record for a platform.
func (s *tokenStore) Save(ctx context.Context, record domain.TokenRecord) error {
	if record.Platform == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tokens (platform, access_token, refresh_token, token_type, expires_at, obtained_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			obtained_at = excluded.obtained_at
	`, string(record.Platform), record.AccessToken, record.RefreshToken,
		record.TokenType, record.ExpiresAt.UTC(), record.ObtainedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Get retrieves the token record for a platform.
func (s *tokenStore) Get(ctx context.Context, platform domain.PlatformID) (*domain.TokenRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT platform, access_token, refresh_token, token_type, expires_at, obtained_at
		FROM tokens WHERE platform = ?
	`, string(platform))

	var record domain.TokenRecord
	var platformStr string
	var expiresAt, obtainedAt sql.NullTime
	if err := row.Scan(&platformStr, &record.AccessToken, &record.RefreshToken,
		&record.TokenType, &expiresAt, &obtainedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}

	record.Platform = domain.PlatformID(platformStr)
	if expiresAt.Valid {
		record.ExpiresAt = expiresAt.Time
	}
	if obtainedAt.Valid {
		record.ObtainedAt = obtainedAt.Time
	}

	return &record, nil
}

// Delete removes the token record for a platform.
func (s *tokenStore) Delete(ctx context.Context, platform domain.PlatformID) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM tokens WHERE platform = ?", string(platform))
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun persists a finished run outcome.
func (s *runStore) SaveRun(ctx context.Context, outcome domain.ProvisioningOutcome) error {
	if outcome.RunID == "" {
		return domain.ErrInvalidInput
	}

	resourcesJSON, err := json.Marshal(outcome.Resources)
	if err != nil {
		return fmt.Errorf("marshalling resources: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, project_name, resources, link_write_back_error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_name = excluded.project_name,
			resources = excluded.resources,
			link_write_back_error = excluded.link_write_back_error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, outcome.RunID, outcome.ProjectName, string(resourcesJSON),
		outcome.LinkWriteBackError, outcome.StartedAt.UTC(), outcome.FinishedAt.UTC())

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves one run by ID.
func (s *runStore) GetRun(ctx context.Context, runID string) (*domain.ProvisioningOutcome, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_name, resources, link_write_back_error, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID)

	return scanRun(row.Scan)
}

// ListRuns returns the most recent runs, newest first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.ProvisioningOutcome, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_name, resources, link_write_back_error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ProvisioningOutcome //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// scanRun scans a run row via the given Scan function.
func scanRun(scan func(dest ...any) error) (*domain.ProvisioningOutcome, error) {
	var outcome domain.ProvisioningOutcome
	var resourcesJSON string
	var startedAt, finishedAt sql.NullTime

	if err := scan(&outcome.RunID, &outcome.ProjectName, &resourcesJSON,
		&outcome.LinkWriteBackError, &startedAt, &finishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if resourcesJSON != "" {
		if err := json.Unmarshal([]byte(resourcesJSON), &outcome.Resources); err != nil {
			return nil, fmt.Errorf("unmarshaling resources: %w", err)
		}
	}
	if startedAt.Valid {
		outcome.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		outcome.FinishedAt = finishedAt.Time
	}

	return &outcome, nil
}
