package driven

import (
	"context"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

// CreatedResource is returned by every platform create/update primitive.
type CreatedResource struct {
	ID  string
	URL string
}

// RecordEntry is one row of the record store's project table.
type RecordEntry struct {
	ID        string
	Label     string
	URL       string
	CreatedAt time.Time
}

// RecordStoreClient is the narrow contract against the tabular record store.
type RecordStoreClient interface {
	// Search returns entries whose names relate to the given name.
	// The engine applies its own matching on top of the results.
	Search(ctx context.Context, name string) ([]RecordEntry, error)

	// Create inserts a new project entry.
	Create(ctx context.Context, fields map[string]string) (*CreatedResource, error)

	// Update overwrites fields on an existing entry.
	Update(ctx context.Context, id string, fields map[string]string) (*CreatedResource, error)

	// Get fetches a single entry. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*RecordEntry, error)
}

// BoardProject is a task-board search hit.
type BoardProject struct {
	GID  string
	Name string
	URL  string
}

// TaskBoardClient is the narrow contract against the work-tracking platform.
type TaskBoardClient interface {
	// TypeaheadSearch performs the platform's name search. Results are
	// not substring-exact; callers filter client-side.
	TypeaheadSearch(ctx context.Context, name string) ([]BoardProject, error)

	// CreateFromTemplate instantiates a project board from a template.
	CreateFromTemplate(ctx context.Context, templateID string, data map[string]string) (*CreatedResource, error)

	// AddItems appends task items to an existing board.
	AddItems(ctx context.Context, gid string, items []string) error
}

// Folder is a document-store folder.
type Folder struct {
	ID   string
	URL  string
	Name string
}

// DocStoreClient is the narrow contract against the document store.
type DocStoreClient interface {
	// FindFolderByName looks up a folder by exact name. The platform
	// does not support substring search. Returns (nil, nil) if absent.
	FindFolderByName(ctx context.Context, name string) (*Folder, error)

	// CreateFolder creates a new top-level project folder.
	CreateFolder(ctx context.Context, name string) (*CreatedResource, error)

	// CreateFromTemplate copies a template document into a folder,
	// substituting placeholders.
	CreateFromTemplate(ctx context.Context, templateID, folderID string, placeholders map[string]string) (*CreatedResource, error)

	// DeleteFolder removes a folder and its contents. Destructive;
	// only reachable through the recreate path.
	DeleteFolder(ctx context.Context, id string) error
}

// PlatformClients bundles the three clients for injection.
type PlatformClients struct {
	RecordStore RecordStoreClient
	TaskBoard   TaskBoardClient
	DocStore    DocStoreClient
}

// LinkWriter writes provisioned task-board and doc-store URLs back
// onto a record-store entry. Implemented by the record-store client.
type LinkWriter interface {
	WriteLinks(ctx context.Context, recordID string, links map[domain.PlatformID]string) error
}
