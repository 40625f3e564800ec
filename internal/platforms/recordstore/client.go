// Package recordstore implements the HTTP client for the tabular
// project record store.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Record-store columns the write-back fills in.
const (
	fieldBoardURL  = "Task Board"
	fieldFolderURL = "Project Folder"
)

// Ensure Client implements the ports.
var (
	_ driven.RecordStoreClient = (*Client)(nil)
	_ driven.LinkWriter        = (*Client)(nil)
)

// Client talks to the record store's REST API.
type Client struct {
	baseURL     string
	tokens      driven.TokenProvider
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a record-store client.
func NewClient(baseURL string, tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL:     baseURL,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		rateLimiter: NewRateLimiter(),
	}
}

// entryPayload is the wire shape of one project entry.
type entryPayload struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	CreatedAt time.Time         `json:"created_at"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Search returns entries related to the given name. The store's search
// is broad; the engine applies its own matching on top.
func (c *Client) Search(ctx context.Context, name string) ([]driven.RecordEntry, error) {
	var payload struct {
		Entries []entryPayload `json:"entries"`
	}
	path := "/entries?search=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	entries := make([]driven.RecordEntry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		entries = append(entries, driven.RecordEntry{
			ID:        e.ID,
			Label:     e.Name,
			URL:       e.URL,
			CreatedAt: e.CreatedAt,
		})
	}
	return entries, nil
}

// Create inserts a new project entry.
func (c *Client) Create(ctx context.Context, fields map[string]string) (*driven.CreatedResource, error) {
	body := map[string]any{"fields": fields}
	var payload entryPayload
	if err := c.do(ctx, http.MethodPost, "/entries", body, &payload); err != nil {
		return nil, err
	}
	return &driven.CreatedResource{ID: payload.ID, URL: payload.URL}, nil
}

// Update overwrites fields on an existing entry.
func (c *Client) Update(ctx context.Context, id string, fields map[string]string) (*driven.CreatedResource, error) {
	body := map[string]any{"fields": fields}
	var payload entryPayload
	if err := c.do(ctx, http.MethodPatch, "/entries/"+url.PathEscape(id), body, &payload); err != nil {
		return nil, err
	}
	return &driven.CreatedResource{ID: payload.ID, URL: payload.URL}, nil
}

// Get fetches a single entry.
func (c *Client) Get(ctx context.Context, id string) (*driven.RecordEntry, error) {
	var payload entryPayload
	if err := c.do(ctx, http.MethodGet, "/entries/"+url.PathEscape(id), nil, &payload); err != nil {
		if IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &driven.RecordEntry{
		ID:        payload.ID,
		Label:     payload.Name,
		URL:       payload.URL,
		CreatedAt: payload.CreatedAt,
	}, nil
}

// WriteLinks writes provisioned board and folder URLs onto an entry.
func (c *Client) WriteLinks(ctx context.Context, recordID string, links map[domain.PlatformID]string) error {
	fields := make(map[string]string, len(links))
	if u, ok := links[domain.PlatformTaskBoard]; ok {
		fields[fieldBoardURL] = u
	}
	if u, ok := links[domain.PlatformDocStore]; ok {
		fields[fieldFolderURL] = u
	}
	if len(fields) == 0 {
		return nil
	}
	_, err := c.Update(ctx, recordID, fields)
	return err
}

// do performs one authenticated request against the record store.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.tokens.GetValidToken(ctx, domain.PlatformRecordStore)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("record store request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.rateLimiter.RecordRateLimitError(retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError converts an error response into an APIError.
func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
