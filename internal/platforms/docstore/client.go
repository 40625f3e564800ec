// Package docstore implements the HTTP client for the document
// hosting platform.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the port.
var _ driven.DocStoreClient = (*Client)(nil)

// Client talks to the document store's REST API.
type Client struct {
	baseURL    string
	tokens     driven.TokenProvider
	httpClient *http.Client
}

// NewClient creates a document-store client.
func NewClient(baseURL string, tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// folderPayload is the wire shape of one folder.
type folderPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FindFolderByName looks a folder up by name. The platform only
// supports name-equality lookup, so the filter here is a
// case-insensitive equality check, never substring matching.
func (c *Client) FindFolderByName(ctx context.Context, name string) (*driven.Folder, error) {
	var payload struct {
		Folders []folderPayload `json:"folders"`
	}
	path := "/folders?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, f := range payload.Folders {
		if strings.EqualFold(f.Name, name) {
			return &driven.Folder{ID: f.ID, URL: f.URL, Name: f.Name}, nil
		}
	}
	return nil, nil
}

// CreateFolder creates a new top-level project folder.
func (c *Client) CreateFolder(ctx context.Context, name string) (*driven.CreatedResource, error) {
	body := map[string]any{"name": name}
	var payload folderPayload
	if err := c.do(ctx, http.MethodPost, "/folders", body, &payload); err != nil {
		return nil, err
	}
	return &driven.CreatedResource{ID: payload.ID, URL: payload.URL}, nil
}

// CreateFromTemplate copies a template document into a folder,
// substituting placeholders.
func (c *Client) CreateFromTemplate(ctx context.Context, templateID, folderID string, placeholders map[string]string) (*driven.CreatedResource, error) {
	body := map[string]any{
		"folder_id":    folderID,
		"placeholders": placeholders,
	}
	var payload struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	path := "/templates/" + url.PathEscape(templateID) + "/copy"
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	return &driven.CreatedResource{ID: payload.ID, URL: payload.URL}, nil
}

// DeleteFolder removes a folder and its contents. Only the recreate
// path reaches this.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/folders/"+url.PathEscape(id), nil, nil)
}

// do performs one authenticated request against the document store.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.GetValidToken(ctx, domain.PlatformDocStore)
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
		return fmt.Errorf("doc store request: %w", err)
	}
	defer resp.Body.Close()

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
		Error string `json:"error"`
	}
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
