// Package taskboard implements the HTTP client for the work-tracking
// platform hosting milestone and task boards.
package taskboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the port.
var _ driven.TaskBoardClient = (*Client)(nil)

// Client talks to the task board's REST API. Resources are addressed
// by the platform's global ids ("gid").
type Client struct {
	baseURL    string
	tokens     driven.TokenProvider
	httpClient *http.Client
}

// NewClient creates a task-board client.
func NewClient(baseURL string, tokens driven.TokenProvider) *Client {
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// projectPayload is the wire shape of one board project.
type projectPayload struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	PermalinkURL string `json:"permalink_url"`
}

// TypeaheadSearch runs the platform's project name search. The results
// are fuzzy, not substring-exact; callers filter client-side.
func (c *Client) TypeaheadSearch(ctx context.Context, name string) ([]driven.BoardProject, error) {
	var payload struct {
		Data []projectPayload `json:"data"`
	}
	path := "/typeahead?type=project&query=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	projects := make([]driven.BoardProject, 0, len(payload.Data))
	for _, p := range payload.Data {
		projects = append(projects, driven.BoardProject{
			GID:  p.GID,
			Name: p.Name,
			URL:  p.PermalinkURL,
		})
	}
	return projects, nil
}

// CreateFromTemplate instantiates a project board from a template.
func (c *Client) CreateFromTemplate(ctx context.Context, templateID string, data map[string]string) (*driven.CreatedResource, error) {
	if templateID == "" {
		return nil, ErrTemplateNotFound
	}
	body := map[string]any{
		"data": map[string]any{
			"name":         data["project_name"],
			"placeholders": data,
		},
	}
	var payload struct {
		Data projectPayload `json:"data"`
	}
	path := "/project_templates/" + url.PathEscape(templateID) + "/instantiate"
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	return &driven.CreatedResource{ID: payload.Data.GID, URL: payload.Data.PermalinkURL}, nil
}

// AddItems appends task items to an existing board.
func (c *Client) AddItems(ctx context.Context, gid string, items []string) error {
	if len(items) == 0 {
		return nil
	}
	body := map[string]any{
		"data": map[string]any{"names": items},
	}
	path := "/projects/" + url.PathEscape(gid) + "/tasks"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// do performs one authenticated request against the task board.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.GetValidToken(ctx, domain.PlatformTaskBoard)
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
		return fmt.Errorf("task board request: %w", err)
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
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && len(payload.Errors) > 0 {
		message = payload.Errors[0].Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
