package taskboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
)

type staticTokens struct {
	token string
}

func (s staticTokens) GetValidToken(_ context.Context, _ domain.PlatformID) (string, error) {
	return s.token, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, staticTokens{token: "tok-board"})
}

func TestClient_TypeaheadSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-board", r.Header.Get("Authorization"))
		assert.Equal(t, "/typeahead", r.URL.Path)
		assert.Equal(t, "project", r.URL.Query().Get("type"))
		assert.Equal(t, "Harbor Survey", r.URL.Query().Get("query"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"gid": "101", "name": "Harbor Survey", "permalink_url": "https://board/101"},
			},
		})
	})

	projects, err := client.TypeaheadSearch(context.Background(), "Harbor Survey")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "101", projects[0].GID)
	assert.Equal(t, "https://board/101", projects[0].URL)
}

func TestClient_CreateFromTemplate(t *testing.T) {
	var gotBody struct {
		Data struct {
			Name         string            `json:"name"`
			Placeholders map[string]string `json:"placeholders"`
		} `json:"data"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/project_templates/tmpl-7/instantiate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"gid": "202", "permalink_url": "https://board/202"},
		})
	})

	created, err := client.CreateFromTemplate(context.Background(), "tmpl-7", map[string]string{
		"project_name": "Harbor Survey",
		"lead":         "J. Ortiz",
	})
	require.NoError(t, err)

	assert.Equal(t, "202", created.ID)
	assert.Equal(t, "Harbor Survey", gotBody.Data.Name)
	assert.Equal(t, "J. Ortiz", gotBody.Data.Placeholders["lead"])
}

func TestClient_CreateFromTemplate_MissingTemplate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a template id")
	})

	_, err := client.CreateFromTemplate(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestClient_AddItems(t *testing.T) {
	var gotBody struct {
		Data struct {
			Names []string `json:"names"`
		} `json:"data"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/202/tasks", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.AddItems(context.Background(), "202", []string{"Kickoff meeting", "Scope doc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kickoff meeting", "Scope doc"}, gotBody.Data.Names)
}

func TestClient_AddItems_EmptyIsNoop(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	require.NoError(t, client.AddItems(context.Background(), "202", nil))
	assert.False(t, called)
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "template is archived"}},
		})
	})

	_, err := client.CreateFromTemplate(context.Background(), "tmpl-7", map[string]string{"project_name": "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "template is archived", apiErr.Message)
}
