package docstore

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
	return NewClient(server.URL, staticTokens{token: "tok-docs"})
}

func TestClient_FindFolderByName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-docs", r.Header.Get("Authorization"))
		assert.Equal(t, "Harbor Survey", r.URL.Query().Get("name"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"folders": []map[string]string{
				{"id": "f1", "name": "Harbor Survey Archive", "url": "https://docs/f1"},
				{"id": "f2", "name": "HARBOR SURVEY", "url": "https://docs/f2"},
			},
		})
	})

	// Only the case-insensitive exact name counts; the substring
	// superset "Harbor Survey Archive" does not.
	folder, err := client.FindFolderByName(context.Background(), "Harbor Survey")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.Equal(t, "f2", folder.ID)
}

func TestClient_FindFolderByName_Absent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"folders": []any{}})
	})

	folder, err := client.FindFolderByName(context.Background(), "Harbor Survey")
	require.NoError(t, err)
	assert.Nil(t, folder)
}

func TestClient_FindFolderByName_NotFoundIsAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	folder, err := client.FindFolderByName(context.Background(), "Harbor Survey")
	require.NoError(t, err)
	assert.Nil(t, folder)
}

func TestClient_CreateFolder(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/folders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "f9", "url": "https://docs/f9"})
	})

	created, err := client.CreateFolder(context.Background(), "Harbor Survey")
	require.NoError(t, err)
	assert.Equal(t, "f9", created.ID)
	assert.Equal(t, "Harbor Survey", gotBody["name"])
}

func TestClient_CreateFromTemplate(t *testing.T) {
	var gotBody struct {
		FolderID     string            `json:"folder_id"`
		Placeholders map[string]string `json:"placeholders"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/tmpl-3/copy", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "d1", "url": "https://docs/d1"})
	})

	created, err := client.CreateFromTemplate(context.Background(), "tmpl-3", "f9", map[string]string{
		"project_name": "Harbor Survey",
	})
	require.NoError(t, err)

	assert.Equal(t, "d1", created.ID)
	assert.Equal(t, "f9", gotBody.FolderID)
	assert.Equal(t, "Harbor Survey", gotBody.Placeholders["project_name"])
}

func TestClient_DeleteFolder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/folders/f9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteFolder(context.Background(), "f9"))
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "folder name taken"})
	})

	_, err := client.CreateFolder(context.Background(), "Harbor Survey")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "folder name taken", apiErr.Message)
}
