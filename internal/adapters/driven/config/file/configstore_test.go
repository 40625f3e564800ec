package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("record_store.base_url", "https://records.example.com"))
	require.NoError(t, store.Set("resolution.allow_recreate", true))
	require.NoError(t, store.Set("status.default_runs", 10))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://records.example.com", reopened.GetString("record_store.base_url"))
	assert.True(t, reopened.GetBool("resolution.allow_recreate"))
	assert.Equal(t, 10, reopened.GetInt("status.default_runs"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("nope"))
	assert.Equal(t, 0, store.GetInt("nope"))
	assert.False(t, store.GetBool("nope"))
	assert.Nil(t, store.GetStringSlice("nope"))

	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatchesAreZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "a string"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("[oauth.doc-store]\nclient_id = \"client-9\"\nscopes = [\"files.read\", \"files.write\"]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), raw, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "client-9", store.GetString("oauth.doc-store.client_id"))
	assert.Equal(t, []string{"files.read", "files.write"}, store.GetStringSlice("oauth.doc-store.scopes"))
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Equal(t, "", store.GetString("anything"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("oauth.record-store.client_secret", "hunter2"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"top": "value",
		"a":   map[string]any{"b": map[string]any{"c": int64(3)}},
	}, "")

	assert.Equal(t, "value", flat["top"])
	assert.Equal(t, int64(3), flat["a.b.c"])
	assert.NotContains(t, flat, "a")
}
