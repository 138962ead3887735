package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Equal(t, tmpDir, store.Dir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDirName, "config.toml"), store.Path())
}

func TestConfigStore_NestedTablesFlatten(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
[stores.pages]
driver = "sqlite"
pool_size = 4

[blob]
base_url = "https://cdn.example.com"
rate_limit = 2.5
`)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", store.GetString("stores.pages.driver"))
	assert.Equal(t, 4, store.GetInt("stores.pages.pool_size"))
	assert.Equal(t, "https://cdn.example.com", store.GetString("blob.base_url"))
	assert.InDelta(t, 2.5, store.GetFloat("blob.rate_limit"), 1e-9)
	assert.ElementsMatch(t, []string{
		"stores.pages.driver", "stores.pages.pool_size", "blob.base_url", "blob.rate_limit",
	}, store.Keys())
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("string_key", "hello world"))
	assert.Equal(t, "hello world", store.GetString("string_key"))

	// Non-existent key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, "", store.GetString("int_key"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("int_key", 42))
	assert.Equal(t, 42, store.GetInt("int_key"))

	// Set from the command line as text
	require.NoError(t, store.Set("text_int", "17"))
	assert.Equal(t, 17, store.GetInt("text_int"))

	assert.Equal(t, 0, store.GetInt("nonexistent"))

	require.NoError(t, store.Set("string_key", "not an int"))
	assert.Equal(t, 0, store.GetInt("string_key"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	store.mu.Lock()
	store.data["f"] = 1.5
	store.data["i64"] = int64(3)
	store.data["i"] = 4
	store.data["s"] = "0.25"
	store.data["bad"] = "fast"
	store.mu.Unlock()

	assert.InDelta(t, 1.5, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("i64"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("i"), 1e-9)
	assert.InDelta(t, 0.25, store.GetFloat("s"), 1e-9)
	assert.Zero(t, store.GetFloat("bad"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistenceKeepsTables(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("cache.backend", "redis"))
	require.NoError(t, store1.Set("cache.ttl_seconds", 60))
	require.NoError(t, store1.Set("stores.files.dsn_env", "FILES_DSN"))

	data, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[cache]")
	assert.NotContains(t, string(data), "cache.backend")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "redis", store2.GetString("cache.backend"))
	assert.Equal(t, 60, store2.GetInt("cache.ttl_seconds"))
	assert.Equal(t, "FILES_DSN", store2.GetString("stores.files.dsn_env"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "# Just a comment\n\n")

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "workers.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "this is not valid TOML {{{[[")

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["blob.base_url"] = "http://origin"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "http://origin", store2.GetString("blob.base_url"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"top":   true,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"top": true,
	}, got)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "top": true}, flattenMap(got, ""))
}
