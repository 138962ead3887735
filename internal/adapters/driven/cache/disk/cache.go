// Package disk provides the durable cache tier: one JSON file per entry in a
// local directory. Entries survive restarts and never expire; when a byte
// cap is configured the least recently read entries are evicted first.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

const (
	entryExt  = ".json"
	tmpPrefix = ".tmp-"
	dirPerm   = 0o755
	filePerm  = 0o644
)

// Ensure Cache implements the interface.
var _ driven.DurableCache = (*Cache)(nil)

// entry is the on-disk layout of a cached blob.
type entry struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// Cache stores entries as <key>.json files under a directory.
type Cache struct {
	dir      string
	maxBytes int64

	// mu serialises writers and eviction. Readers only touch mtimes.
	mu sync.Mutex
	// now is swapped in tests.
	now func() time.Time
}

// New opens the cache at dir, creating it if needed.
// A maxBytes of zero disables eviction.
func New(dir string, maxBytes int64) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache directory is empty", domain.ErrInvalidInput)
	}
	if maxBytes < 0 {
		return nil, fmt.Errorf("%w: max bytes must not be negative", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the text cached under key. Unreadable or corrupt entries are
// reported as misses so the caller re-fetches and overwrites them.
func (c *Cache) Get(key string) (string, bool, error) {
	path, err := c.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		logger.Warn("durable cache: corrupt entry %s: %v", key, err)
		return "", false, nil
	}

	now := c.now()
	if err := os.Chtimes(path, now, now); err != nil {
		logger.Debug("durable cache: touch %s: %v", key, err)
	}
	return e.Text, true, nil
}

// Put stores text under key. The entry is written to a temporary file and
// renamed into place so readers never observe a partial entry.
func (c *Cache) Put(key, reference, text string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{Link: reference, Text: text})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, tmpPrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		logger.Debug("durable cache: chmod %s: %v", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	if c.maxBytes > 0 {
		if _, err := c.evict(); err != nil {
			logger.Warn("durable cache: evict: %v", err)
		}
	}
	return nil
}

// Prune removes corrupt entries and leftover temporary files, then evicts
// the least recently read entries until the directory fits the byte cap.
// It returns the number of files removed.
func (c *Cache) Prune() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.removeInvalid()
	if err != nil {
		return removed, err
	}
	if c.maxBytes == 0 {
		return removed, nil
	}
	n, err := c.evict()
	return removed + n, err
}

// Size returns the total size in bytes of all entries.
func (c *Cache) Size() (int64, error) {
	files, err := c.entries()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

type fileInfo struct {
	path    string
	size    int64
	modTime time.Time
}

// entries lists the committed entry files in the directory.
func (c *Cache) entries() ([]fileInfo, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}
	files := make([]fileInfo, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, tmpPrefix) || filepath.Ext(name) != entryExt {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// Removed by a concurrent prune.
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(c.dir, name),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// evict removes the oldest entries until the total fits maxBytes.
// Callers must hold mu.
func (c *Cache) evict() (int, error) {
	files, err := c.entries()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= c.maxBytes {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, f := range files {
		if total <= c.maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove cache entry: %w", err)
		}
		total -= f.size
		removed++
	}
	logger.Debug("durable cache: evicted %d entries", removed)
	return removed, nil
}

// removeInvalid deletes temporary files and entries that do not decode.
// Callers must hold mu.
func (c *Cache) removeInvalid() (int, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("list cache directory: %w", err)
	}

	removed := 0
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		name := d.Name()
		path := filepath.Join(c.dir, name)

		if strings.HasPrefix(name, tmpPrefix) {
			if err := os.Remove(path); err == nil {
				removed++
			}
			continue
		}
		if filepath.Ext(name) != entryExt {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if json.Unmarshal(data, &e) == nil {
			continue
		}
		if err := os.Remove(path); err == nil {
			logger.Info("durable cache: removed corrupt entry %s", name)
			removed++
		}
	}
	return removed, nil
}

// path maps a key to its entry file. Keys are restricted to a safe
// alphabet so they cannot escape the directory.
func (c *Cache) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty cache key", domain.ErrInvalidInput)
	}
	for _, r := range key {
		if !isKeyRune(r) {
			return "", fmt.Errorf("%w: cache key %q", domain.ErrInvalidInput, key)
		}
	}
	return filepath.Join(c.dir, key+entryExt), nil
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}
