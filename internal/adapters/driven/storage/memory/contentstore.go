package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Ensure ContentStore implements the interfaces.
var (
	_ driven.SiteStore  = (*ContentStore)(nil)
	_ driven.PageStore  = (*ContentStore)(nil)
	_ driven.FileStore  = (*ContentStore)(nil)
	_ driven.ListStore  = (*ContentStore)(nil)
	_ driven.StorePools = (*ContentStore)(nil)
)

// Page is a page row with its publication state.
type Page struct {
	domain.PageRow
	SiteID    int64
	Published bool
}

// ContentStore is an in-memory implementation of the store ports.
type ContentStore struct {
	mu          sync.RWMutex
	sites       map[string]siteEntry
	pages       []Page
	files       map[int64][]domain.FileRow
	lists       map[int64][]domain.ListRow
	unavailable map[domain.StoreName]bool
	failures    map[domain.StoreName]error
	openCursors int
	closed      bool
}

type siteEntry struct {
	site      domain.Site
	published bool
}

// NewContentStore creates an empty store with every pool available.
func NewContentStore() *ContentStore {
	return &ContentStore{
		sites:       make(map[string]siteEntry),
		files:       make(map[int64][]domain.FileRow),
		lists:       make(map[int64][]domain.ListRow),
		unavailable: make(map[domain.StoreName]bool),
		failures:    make(map[domain.StoreName]error),
	}
}

// AddSite stores a site.
func (s *ContentStore) AddSite(site domain.Site, published bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[site.Name] = siteEntry{site: site, published: published}
}

// AddPage stores a page.
func (s *ContentStore) AddPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, p)
}

// AddFile stores a file under a root folder.
func (s *ContentStore) AddFile(rootFolderID int64, f domain.FileRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rootFolderID] = append(s.files[rootFolderID], f)
}

// AddList stores a list tied to a site.
func (s *ContentStore) AddList(siteID int64, l domain.ListRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[siteID] = append(s.lists[siteID], l)
}

// SetUnavailable marks a store as having no pool.
func (s *ContentStore) SetUnavailable(store domain.StoreName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable[store] = true
}

// FailWith makes every query against store fail with err.
func (s *ContentStore) FailWith(store domain.StoreName, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[store] = err
}

// OpenCursors returns the number of cursors not yet closed.
func (s *ContentStore) OpenCursors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openCursors
}

// Closed reports whether Close has been called.
func (s *ContentStore) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Check returns domain.ErrPoolUnavailable for stores marked unavailable.
func (s *ContentStore) Check(store domain.StoreName) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.unavailable[store] {
		return fmt.Errorf("%w: %s", domain.ErrPoolUnavailable, store)
	}
	return nil
}

// Close marks the store closed.
func (s *ContentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FindSite returns the published site called name.
func (s *ContentStore) FindSite(_ context.Context, name string) (*domain.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[domain.StorePages]; err != nil {
		return nil, err
	}
	e, ok := s.sites[name]
	if !ok || !e.published {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, name)
	}
	site := e.site
	return &site, nil
}

// ListSites returns every published site ordered by name.
func (s *ContentStore) ListSites(_ context.Context) ([]domain.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[domain.StorePages]; err != nil {
		return nil, err
	}
	var sites []domain.Site
	for _, e := range s.sites {
		if e.published {
			sites = append(sites, e.site)
		}
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites, nil
}

// PublishedPages returns the site's published pages, most recently
// updated first.
func (s *ContentStore) PublishedPages(_ context.Context, siteID int64) (driven.Cursor[domain.PageRow], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[domain.StorePages]; err != nil {
		return nil, err
	}
	var rows []domain.PageRow
	for _, p := range s.pages {
		if p.SiteID == siteID && p.Published {
			rows = append(rows, p.PageRow)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return openCursor(s, rows), nil
}

// SiteFiles returns the files under the root folder, most recently
// versioned first.
func (s *ContentStore) SiteFiles(_ context.Context, rootFolderID int64) ([]domain.FileRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[domain.StoreFiles]; err != nil {
		return nil, err
	}
	rows := append([]domain.FileRow(nil), s.files[rootFolderID]...)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].VersionedAt.Equal(rows[j].VersionedAt) {
			return rows[i].VersionedAt.After(rows[j].VersionedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// SiteLists returns the site's lists ordered by id.
func (s *ContentStore) SiteLists(_ context.Context, siteID int64) (driven.Cursor[domain.ListRow], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[domain.StoreLists]; err != nil {
		return nil, err
	}
	rows := append([]domain.ListRow(nil), s.lists[siteID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return openCursor(s, rows), nil
}

// openCursor must be called with mu held.
func openCursor[T any](s *ContentStore, rows []T) *cursor[T] {
	s.openCursors++
	return &cursor[T]{store: s, rows: rows}
}

type cursor[T any] struct {
	store  *ContentStore
	rows   []T
	closed bool
}

func (c *cursor[T]) Next(ctx context.Context, n int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.closed {
		return nil, fmt.Errorf("cursor closed")
	}
	if n > len(c.rows) {
		n = len(c.rows)
	}
	batch := c.rows[:n]
	c.rows = c.rows[n:]
	return batch, nil
}

func (c *cursor[T]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.store.mu.Lock()
	c.store.openCursors--
	c.store.mu.Unlock()
	return nil
}
