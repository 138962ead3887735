package driven

import (
	"context"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// Cursor is a forward-only reader over query results.
// A cursor holds a pooled connection until Close is called; Close must be
// called on every exit path.
type Cursor[T any] interface {
	// Next returns up to n rows. An empty slice with a nil error means the
	// cursor is exhausted.
	Next(ctx context.Context, n int) ([]T, error)

	// Close releases the cursor's connection back to its pool.
	Close() error
}

// SiteStore resolves sites in the pages (CMS) store.
type SiteStore interface {
	// FindSite returns the published site with the given name.
	// Returns domain.ErrSiteNotFound when there is none.
	FindSite(ctx context.Context, name string) (*domain.Site, error)

	// ListSites returns every published site ordered by name.
	ListSites(ctx context.Context) ([]domain.Site, error)
}

// PageStore reads page bodies.
type PageStore interface {
	// PublishedPages opens a cursor over the site's published pages,
	// most recently updated first.
	PublishedPages(ctx context.Context, siteID int64) (Cursor[domain.PageRow], error)
}

// FileStore reads the folder tree and versioned blob references.
type FileStore interface {
	// SiteFiles returns every file under the root folder (recursively) that
	// has at least one version, most recently versioned first.
	SiteFiles(ctx context.Context, rootFolderID int64) ([]domain.FileRow, error)
}

// ListStore reads lists and their rows.
type ListStore interface {
	// SiteLists opens a cursor over the lists tied to the site, each with
	// all of its rows.
	SiteLists(ctx context.Context, siteID int64) (Cursor[domain.ListRow], error)
}

// PoolChecker reports whether a logical store has a usable pool.
type PoolChecker interface {
	// Check returns domain.ErrPoolUnavailable if the store has no pool.
	Check(store domain.StoreName) error
}

// StorePools owns the connection pools of every logical store.
type StorePools interface {
	PoolChecker

	// Close closes every pool.
	Close() error
}
