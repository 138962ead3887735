package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// ContentService streams the content of a site.
type ContentService interface {
	// SiteContent resolves the site and returns a lazy sequence of its
	// records. Fails with domain.ErrSiteNotFound or domain.ErrPoolUnavailable
	// before any record is produced. Errors yielded by the sequence are
	// non-fatal: they report a source that stopped early.
	SiteContent(ctx context.Context, siteName string) (iter.Seq2[domain.ContentRecord, error], error)

	// AvailableSites returns the names of all published sites.
	AvailableSites(ctx context.Context) ([]string, error)

	// FlattenSite returns the whole site's text as one string.
	FlattenSite(ctx context.Context, siteName string) (string, error)
}

// CacheService maintains the blob cache.
type CacheService interface {
	// PruneCache applies the durable tier's retention policy and returns
	// the number of entries removed.
	PruneCache() (int, error)
}
