package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

const siteCacheSize = 1024

// SiteResolver maps site names to site identities. Resolutions and the
// site listing are cached for a fixed TTL; misses are never cached so a
// newly published site becomes visible on the next call.
type SiteResolver struct {
	store driven.SiteStore
	sites *expirable.LRU[string, domain.Site]
	names *expirable.LRU[struct{}, []string]
}

// NewSiteResolver creates a resolver. A ttl of zero disables caching.
func NewSiteResolver(store driven.SiteStore, ttl time.Duration) *SiteResolver {
	r := &SiteResolver{store: store}
	if ttl > 0 {
		r.sites = expirable.NewLRU[string, domain.Site](siteCacheSize, nil, ttl)
		r.names = expirable.NewLRU[struct{}, []string](1, nil, ttl)
	}
	return r
}

// Resolve returns the published site called name.
// Fails with domain.ErrSiteNotFound when there is none.
func (r *SiteResolver) Resolve(ctx context.Context, name string) (domain.Site, error) {
	if name == "" {
		return domain.Site{}, fmt.Errorf("%w: empty site name", domain.ErrSiteNotFound)
	}
	if r.sites != nil {
		if site, ok := r.sites.Get(name); ok {
			return site, nil
		}
	}

	site, err := r.store.FindSite(ctx, name)
	if err != nil {
		return domain.Site{}, fmt.Errorf("resolve site %q: %w", name, err)
	}

	if r.sites != nil {
		r.sites.Add(name, *site)
	}
	return *site, nil
}

// Names returns the names of every published site, ordered by name.
func (r *SiteResolver) Names(ctx context.Context) ([]string, error) {
	if r.names != nil {
		if names, ok := r.names.Get(struct{}{}); ok {
			return append([]string(nil), names...), nil
		}
	}

	sites, err := r.store.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	names := make([]string, 0, len(sites))
	for _, s := range sites {
		names = append(names, s.Name)
		if r.sites != nil {
			r.sites.Add(s.Name, s)
		}
	}

	if r.names != nil {
		r.names.Add(struct{}{}, names)
	}
	return append([]string(nil), names...), nil
}
