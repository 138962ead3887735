package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemem "github.com/custodia-labs/sitesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// countingSites counts queries against the wrapped store.
type countingSites struct {
	*storemem.ContentStore
	finds atomic.Int32
	lists atomic.Int32
}

func (c *countingSites) FindSite(ctx context.Context, name string) (*domain.Site, error) {
	c.finds.Add(1)
	return c.ContentStore.FindSite(ctx, name)
}

func (c *countingSites) ListSites(ctx context.Context) ([]domain.Site, error) {
	c.lists.Add(1)
	return c.ContentStore.ListSites(ctx)
}

func newCountingSites() *countingSites {
	store := storemem.NewContentStore()
	store.AddSite(domain.Site{ID: 1, Name: "Docs"}, true)
	store.AddSite(domain.Site{ID: 2, Name: "Blog"}, true)
	store.AddSite(domain.Site{ID: 3, Name: "Hidden"}, false)
	return &countingSites{ContentStore: store}
}

func TestSiteResolver_ResolveCaches(t *testing.T) {
	sites := newCountingSites()
	r := NewSiteResolver(sites, time.Minute)
	ctx := context.Background()

	for range 3 {
		site, err := r.Resolve(ctx, "Docs")
		require.NoError(t, err)
		assert.Equal(t, int64(1), site.ID)
	}
	assert.Equal(t, int32(1), sites.finds.Load())
}

func TestSiteResolver_NotFoundIsNotCached(t *testing.T) {
	sites := newCountingSites()
	r := NewSiteResolver(sites, time.Minute)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Hidden")
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)

	sites.AddSite(domain.Site{ID: 3, Name: "Hidden"}, true)
	site, err := r.Resolve(ctx, "Hidden")
	require.NoError(t, err)
	assert.Equal(t, int64(3), site.ID)
	assert.Equal(t, int32(2), sites.finds.Load())
}

func TestSiteResolver_EmptyName(t *testing.T) {
	r := NewSiteResolver(newCountingSites(), time.Minute)

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestSiteResolver_ZeroTTLDisablesCache(t *testing.T) {
	sites := newCountingSites()
	r := NewSiteResolver(sites, 0)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Docs")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "Docs")
	require.NoError(t, err)
	_, err = r.Names(ctx)
	require.NoError(t, err)
	_, err = r.Names(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), sites.finds.Load())
	assert.Equal(t, int32(2), sites.lists.Load())
}

func TestSiteResolver_Names(t *testing.T) {
	sites := newCountingSites()
	r := NewSiteResolver(sites, time.Minute)
	ctx := context.Background()

	names, err := r.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blog", "Docs"}, names)

	// Mutating the result must not leak into the cache.
	names[0] = "changed"
	again, err := r.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blog", "Docs"}, again)
	assert.Equal(t, int32(1), sites.lists.Load())

	// Listing also warms resolution.
	_, err = r.Resolve(ctx, "Blog")
	require.NoError(t, err)
	assert.Zero(t, sites.finds.Load())
}

func TestSiteResolver_Expiry(t *testing.T) {
	sites := newCountingSites()
	r := NewSiteResolver(sites, 20*time.Millisecond)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Docs")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, _ = r.Resolve(ctx, "Docs")
		return sites.finds.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}
