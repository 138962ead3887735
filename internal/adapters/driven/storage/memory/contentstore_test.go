package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestContentStore_Sites(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	store.AddSite(domain.Site{ID: 2, Name: "Docs"}, true)
	store.AddSite(domain.Site{ID: 1, Name: "Blog"}, true)
	store.AddSite(domain.Site{ID: 3, Name: "Draft"}, false)

	site, err := store.FindSite(ctx, "Docs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), site.ID)

	_, err = store.FindSite(ctx, "Draft")
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)

	sites, err := store.ListSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "Blog", sites[0].Name)
	assert.Equal(t, "Docs", sites[1].Name)
}

func TestContentStore_PublishedPages(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	store.AddPage(Page{PageRow: domain.PageRow{ID: 1, Body: strPtr("old"), UpdatedAt: base}, SiteID: 1, Published: true})
	store.AddPage(Page{PageRow: domain.PageRow{ID: 2, Body: strPtr("new"), UpdatedAt: base.Add(time.Hour)}, SiteID: 1, Published: true})
	store.AddPage(Page{PageRow: domain.PageRow{ID: 3, Body: strPtr("draft")}, SiteID: 1})
	store.AddPage(Page{PageRow: domain.PageRow{ID: 4, Body: strPtr("other")}, SiteID: 2, Published: true})

	cur, err := store.PublishedPages(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.OpenCursors())

	batch, err := cur.Next(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, int64(2), batch[0].ID)

	batch, err = cur.Next(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, int64(1), batch[0].ID)

	batch, err = cur.Next(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)

	require.NoError(t, cur.Close())
	require.NoError(t, cur.Close())
	assert.Zero(t, store.OpenCursors())
}

func TestContentStore_SiteFilesOrder(t *testing.T) {
	store := NewContentStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.AddFile(10, domain.FileRow{ID: 1, Link: "a", VersionedAt: base})
	store.AddFile(10, domain.FileRow{ID: 2, Link: "b", VersionedAt: base.Add(time.Hour)})
	store.AddFile(11, domain.FileRow{ID: 3, Link: "c"})

	files, err := store.SiteFiles(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b", files[0].Link)
	assert.Equal(t, "a", files[1].Link)
}

func TestContentStore_SiteLists(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	store.AddList(1, domain.ListRow{ID: 9, Name: "later"})
	store.AddList(1, domain.ListRow{ID: 4, Name: "first"})

	cur, err := store.SiteLists(ctx, 1)
	require.NoError(t, err)
	defer cur.Close()

	lists, err := cur.Next(ctx, 10)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, int64(4), lists[0].ID)
}

func TestContentStore_PoolsAndFailures(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()

	require.NoError(t, store.Check(domain.StoreFiles))
	store.SetUnavailable(domain.StoreFiles)
	assert.ErrorIs(t, store.Check(domain.StoreFiles), domain.ErrPoolUnavailable)

	boom := errors.New("connection reset")
	store.FailWith(domain.StoreLists, boom)
	_, err := store.SiteLists(ctx, 1)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.Close())
	assert.True(t, store.Closed())
	assert.ErrorIs(t, store.Check(domain.StorePages), domain.ErrPoolUnavailable)
}

func TestCursor_ContextCancelled(t *testing.T) {
	store := NewContentStore()
	cur, err := store.SiteLists(context.Background(), 1)
	require.NoError(t, err)
	defer cur.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cur.Next(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
