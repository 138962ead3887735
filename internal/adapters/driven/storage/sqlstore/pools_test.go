package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

func TestOpenPools_InvalidSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.StoreSettings
	}{
		{"unknown driver", domain.StoreSettings{Driver: "oracle", DSN: "x", PoolSize: 1}},
		{"empty dsn", domain.StoreSettings{Driver: domain.DriverSQLite, PoolSize: 1}},
		{"zero pool", domain.StoreSettings{Driver: domain.DriverSQLite, DSN: "x.db"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pools, err := OpenPools(map[domain.StoreName]domain.StoreSettings{domain.StorePages: tc.settings})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, pools)
		})
	}
}

func TestPools_CheckUnconfiguredStore(t *testing.T) {
	pools, err := OpenPools(nil)
	require.NoError(t, err)

	for _, name := range domain.AllStores() {
		assert.ErrorIs(t, pools.Check(name), domain.ErrPoolUnavailable)
	}

	_, err = pools.Acquire(context.Background(), domain.StoreLists)
	assert.ErrorIs(t, err, domain.ErrPoolUnavailable)
}

func TestPools_AcquireRelease(t *testing.T) {
	ts := setupTestStore(t)
	ctx := context.Background()

	for _, name := range domain.AllStores() {
		require.NoError(t, ts.pools.Check(name))
	}

	conn, err := ts.pools.Acquire(ctx, domain.StorePages)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.openConns(t, domain.StorePages))
	assert.Equal(t, 0, ts.openConns(t, domain.StoreFiles))

	ts.pools.Release(conn)
	assert.Equal(t, 0, ts.openConns(t, domain.StorePages))

	require.NoError(t, ts.pools.Ping(ctx))
}

func TestPools_ExhaustedPoolBlocksUntilContextDone(t *testing.T) {
	ts := setupTestStore(t)

	a, err := ts.pools.Acquire(context.Background(), domain.StoreFiles)
	require.NoError(t, err)
	defer ts.pools.Release(a)
	b, err := ts.pools.Acquire(context.Background(), domain.StoreFiles)
	require.NoError(t, err)
	defer ts.pools.Release(b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ts.pools.Acquire(ctx, domain.StoreFiles)
	assert.Error(t, err)

	// The other stores are unaffected.
	c, err := ts.pools.Acquire(context.Background(), domain.StoreLists)
	require.NoError(t, err)
	ts.pools.Release(c)
}

func TestPools_Close(t *testing.T) {
	ts := setupTestStore(t)

	require.NoError(t, ts.pools.Close())

	assert.ErrorIs(t, ts.pools.Check(domain.StorePages), domain.ErrPoolUnavailable)
	require.NoError(t, ts.pools.Close())
}
