package sqlstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// testStores holds a store over three separate SQLite files plus direct
// handles for seeding them.
type testStores struct {
	store *Store
	pools *Pools
	seed  map[domain.StoreName]*sqlx.DB
}

// setupTestStore creates one SQLite database per logical store in a
// temporary directory and applies the test schema to each.
func setupTestStore(t *testing.T) *testStores {
	t.Helper()

	schema, err := os.ReadFile(filepath.Join("testdata", "schema.sql"))
	require.NoError(t, err)

	dir := t.TempDir()
	settings := make(map[domain.StoreName]domain.StoreSettings)
	seed := make(map[domain.StoreName]*sqlx.DB)

	for _, name := range domain.AllStores() {
		dsn := filepath.Join(dir, string(name)+".db") + "?_pragma=busy_timeout(5000)"

		db, err := sqlx.Open("sqlite", dsn)
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(schema), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
		t.Cleanup(func() { _ = db.Close() })

		seed[name] = db
		settings[name] = domain.StoreSettings{Driver: domain.DriverSQLite, DSN: dsn, PoolSize: 2}
	}

	pools, err := OpenPools(settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pools.Close() })

	return &testStores{store: NewStore(pools), pools: pools, seed: seed}
}

func (ts *testStores) exec(t *testing.T, store domain.StoreName, query string, args ...any) {
	t.Helper()
	_, err := ts.seed[store].Exec(query, args...)
	require.NoError(t, err)
}

// openConns reports how many connections a pool currently has checked out.
func (ts *testStores) openConns(t *testing.T, store domain.StoreName) int {
	t.Helper()
	db, err := ts.pools.db(store)
	require.NoError(t, err)
	return db.Stats().InUse
}
