package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Ensure Pools implements the interface.
var _ driven.PoolChecker = (*Pools)(nil)

// driverNames maps configured drivers to database/sql driver names.
var driverNames = map[domain.Driver]string{
	domain.DriverPostgres: "postgres",
	domain.DriverSQLite:   "sqlite",
}

// Pools holds one connection pool per logical store.
// A pool's size is fixed when it is opened.
type Pools struct {
	mu  sync.RWMutex
	dbs map[domain.StoreName]*sqlx.DB
}

// OpenPools opens a pool for every configured store. Connections are
// established lazily, so an unreachable server surfaces on first use.
func OpenPools(stores map[domain.StoreName]domain.StoreSettings) (*Pools, error) {
	p := &Pools{dbs: make(map[domain.StoreName]*sqlx.DB, len(stores))}
	for name, cfg := range stores {
		db, err := openPool(cfg)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("opening %s store: %w", name, err)
		}
		p.dbs[name] = db
	}
	return p, nil
}

func openPool(cfg domain.StoreSettings) (*sqlx.DB, error) {
	driver, ok := driverNames[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: unknown driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: empty dsn", domain.ErrInvalidInput)
	}
	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("%w: pool size %d", domain.ErrInvalidInput, cfg.PoolSize)
	}

	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	return db, nil
}

// Check returns domain.ErrPoolUnavailable if the store has no pool.
func (p *Pools) Check(store domain.StoreName) error {
	_, err := p.db(store)
	return err
}

func (p *Pools) db(store domain.StoreName) (*sqlx.DB, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	db, ok := p.dbs[store]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPoolUnavailable, store)
	}
	return db, nil
}

// Acquire takes a dedicated connection from the store's pool. It blocks
// while the pool is exhausted. Every acquired connection must be returned
// with Release.
func (p *Pools) Acquire(ctx context.Context, store domain.StoreName) (*sqlx.Conn, error) {
	db, err := p.db(store)
	if err != nil {
		return nil, err
	}
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring %s connection: %w", store, err)
	}
	return conn, nil
}

// Release returns a connection to its pool.
func (p *Pools) Release(conn *sqlx.Conn) {
	if conn != nil {
		_ = conn.Close()
	}
}

// Ping verifies every pool can reach its server.
func (p *Pools) Ping(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var errs []error
	for name, db := range p.dbs {
		if err := db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s store: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every pool. Later acquisitions fail with
// domain.ErrPoolUnavailable.
func (p *Pools) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for name, db := range p.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s store: %w", name, err))
		}
		delete(p.dbs, name)
	}
	return errors.Join(errs...)
}
