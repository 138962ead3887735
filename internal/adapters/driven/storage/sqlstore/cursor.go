package sqlstore

import (
	"context"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// Ensure rowsCursor implements the interface.
var _ driven.Cursor[int] = (*rowsCursor[int])(nil)

// rowsCursor reads one value per result row. It owns the connection the
// query runs on and releases it on Close. Rows that fail to decode are
// logged and skipped; only a result set error ends the cursor.
type rowsCursor[T any] struct {
	pools *Pools
	conn  *sqlx.Conn
	rows  *sqlx.Rows
	kind  string
	scan  func(*sqlx.Rows) (T, error)
	once  sync.Once
	done  bool
}

func newRowsCursor[T any](
	pools *Pools,
	conn *sqlx.Conn,
	rows *sqlx.Rows,
	kind string,
	scan func(*sqlx.Rows) (T, error),
) *rowsCursor[T] {
	return &rowsCursor[T]{pools: pools, conn: conn, rows: rows, kind: kind, scan: scan}
}

// Next returns up to n rows; an empty batch means the cursor is exhausted.
func (c *rowsCursor[T]) Next(ctx context.Context, n int) ([]T, error) {
	if n < 1 {
		return nil, errCursorNoBatch
	}
	if c.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]T, 0, n)
	for len(batch) < n {
		if !c.rows.Next() {
			c.done = true
			return batch, c.rows.Err()
		}
		v, err := c.scan(c.rows)
		if err != nil {
			logger.Warn("skipping unreadable %s row: %v", c.kind, err)
			continue
		}
		batch = append(batch, v)
	}
	return batch, nil
}

// Close closes the result set and releases the connection. Safe to call
// more than once.
func (c *rowsCursor[T]) Close() error {
	var err error
	c.once.Do(func() {
		err = c.rows.Close()
		c.pools.Release(c.conn)
	})
	return err
}

// emptyCursor is exhausted from the start and holds no connection.
type emptyCursor[T any] struct{}

func (emptyCursor[T]) Next(context.Context, int) ([]T, error) { return nil, nil }
func (emptyCursor[T]) Close() error                           { return nil }

// errCursorNoBatch guards against a batch size that could never progress.
var errCursorNoBatch = errors.New("cursor: batch size must be positive")
