package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

const siteListIDsQuery = `
SELECT external_id FROM sites_serviceobject
WHERE site_id = ? AND content_type = ?
ORDER BY id`

// listRowsQuery returns one row per list item, ordered so the items of a
// list are contiguous. A list with no items yields a single NULL row.
const listRowsQuery = `
SELECT l.id, l.name, r.data
FROM lists_list l
LEFT JOIN lists_listrow r ON r.list_id = l.id
WHERE l.id IN (?)
ORDER BY l.id, r.position, r.id`

type listItemRow struct {
	ListID int64          `db:"id"`
	Name   sql.NullString `db:"name"`
	Data   sql.NullString `db:"data"`
}

// SiteLists opens a cursor over the site's lists, each with all of its
// rows. List ids come from the pages store; the rows from the lists store.
func (s *Store) SiteLists(ctx context.Context, siteID int64) (driven.Cursor[domain.ListRow], error) {
	ids, err := s.siteListIDs(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return emptyCursor[domain.ListRow]{}, nil
	}

	conn, err := s.pools.Acquire(ctx, domain.StoreLists)
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(listRowsQuery, ids)
	if err != nil {
		s.pools.Release(conn)
		return nil, fmt.Errorf("building list query: %w", err)
	}
	rows, err := conn.QueryxContext(ctx, conn.Rebind(query), args...)
	if err != nil {
		s.pools.Release(conn)
		return nil, fmt.Errorf("querying lists of site %d: %w", siteID, err)
	}
	return &listCursor{pools: s.pools, conn: conn, rows: rows}, nil
}

// siteListIDs reads the ids of the lists tied to a site. Service objects
// with a non-numeric external id are logged and ignored.
func (s *Store) siteListIDs(ctx context.Context, siteID int64) ([]int64, error) {
	conn, err := s.pools.Acquire(ctx, domain.StorePages)
	if err != nil {
		return nil, err
	}
	defer s.pools.Release(conn)

	var externalIDs []string
	if err := conn.SelectContext(ctx, &externalIDs, conn.Rebind(siteListIDsQuery), siteID, objectList); err != nil {
		return nil, fmt.Errorf("querying list ids of site %d: %w", siteID, err)
	}

	ids := make([]int64, 0, len(externalIDs))
	for _, ext := range externalIDs {
		id, err := strconv.ParseInt(strings.TrimSpace(ext), 10, 64)
		if err != nil {
			logger.Warn("site %d: ignoring list service object with external id %q", siteID, ext)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// listCursor groups item rows into lists. It keeps one row of look-ahead:
// the first item of the next list.
type listCursor struct {
	pools   *Pools
	conn    *sqlx.Conn
	rows    *sqlx.Rows
	pending *listItemRow
	done    bool
	once    sync.Once
}

// Next returns up to n complete lists.
func (c *listCursor) Next(ctx context.Context, n int) ([]domain.ListRow, error) {
	if n < 1 {
		return nil, errCursorNoBatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.ListRow
	for len(out) < n {
		list, ok, err := c.nextList()
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, list)
	}
	return out, nil
}

func (c *listCursor) nextList() (domain.ListRow, bool, error) {
	first := c.pending
	c.pending = nil
	if first == nil {
		row, ok, err := c.read()
		if err != nil || !ok {
			return domain.ListRow{}, false, err
		}
		first = row
	}

	list := domain.ListRow{ID: first.ListID, Name: first.Name.String}
	list.Items = appendItem(list.Items, first)
	for {
		row, ok, err := c.read()
		if err != nil {
			return domain.ListRow{}, false, err
		}
		if !ok {
			return list, true, nil
		}
		if row.ListID != list.ID {
			c.pending = row
			return list, true, nil
		}
		list.Items = appendItem(list.Items, row)
	}
}

func appendItem(items []*string, row *listItemRow) []*string {
	if !row.Data.Valid {
		return append(items, nil)
	}
	data := row.Data.String
	return append(items, &data)
}

// read returns the next decodable item row. Undecodable rows are logged
// and skipped.
func (c *listCursor) read() (*listItemRow, bool, error) {
	for !c.done {
		if !c.rows.Next() {
			c.done = true
			return nil, false, c.rows.Err()
		}
		var row listItemRow
		if err := c.rows.StructScan(&row); err != nil {
			logger.Warn("skipping unreadable list row: %v", err)
			continue
		}
		return &row, true, nil
	}
	return nil, false, nil
}

// Close closes the result set and releases the connection.
func (c *listCursor) Close() error {
	var err error
	c.once.Do(func() {
		err = c.rows.Close()
		c.pools.Release(c.conn)
	})
	return err
}
