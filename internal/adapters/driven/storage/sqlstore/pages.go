package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Service object kinds linking site content to type-specific tables.
const (
	objectPage = "page"
	objectList = "list"
)

// publishedPagesQuery joins pages to the site through their service
// objects. external_id is text, so the page id is cast for the join.
const publishedPagesQuery = `
SELECT p.id, p.title, p.body, p.updated_at
FROM sites_serviceobject so
JOIN pages_page p ON CAST(p.id AS TEXT) = so.external_id
WHERE so.site_id = ? AND so.content_type = ? AND p.status = 'published'
ORDER BY p.updated_at DESC, p.id DESC`

type pageRow struct {
	ID        int64          `db:"id"`
	Title     sql.NullString `db:"title"`
	Body      sql.NullString `db:"body"`
	UpdatedAt rawColumn      `db:"updated_at"`
}

// PublishedPages opens a cursor over the site's published pages, most
// recently updated first. The cursor holds a pages connection until closed.
func (s *Store) PublishedPages(ctx context.Context, siteID int64) (driven.Cursor[domain.PageRow], error) {
	conn, err := s.pools.Acquire(ctx, domain.StorePages)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryxContext(ctx, conn.Rebind(publishedPagesQuery), siteID, objectPage)
	if err != nil {
		s.pools.Release(conn)
		return nil, fmt.Errorf("querying pages of site %d: %w", siteID, err)
	}
	return newRowsCursor(s.pools, conn, rows, objectPage, scanPage), nil
}

func scanPage(rows *sqlx.Rows) (domain.PageRow, error) {
	var r pageRow
	if err := rows.StructScan(&r); err != nil {
		return domain.PageRow{}, fmt.Errorf("scanning page: %w", err)
	}
	updated, err := r.UpdatedAt.Time()
	if err != nil {
		return domain.PageRow{}, &rowError{kind: objectPage, id: r.ID, err: err}
	}
	page := domain.PageRow{
		ID:        r.ID,
		Title:     r.Title.String,
		UpdatedAt: updated,
	}
	if r.Body.Valid {
		body := r.Body.String
		page.Body = &body
	}
	return page, nil
}
