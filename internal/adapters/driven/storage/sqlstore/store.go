package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.SiteStore = (*Store)(nil)
	_ driven.PageStore = (*Store)(nil)
	_ driven.FileStore = (*Store)(nil)
	_ driven.ListStore = (*Store)(nil)
)

// Store runs the read queries of every logical store over a set of pools.
type Store struct {
	pools *Pools
}

// NewStore creates a store backed by pools.
func NewStore(pools *Pools) *Store {
	return &Store{pools: pools}
}

// Pools returns the underlying pools.
func (s *Store) Pools() *Pools {
	return s.pools
}

const siteColumns = `id, name, filestorage_root_folder_id`

type siteRow struct {
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	RootFolderID sql.NullInt64 `db:"filestorage_root_folder_id"`
}

func (r siteRow) toDomain() domain.Site {
	site := domain.Site{ID: r.ID, Name: r.Name}
	if r.RootFolderID.Valid {
		id := r.RootFolderID.Int64
		site.RootFolderID = &id
	}
	return site
}

// FindSite returns the published site with the given name.
func (s *Store) FindSite(ctx context.Context, name string) (*domain.Site, error) {
	conn, err := s.pools.Acquire(ctx, domain.StorePages)
	if err != nil {
		return nil, err
	}
	defer s.pools.Release(conn)

	query := conn.Rebind(`SELECT ` + siteColumns + ` FROM sites_site
		WHERE name = ? AND is_published = TRUE
		ORDER BY id LIMIT 1`)

	var row siteRow
	if err := conn.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", domain.ErrSiteNotFound, name)
		}
		return nil, fmt.Errorf("finding site %q: %w", name, err)
	}
	site := row.toDomain()
	return &site, nil
}

// ListSites returns every published site ordered by name.
func (s *Store) ListSites(ctx context.Context) ([]domain.Site, error) {
	conn, err := s.pools.Acquire(ctx, domain.StorePages)
	if err != nil {
		return nil, err
	}
	defer s.pools.Release(conn)

	var rows []siteRow
	query := `SELECT ` + siteColumns + ` FROM sites_site WHERE is_published = TRUE ORDER BY name, id`
	if err := conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}

	sites := make([]domain.Site, 0, len(rows))
	for _, r := range rows {
		sites = append(sites, r.toDomain())
	}
	return sites, nil
}
