package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// Storage object kinds.
const (
	objectFolder = 0
	objectFile   = 1
)

// siteFilesQuery walks the folder tree below the root and returns each file
// with its most recent version. Files without a version are left out.
const siteFilesQuery = `
WITH RECURSIVE folder_tree(id) AS (
	SELECT id FROM storage_storageobject WHERE id = ? AND type = ?
	UNION ALL
	SELECT child.id
	FROM storage_storageobject child
	JOIN folder_tree parent ON child.parent_id = parent.id
),
latest_versions AS (
	SELECT storage_object_id, link, created_at,
		ROW_NUMBER() OVER (
			PARTITION BY storage_object_id
			ORDER BY created_at DESC, id DESC
		) AS rn
	FROM storage_version
)
SELECT f.id, f.name, f.size, lv.link, lv.created_at AS versioned_at
FROM folder_tree ft
JOIN storage_storageobject f ON f.id = ft.id
JOIN latest_versions lv ON lv.storage_object_id = f.id AND lv.rn = 1
WHERE f.type = ? AND lv.link IS NOT NULL AND lv.link <> ''
ORDER BY lv.created_at DESC, f.id`

const fileCategoriesQuery = `
SELECT sc.storageobject_id AS object_id, c.name
FROM storage_storageobject_categories sc
JOIN storage_category c ON c.id = sc.category_id
WHERE sc.storageobject_id IN (?)
ORDER BY c.name`

type fileRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Size        *int64    `db:"size"`
	Link        string    `db:"link"`
	VersionedAt rawColumn `db:"versioned_at"`
}

type categoryRow struct {
	ObjectID int64  `db:"object_id"`
	Name     string `db:"name"`
}

// SiteFiles returns every versioned file below rootFolderID, most recently
// versioned first. All rows are read before the connection is released, so
// the caller can take its time with each file. Rows that fail to decode are
// logged and left out.
func (s *Store) SiteFiles(ctx context.Context, rootFolderID int64) ([]domain.FileRow, error) {
	conn, err := s.pools.Acquire(ctx, domain.StoreFiles)
	if err != nil {
		return nil, err
	}
	defer s.pools.Release(conn)

	rows, err := conn.QueryxContext(ctx, conn.Rebind(siteFilesQuery), rootFolderID, objectFolder, objectFile)
	if err != nil {
		return nil, fmt.Errorf("querying files below folder %d: %w", rootFolderID, err)
	}
	defer rows.Close()

	var files []domain.FileRow
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			logger.Warn("skipping unreadable file row: %v", err)
			continue
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading files below folder %d: %w", rootFolderID, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	// Release the result set before the category query reuses the connection.
	_ = rows.Close()

	categories, err := fileCategories(ctx, conn, files)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Categories = categories[files[i].ID]
	}
	return files, nil
}

func scanFile(rows *sqlx.Rows) (domain.FileRow, error) {
	var r fileRow
	if err := rows.StructScan(&r); err != nil {
		return domain.FileRow{}, fmt.Errorf("scanning file: %w", err)
	}
	versioned, err := r.VersionedAt.Time()
	if err != nil {
		return domain.FileRow{}, &rowError{kind: "file", id: r.ID, err: err}
	}
	f := domain.FileRow{
		ID:          r.ID,
		Name:        r.Name,
		Link:        r.Link,
		VersionedAt: versioned,
	}
	if r.Size != nil {
		f.Size = *r.Size
	}
	return f, nil
}

// fileCategories loads the category names of every file in one query.
func fileCategories(ctx context.Context, conn *sqlx.Conn, files []domain.FileRow) (map[int64][]string, error) {
	ids := make([]int64, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}

	query, args, err := sqlx.In(fileCategoriesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("building category query: %w", err)
	}

	var rows []categoryRow
	if err := conn.SelectContext(ctx, &rows, conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying file categories: %w", err)
	}

	out := make(map[int64][]string, len(files))
	for _, r := range rows {
		out[r.ObjectID] = append(out[r.ObjectID], r.Name)
	}
	return out, nil
}
