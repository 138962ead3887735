package domain

import "time"

// StoreName identifies one of the three logical backing stores.
type StoreName string

// Logical stores.
const (
	// StorePages holds sites, service objects and page bodies (the CMS).
	StorePages StoreName = "pages"

	// StoreFiles holds the folder tree and versioned blob references.
	StoreFiles StoreName = "files"

	// StoreLists holds list definitions and their rows.
	StoreLists StoreName = "lists"
)

// AllStores lists every logical store.
func AllStores() []StoreName {
	return []StoreName{StorePages, StoreFiles, StoreLists}
}

// PageRow is one published page tied to a site.
type PageRow struct {
	ID        int64
	Title     string
	Body      *string
	UpdatedAt time.Time
}

// FileRow is one leaf file in a site's folder tree with its latest version.
type FileRow struct {
	ID          int64
	Name        string
	Size        int64
	Link        string
	VersionedAt time.Time
	Categories  []string
}

// ListRow is one list tied to a site together with all of its rows.
// A nil item is a row with no data.
type ListRow struct {
	ID    int64
	Name  string
	Items []*string
}

// Blob is the downloaded content of a stored file.
type Blob struct {
	// Reference is the stored relative link the blob was fetched by.
	Reference string

	// ContentType is the Content-Type reported by the origin, if any.
	ContentType string

	// Data is the raw bytes.
	Data []byte
}

// Element is one block of text extracted from a document.
type Element struct {
	// Kind describes the block (paragraph, heading, page, ...).
	Kind string

	// Text is the block's text.
	Text string
}
