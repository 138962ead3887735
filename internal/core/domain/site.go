package domain

// Site is a resolved site identity.
type Site struct {
	// ID is the site's primary key in the pages (CMS) store.
	ID int64

	// Name is the human-readable name the site was resolved from.
	Name string

	// RootFolderID scopes the file store lookup. Nil when the site
	// has no storage folder, in which case the file stream is empty.
	RootFolderID *int64
}
