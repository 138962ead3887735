package driven

import (
	"context"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// BlobOrigin downloads stored files from the remote origin.
type BlobOrigin interface {
	// Download fetches the blob for a stored relative reference.
	// Fails with domain.ErrFetch on a non-success status or timeout.
	Download(ctx context.Context, reference string) (*domain.Blob, error)
}
