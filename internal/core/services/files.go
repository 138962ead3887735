package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// FileStream produces one record per stored file of a site.
type FileStream struct {
	store   driven.FileStore
	blobs   *BlobFetcher
	metrics driven.Metrics
}

// NewFileStream creates a file stream. metrics may be nil.
func NewFileStream(store driven.FileStore, blobs *BlobFetcher, metrics driven.Metrics) *FileStream {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &FileStream{store: store, blobs: blobs, metrics: metrics}
}

// Stream returns the files under the site's root folder, most recently
// versioned first. A site without a root folder has no files. Files that
// cannot be fetched or parsed are skipped.
func (s *FileStream) Stream(ctx context.Context, site domain.Site) iter.Seq2[domain.ContentRecord, error] {
	return func(yield func(domain.ContentRecord, error) bool) {
		if site.RootFolderID == nil {
			logger.Debug("site %q has no storage folder", site.Name)
			return
		}

		files, err := s.store.SiteFiles(ctx, *site.RootFolderID)
		if err != nil {
			yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentFile, err))
			return
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentFile, err))
				return
			}

			text, ok, err := s.blobs.Fetch(ctx, file.Link)
			if err != nil {
				logger.Warn("skipping file %d (%s): %v", file.ID, file.Link, err)
				s.metrics.RecordSkipped(domain.ContentFile, fileSkipReason(err))
				continue
			}
			if !ok {
				logger.Debug("skipping file %d (%s): no text", file.ID, file.Link)
				s.metrics.RecordSkipped(domain.ContentFile, skipEmpty)
				continue
			}

			s.metrics.RecordEmitted(domain.ContentFile)
			if !yield(fileRecord(file, text), nil) {
				return
			}
		}
	}
}

func fileRecord(file domain.FileRow, text string) domain.ContentRecord {
	categories := file.Categories
	if categories == nil {
		categories = []string{}
	}
	meta := map[string]any{
		"name":       file.Name,
		"size":       file.Size,
		"link":       file.Link,
		"categories": categories,
	}
	if !file.VersionedAt.IsZero() {
		meta["versioned_at"] = file.VersionedAt.UTC().Format(time.RFC3339)
	}
	return domain.NewRecord(domain.ContentFile, file.ID, text, meta)
}

func fileSkipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrFetch):
		return skipFetch
	case errors.Is(err, domain.ErrUnsupportedType):
		return skipUnsupported
	case errors.Is(err, domain.ErrParse):
		return skipParse
	default:
		return skipExtraction
	}
}
