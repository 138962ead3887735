package services

import (
	"context"
	"fmt"
	"iter"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// listBatchSize is how many lists are read from the cursor at a time.
const listBatchSize = 16

// ListStream produces one record per non-empty list of a site.
type ListStream struct {
	store      driven.ListStore
	serialiser driven.ListSerialiser
	metrics    driven.Metrics
}

// NewListStream creates a list stream. metrics may be nil.
func NewListStream(store driven.ListStore, serialiser driven.ListSerialiser, metrics driven.Metrics) *ListStream {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ListStream{store: store, serialiser: serialiser, metrics: metrics}
}

// Stream returns the site's lists rendered as bulleted text. Lists with no
// non-empty row are dropped.
func (s *ListStream) Stream(ctx context.Context, site domain.Site) iter.Seq2[domain.ContentRecord, error] {
	return func(yield func(domain.ContentRecord, error) bool) {
		cur, err := s.store.SiteLists(ctx, site.ID)
		if err != nil {
			yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentList, err))
			return
		}
		defer cur.Close()

		for {
			lists, err := cur.Next(ctx, listBatchSize)
			if err != nil {
				yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentList, err))
				return
			}
			if len(lists) == 0 {
				return
			}

			for _, list := range lists {
				text, ok := s.serialiser.Serialise(list)
				if !ok {
					logger.Debug("skipping list %d: no rows", list.ID)
					s.metrics.RecordSkipped(domain.ContentList, skipEmpty)
					continue
				}
				rec := domain.NewRecord(domain.ContentList, list.ID, text, map[string]any{
					"name": list.Name,
					"rows": len(list.Items),
				})
				s.metrics.RecordEmitted(domain.ContentList)
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}
