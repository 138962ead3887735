package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// PageStream produces one record per published page of a site.
type PageStream struct {
	store     driven.PageStore
	extractor driven.BodyExtractor
	executor  driven.Executor
	batchSize int
	metrics   driven.Metrics
}

// NewPageStream creates a page stream reading batchSize rows at a time and
// extracting bodies on executor. metrics may be nil.
func NewPageStream(
	store driven.PageStore,
	extractor driven.BodyExtractor,
	executor driven.Executor,
	batchSize int,
	metrics driven.Metrics,
) *PageStream {
	if batchSize < 1 {
		batchSize = domain.DefaultPageBatchSize
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PageStream{
		store:     store,
		extractor: extractor,
		executor:  executor,
		batchSize: batchSize,
		metrics:   metrics,
	}
}

// pageResult is the outcome of extracting one page body.
type pageResult struct {
	text string
	ok   bool
	err  error
}

// Stream returns the site's pages, most recently updated first. While one
// batch is being extracted the next one is read from the store.
// Pages that fail to extract or hold no text are skipped.
func (s *PageStream) Stream(ctx context.Context, site domain.Site) iter.Seq2[domain.ContentRecord, error] {
	return func(yield func(domain.ContentRecord, error) bool) {
		cur, err := s.store.PublishedPages(ctx, site.ID)
		if err != nil {
			yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentPage, err))
			return
		}
		defer cur.Close()

		rows, err := cur.Next(ctx, s.batchSize)
		for len(rows) > 0 {
			pending := s.extractBatch(rows)

			var next []domain.PageRow
			if err == nil {
				next, err = cur.Next(ctx, s.batchSize)
			}

			results, extractErr := pending()
			if extractErr != nil {
				yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentPage, extractErr))
				return
			}
			for i, row := range rows {
				rec, ok := s.record(row, results[i])
				if !ok {
					continue
				}
				s.metrics.RecordEmitted(domain.ContentPage)
				if !yield(rec, nil) {
					return
				}
			}
			rows = next
		}
		if err != nil {
			yield(domain.ContentRecord{}, fmt.Errorf("%s: %w", domain.ContentPage, err))
		}
	}
}

// extractBatch submits every body in rows to the executor and returns a
// function that waits for the results. Submission happens in the
// background so the caller can read the next batch meanwhile.
func (s *PageStream) extractBatch(rows []domain.PageRow) func() ([]pageResult, error) {
	results := make([]pageResult, len(rows))
	done := make(chan error, 1)

	go func() {
		var wg sync.WaitGroup
		var submitErr error
		for i, row := range rows {
			if row.Body == nil {
				continue
			}
			body := *row.Body
			wg.Add(1)
			err := s.executor.Submit(func() {
				defer wg.Done()
				results[i] = s.extract(body)
			})
			if err != nil {
				wg.Done()
				submitErr = err
				break
			}
		}
		wg.Wait()
		done <- submitErr
	}()

	return func() ([]pageResult, error) {
		if err := <-done; err != nil {
			return nil, err
		}
		return results, nil
	}
}

func (s *PageStream) extract(body string) (res pageResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = pageResult{err: fmt.Errorf("%w: panic: %v", domain.ErrExtraction, r)}
		}
		s.metrics.ObserveExtraction("html", time.Since(start))
	}()
	text, ok, err := s.extractor.ExtractBody(body)
	return pageResult{text: text, ok: ok, err: err}
}

// record builds the record for one row, or reports false when the row is
// skipped.
func (s *PageStream) record(row domain.PageRow, res pageResult) (domain.ContentRecord, bool) {
	switch {
	case res.err != nil:
		reason := skipExtraction
		if errors.Is(res.err, domain.ErrParse) {
			reason = skipParse
		}
		logger.Warn("skipping page %d: %v", row.ID, res.err)
		s.metrics.RecordSkipped(domain.ContentPage, reason)
		return domain.ContentRecord{}, false
	case !res.ok || res.text == "":
		logger.Debug("skipping page %d: no text", row.ID)
		s.metrics.RecordSkipped(domain.ContentPage, skipEmpty)
		return domain.ContentRecord{}, false
	}

	meta := map[string]any{"title": row.Title}
	if !row.UpdatedAt.IsZero() {
		meta["updated_at"] = row.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return domain.NewRecord(domain.ContentPage, row.ID, res.text, meta), true
}
