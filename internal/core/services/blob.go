package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// CacheKey derives the cache key of a blob reference: the hex SHA-256 of
// the reference, safe to use as a file name.
func CacheKey(reference string) string {
	sum := sha256.Sum256([]byte(reference))
	return hex.EncodeToString(sum[:])
}

// BlobFetcher returns the extracted text of stored files, reading through
// a fast tier, then a durable tier, then the origin.
type BlobFetcher struct {
	fast      driven.FastCache
	durable   driven.DurableCache
	origin    driven.BlobOrigin
	extractor driven.DocumentExtractor
	executor  driven.Executor
	metrics   driven.Metrics

	flights singleflight.Group
}

// NewBlobFetcher creates a fetcher. Documents are parsed on executor.
// metrics may be nil.
func NewBlobFetcher(
	fast driven.FastCache,
	durable driven.DurableCache,
	origin driven.BlobOrigin,
	extractor driven.DocumentExtractor,
	executor driven.Executor,
	metrics driven.Metrics,
) *BlobFetcher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &BlobFetcher{
		fast:      fast,
		durable:   durable,
		origin:    origin,
		extractor: extractor,
		executor:  executor,
		metrics:   metrics,
	}
}

// Fetch returns the text of the blob at reference. The boolean is false
// when the document holds no text; such results are not cached.
// Download failures wrap domain.ErrFetch, parse failures domain.ErrParse
// and unknown formats domain.ErrUnsupportedType.
func (f *BlobFetcher) Fetch(ctx context.Context, reference string) (string, bool, error) {
	key := CacheKey(reference)

	if text, ok := f.lookupFast(ctx, key); ok {
		return text, true, nil
	}

	if text, ok := f.lookupDurable(key); ok {
		f.storeFast(ctx, key, text)
		return text, true, nil
	}

	// Concurrent misses on one reference share a single download, detached
	// from the caller's cancellation.
	v, err, _ := f.flights.Do(key, func() (any, error) {
		return f.load(context.WithoutCancel(ctx), key, reference)
	})
	if err != nil {
		return "", false, err
	}
	text := v.(string)
	return text, text != "", nil
}

// load downloads and parses one blob and writes the text to both tiers.
func (f *BlobFetcher) load(ctx context.Context, key, reference string) (string, error) {
	blob, err := f.origin.Download(ctx, reference)
	f.metrics.RecordDownload(err == nil)
	if err != nil {
		return "", err
	}

	text, err := offload(f.executor, func() (string, error) {
		start := time.Now()
		defer func() { f.metrics.ObserveExtraction("document", time.Since(start)) }()
		return f.extractor.ExtractDocument(ctx, blob)
	})
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", reference, err)
	}
	if text == "" {
		return "", nil
	}

	f.storeFast(ctx, key, text)
	if err := f.durable.Put(key, reference, text); err != nil {
		logger.Warn("durable cache: store %s: %v", reference, err)
	}
	return text, nil
}

// lookupFast reads the fast tier. A tier failure counts as a miss.
func (f *BlobFetcher) lookupFast(ctx context.Context, key string) (string, bool) {
	data, ok, err := f.fast.Get(ctx, key)
	if err != nil {
		logger.Warn("fast cache: get %s: %v", key, err)
		ok = false
	}
	f.metrics.RecordCacheLookup(driven.TierFast, ok)
	if !ok {
		return "", false
	}
	return string(data), true
}

func (f *BlobFetcher) lookupDurable(key string) (string, bool) {
	text, ok, err := f.durable.Get(key)
	if err != nil {
		logger.Warn("durable cache: get %s: %v", key, err)
		ok = false
	}
	f.metrics.RecordCacheLookup(driven.TierDurable, ok)
	return text, ok
}

func (f *BlobFetcher) storeFast(ctx context.Context, key, text string) {
	if err := f.fast.Set(ctx, key, []byte(text)); err != nil {
		logger.Warn("fast cache: set %s: %v", key, err)
	}
}

// offload runs fn on the executor and waits for its result.
func offload[T any](e driven.Executor, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	done := make(chan struct{})
	if submitErr := e.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: panic: %v", domain.ErrExtraction, r)
			}
			close(done)
		}()
		out, err = fn()
	}); submitErr != nil {
		var zero T
		return zero, submitErr
	}
	<-done
	return out, err
}
