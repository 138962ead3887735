package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch/internal/adapters/driven/cache/disk"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/cache/memory"
	storemem "github.com/custodia-labs/sitesearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/workers"
	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/normalisers"
	"github.com/custodia-labs/sitesearch/internal/normalisers/list"
	"github.com/custodia-labs/sitesearch/internal/normalisers/page"
)

func strPtr(s string) *string { return &s }

// fakeOrigin serves blobs from a map and counts downloads per reference.
type fakeOrigin struct {
	mu    sync.Mutex
	blobs map[string]domain.Blob
	calls map[string]int
	gate  chan struct{}
}

func newFakeOrigin() *fakeOrigin {
	return &fakeOrigin{
		blobs: make(map[string]domain.Blob),
		calls: make(map[string]int),
	}
}

func (o *fakeOrigin) add(ref, contentType, data string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blobs[ref] = domain.Blob{Reference: ref, ContentType: contentType, Data: []byte(data)}
}

func (o *fakeOrigin) Download(ctx context.Context, ref string) (*domain.Blob, error) {
	o.mu.Lock()
	o.calls[ref]++
	gate := o.gate
	b, ok := o.blobs[ref]
	o.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s: status 404", domain.ErrFetch, ref)
	}
	return &b, nil
}

func (o *fakeOrigin) callCount(ref string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[ref]
}

// failingFastCache fails every operation.
type failingFastCache struct{}

func (failingFastCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("connection refused")
}
func (failingFastCache) Set(context.Context, string, []byte) error { return fmt.Errorf("connection refused") }
func (failingFastCache) Close() error                              { return nil }

// recordingMetrics counts calls by label.
type recordingMetrics struct {
	mu       sync.Mutex
	emitted  map[domain.ContentType]int
	skipped  map[string]int
	lookups  map[string]int
	download map[bool]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		emitted:  make(map[domain.ContentType]int),
		skipped:  make(map[string]int),
		lookups:  make(map[string]int),
		download: make(map[bool]int),
	}
}

func (m *recordingMetrics) RecordEmitted(t domain.ContentType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitted[t]++
}

func (m *recordingMetrics) RecordSkipped(t domain.ContentType, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[string(t)+"/"+reason]++
}

func (m *recordingMetrics) RecordCacheLookup(tier string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[fmt.Sprintf("%s/%t", tier, hit)]++
}

func (m *recordingMetrics) RecordDownload(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.download[ok]++
}

func (m *recordingMetrics) ObserveExtraction(string, time.Duration) {}

func (m *recordingMetrics) skips(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped[key]
}

func (m *recordingMetrics) lookupCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups[key]
}

// newTestPool creates a worker pool released at the end of the test.
func newTestPool(t *testing.T, name string, size int) *workers.Pool {
	t.Helper()
	p, err := workers.New(name, size)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

// blobHarness wires a BlobFetcher to real cache tiers and a fake origin.
type blobHarness struct {
	fetcher *BlobFetcher
	fast    *memory.Cache
	durable *disk.Cache
	origin  *fakeOrigin
	metrics *recordingMetrics
}

func newBlobHarness(t *testing.T) *blobHarness {
	t.Helper()
	durable, err := disk.New(t.TempDir(), 0)
	require.NoError(t, err)

	h := &blobHarness{
		fast:    memory.New(64, time.Minute),
		durable: durable,
		origin:  newFakeOrigin(),
		metrics: newRecordingMetrics(),
	}
	h.fetcher = NewBlobFetcher(h.fast, h.durable, h.origin, normalisers.Default(), newTestPool(t, "documents", 2), h.metrics)
	return h
}

// engineHarness wires an Engine to the in-memory content store.
type engineHarness struct {
	engine *Engine
	store  *storemem.ContentStore
	origin *fakeOrigin
}

func newEngineHarness(t *testing.T) *engineHarness {
	t.Helper()
	durable, err := disk.New(t.TempDir(), 0)
	require.NoError(t, err)

	store := storemem.NewContentStore()
	origin := newFakeOrigin()
	htmlPool, err := workers.New("html", 2)
	require.NoError(t, err)
	docPool, err := workers.New("documents", 1)
	require.NoError(t, err)

	engine, err := NewEngine(EngineDeps{
		Pools:         store,
		Sites:         store,
		Pages:         store,
		Files:         store,
		Lists:         store,
		FastCache:     memory.New(64, time.Minute),
		Durable:       durable,
		Origin:        origin,
		Documents:     normalisers.Default(),
		Bodies:        page.New(),
		Serialiser:    list.New(),
		HTMLPool:      htmlPool,
		DocPool:       docPool,
		PageBatchSize: 2,
		SiteCacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	return &engineHarness{engine: engine, store: store, origin: origin}
}

// collect drains a sequence into records and errors.
func collect(seq func(func(domain.ContentRecord, error) bool)) ([]domain.ContentRecord, []error) {
	var recs []domain.ContentRecord
	var errs []error
	for rec, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, rec)
	}
	return recs, errs
}

func contents(recs []domain.ContentRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Content
	}
	return out
}
