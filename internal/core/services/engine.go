package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driving"
	"github.com/custodia-labs/sitesearch/internal/logger"
	"github.com/custodia-labs/sitesearch/internal/merge"
)

// Ensure Engine implements the interfaces.
var (
	_ driving.ContentService = (*Engine)(nil)
	_ driving.CacheService   = (*Engine)(nil)
)

// EngineDeps holds the collaborators an Engine is built from.
// The engine takes ownership of Pools, FastCache and both executors and
// releases them on Close.
type EngineDeps struct {
	Pools      driven.StorePools
	Sites      driven.SiteStore
	Pages      driven.PageStore
	Files      driven.FileStore
	Lists      driven.ListStore
	FastCache  driven.FastCache
	Durable    driven.DurableCache
	Origin     driven.BlobOrigin
	Documents  driven.DocumentExtractor
	Bodies     driven.BodyExtractor
	Serialiser driven.ListSerialiser
	HTMLPool   driven.Executor
	DocPool    driven.Executor

	// Metrics is optional.
	Metrics driven.Metrics

	PageBatchSize int
	SiteCacheTTL  time.Duration
}

// Engine is the entry point of the content pipeline: it resolves a site
// and merges its pages, files and lists into one sequence.
type Engine struct {
	pools    driven.StorePools
	fast     driven.FastCache
	durable  driven.DurableCache
	htmlPool driven.Executor
	docPool  driven.Executor

	sites *SiteResolver
	pages *PageStream
	files *FileStream
	lists *ListStream

	mu     sync.RWMutex
	closed bool
}

// NewEngine wires an engine from its dependencies.
func NewEngine(deps EngineDeps) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	blobs := NewBlobFetcher(deps.FastCache, deps.Durable, deps.Origin, deps.Documents, deps.DocPool, deps.Metrics)
	return &Engine{
		pools:    deps.Pools,
		fast:     deps.FastCache,
		durable:  deps.Durable,
		htmlPool: deps.HTMLPool,
		docPool:  deps.DocPool,
		sites:    NewSiteResolver(deps.Sites, deps.SiteCacheTTL),
		pages:    NewPageStream(deps.Pages, deps.Bodies, deps.HTMLPool, deps.PageBatchSize, deps.Metrics),
		files:    NewFileStream(deps.Files, blobs, deps.Metrics),
		lists:    NewListStream(deps.Lists, deps.Serialiser, deps.Metrics),
	}, nil
}

func (d EngineDeps) validate() error {
	missing := []string{}
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("pools", d.Pools != nil)
	check("sites", d.Sites != nil)
	check("pages", d.Pages != nil)
	check("files", d.Files != nil)
	check("lists", d.Lists != nil)
	check("fast cache", d.FastCache != nil)
	check("durable cache", d.Durable != nil)
	check("origin", d.Origin != nil)
	check("document extractor", d.Documents != nil)
	check("body extractor", d.Bodies != nil)
	check("list serialiser", d.Serialiser != nil)
	check("html pool", d.HTMLPool != nil)
	check("document pool", d.DocPool != nil)
	if len(missing) > 0 {
		return fmt.Errorf("%w: engine missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// SiteContent resolves siteName and returns its records: pages first,
// then files, then lists whenever several are ready at once. Pool and
// resolution failures are returned before any record is produced.
// Errors yielded by the sequence report a source that ended early; the
// other sources keep going.
func (e *Engine) SiteContent(ctx context.Context, siteName string) (iter.Seq2[domain.ContentRecord, error], error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	for _, store := range domain.AllStores() {
		if err := e.pools.Check(store); err != nil {
			return nil, err
		}
	}

	site, err := e.sites.Resolve(ctx, siteName)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger.Info("run %s: streaming site %q (id %d)", runID, site.Name, site.ID)

	merged := merge.Priority(ctx,
		e.pages.Stream(ctx, site),
		e.files.Stream(ctx, site),
		e.lists.Stream(ctx, site),
	)

	return func(yield func(domain.ContentRecord, error) bool) {
		count := 0
		defer func() { logger.Info("run %s: %d records", runID, count) }()
		for rec, err := range merged {
			if err != nil {
				logger.Warn("run %s: source ended early: %v", runID, err)
			} else {
				count++
			}
			if !yield(rec, err) {
				return
			}
		}
	}, nil
}

// AvailableSites returns the names of all published sites.
func (e *Engine) AvailableSites(ctx context.Context) ([]string, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if err := e.pools.Check(domain.StorePages); err != nil {
		return nil, err
	}
	return e.sites.Names(ctx)
}

// FlattenSite returns the whole site's text as one string: records are
// separated by blank lines and each file is introduced by a header line
// naming its link.
func (e *Engine) FlattenSite(ctx context.Context, siteName string) (string, error) {
	seq, err := e.SiteContent(ctx, siteName)
	if err != nil {
		return "", err
	}

	var parts []string
	for rec, err := range seq {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			continue
		}
		parts = append(parts, FlattenRecord(rec))
	}
	return strings.Join(parts, "\n\n"), nil
}

// FlattenRecord renders one record the way FlattenSite does.
func FlattenRecord(rec domain.ContentRecord) string {
	if rec.Type() != domain.ContentFile {
		return rec.Content
	}
	link, _ := rec.Metadata["link"].(string)
	return fmt.Sprintf("=== File: %s ===\n%s", link, rec.Content)
}

// PruneCache applies the durable tier's retention policy.
func (e *Engine) PruneCache() (int, error) {
	if err := e.checkOpen(); err != nil {
		return 0, err
	}
	return e.durable.Prune()
}

// Close releases the store pools, worker pools and cache clients.
// Sequences already handed out must not be consumed afterwards.
// Calling Close again returns domain.ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	e.closed = true
	e.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		e.htmlPool.Release()
		e.docPool.Release()
		return nil
	})
	g.Go(func() error {
		if err := e.pools.Close(); err != nil {
			return fmt.Errorf("close pools: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := e.fast.Close(); err != nil {
			return fmt.Errorf("close fast cache: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (e *Engine) checkOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return domain.ErrEngineClosed
	}
	return nil
}

// IsFatal reports whether err means a site cannot be served at all, as
// opposed to a source that stopped early.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrSiteNotFound) ||
		errors.Is(err, domain.ErrPoolUnavailable) ||
		errors.Is(err, domain.ErrEngineClosed)
}
