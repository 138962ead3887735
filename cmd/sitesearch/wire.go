package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/sitesearch/internal/adapters/driven/blob/httporigin"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/cache/disk"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/config/file"
	prommetrics "github.com/custodia-labs/sitesearch/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/sitesearch/internal/adapters/driven/workers"
	"github.com/custodia-labs/sitesearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
	"github.com/custodia-labs/sitesearch/internal/core/services"
	"github.com/custodia-labs/sitesearch/internal/logger"
	"github.com/custodia-labs/sitesearch/internal/normalisers"
	"github.com/custodia-labs/sitesearch/internal/normalisers/list"
	"github.com/custodia-labs/sitesearch/internal/normalisers/page"
)

const redisPingTimeout = 2 * time.Second

// openConfig opens config.toml in dir, or in ~/.sitesearch when dir is empty.
func openConfig(dir string) (cli.ConfigEditor, error) {
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// build loads settings from cfg and assembles the engine.
func build(cfg cli.ConfigEditor) (*cli.Services, error) {
	store, ok := cfg.(driven.ConfigStore)
	if !ok {
		return nil, errors.New("configuration store cannot be read")
	}
	settings, err := file.LoadSettings(store)
	if err != nil {
		return nil, err
	}
	return buildServices(settings)
}

// buildServices opens every adapter named by settings and wires the engine.
// On failure everything opened so far is closed again.
func buildServices(settings domain.Settings) (_ *cli.Services, err error) {
	var cleanup []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(cleanup) - 1; i >= 0; i-- {
			_ = cleanup[i]()
		}
	}()

	logger.Section("Starting")

	pools, err := sqlstore.OpenPools(settings.Stores)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, pools.Close)
	store := sqlstore.NewStore(pools)

	fast, err := newFastCache(settings.Cache)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, fast.Close)

	durable, err := disk.New(settings.Cache.Dir, settings.Cache.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("opening file cache: %w", err)
	}

	origin, err := httporigin.New(settings.Blob)
	if err != nil {
		return nil, err
	}

	htmlPool, err := workers.New("html", settings.Workers.HTML)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, releaser(htmlPool))

	docPool, err := workers.New("documents", settings.Workers.Documents)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, releaser(docPool))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := prommetrics.New(reg)

	engine, err := services.NewEngine(services.EngineDeps{
		Pools:         pools,
		Sites:         store,
		Pages:         store,
		Files:         store,
		Lists:         store,
		FastCache:     fast,
		Durable:       durable,
		Origin:        origin,
		Documents:     normalisers.Default(),
		Bodies:        page.New(),
		Serialiser:    list.New(),
		HTMLPool:      htmlPool,
		DocPool:       docPool,
		Metrics:       metrics,
		PageBatchSize: settings.PageBatchSize,
		SiteCacheTTL:  settings.SiteCacheTTL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("stores: %d configured, cache: %s, file cache: %s",
		len(settings.Stores), settings.Cache.Backend, durable.Dir())

	return &cli.Services{
		Content: engine,
		Cache:   engine,
		Metrics: metrics.Handler(),
		Close:   engine.Close,
	}, nil
}

// newFastCache creates the fast tier selected by cache.backend.
func newFastCache(cfg domain.CacheSettings) (driven.FastCache, error) {
	switch cfg.Backend {
	case domain.CacheBackendRedis:
		c := redis.New(cfg.RedisAddr, cfg.RedisDB, cfg.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			// Lookups fall through to the file cache until redis is back.
			logger.Warn("redis fast cache unreachable: %v", err)
		}
		return c, nil
	case domain.CacheBackendMemory, "":
		return memory.New(cfg.Size, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

func releaser(p *workers.Pool) func() error {
	return func() error {
		p.Release()
		return nil
	}
}
