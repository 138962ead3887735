package domain

import (
	"errors"
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Driver identifies a SQL driver for a backing store.
type Driver string

// Available drivers.
const (
	// DriverPostgres is a PostgreSQL server (github.com/lib/pq).
	DriverPostgres Driver = "postgres"

	// DriverSQLite is a local SQLite database (modernc.org/sqlite).
	DriverSQLite Driver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Driver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d Driver) Description() string {
	switch d {
	case DriverPostgres:
		return "PostgreSQL"
	case DriverSQLite:
		return "SQLite (local file)"
	default:
		return unknownDescription
	}
}

// CacheBackend identifies the fast cache tier implementation.
type CacheBackend string

// Available fast tier backends.
const (
	// CacheBackendMemory is an in-process expiring LRU.
	CacheBackendMemory CacheBackend = "memory"

	// CacheBackendRedis is a Redis server shared between processes.
	CacheBackendRedis CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendMemory, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// StoreSettings configures the connection pool of one logical store.
type StoreSettings struct {
	// Driver is the SQL driver.
	Driver Driver

	// DSN is the data source name. Resolved from DSNEnv when empty.
	DSN string

	// DSNEnv names an environment variable holding the DSN.
	DSNEnv string

	// PoolSize is the fixed number of connections in the pool.
	PoolSize int
}

// BlobSettings configures downloads from the blob origin.
type BlobSettings struct {
	// BaseURL is the origin every stored reference is relative to.
	BaseURL string

	// Timeout bounds a single download.
	Timeout time.Duration

	// RateLimit caps downloads per second. Zero means unlimited.
	RateLimit float64

	// Burst is the limiter burst size.
	Burst int
}

// CacheSettings configures both cache tiers.
type CacheSettings struct {
	// Backend selects the fast tier implementation.
	Backend CacheBackend

	// TTL is the fast tier entry lifetime.
	TTL time.Duration

	// Size is the maximum number of entries in the memory fast tier.
	Size int

	// RedisAddr is the Redis address for the redis backend.
	RedisAddr string

	// RedisDB is the Redis database number.
	RedisDB int

	// Dir is the durable tier directory.
	Dir string

	// MaxBytes caps the durable tier. Zero means unbounded.
	MaxBytes int64
}

// WorkerSettings sizes the CPU-bound worker pools.
type WorkerSettings struct {
	// HTML is the number of workers extracting page bodies.
	HTML int

	// Documents is the number of workers parsing downloaded files.
	Documents int
}

// Settings is the full application configuration.
type Settings struct {
	Stores        map[StoreName]StoreSettings
	Blob          BlobSettings
	Cache         CacheSettings
	Workers       WorkerSettings
	PageBatchSize int
	SiteCacheTTL  time.Duration
}

// Default values.
const (
	DefaultPoolSize        = 10
	DefaultBlobTimeout     = 10 * time.Second
	DefaultCacheTTL        = time.Hour
	DefaultCacheSize       = 4096
	DefaultRedisAddr       = "localhost:6379"
	DefaultHTMLWorkers     = 8
	DefaultDocumentWorkers = 4
	DefaultPageBatchSize   = 50
	DefaultSiteCacheTTL    = 5 * time.Minute
)

// DefaultSettings returns settings with all defaults applied.
// Stores and the blob base URL have no sensible default and stay empty.
func DefaultSettings() Settings {
	return Settings{
		Stores: make(map[StoreName]StoreSettings),
		Blob: BlobSettings{
			Timeout: DefaultBlobTimeout,
		},
		Cache: CacheSettings{
			Backend:   CacheBackendMemory,
			TTL:       DefaultCacheTTL,
			Size:      DefaultCacheSize,
			RedisAddr: DefaultRedisAddr,
		},
		Workers: WorkerSettings{
			HTML:      DefaultHTMLWorkers,
			Documents: DefaultDocumentWorkers,
		},
		PageBatchSize: DefaultPageBatchSize,
		SiteCacheTTL:  DefaultSiteCacheTTL,
	}
}

// Validate checks the settings for values the engine cannot start with.
// Missing stores are not an error here: they surface as ErrPoolUnavailable.
func (s Settings) Validate() error {
	var errs []error
	for name, store := range s.Stores {
		if !store.Driver.IsValid() {
			errs = append(errs, fmt.Errorf("stores.%s.driver: %w: %q", name, ErrInvalidInput, store.Driver))
		}
		if store.PoolSize < 1 {
			errs = append(errs, fmt.Errorf("stores.%s.pool_size: %w: must be positive", name, ErrInvalidInput))
		}
	}
	if !s.Cache.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("cache.backend: %w: %q", ErrInvalidInput, s.Cache.Backend))
	}
	if s.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_seconds: %w: must be positive", ErrInvalidInput))
	}
	if s.Cache.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("cache.max_bytes: %w: must not be negative", ErrInvalidInput))
	}
	if s.Blob.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("blob.timeout_seconds: %w: must be positive", ErrInvalidInput))
	}
	if s.Workers.HTML < 1 || s.Workers.Documents < 1 {
		errs = append(errs, fmt.Errorf("workers: %w: pool sizes must be positive", ErrInvalidInput))
	}
	if s.PageBatchSize < 1 {
		errs = append(errs, fmt.Errorf("pages.batch_size: %w: must be positive", ErrInvalidInput))
	}
	return errors.Join(errs...)
}
