package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/core/ports/driven"
)

// Configuration keys.
const (
	keyBlobBaseURL     = "blob.base_url"
	keyBlobTimeout     = "blob.timeout_seconds"
	keyBlobRateLimit   = "blob.rate_limit"
	keyBlobBurst       = "blob.burst"
	keyCacheBackend    = "cache.backend"
	keyCacheTTL        = "cache.ttl_seconds"
	keyCacheSize       = "cache.size"
	keyCacheRedisAddr  = "cache.redis_addr"
	keyCacheRedisDB    = "cache.redis_db"
	keyCacheDir        = "cache.dir"
	keyCacheMaxBytes   = "cache.max_bytes"
	keyWorkersHTML     = "workers.html"
	keyWorkersDocs     = "workers.documents"
	keyPagesBatchSize  = "pages.batch_size"
	keySitesCacheTTL   = "sites.cache_ttl_seconds"
	storeKeyPrefix     = "stores."
	defaultCacheDirRel = "file_cache"
)

// LoadSettings decodes the typed application settings from a config store.
// Missing keys keep their defaults. A store's DSN is read from the
// environment variable named by dsn_env when dsn itself is empty.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	s := domain.DefaultSettings()

	for _, name := range domain.AllStores() {
		prefix := storeKeyPrefix + string(name) + "."
		driver := store.GetString(prefix + "driver")
		if driver == "" {
			continue
		}
		st := domain.StoreSettings{
			Driver:   domain.Driver(strings.ToLower(driver)),
			DSN:      store.GetString(prefix + "dsn"),
			DSNEnv:   store.GetString(prefix + "dsn_env"),
			PoolSize: domain.DefaultPoolSize,
		}
		if n, ok := intValue(store, prefix+"pool_size"); ok {
			st.PoolSize = n
		}
		if st.DSN == "" && st.DSNEnv != "" {
			st.DSN = os.Getenv(st.DSNEnv)
		}
		if st.DSN == "" {
			return s, fmt.Errorf("%s: %w: no dsn configured", prefix+"dsn", domain.ErrInvalidInput)
		}
		s.Stores[name] = st
	}

	s.Blob.BaseURL = store.GetString(keyBlobBaseURL)
	if v, ok := floatValue(store, keyBlobTimeout); ok {
		s.Blob.Timeout = seconds(v)
	}
	s.Blob.RateLimit = store.GetFloat(keyBlobRateLimit)
	s.Blob.Burst = store.GetInt(keyBlobBurst)

	if backend := store.GetString(keyCacheBackend); backend != "" {
		s.Cache.Backend = domain.CacheBackend(strings.ToLower(backend))
	}
	if v, ok := floatValue(store, keyCacheTTL); ok {
		s.Cache.TTL = seconds(v)
	}
	if n, ok := intValue(store, keyCacheSize); ok {
		s.Cache.Size = n
	}
	if addr := store.GetString(keyCacheRedisAddr); addr != "" {
		s.Cache.RedisAddr = addr
	}
	s.Cache.RedisDB = store.GetInt(keyCacheRedisDB)
	s.Cache.Dir = store.GetString(keyCacheDir)
	if s.Cache.Dir == "" {
		s.Cache.Dir = filepath.Join(filepath.Dir(store.Path()), defaultCacheDirRel)
	}
	s.Cache.MaxBytes = int64(store.GetInt(keyCacheMaxBytes))

	if n, ok := intValue(store, keyWorkersHTML); ok {
		s.Workers.HTML = n
	}
	if n, ok := intValue(store, keyWorkersDocs); ok {
		s.Workers.Documents = n
	}
	if n, ok := intValue(store, keyPagesBatchSize); ok {
		s.PageBatchSize = n
	}
	if v, ok := floatValue(store, keySitesCacheTTL); ok {
		s.SiteCacheTTL = seconds(v)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// intValue distinguishes an explicit zero from a missing key.
func intValue(store driven.ConfigStore, key string) (int, bool) {
	if _, ok := store.Get(key); !ok {
		return 0, false
	}
	return store.GetInt(key), true
}

func floatValue(store driven.ConfigStore, key string) (float64, bool) {
	if _, ok := store.Get(key); !ok {
		return 0, false
	}
	return store.GetFloat(key), true
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
