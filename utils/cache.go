package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
)

const (
	defaultCacheTTL = time.Hour
)

var (
	localCache     *cache.Cache[[]byte]
	localRistretto *ristretto.Cache
	localCacheOnce sync.Once
)

// local returns the in-process cache used when Redis is not configured.
func local() *cache.Cache[[]byte] {
	localCacheOnce.Do(func() {
		rc, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e5,
			MaxCost:     1 << 26,
			BufferItems: 64,
		})
		if err != nil {
			panic(err)
		}
		localRistretto = rc
		localCache = cache.New[[]byte](ristrettostore.NewRistretto(rc))
	})
	return localCache
}

// CacheGetBytes returns cached bytes for a key.
func CacheGetBytes(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if rc := GetRedis(); rc != nil {
		b, err := rc.Get(ctx, key).Bytes()
		if err != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
			return nil, false
		}
		return b, true
	}

	b, err := local().Get(ctx, key)
	if err != nil {
		Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes with default TTL.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if rc := GetRedis(); rc != nil {
		if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
		return
	}

	if err := local().Set(ctx, key, b, store.WithExpiration(ttl), store.WithCost(int64(len(b)))); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		return
	}
	// ristretto applies writes asynchronously
	localRistretto.Wait()
}

// CacheSetJSON marshals v and stores JSON bytes.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// InvalidateByPrefix deletes keys that match the given prefix.
// The local store has no key listing, so it is cleared entirely.
func InvalidateByPrefix(prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rc := GetRedis()
	if rc == nil {
		if err := local().Clear(ctx); err != nil {
			Sugar.Warnf("cache clear failed: %v", err)
		}
		return
	}

	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
