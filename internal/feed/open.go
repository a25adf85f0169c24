package feed

import (
	"context"
	"fmt"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
)

// OpenCache builds the Cache named by backend.
func OpenCache(ctx context.Context, backend, redisURL, sqlitePath string) (Cache, error) {
	switch backend {
	case "", CacheMemory:
		return NewMemoryCache(), nil
	case CacheRedis:
		return NewRedisCache(redisURL)
	case CacheSQLite:
		return OpenSQLiteCache(ctx, sqlitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}
