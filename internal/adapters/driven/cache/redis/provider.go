// Package redis provides a caching decorator for search providers backed
// by Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Ensure CachedProvider implements the interface.
var _ driven.SearchProvider = (*CachedProvider)(nil)

// Default configuration values.
const (
	DefaultKeyPrefix = "sercha:search:"
	DefaultTTL       = time.Hour
)

// Config holds cache configuration.
type Config struct {
	// TTL is how long results stay cached (default: 1h).
	TTL time.Duration

	// KeyPrefix namespaces cache keys (default: "sercha:search:").
	KeyPrefix string
}

// CachedProvider serves repeated queries from Redis and delegates misses
// to the wrapped provider. Redis failures degrade to uncached calls.
// Provider errors are never cached.
type CachedProvider struct {
	next   driven.SearchProvider
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// Connect opens a Redis client and checks it answers PING.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

// Wrap decorates next with a Redis cache.
func Wrap(next driven.SearchProvider, client *goredis.Client, cfg Config) *CachedProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &CachedProvider{next: next, client: client, ttl: cfg.TTL, prefix: cfg.KeyPrefix}
}

// Name returns the wrapped provider's name.
func (c *CachedProvider) Name() string {
	return c.next.Name()
}

// Search returns cached results when present, otherwise queries the
// wrapped provider and stores its results.
func (c *CachedProvider) Search(ctx context.Context, query string, limit int) ([]domain.ResultItem, error) {
	key := c.key(query, limit)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []domain.ResultItem
		if jsonErr := json.Unmarshal(data, &items); jsonErr == nil {
			logger.Debug("cache hit: %s %q", c.next.Name(), query)
			return items, nil
		}
		logger.Warn("dropping corrupt cache entry %s", key)
		_ = c.client.Del(ctx, key).Err()
	case errors.Is(err, goredis.Nil):
		logger.Debug("cache miss: %s %q", c.next.Name(), query)
	default:
		logger.Warn("search cache unavailable: %v", err)
	}

	items, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("failed to cache %s results: %v", c.next.Name(), err)
		}
	}
	return items, nil
}

// key hashes provider, limit and query into a fixed-length Redis key.
func (c *CachedProvider) key(query string, limit int) string {
	sum := sha256.Sum256([]byte(c.next.Name() + "\x00" + strconv.Itoa(limit) + "\x00" + query))
	return c.prefix + c.next.Name() + ":" + hex.EncodeToString(sum[:])
}
