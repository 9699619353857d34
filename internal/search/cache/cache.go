// Package cache is an optional redis-backed result cache for the search
// service. Identical queries within the TTL are answered from redis, and
// concurrent identical misses are collapsed into one evaluation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mihirdhamankar/searchlite/internal/search"
	"github.com/mihirdhamankar/searchlite/pkg/config"
	"github.com/mihirdhamankar/searchlite/pkg/logger"
	"github.com/mihirdhamankar/searchlite/pkg/metrics"
	pkgredis "github.com/mihirdhamankar/searchlite/pkg/redis"
	"github.com/mihirdhamankar/searchlite/pkg/resilience"
)

const keyPrefix = "search:"

// QueryCache caches serialized result lists keyed by the query identity:
// the query string, the result limit, and the evaluation strategy. Cache
// failures degrade to evaluation, never to request failures.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

// New builds a QueryCache over client. m may be nil when the caller does
// not export Prometheus metrics.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewBreaker("redis-cache", resilience.BreakerConfig{}),
		logger:  logger.WithComponent("query-cache"),
		metrics: m,
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *QueryCache) Get(ctx context.Context, query string, k int, strategy search.Strategy) ([]search.Result, bool) {
	key := c.buildKey(query, k, strategy)
	var data string
	err := c.breaker.Do(func() error {
		var err error
		data, err = c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			// A miss is a healthy redis answer.
			data = ""
			return nil
		}
		return err
	})
	if err != nil || data == "" {
		if err != nil && !errors.Is(err, resilience.ErrOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var results []search.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return results, true
}

func (c *QueryCache) Set(ctx context.Context, query string, k int, strategy search.Strategy, results []search.Result) {
	key := c.buildKey(query, k, strategy)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Do(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil && !errors.Is(err, resilience.ErrOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached results for the query, or runs computeFn
// once per key even under concurrent identical misses. The second return
// reports whether the cache answered.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	k int,
	strategy search.Strategy,
	computeFn func() ([]search.Result, error),
) ([]search.Result, bool, error) {
	if results, ok := c.Get(ctx, query, k, strategy); ok {
		return results, true, nil
	}
	key := c.buildKey(query, k, strategy)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, k, strategy); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, k, strategy, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]search.Result), false, nil
}

// Invalidate drops every cached result, for use after a reindex.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, k int, strategy search.Strategy) string {
	raw := fmt.Sprintf("%s:k=%d:strategy=%s", strings.TrimSpace(query), k, strategy)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
