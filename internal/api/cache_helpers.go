package api

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc computes one dashboard view from the analytics service.
type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	refreshFetchTimeout = 15 * time.Second
	cacheWriteTimeout   = 3 * time.Second

	// refreshDelay debounces refresh-ahead: a burst of hits on the same view
	// schedules one recomputation after the burst, not one per hit.
	refreshDelay = 500 * time.Millisecond
)

// jitterTTL spreads expirations by up to ±10% so the dashboard's handful of
// hot keys don't all fall out of the cache in the same tick.
func jitterTTL(ttl time.Duration) time.Duration {
	spread := int64(ttl / 10)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*spread)-spread)
}

// storeAsync writes a computed view to the cache off the serving goroutine; a
// failed write only costs a recomputation on the next request.
func storeAsync[T any](c Cacher, key string, value T, ttl time.Duration, logger *zap.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := c.Set(ctx, key, value, jitterTTL(ttl)); err != nil {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		} else {
			logger.Debug("cache updated", zap.String("key", key))
		}
	}()
}

// refreshAhead recomputes a view that was just served from cache so the entry
// stays warm past its TTL. Concurrent hits collapse onto a single refresh via
// the key's :refresh singleflight slot.
func refreshAhead[T any](c Cacher, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fetch FetchFunc[T]) {
	go func() {
		time.Sleep(refreshDelay)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshFetchTimeout)
			defer cancel()

			value, err := fetch(ctx)
			if err != nil {
				logger.Warn("refresh-ahead fetch failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}

			storeAsync(c, key, value, ttl, logger)
			return value, nil
		})
	}()
}

// FindAndCache is the read-through path for every dashboard view: serve the
// cached copy and refresh it behind the response, or on a miss compute the
// view once under singleflight and cache the result.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fetch FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached T
	switch err := c.Get(ctx, key, &cached); {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(c, sf, key, ttl, logger, fetch)
		return cached, nil

	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache read failed, recomputing", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := sf.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		storeAsync(c, key, value, ttl, logger)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("cache key served a mismatched type", zap.String("key", key))
		return zero, fmt.Errorf("mismatched type for key %q", key)
	}

	return value, nil
}
