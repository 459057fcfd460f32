package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lunagic/odata/odata"
)

// PageCache stores query results as JSON under a key derived from the
// collection name and the canonical form of the query, so equivalent query
// strings share an entry.
type PageCache[V any] struct {
	driver   Driver
	prefix   string
	duration time.Duration
	onError  func(ctx context.Context, key string, err error)
}

type PageCacheConfigFunc[V any] func(c *PageCache[V])

// WithErrorHandler is told about cache reads and writes that failed during
// Fetch. Those failures never fail the Fetch itself.
func WithErrorHandler[V any](handler func(ctx context.Context, key string, err error)) PageCacheConfigFunc[V] {
	return func(c *PageCache[V]) {
		c.onError = handler
	}
}

func NewPageCache[V any](driver Driver, prefix string, duration time.Duration, configFuncs ...PageCacheConfigFunc[V]) *PageCache[V] {
	c := &PageCache[V]{
		driver:   driver,
		prefix:   prefix,
		duration: duration,
		onError:  func(ctx context.Context, key string, err error) {},
	}

	for _, configFunc := range configFuncs {
		configFunc(c)
	}

	return c
}

func (c *PageCache[V]) Key(collection string, query odata.Query) string {
	return fmt.Sprintf("%s-%s?%s", c.prefix, collection, query.Encode())
}

func (c *PageCache[V]) Get(ctx context.Context, collection string, query odata.Query) (V, error) {
	var target V

	value, err := c.driver.Get(ctx, c.Key(collection, query))
	if err != nil {
		return target, err
	}

	if err := json.Unmarshal([]byte(value), &target); err != nil {
		return target, fmt.Errorf("cached page %q: %w", c.Key(collection, query), err)
	}

	return target, nil
}

func (c *PageCache[V]) Set(ctx context.Context, collection string, query odata.Query, value V) error {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.driver.Set(ctx, c.Key(collection, query), string(jsonBytes), c.duration)
}

// Fetch returns the cached value, or calls load and caches its result. The
// boolean reports a cache hit. Only an error from load is returned; the cache
// itself is best-effort.
func (c *PageCache[V]) Fetch(
	ctx context.Context,
	collection string,
	query odata.Query,
	load func(ctx context.Context) (V, error),
) (V, bool, error) {
	cached, err := c.Get(ctx, collection, query)
	if err == nil {
		return cached, true, nil
	}

	if !errors.Is(err, ErrNotFound) {
		c.onError(ctx, c.Key(collection, query), err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, false, err
	}

	if err := c.Set(ctx, collection, query, value); err != nil {
		c.onError(ctx, c.Key(collection, query), err)
	}

	return value, false, nil
}
