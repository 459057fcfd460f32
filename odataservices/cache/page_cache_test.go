package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/cache"
	"gotest.tools/v3/assert"
)

type page struct {
	Names []string `json:"names"`
}

func TestPageCacheSharesEquivalentQueries(t *testing.T) {
	t.Parallel()

	driver, err := cache.NewDriverMemory(16)
	assert.NilError(t, err)

	pages := cache.NewPageCache[page](driver, "test", time.Minute)

	first, err := odata.Decode("$top=2&$filter=name eq 'bob'")
	assert.NilError(t, err)

	second, err := odata.Decode("$filter=name   eq   'bob'&$top=+2")
	assert.NilError(t, err)

	assert.Equal(t, pages.Key("people", first), pages.Key("people", second))
	assert.Assert(t, pages.Key("people", first) != pages.Key("pets", first))

	loads := 0
	load := func(ctx context.Context) (page, error) {
		loads++
		return page{Names: []string{"bob"}}, nil
	}

	value, hit, err := pages.Fetch(t.Context(), "people", first, load)
	assert.NilError(t, err)
	assert.Assert(t, !hit)
	assert.DeepEqual(t, page{Names: []string{"bob"}}, value)

	value, hit, err = pages.Fetch(t.Context(), "people", second, load)
	assert.NilError(t, err)
	assert.Assert(t, hit)
	assert.DeepEqual(t, page{Names: []string{"bob"}}, value)
	assert.Equal(t, 1, loads)
}

func TestPageCacheDoesNotStoreFailures(t *testing.T) {
	t.Parallel()

	driver, err := cache.NewDriverMemory(16)
	assert.NilError(t, err)

	pages := cache.NewPageCache[page](driver, "test", time.Minute)
	expected := errors.New("boom")

	_, _, err = pages.Fetch(t.Context(), "people", odata.Query{}, func(ctx context.Context) (page, error) {
		return page{}, expected
	})
	assert.ErrorIs(t, err, expected)

	_, err = pages.Get(t.Context(), "people", odata.Query{})
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

type unreachableDriver struct{}

func (unreachableDriver) Delete(ctx context.Context, key string) error {
	return errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (unreachableDriver) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (unreachableDriver) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func TestPageCacheFallsBackWhenDriverIsDown(t *testing.T) {
	t.Parallel()

	reported := []string{}
	pages := cache.NewPageCache[page](unreachableDriver{}, "test", time.Minute,
		cache.WithErrorHandler[page](func(ctx context.Context, key string, err error) {
			reported = append(reported, err.Error())
		}),
	)

	value, hit, err := pages.Fetch(t.Context(), "people", odata.Query{}, func(ctx context.Context) (page, error) {
		return page{Names: []string{"bob"}}, nil
	})
	assert.NilError(t, err)
	assert.Assert(t, !hit)
	assert.DeepEqual(t, page{Names: []string{"bob"}}, value)
	assert.Equal(t, 2, len(reported))
}
