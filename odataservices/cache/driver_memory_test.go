package cache_test

import (
	"testing"
	"time"

	"github.com/lunagic/odata/odataservices/cache"
	"gotest.tools/v3/assert"
)

func TestDriverMemory(t *testing.T) {
	t.Parallel()

	driver, err := cache.NewDriverMemory(0)
	assert.NilError(t, err)

	testDriver(t, driver)
}

func TestDriverMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	driver, err := cache.NewDriverMemory(2)
	assert.NilError(t, err)

	assert.NilError(t, driver.Set(t.Context(), "a", "1", time.Minute))
	assert.NilError(t, driver.Set(t.Context(), "b", "2", time.Minute))

	// Touch "a" so "b" becomes the oldest entry
	_, err = driver.Get(t.Context(), "a")
	assert.NilError(t, err)

	assert.NilError(t, driver.Set(t.Context(), "c", "3", time.Minute))

	_, err = driver.Get(t.Context(), "b")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	for key, expected := range map[string]string{"a": "1", "c": "3"} {
		value, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, expected, value)
	}
}
