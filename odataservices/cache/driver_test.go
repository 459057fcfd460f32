package cache_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/odata/odataservices/cache"
	"gotest.tools/v3/assert"
)

func testDriver(t *testing.T, driver cache.Driver) {
	key := uuid.NewString()
	value := uuid.NewString()

	{ // Missing keys are not found
		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Set then get
		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second*30))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, value, actualValue)
	}

	{ // Delete
		assert.NilError(t, driver.Delete(t.Context(), key))

		_, err := driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}

	{ // Expiration
		key = uuid.NewString()
		assert.NilError(t, driver.Set(t.Context(), key, value, time.Second))

		actualValue, err := driver.Get(t.Context(), key)
		assert.NilError(t, err)
		assert.Equal(t, value, actualValue)

		time.Sleep(time.Second * 2)

		_, err = driver.Get(t.Context(), key)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	}
}
