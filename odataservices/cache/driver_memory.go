package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMemorySize = 1024

type memoryItem struct {
	Value     string
	ExpiresAt time.Time
}

// NewDriverMemory keeps at most size entries, evicting the least recently
// used one when full. A size below one falls back to DefaultMemorySize.
func NewDriverMemory(size int) (Driver, error) {
	if size < 1 {
		size = DefaultMemorySize
	}

	items, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, err
	}

	return &driverMemory{
		items: items,
		now:   time.Now,
	}, nil
}

type driverMemory struct {
	items *lru.Cache[string, memoryItem]
	now   func() time.Time
}

func (driver *driverMemory) Delete(ctx context.Context, key string) error {
	driver.items.Remove(key)

	return nil
}

func (driver *driverMemory) Get(ctx context.Context, key string) (string, error) {
	item, found := driver.items.Get(key)
	if !found {
		return "", ErrNotFound
	}

	if !driver.now().Before(item.ExpiresAt) {
		driver.items.Remove(key)
		return "", ErrNotFound
	}

	return item.Value, nil
}

func (driver *driverMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	driver.items.Add(key, memoryItem{
		Value:     value,
		ExpiresAt: driver.now().Add(duration),
	})

	return nil
}
