package memory

import (
	"context"
	"sync"
)

// AverageCache keeps the published average message in process memory.
type AverageCache struct {
	mu    sync.RWMutex
	value string
}

func NewAverageCache() *AverageCache {
	return &AverageCache{}
}

func (c *AverageCache) Get(_ context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, nil
}

func (c *AverageCache) Set(_ context.Context, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	return nil
}
