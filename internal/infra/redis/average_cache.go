package redis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const averageKey = "hangman:average_attempts"

// AverageCache keeps the published average-attempts message in a single
// Redis string so every instance serves the same value.
type AverageCache struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewAverageCache returns a cache whose entries expire after ttl plus up to
// 10% jitter. A zero ttl keeps the value until it is overwritten.
func NewAverageCache(client *redis.Client, ttl time.Duration) *AverageCache {
	return &AverageCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AverageCache) Get(ctx context.Context) (string, error) {
	val, err := c.client.Get(ctx, averageKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *AverageCache) Set(ctx context.Context, value string) error {
	return c.client.Set(ctx, averageKey, value, c.ttlWithJitter()).Err()
}

func (c *AverageCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
