package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupPrefix = "webhook:sid:"

// Deduper records provider message ids with SET NX so a redelivered webhook
// is recognised across requests.
type Deduper struct{ c *redis.Client }

func NewDeduper(c *redis.Client) *Deduper { return &Deduper{c: c} }

func (d *Deduper) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return d.c.SetNX(ctx, dedupPrefix+id, 1, ttl).Result()
}
