package domain

import (
	"context"
	"time"
)

type ReviewStore interface {
	// Insert persists r and fills in r.ID and r.CreatedAt.
	Insert(ctx context.Context, r *Review) error
	// List returns every review, newest first.
	List(ctx context.Context) ([]Review, error)
}

// Notifier delivers a text to a sender identifier. A nil error means the
// provider accepted the message.
type Notifier interface {
	Send(ctx context.Context, to, text string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Deduper remembers provider message ids. Claim reports true the first time
// an id is seen within ttl.
type Deduper interface {
	Claim(ctx context.Context, id string, ttl time.Duration) (bool, error)
}
