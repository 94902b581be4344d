package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"whatsapp_reviews/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	rows    []domain.Review
	failIns error
	failLs  error
	lists   int
	// afterSnapshot runs inside List once the rows are read, without the lock
	afterSnapshot func()
}

func (f *fakeStore) Insert(ctx context.Context, rv *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIns != nil {
		return f.failIns
	}
	rv.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *rv)
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lists++
	if f.failLs != nil {
		f.mu.Unlock()
		return nil, f.failLs
	}
	out := make([]domain.Review, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0; i-- {
		out = append(out, f.rows[i])
	}
	hook := f.afterSnapshot
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeStore) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeStore) setInsertErr(err error) {
	f.mu.Lock()
	f.failIns = err
	f.mu.Unlock()
}

func (f *fakeStore) saved() []domain.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Review(nil), f.rows...)
}

type sent struct{ to, text string }

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{to, text})
	return f.err
}

func (f *fakeNotifier) texts(to string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.msgs {
		if m.to == to {
			out = append(out, m.text)
		}
	}
	return out
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  int
	err   error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels++
	delete(c.store, key)
	return nil
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *fakeDeduper) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

var errDB = errors.New("db down")
