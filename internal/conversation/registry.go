package conversation

import (
	"sync"
	"sync/atomic"
)

// Registry maps sender identifiers to conversation state for the lifetime of
// the process. Each sender has its own lock, so the read-compute-write of one
// sender never interleaves with another call for the same sender and never
// waits on a different sender.
//
// Entries are created on first contact and removed once a review is saved.
// Abandoned conversations are never evicted.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     atomic.Uint64 // versions are unique across entries
}

type entry struct {
	mu      sync.Mutex
	state   State
	version uint64
	removed bool
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// lock returns the live entry for id with its lock held, creating it in the
// initial state if needed.
func (r *Registry) lock(id string) *entry {
	for {
		r.mu.Lock()
		e, ok := r.entries[id]
		if !ok {
			e = &entry{state: Initial()}
			r.entries[id] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if !e.removed {
			return e
		}
		// lost a race with remove; look again
		e.mu.Unlock()
	}
}

// lookup returns the live entry for id with its lock held, or nil.
func (r *Registry) lookup(id string) *entry {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil
	}
	return e
}

// remove must be called with e.mu held.
func (r *Registry) remove(id string, e *entry) {
	e.removed = true
	r.mu.Lock()
	if r.entries[id] == e {
		delete(r.entries, id)
	}
	r.mu.Unlock()
}

// GetOrCreate returns the current state for id, creating the initial state on
// first contact.
func (r *Registry) GetOrCreate(id string) State {
	e := r.lock(id)
	defer e.mu.Unlock()
	return e.state
}

// Update applies fn to the sender's state under the sender's lock and stores
// the returned state. The returned version identifies the write; it is zero
// when fn fails, in which case nothing is stored.
func (r *Registry) Update(id string, fn func(State) (State, error)) (uint64, error) {
	e := r.lock(id)
	defer e.mu.Unlock()

	next, err := fn(e.state)
	if err != nil {
		return 0, err
	}
	e.state = next
	e.version = r.seq.Add(1)
	return e.version, nil
}

// Reset drops the sender's state; the next message starts a new conversation.
func (r *Registry) Reset(id string) {
	if e := r.lookup(id); e != nil {
		r.remove(id, e)
		e.mu.Unlock()
	}
}

// ResetIf drops the sender's state only if nothing has been written since the
// Update that returned version.
func (r *Registry) ResetIf(id string, version uint64) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	defer e.mu.Unlock()
	if e.version != version {
		return false
	}
	r.remove(id, e)
	return true
}

// RestoreIf replaces the sender's state with s only if nothing has been
// written since the Update that returned version.
func (r *Registry) RestoreIf(id string, version uint64, s State) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	defer e.mu.Unlock()
	if e.version != version {
		return false
	}
	e.state = s
	e.version = r.seq.Add(1)
	return true
}

// Len is the number of senders with a conversation in progress.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
