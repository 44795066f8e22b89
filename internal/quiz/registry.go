package quiz

import (
	"errors"
	"sort"
	"sync"
)

// ErrSessionNotFound is returned by Registry when no session has the ID.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds live sessions for shells that serve many learners at once.
// Each session has its own lock: Do on one session never waits for work on
// another.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Put adds s, replacing any session with the same ID.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID()] = &registryEntry{session: s}
}

// Do runs fn with exclusive access to the session with the given ID.
func (r *Registry) Do(id string, fn func(*Session) error) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Remove drops the session with the given ID. Removing an unknown ID is a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// IDs returns the IDs of all registered sessions in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
