package slugs

import "sync"

// Registry is the run-scoped set of every slug known to be taken: seeded
// from the store at run start, extended as the generator hands out new
// slugs. Reserve is the single serialization point when documents are
// imported concurrently.
type Registry struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewRegistry creates a registry pre-populated with the given slugs.
func NewRegistry(seed []string) *Registry {
	taken := make(map[string]struct{}, len(seed))
	for _, s := range seed {
		taken[s] = struct{}{}
	}
	return &Registry{taken: taken}
}

// Reserve atomically checks and claims a slug. It returns false when the
// slug was already taken, in which case nothing changes.
func (r *Registry) Reserve(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.taken[slug]; exists {
		return false
	}
	r.taken[slug] = struct{}{}
	return true
}

// Has reports whether a slug is taken.
func (r *Registry) Has(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.taken[slug]
	return exists
}

// Len returns the number of reserved slugs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.taken)
}
