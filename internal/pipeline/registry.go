package pipeline

import "sync"

// Registry is the set of track ids that already produced a crossing. It only grows.
type Registry struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[int64]struct{})}
}

// Register adds id and reports whether it was not yet present. The check and the
// insert happen under one lock, so each id is accepted exactly once.
func (r *Registry) Register(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.ids[id]; seen {
		return false
	}
	r.ids[id] = struct{}{}
	return true
}

func (r *Registry) Contains(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[id]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
