package agent

import (
	"fmt"
	"sync"
)

// Registry holds named worker implementations behind the uniform execute
// contract. It performs no retries or scheduling itself; that is the
// orchestrator's job. Registration order is preserved and authoritative for
// Phase 2 sequencing.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]Worker
	order   []string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]Worker)}
}

// Register adds a worker. Registering the same name twice is programmer
// error and panics.
func (r *Registry) Register(w Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := w.Name()
	if _, exists := r.workers[name]; exists {
		panic(fmt.Sprintf("agent: worker %q registered twice", name))
	}
	r.workers[name] = w
	r.order = append(r.order, name)
}

// Get returns the named worker, reporting absence via the second value.
func (r *Registry) Get(name string) (Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[name]
	return w, ok
}

// Names returns worker names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Workers returns workers in registration order.
func (r *Registry) Workers() []Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	workers := make([]Worker, 0, len(r.order))
	for _, name := range r.order {
		workers = append(workers, r.workers[name])
	}
	return workers
}
