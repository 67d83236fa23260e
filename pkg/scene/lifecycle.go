package scene

import (
	"sync"

	"github.com/binpack3d/packview/pkg/observability"
)

// Handle identifies one generation of tracked resources.
// The zero Handle is never issued and disposes as a no-op.
type Handle uint64

// Lifecycle owns every renderable resource created for a scene generation.
// It guarantees that all resources belonging to a generation are released
// exactly once: when the generation is superseded, or at shutdown via
// [Lifecycle.DisposeAll].
//
// Lifecycle is safe for concurrent use; the render loop may query counts
// while an event handler rebuilds the scene.
type Lifecycle struct {
	mu          sync.Mutex
	nextHandle  Handle
	generations map[Handle][]Resource
}

// NewLifecycle creates an empty lifecycle manager.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{generations: make(map[Handle][]Resource)}
}

// BeginGeneration starts tracking a new resource set and returns its handle.
// The previous generation, if any, keeps its resources until it is disposed.
func (lm *Lifecycle) BeginGeneration() Handle {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.nextHandle++
	h := lm.nextHandle
	lm.generations[h] = nil
	return h
}

// Track registers a resource as belonging to generation h.
// Tracking against a disposed or unknown handle disposes the resource
// immediately so it cannot leak.
func (lm *Lifecycle) Track(h Handle, r Resource) {
	if r == nil {
		return
	}
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, live := lm.generations[h]; !live {
		r.Dispose()
		return
	}
	lm.generations[h] = append(lm.generations[h], r)
}

// Count returns the number of resources still tracked under h.
// Disposed generations count zero.
func (lm *Lifecycle) Count(h Handle) int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.generations[h])
}

// Live returns the number of generations that have not been disposed.
func (lm *Lifecycle) Live() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.generations)
}

// DisposeGeneration releases every resource tracked under h and stops
// tracking the generation. Idempotent: disposing an already-disposed or
// never-populated generation is a no-op, never an error.
func (lm *Lifecycle) DisposeGeneration(h Handle) {
	lm.mu.Lock()
	resources := lm.generations[h]
	delete(lm.generations, h)
	lm.mu.Unlock()

	for _, r := range resources {
		r.Dispose()
	}
	if len(resources) > 0 {
		observability.Scene().OnDispose(len(resources))
	}
}

// DisposeAll releases every still-live generation. Called at shutdown,
// after the render loop has stopped.
func (lm *Lifecycle) DisposeAll() {
	lm.mu.Lock()
	all := lm.generations
	lm.generations = make(map[Handle][]Resource)
	lm.mu.Unlock()

	for _, resources := range all {
		for _, r := range resources {
			r.Dispose()
		}
		if len(resources) > 0 {
			observability.Scene().OnDispose(len(resources))
		}
	}
}
