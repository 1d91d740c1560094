// Package job runs background work that publishes results to an owner it
// does not keep alive.
//
// A job holds only a weak pointer to its Results. When the owner drops
// the last strong reference, the next publish fails and the worker
// returns. There is no other cancellation.
package job

import (
	"sync"
	"weak"
)

// Results collects items published by a job.
type Results[T any] struct {
	mu    sync.Mutex
	items []T
	total int
	done  bool
}

// NewResults creates an empty result set.
func NewResults[T any]() *Results[T] {
	return &Results[T]{}
}

// Take removes and returns the items published since the last Take.
func (r *Results[T]) Take() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}

// Total returns the number of items ever published.
func (r *Results[T]) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Done returns true once the job returned.
func (r *Results[T]) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Results[T]) add(items []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
	r.total += len(items)
}

func (r *Results[T]) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
}

// Start runs work on a new goroutine. publish appends items to owner and
// returns false once owner has been collected; work should return then.
func Start[T any](owner *Results[T], work func(publish func([]T) bool)) {
	wp := weak.Make(owner)
	go func() {
		work(func(items []T) bool {
			r := wp.Value()
			if r == nil {
				return false
			}
			r.add(items)
			return true
		})
		if r := wp.Value(); r != nil {
			r.finish()
		}
	}()
}
