// Package observer provides the register/unregister/notify primitive shared
// by the session registry, individual sessions and engine sessions.
package observer

import "sync"

// Registry holds a set of observers of type T.
//
// Observers are compared by identity, so T should be an interface or
// pointer type. The zero value is ready to use.
type Registry[T comparable] struct {
	mu        sync.Mutex
	observers []T
}

// Register adds an observer. Registering the same observer twice is a no-op.
func (r *Registry[T]) Register(o T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.observers {
		if existing == o {
			return
		}
	}
	r.observers = append(r.observers, o)
}

// Unregister removes an observer. Unknown observers are ignored.
func (r *Registry[T]) Unregister(o T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.observers {
		if existing == o {
			// Copy-on-write: in-flight Notify calls keep iterating their own slice
			next := make([]T, 0, len(r.observers)-1)
			next = append(next, r.observers[:i]...)
			r.observers = append(next, r.observers[i+1:]...)
			return
		}
	}
}

// UnregisterAll removes every observer.
func (r *Registry[T]) UnregisterAll() {
	r.mu.Lock()
	r.observers = nil
	r.mu.Unlock()
}

// IsObserved reports whether at least one observer is registered.
func (r *Registry[T]) IsObserved() bool {
	return r.Len() > 0
}

// Len returns the number of registered observers.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.observers)
}

// Notify invokes fn once per observer registered when Notify was called.
// The lock is not held while fn runs, so observers may register or
// unregister (themselves included) from inside the callback.
func (r *Registry[T]) Notify(fn func(T)) {
	r.mu.Lock()
	snapshot := r.observers
	r.mu.Unlock()

	for _, o := range snapshot {
		fn(o)
	}
}
