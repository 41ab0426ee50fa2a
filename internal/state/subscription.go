package state

import (
	"sync"
	"sync/atomic"
)

// Subscription is a registered state observer.
type Subscription[S comparable] struct {
	fn     func(S)
	cancel func(*Subscription[S])

	active atomic.Bool

	// mu serialises deliveries so each observer sees states in order
	mu        sync.Mutex
	last      S
	delivered bool
}

// Unsubscribe stops notifications. It is idempotent and may be called from
// inside the subscription's own callback. No notification starts after it
// returns.
func (s *Subscription[S]) Unsubscribe() {
	if s.active.CompareAndSwap(true, false) {
		s.cancel(s)
	}
}

// Active reports whether the subscription still receives notifications.
func (s *Subscription[S]) Active() bool {
	return s.active.Load()
}

// deliver hands state to the observer unless it equals the previous delivery.
func (s *Subscription[S]) deliver(state S) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active.Load() {
		return
	}
	if s.delivered && s.last == state {
		return
	}
	s.last = state
	s.delivered = true
	s.fn(state)
}

// Select subscribes to a projection of the state. fn is only called when the
// projected value changes.
func Select[S comparable, A any, T comparable](store *Store[S, A], project func(S) T, fn func(T)) *Subscription[S] {
	return SelectFunc(store, project, func(a, b T) bool { return a == b }, fn)
}

// SelectFunc is Select with a custom equality for projections that are not
// comparable with ==, such as slices.
func SelectFunc[S comparable, A any, T any](store *Store[S, A], project func(S) T, equal func(a, b T) bool, fn func(T)) *Subscription[S] {
	var (
		last T
		seen bool
	)
	// Deliveries to one subscription never overlap, so last needs no lock
	return store.Subscribe(func(state S) {
		value := project(state)
		if seen && equal(last, value) {
			return
		}
		last, seen = value, true
		fn(value)
	})
}
