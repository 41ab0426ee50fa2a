package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

var (
	ErrStoreClosed  = errors.New("store is closed")
	ErrReducerPanic = errors.New("reducer panicked")
)

// Reducer computes the next state. It must not block or perform I/O.
type Reducer[S any, A any] func(S, A) (S, error)

// ErrorHandler observes actions a reducer or middleware rejected.
type ErrorHandler[A any] func(action A, err error)

// Dispatcher is the part of a store that middleware and features need.
type Dispatcher[S any, A any] interface {
	State() S
	Dispatch(action A) *Completion
}

// Middleware wraps reduction. Calling next reduces the action (and runs the
// rest of the chain); not calling it drops the action. Middleware runs on
// the store goroutine and must not block; slow work belongs in a goroutine
// that dispatches a follow-up action.
type Middleware[S any, A any] func(ctx Dispatcher[S, A], next func(A) error, action A) error

// Option configures a Store.
type Option[S comparable, A any] func(*Store[S, A])

// WithLogger sets the store logger.
func WithLogger[S comparable, A any](logger *logging.Logger) Option[S, A] {
	return func(s *Store[S, A]) {
		s.logger = logging.OrNop(logger)
	}
}

// WithMetrics records reductions in metrics.
func WithMetrics[S comparable, A any](metrics *monitoring.Metrics) Option[S, A] {
	return func(s *Store[S, A]) {
		s.metrics = metrics
	}
}

// WithMiddleware appends middleware; the first one added runs first.
func WithMiddleware[S comparable, A any](middleware ...Middleware[S, A]) Option[S, A] {
	return func(s *Store[S, A]) {
		s.middleware = append(s.middleware, middleware...)
	}
}

// WithErrorHandler is called for every rejected action, in addition to the
// error being reported on the action's Completion.
func WithErrorHandler[S comparable, A any](handler ErrorHandler[A]) Option[S, A] {
	return func(s *Store[S, A]) {
		s.onError = handler
	}
}

// WithActionName names actions in logs and metrics.
func WithActionName[S comparable, A any](name func(A) string) Option[S, A] {
	return func(s *Store[S, A]) {
		s.actionName = name
	}
}

type job[A any] struct {
	action     A
	barrier    bool
	completion *Completion
}

// Store holds state of type S and reduces actions of type A.
type Store[S comparable, A any] struct {
	reducer    Reducer[S, A]
	middleware []Middleware[S, A]
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	onError    ErrorHandler[A]
	actionName func(A) string

	mu    sync.RWMutex
	state S

	subsMu sync.Mutex
	subs   []*Subscription[S] // Copy-on-write

	queueMu sync.Mutex
	queue   []job[A]
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewStore creates a store and starts its reducer goroutine.
func NewStore[S comparable, A any](initial S, reducer Reducer[S, A], opts ...Option[S, A]) *Store[S, A] {
	s := &Store[S, A]{
		reducer: reducer,
		logger:  logging.NewNop(),
		state:   initial,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		actionName: func(a A) string {
			return fmt.Sprintf("%T", a)
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Dispatch queues an action. It never blocks; actions are reduced in the
// order Dispatch was called.
func (s *Store[S, A]) Dispatch(action A) *Completion {
	return s.enqueue(job[A]{action: action})
}

// Flush resolves once every action dispatched before it has been processed.
func (s *Store[S, A]) Flush() *Completion {
	return s.enqueue(job[A]{barrier: true})
}

func (s *Store[S, A]) enqueue(j job[A]) *Completion {
	j.completion = newCompletion()

	s.queueMu.Lock()
	if s.closed {
		s.queueMu.Unlock()
		return failedCompletion(ErrStoreClosed)
	}
	s.queue = append(s.queue, j)
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return j.completion
}

// Subscribe registers fn. fn receives the current state before Subscribe
// returns and afterwards every new state that differs from the last one it
// received.
func (s *Store[S, A]) Subscribe(fn func(S)) *Subscription[S] {
	sub := &Subscription[S]{fn: fn, cancel: s.unsubscribe}
	sub.active.Store(true)

	// Hold the delivery lock so a concurrent reduction cannot overtake the catch-up
	sub.mu.Lock()
	defer sub.mu.Unlock()

	s.subsMu.Lock()
	next := make([]*Subscription[S], 0, len(s.subs)+1)
	next = append(next, s.subs...)
	s.subs = append(next, sub)
	s.subsMu.Unlock()
	s.metrics.AddSubscriptions(1)

	current := s.State()
	sub.last = current
	sub.delivered = true
	fn(current)

	return sub
}

func (s *Store[S, A]) unsubscribe(sub *Subscription[S]) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for i, existing := range s.subs {
		if existing == sub {
			next := make([]*Subscription[S], 0, len(s.subs)-1)
			next = append(next, s.subs[:i]...)
			s.subs = append(next, s.subs[i+1:]...)
			s.metrics.AddSubscriptions(-1)
			return
		}
	}
}

// Close stops the reducer goroutine. Actions still queued resolve with
// ErrStoreClosed. Close must not be called from a subscriber or middleware.
func (s *Store[S, A]) Close() {
	s.queueMu.Lock()
	if s.closed {
		s.queueMu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	pending := s.queue
	s.queue = nil
	s.queueMu.Unlock()

	for _, j := range pending {
		j.completion.resolve(ErrStoreClosed)
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.done
}

func (s *Store[S, A]) run() {
	defer close(s.done)

	for range s.wake {
		for {
			s.queueMu.Lock()
			if s.closed {
				s.queueMu.Unlock()
				return
			}
			if len(s.queue) == 0 {
				s.queueMu.Unlock()
				break
			}
			j := s.queue[0]
			s.queue = s.queue[1:]
			s.queueMu.Unlock()

			s.process(j)
		}
	}
}

func (s *Store[S, A]) process(j job[A]) {
	if j.barrier {
		j.completion.resolve(nil)
		return
	}

	start := time.Now()
	err := s.chain(0)(j.action)
	name := s.actionName(j.action)
	s.metrics.RecordAction(name, time.Since(start), err)

	if err != nil {
		s.logger.Error("Action rejected",
			zap.String("action", name),
			zap.Error(err),
		)
		if s.onError != nil {
			s.onError(j.action, err)
		}
	}
	j.completion.resolve(err)
}

// chain returns the function that runs middleware i onwards, ending in reduce.
func (s *Store[S, A]) chain(i int) func(A) error {
	if i >= len(s.middleware) {
		return s.reduce
	}
	return func(action A) error {
		return s.middleware[i](s, s.chain(i+1), action)
	}
}

func (s *Store[S, A]) reduce(action A) error {
	current := s.State()

	next, err := s.safeReduce(current, action)
	if err != nil {
		return err
	}
	if next == current {
		return nil
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.subsMu.Lock()
	subs := s.subs
	s.subsMu.Unlock()

	for _, sub := range subs {
		s.notify(sub, next)
	}
	return nil
}

func (s *Store[S, A]) safeReduce(current S, action A) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = current
			err = fmt.Errorf("%w: %v", ErrReducerPanic, r)
		}
	}()
	return s.reducer(current, action)
}

func (s *Store[S, A]) notify(sub *Subscription[S], state S) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Subscriber panicked", zap.Any("panic", r))
		}
	}()
	sub.deliver(state)
}
