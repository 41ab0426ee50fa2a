// Package enginetest provides an in-memory engine for tests.
package enginetest

import (
	"errors"
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/observer"
)

// Engine is a fake engine. Every created session is kept for inspection.
type Engine struct {
	mu        sync.Mutex
	sessions  []*Session
	createErr error
	loadErr   error
	settings  *engine.Settings
}

// NewEngine creates a fake engine.
func NewEngine() *Engine {
	return &Engine{settings: engine.DefaultSettings()}
}

// FailCreate makes the next CreateSession calls fail with err. A nil err
// restores normal behavior.
func (e *Engine) FailCreate(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.createErr = err
}

// FailLoad makes LoadURL fail on sessions created afterwards.
func (e *Engine) FailLoad(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadErr = err
}

func (e *Engine) CreateSession(private bool) (engine.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.createErr != nil {
		return nil, e.createErr
	}
	s := NewSession(private)
	s.loadErr = e.loadErr
	e.sessions = append(e.sessions, s)
	return s, nil
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) Settings() *engine.Settings { return e.settings }

// Sessions returns the sessions created so far.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Session(nil), e.sessions...)
}

// Session is a fake engine session that records calls.
type Session struct {
	Private bool

	observers observer.Registry[engine.Observer]

	mu      sync.Mutex
	loaded  []string
	closes  int
	loadErr error
	finds   []string
}

// NewSession creates a standalone fake session.
func NewSession(private bool) *Session {
	return &Session{Private: private}
}

func (s *Session) Register(o engine.Observer)   { s.observers.Register(o) }
func (s *Session) Unregister(o engine.Observer) { s.observers.Unregister(o) }

func (s *Session) LoadURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closes > 0 {
		return engine.ErrSessionClosed
	}
	s.loaded = append(s.loaded, url)
	return s.loadErr
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	if s.closes > 1 {
		return errors.New("closed twice")
	}
	return nil
}

func (s *Session) FindAll(text string) error {
	s.mu.Lock()
	s.finds = append(s.finds, text)
	s.mu.Unlock()

	s.Notify(func(o engine.Observer) { o.OnFindResult(0, 1, true) })
	return nil
}

func (s *Session) FindNext(bool) error { return nil }

func (s *Session) ClearMatches() error { return nil }

// FailLoadWith makes LoadURL return err.
func (s *Session) FailLoadWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// Loaded returns the URLs passed to LoadURL.
func (s *Session) Loaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loaded...)
}

// Closes returns how often Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Finds returns the texts passed to FindAll.
func (s *Session) Finds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.finds...)
}

// Observers returns how many observers are registered.
func (s *Session) Observers() int {
	return s.observers.Len()
}

// Notify emits an event to the registered observers.
func (s *Session) Notify(fn func(engine.Observer)) {
	s.observers.Notify(fn)
}

// WindowRequest is a fake window request.
type WindowRequest struct {
	Target  string
	Session engine.Session
	Err     error

	mu      sync.Mutex
	started bool
}

func (r *WindowRequest) URL() string { return r.Target }

func (r *WindowRequest) Prepare() (engine.Session, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Session == nil {
		r.Session = NewSession(false)
	}
	return r.Session, nil
}

func (r *WindowRequest) Start() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}

// Started reports whether Start was called.
func (r *WindowRequest) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.Session       = (*Session)(nil)
	_ engine.Finder        = (*Session)(nil)
	_ engine.WindowRequest = (*WindowRequest)(nil)
)
