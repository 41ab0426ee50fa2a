package session

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/browserkit/internal/observer"
)

// NoSelection is the selected index of a manager without a selected session.
const NoSelection = -1

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already added")
	ErrNoSelection     = errors.New("no selected session")
)

// AddOptions controls Manager.Add.
type AddOptions struct {
	// Selected selects the session after adding it. The first session is
	// always selected.
	Selected bool

	// EngineSession is linked to the session before it is announced.
	EngineSession engine.Session

	// Parent is the session that opened this one. The new session is
	// inserted right after it.
	Parent *Session
}

// RemoveOptions controls Manager.Remove.
type RemoveOptions struct {
	// SelectParentIfExists selects the parent of a removed selected session
	// instead of its neighbour, if the parent is still present.
	SelectParentIfExists bool
}

type event func(ManagerObserver)

// Manager owns the ordered session list, the selection and the binding of
// sessions to engine sessions.
type Manager struct {
	engine    engine.Engine
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	observers observer.Registry[ManagerObserver]

	mu            sync.RWMutex
	sessions      []*Session
	selectedIndex int

	// Events queued under mu, delivered in order by one goroutine at a time
	pending    []event
	delivering bool
}

// NewManager creates an empty manager creating engine sessions with eng.
func NewManager(eng engine.Engine, logger *logging.Logger, metrics *monitoring.Metrics) *Manager {
	return &Manager{
		engine:        eng,
		logger:        logging.OrNop(logger).Named("sessions"),
		metrics:       metrics,
		selectedIndex: NoSelection,
	}
}

// Register adds a manager observer.
func (m *Manager) Register(o ManagerObserver) { m.observers.Register(o) }

// Unregister removes a manager observer.
func (m *Manager) Unregister(o ManagerObserver) { m.observers.Unregister(o) }

// Engine returns the engine used for new engine sessions.
func (m *Manager) Engine() engine.Engine { return m.engine }

// Size returns the number of sessions.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns the sessions in order.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Session(nil), m.sessions...)
}

// SessionsOfType returns the normal or private sessions in order.
func (m *Manager) SessionsOfType(private bool) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.Private() == private {
			out = append(out, s)
		}
	}
	return out
}

// SelectedIndex returns the index of the selected session or NoSelection.
func (m *Manager) SelectedIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectedIndex
}

// SelectedSession returns the selected session or ErrNoSelection.
func (m *Manager) SelectedSession() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.selectedIndex == NoSelection {
		return nil, ErrNoSelection
	}
	return m.sessions[m.selectedIndex], nil
}

// FindSessionByID returns the session with the given id.
func (m *Manager) FindSessionByID(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		if s.ID() == sessionID {
			return s, true
		}
	}
	return nil, false
}

// Contains reports whether s has been added.
func (m *Manager) Contains(s *Session) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(s) >= 0
}

// Add appends s. With an engine session the two are linked before
// OnSessionAdded fires. OnSessionAdded fires before the OnSessionSelected
// it causes.
//
// Add owns opts.EngineSession: if s cannot be added the engine session is
// closed, whether or not it was linked. Callers never close it themselves.
func (m *Manager) Add(s *Session, opts AddOptions) error {
	// linkMu is held from the membership check to the insertion so that
	// concurrent adds of s cannot both link it.
	s.linkMu.Lock()
	if m.Contains(s) {
		s.linkMu.Unlock()
		m.discard(s, opts.EngineSession)
		return fmt.Errorf("%w: %s", ErrSessionExists, s.ID())
	}

	if opts.EngineSession != nil {
		if err := m.linkLocked(s, opts.EngineSession); err != nil {
			s.linkMu.Unlock()
			return err
		}
	}

	m.mu.Lock()
	index := len(m.sessions)
	if opts.Parent != nil {
		if parentIndex := m.indexOf(opts.Parent); parentIndex >= 0 {
			s.setParentID(opts.Parent.ID())
			index = parentIndex + 1
		}
	}
	m.sessions = insertAt(m.sessions, index, s)
	if m.selectedIndex != NoSelection && index <= m.selectedIndex {
		m.selectedIndex++
	}
	m.queue(func(o ManagerObserver) { o.OnSessionAdded(s) })

	selected := opts.Selected || m.selectedIndex == NoSelection
	if selected {
		m.selectedIndex = index
		m.queue(func(o ManagerObserver) { o.OnSessionSelected(s) })
	}
	size := len(m.sessions)
	m.mu.Unlock()
	s.linkMu.Unlock()

	m.metrics.IncSessionsAdded()
	m.metrics.SetSessionsActive(size)
	if selected {
		m.metrics.IncSelectionChanges()
	}
	m.logger.Debug("Session added",
		zap.String("session", s.ID()),
		zap.Int("index", index),
		zap.Bool("selected", selected),
	)

	m.deliver()
	return nil
}

// discard closes an engine session that was never linked.
func (m *Manager) discard(s *Session, engineSession engine.Session) {
	if engineSession == nil {
		return
	}
	if err := engineSession.Close(); err != nil {
		m.metrics.RecordEngineFailure("close")
		m.logger.Warn("Failed to close rejected engine session", zap.String("session", s.ID()), zap.Error(err))
	}
}

// Remove removes s and unlinks it. If the selection moves to another
// session OnSessionSelected fires for it; a selection that collapses to
// NoSelection fires nothing.
func (m *Manager) Remove(s *Session, opts RemoveOptions) error {
	m.mu.Lock()
	index := m.indexOf(s)
	if index < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID())
	}

	wasSelected := index == m.selectedIndex
	m.sessions = removeAt(m.sessions, index)
	m.queue(func(o ManagerObserver) { o.OnSessionRemoved(s) })

	next := nextSelectedIndex(index, m.selectedIndex, len(m.sessions))
	if wasSelected && opts.SelectParentIfExists && s.ParentID() != "" {
		if parentIndex := m.indexOfID(s.ParentID()); parentIndex >= 0 {
			next = parentIndex
		}
	}

	changed := next != m.selectedIndex
	if changed {
		m.selectedIndex = next
		if next != NoSelection {
			selected := m.sessions[next]
			m.queue(func(o ManagerObserver) { o.OnSessionSelected(selected) })
		}
	}
	size := len(m.sessions)
	m.mu.Unlock()

	m.Unlink(s)

	m.metrics.AddSessionsRemoved(1)
	m.metrics.SetSessionsActive(size)
	if changed && next != NoSelection {
		m.metrics.IncSelectionChanges()
	}
	m.logger.Debug("Session removed", zap.String("session", s.ID()), zap.Int("selected_index", next))

	m.deliver()
	return nil
}

// RemoveSelected removes the selected session.
func (m *Manager) RemoveSelected(opts RemoveOptions) error {
	s, err := m.SelectedSession()
	if err != nil {
		return err
	}
	return m.Remove(s, opts)
}

// RemoveAll unlinks and removes every session. Observers get a single
// OnAllSessionsRemoved instead of per-session callbacks.
func (m *Manager) RemoveAll() {
	m.mu.Lock()
	removed := m.sessions
	m.sessions = nil
	m.selectedIndex = NoSelection
	m.queue(func(o ManagerObserver) { o.OnAllSessionsRemoved() })
	m.mu.Unlock()

	for _, s := range removed {
		m.Unlink(s)
	}

	m.metrics.AddSessionsRemoved(len(removed))
	m.metrics.SetSessionsActive(0)
	m.logger.Debug("All sessions removed", zap.Int("count", len(removed)))

	m.deliver()
}

// Select selects s.
func (m *Manager) Select(s *Session) error {
	m.mu.Lock()
	index := m.indexOf(s)
	if index < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID())
	}
	m.selectedIndex = index
	m.queue(func(o ManagerObserver) { o.OnSessionSelected(s) })
	m.mu.Unlock()

	m.metrics.IncSelectionChanges()
	m.deliver()
	return nil
}

// EngineSession returns the engine session bound to s, or nil.
func (m *Manager) EngineSession(s *Session) engine.Session {
	return s.holder.EngineSession()
}

// GetOrCreateEngineSession returns the engine session bound to s, creating
// and linking one if there is none. It is the only place engine sessions
// are created lazily.
func (m *Manager) GetOrCreateEngineSession(s *Session) (engine.Session, error) {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	// Remove drops s before it takes linkMu to unlink, so a session still
	// present here is unlinked by any later Remove.
	if !m.Contains(s) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID())
	}
	if existing := s.holder.EngineSession(); existing != nil {
		return existing, nil
	}

	engineSession, err := m.engine.CreateSession(s.Private())
	if err != nil {
		m.metrics.RecordEngineFailure("create")
		return nil, fmt.Errorf("failed to create engine session for %s: %w", s.ID(), err)
	}
	if err := m.linkLocked(s, engineSession); err != nil {
		return nil, err
	}
	return engineSession, nil
}

// GetOrCreateSelectedEngineSession is GetOrCreateEngineSession for the
// selected session.
func (m *Manager) GetOrCreateSelectedEngineSession() (engine.Session, error) {
	s, err := m.SelectedSession()
	if err != nil {
		return nil, err
	}
	return m.GetOrCreateEngineSession(s)
}

// Unlink releases the engine session bound to s. It is a no-op for unbound
// sessions.
func (m *Manager) Unlink(s *Session) {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	m.unlinkLocked(s)
}

// link binds engineSession to s, replacing any previous binding.
func (m *Manager) link(s *Session, engineSession engine.Session) error {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	return m.linkLocked(s, engineSession)
}

func (m *Manager) linkLocked(s *Session, engineSession engine.Session) error {
	m.unlinkLocked(s)

	engineObserver := NewEngineObserver(s)
	s.holder.set(engineSession, engineObserver)
	engineSession.Register(engineObserver)

	if err := engineSession.LoadURL(s.URL()); err != nil {
		m.metrics.RecordEngineFailure("load")
		m.unlinkLocked(s)
		return fmt.Errorf("failed to load %s: %w", s.URL(), err)
	}

	m.metrics.IncEngineLinks()
	return nil
}

func (m *Manager) unlinkLocked(s *Session) {
	engineSession, engineObserver := s.holder.clear()
	if engineObserver == nil {
		return
	}

	engineSession.Unregister(engineObserver)
	if err := engineSession.Close(); err != nil {
		m.metrics.RecordEngineFailure("close")
		m.logger.Warn("Failed to close engine session", zap.String("session", s.ID()), zap.Error(err))
	}
	m.metrics.IncEngineUnlinks()
}

// queue records an event. Callers hold mu.
func (m *Manager) queue(e event) {
	m.pending = append(m.pending, e)
}

// deliver notifies observers of queued events. If another goroutine is
// already delivering it picks up these events too, which keeps
// notifications in mutation order.
func (m *Manager) deliver() {
	m.mu.Lock()
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true

	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		m.mu.Unlock()

		for _, e := range batch {
			m.notify(e)
		}

		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
}

func (m *Manager) notify(e event) {
	m.observers.Notify(func(o ManagerObserver) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("Session observer panicked", zap.Any("panic", r))
			}
		}()
		e(o)
	})
}

func (m *Manager) indexOf(s *Session) int {
	for i, existing := range m.sessions {
		if existing == s {
			return i
		}
	}
	return -1
}

func (m *Manager) indexOfID(sessionID string) int {
	for i, existing := range m.sessions {
		if existing.ID() == sessionID {
			return i
		}
	}
	return -1
}

// nextSelectedIndex recomputes the selection after removing index from a
// list that now has size elements.
func nextSelectedIndex(removed, selected, size int) int {
	switch {
	case size == 0:
		return NoSelection
	case removed < selected:
		return selected - 1
	case selected == size:
		return selected - 1
	default:
		return selected
	}
}

func insertAt(sessions []*Session, index int, s *Session) []*Session {
	out := make([]*Session, 0, len(sessions)+1)
	out = append(out, sessions[:index]...)
	out = append(out, s)
	return append(out, sessions[index:]...)
}

func removeAt(sessions []*Session, index int) []*Session {
	out := make([]*Session, 0, len(sessions)-1)
	out = append(out, sessions[:index]...)
	return append(out, sessions[index+1:]...)
}
