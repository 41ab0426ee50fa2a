package session

import "sync"

// SelectionAwareObserver forwards the events of one session to an Observer.
// In selection mode it follows whichever session the Manager selects.
type SelectionAwareObserver struct {
	BaseManagerObserver

	manager  *Manager
	observer Observer

	mu        sync.Mutex
	active    *Session
	following bool
}

// NewSelectionAwareObserver creates an observer feeding o.
func NewSelectionAwareObserver(manager *Manager, o Observer) *SelectionAwareObserver {
	return &SelectionAwareObserver{manager: manager, observer: o}
}

// ObserveSelected starts observing the selected session and follows later
// selection changes.
func (a *SelectionAwareObserver) ObserveSelected() {
	a.mu.Lock()
	a.following = true
	a.mu.Unlock()

	a.manager.Register(a)
	if s, err := a.manager.SelectedSession(); err == nil {
		a.observe(s)
	}
}

// ObserveFixed observes s only, ignoring selection changes.
func (a *SelectionAwareObserver) ObserveFixed(s *Session) {
	a.mu.Lock()
	a.following = false
	a.mu.Unlock()

	a.manager.Register(a)
	a.observe(s)
}

// Stop stops observing.
func (a *SelectionAwareObserver) Stop() {
	a.manager.Unregister(a)
	a.observe(nil)
}

// Active returns the session being observed, or nil.
func (a *SelectionAwareObserver) Active() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *SelectionAwareObserver) OnSessionSelected(s *Session) {
	a.mu.Lock()
	following := a.following
	a.mu.Unlock()

	if following {
		a.observe(s)
	}
}

func (a *SelectionAwareObserver) OnSessionRemoved(s *Session) {
	a.mu.Lock()
	removed := a.active == s
	a.mu.Unlock()

	if removed {
		a.observe(nil)
	}
}

func (a *SelectionAwareObserver) OnAllSessionsRemoved() {
	a.observe(nil)
}

// observe switches the observed session.
func (a *SelectionAwareObserver) observe(s *Session) {
	a.mu.Lock()
	previous := a.active
	a.active = s
	a.mu.Unlock()

	if previous == s {
		return
	}
	if previous != nil {
		previous.Unregister(a.observer)
	}
	if s != nil {
		s.Register(a.observer)
	}
}
