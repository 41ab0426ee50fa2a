// Package session provides the mutable session model: Session, the
// per-session EngineSessionHolder and the Manager that owns the session list,
// the selection and the binding of sessions to engine sessions.
//
// Binding Protocol:
//
// Linking a session to an engine session first unlinks any previous binding,
// then stores the engine session together with a fresh EngineObserver,
// registers the observer and loads the session URL. Unlinking unregisters the
// observer, closes the engine session and clears both holder fields. The
// Manager is the only component that closes engine sessions.
//
// Concurrency:
//
// All Manager methods are safe for concurrent use. Bookkeeping happens under
// one lock; engine I/O (LoadURL, Close) happens outside of it, serialised
// per session. Observers are notified outside the lock in the order the
// mutations happened, so an observer may call back into the Manager.
//
// Example Usage:
//
//	manager := session.NewManager(eng, logger, metrics)
//
//	s := session.New("https://example.com")
//	if err := manager.Add(s, session.AddOptions{Selected: true}); err != nil {
//	    return err
//	}
//	if _, err := manager.GetOrCreateEngineSession(s); err != nil {
//	    return err
//	}
package session
