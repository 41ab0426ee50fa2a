package engine

import "errors"

var (
	ErrSessionClosed = errors.New("engine session is closed")
	ErrUnsupported   = errors.New("operation not supported by engine")
)

// Engine creates engine sessions.
type Engine interface {
	// CreateSession creates a new engine session. Private sessions must not
	// share state with normal ones.
	CreateSession(private bool) (Session, error)

	// Name identifies the engine. It only contains characters valid in
	// file names.
	Name() string

	// Settings returns the engine settings.
	Settings() *Settings
}

// Session is a live page context.
type Session interface {
	Register(observer Observer)
	Unregister(observer Observer)

	// LoadURL starts loading url. Progress is reported to observers.
	LoadURL(url string) error

	// Close releases the session. Observers get no further callbacks.
	Close() error
}

// Navigator is implemented by sessions that keep a history.
type Navigator interface {
	GoBack() error
	GoForward() error
	Reload() error
}

// Finder is implemented by sessions that support find in page.
type Finder interface {
	FindAll(text string) error
	FindNext(forward bool) error
	ClearMatches() error
}

// ExternalResource is a response the engine will not render, typically a
// download.
type ExternalResource struct {
	URL           string
	FileName      string
	ContentType   string
	ContentLength int64
}

// WindowRequest is a page asking to open or close a window.
type WindowRequest interface {
	URL() string

	// Prepare returns the engine session the new window renders into.
	Prepare() (Session, error)

	// Start begins loading once the window has been set up.
	Start()
}

// WebExtension is the engine's view of an installed extension.
type WebExtension struct {
	ID  string
	URL string
}

// WebExtensionsTabsDelegate handles tabs opened by web extensions.
type WebExtensionsTabsDelegate interface {
	OnNewTab(extension *WebExtension, url string, session Session)
}
