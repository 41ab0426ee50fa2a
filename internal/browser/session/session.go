package session

import (
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/observer"
	"github.com/GriffinCanCode/browserkit/internal/shared/id"
)

// SecurityInfo describes the connection of the loaded page.
type SecurityInfo struct {
	Secure bool   `json:"secure"`
	Host   string `json:"host"`
	Issuer string `json:"issuer"`
}

// FindResult is one find-in-page update.
type FindResult struct {
	ActiveMatchOrdinal int  `json:"active_match_ordinal"`
	NumberOfMatches    int  `json:"number_of_matches"`
	IsDoneCounting     bool `json:"is_done_counting"`
}

// Download is a resource the engine handed back instead of rendering.
type Download struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	FileName      string `json:"file_name"`
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

// Session is one logical browser tab. Identity, private mode and parent are
// fixed once the session has been added to a Manager; everything else can
// change and is reported to the session's observers.
type Session struct {
	id      string
	private bool

	observers observer.Registry[Observer]
	holder    EngineSessionHolder

	// linkMu serialises link and unlink of this session
	linkMu sync.Mutex

	mu           sync.RWMutex
	parentID     string
	url          string
	title        string
	progress     int
	loading      bool
	canGoBack    bool
	canGoForward bool
	searchTerms  string
	security     SecurityInfo
	findResults  []FindResult
	download     *Download
}

// Option configures a new Session.
type Option func(*Session)

// WithPrivate creates a private session.
func WithPrivate(private bool) Option {
	return func(s *Session) {
		s.private = private
	}
}

// WithID uses a known id, for sessions being restored.
func WithID(sessionID string) Option {
	return func(s *Session) {
		if sessionID != "" {
			s.id = sessionID
		}
	}
}

// WithParent records the session that opened this one.
func WithParent(parentID string) Option {
	return func(s *Session) {
		s.parentID = parentID
	}
}

// New creates a session for url.
func New(url string, opts ...Option) *Session {
	s := &Session{url: url}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = id.NewTabID()
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Private reports whether this is a private session.
func (s *Session) Private() bool { return s.private }

// ParentID returns the id of the session that opened this one, or "".
// Resolve it through the Manager; the parent may be gone.
func (s *Session) ParentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentID
}

func (s *Session) setParentID(parentID string) {
	s.mu.Lock()
	s.parentID = parentID
	s.mu.Unlock()
}

// Register adds a session observer.
func (s *Session) Register(o Observer) { s.observers.Register(o) }

// Unregister removes a session observer.
func (s *Session) Unregister(o Observer) { s.observers.Unregister(o) }

// Holder returns the engine session binding of this session.
func (s *Session) Holder() *EngineSessionHolder { return &s.holder }

// URL returns the current URL.
func (s *Session) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// SetURL changes the URL.
func (s *Session) SetURL(url string) {
	if set(s, &s.url, url) {
		s.observers.Notify(func(o Observer) { o.OnURLChanged(s, url) })
	}
}

// Title returns the page title.
func (s *Session) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SetTitle changes the page title.
func (s *Session) SetTitle(title string) {
	if set(s, &s.title, title) {
		s.observers.Notify(func(o Observer) { o.OnTitleChanged(s, title) })
	}
}

// Progress returns the load progress (0-100).
func (s *Session) Progress() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// SetProgress changes the load progress.
func (s *Session) SetProgress(progress int) {
	if set(s, &s.progress, progress) {
		s.observers.Notify(func(o Observer) { o.OnProgress(s, progress) })
	}
}

// Loading reports whether a page is loading.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading changes the loading flag.
func (s *Session) SetLoading(loading bool) {
	if set(s, &s.loading, loading) {
		s.observers.Notify(func(o Observer) { o.OnLoadingStateChanged(s, loading) })
	}
}

// CanGoBack reports whether there is history to go back to.
func (s *Session) CanGoBack() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canGoBack
}

// SetCanGoBack changes the back flag.
func (s *Session) SetCanGoBack(canGoBack bool) {
	if set(s, &s.canGoBack, canGoBack) {
		s.notifyNavigationState()
	}
}

// CanGoForward reports whether there is history to go forward to.
func (s *Session) CanGoForward() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canGoForward
}

// SetCanGoForward changes the forward flag.
func (s *Session) SetCanGoForward(canGoForward bool) {
	if set(s, &s.canGoForward, canGoForward) {
		s.notifyNavigationState()
	}
}

func (s *Session) notifyNavigationState() {
	back, forward := s.CanGoBack(), s.CanGoForward()
	s.observers.Notify(func(o Observer) { o.OnNavigationStateChanged(s, back, forward) })
}

// SearchTerms returns the terms the current page was loaded for.
func (s *Session) SearchTerms() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerms
}

// SetSearchTerms changes the search terms.
func (s *Session) SetSearchTerms(searchTerms string) {
	if set(s, &s.searchTerms, searchTerms) {
		s.observers.Notify(func(o Observer) { o.OnSearchTermsChanged(s, searchTerms) })
	}
}

// SecurityInfo returns the security info of the loaded page.
func (s *Session) SecurityInfo() SecurityInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.security
}

// SetSecurityInfo replaces the security info.
func (s *Session) SetSecurityInfo(info SecurityInfo) {
	if set(s, &s.security, info) {
		s.observers.Notify(func(o Observer) { o.OnSecurityChanged(s, info) })
	}
}

// FindResults returns the find-in-page results, oldest first.
func (s *Session) FindResults() []FindResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FindResult(nil), s.findResults...)
}

// AddFindResult appends a find-in-page result.
func (s *Session) AddFindResult(result FindResult) {
	s.mu.Lock()
	s.findResults = append(s.findResults, result)
	s.mu.Unlock()

	s.observers.Notify(func(o Observer) { o.OnFindResult(s, result) })
}

// ClearFindResults drops all find-in-page results.
func (s *Session) ClearFindResults() {
	s.mu.Lock()
	had := len(s.findResults) > 0
	s.findResults = nil
	s.mu.Unlock()

	if had {
		s.observers.Notify(func(o Observer) { o.OnFindResultsCleared(s) })
	}
}

// Download returns the last download requested in this session, or nil.
func (s *Session) Download() *Download {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.download
}

// SetDownload records a download request.
func (s *Session) SetDownload(download Download) {
	s.mu.Lock()
	s.download = &download
	s.mu.Unlock()

	s.observers.Notify(func(o Observer) { o.OnDownload(s, download) })
}

// RequestOpenWindow offers a window request to the observers. It reports
// whether one of them handled it; later observers are not asked.
func (s *Session) RequestOpenWindow(request engine.WindowRequest) bool {
	return s.offer(func(o Observer) bool { return o.OnOpenWindowRequested(s, request) })
}

// RequestCloseWindow offers a close request to the observers.
func (s *Session) RequestCloseWindow(request engine.WindowRequest) bool {
	return s.offer(func(o Observer) bool { return o.OnCloseWindowRequested(s, request) })
}

func (s *Session) offer(fn func(Observer) bool) bool {
	consumed := false
	s.observers.Notify(func(o Observer) {
		if !consumed {
			consumed = fn(o)
		}
	})
	return consumed
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID           string       `json:"id"`
	ParentID     string       `json:"parent_id,omitempty"`
	Private      bool         `json:"private"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Progress     int          `json:"progress"`
	Loading      bool         `json:"loading"`
	CanGoBack    bool         `json:"can_go_back"`
	CanGoForward bool         `json:"can_go_forward"`
	SearchTerms  string       `json:"search_terms"`
	Security     SecurityInfo `json:"security"`
	Linked       bool         `json:"linked"`
}

// Snapshot copies the session fields.
func (s *Session) Snapshot() Snapshot {
	engineSession, _ := s.holder.Get()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		ID:           s.id,
		ParentID:     s.parentID,
		Private:      s.private,
		URL:          s.url,
		Title:        s.title,
		Progress:     s.progress,
		Loading:      s.loading,
		CanGoBack:    s.canGoBack,
		CanGoForward: s.canGoForward,
		SearchTerms:  s.searchTerms,
		Security:     s.security,
		Linked:       engineSession != nil,
	}
}

// set stores value in field under the session lock and reports whether it
// changed.
func set[T comparable](s *Session, field *T, value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *field == value {
		return false
	}
	*field = value
	return true
}
