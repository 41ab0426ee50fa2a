package session

import "github.com/GriffinCanCode/browserkit/internal/engine"

// Observer receives changes of one session.
type Observer interface {
	OnURLChanged(s *Session, url string)
	OnTitleChanged(s *Session, title string)
	OnProgress(s *Session, progress int)
	OnLoadingStateChanged(s *Session, loading bool)
	OnNavigationStateChanged(s *Session, canGoBack, canGoForward bool)
	OnSearchTermsChanged(s *Session, searchTerms string)
	OnSecurityChanged(s *Session, info SecurityInfo)
	OnFindResult(s *Session, result FindResult)
	OnFindResultsCleared(s *Session)
	OnDownload(s *Session, download Download)

	// OnOpenWindowRequested returns true if it handled the request.
	OnOpenWindowRequested(s *Session, request engine.WindowRequest) bool

	// OnCloseWindowRequested returns true if it handled the request.
	OnCloseWindowRequested(s *Session, request engine.WindowRequest) bool
}

// BaseObserver implements Observer with no-ops.
type BaseObserver struct{}

func (BaseObserver) OnURLChanged(*Session, string)                 {}
func (BaseObserver) OnTitleChanged(*Session, string)               {}
func (BaseObserver) OnProgress(*Session, int)                      {}
func (BaseObserver) OnLoadingStateChanged(*Session, bool)          {}
func (BaseObserver) OnNavigationStateChanged(*Session, bool, bool) {}
func (BaseObserver) OnSearchTermsChanged(*Session, string)         {}
func (BaseObserver) OnSecurityChanged(*Session, SecurityInfo)      {}
func (BaseObserver) OnFindResult(*Session, FindResult)             {}
func (BaseObserver) OnFindResultsCleared(*Session)                 {}
func (BaseObserver) OnDownload(*Session, Download)                 {}
func (BaseObserver) OnOpenWindowRequested(*Session, engine.WindowRequest) bool {
	return false
}
func (BaseObserver) OnCloseWindowRequested(*Session, engine.WindowRequest) bool {
	return false
}

// ManagerObserver receives changes of the session list and selection.
type ManagerObserver interface {
	OnSessionAdded(s *Session)
	OnSessionRemoved(s *Session)
	OnSessionSelected(s *Session)

	// OnAllSessionsRemoved replaces the per-session OnSessionRemoved
	// callbacks when the whole list is cleared.
	OnAllSessionsRemoved()
}

// BaseManagerObserver implements ManagerObserver with no-ops.
type BaseManagerObserver struct{}

func (BaseManagerObserver) OnSessionAdded(*Session)    {}
func (BaseManagerObserver) OnSessionRemoved(*Session)  {}
func (BaseManagerObserver) OnSessionSelected(*Session) {}
func (BaseManagerObserver) OnAllSessionsRemoved()      {}

var (
	_ Observer        = BaseObserver{}
	_ ManagerObserver = BaseManagerObserver{}
)
