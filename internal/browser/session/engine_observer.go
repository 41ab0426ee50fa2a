package session

import (
	"path"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/browserkit/internal/engine"
)

// EngineObserver applies engine events to the session it is bound to. It
// only changes session fields; closing and unregistering the engine session
// is left to the Manager.
type EngineObserver struct {
	session *Session
}

// NewEngineObserver creates an observer bound to s.
func NewEngineObserver(s *Session) *EngineObserver {
	return &EngineObserver{session: s}
}

// Session returns the bound session.
func (o *EngineObserver) Session() *Session { return o.session }

func (o *EngineObserver) OnLocationChange(url string) {
	o.session.SetURL(url)
	o.session.SetSearchTerms("")
}

func (o *EngineObserver) OnTitleChange(title string) {
	o.session.SetTitle(title)
}

func (o *EngineObserver) OnProgress(progress int) {
	o.session.SetProgress(progress)
}

func (o *EngineObserver) OnLoadingStateChange(loading bool) {
	o.session.SetLoading(loading)
}

func (o *EngineObserver) OnNavigationStateChange(canGoBack, canGoForward *bool) {
	if canGoBack != nil {
		o.session.SetCanGoBack(*canGoBack)
	}
	if canGoForward != nil {
		o.session.SetCanGoForward(*canGoForward)
	}
}

func (o *EngineObserver) OnSecurityChange(secure bool, host, issuer *string) {
	o.session.SetSecurityInfo(SecurityInfo{
		Secure: secure,
		Host:   valueOrEmpty(host),
		Issuer: valueOrEmpty(issuer),
	})
}

func (o *EngineObserver) OnFindResult(activeMatchOrdinal, numberOfMatches int, isDoneCounting bool) {
	o.session.AddFindResult(FindResult{
		ActiveMatchOrdinal: activeMatchOrdinal,
		NumberOfMatches:    numberOfMatches,
		IsDoneCounting:     isDoneCounting,
	})
}

func (o *EngineObserver) OnExternalResource(resource engine.ExternalResource) {
	fileName := resource.FileName
	if fileName == "" {
		fileName = path.Base(resource.URL)
	}
	o.session.SetDownload(Download{
		ID:            uuid.NewString(),
		URL:           resource.URL,
		FileName:      fileName,
		ContentType:   resource.ContentType,
		ContentLength: resource.ContentLength,
	})
}

func (o *EngineObserver) OnOpenWindowRequest(request engine.WindowRequest) {
	o.session.RequestOpenWindow(request)
}

func (o *EngineObserver) OnCloseWindowRequest(request engine.WindowRequest) {
	o.session.RequestCloseWindow(request)
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ engine.Observer = (*EngineObserver)(nil)
