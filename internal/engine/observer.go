package engine

// Observer receives page events from an engine session. Callbacks may run on
// any goroutine.
type Observer interface {
	OnLocationChange(url string)
	OnTitleChange(title string)
	OnProgress(progress int)
	OnLoadingStateChange(loading bool)

	// OnNavigationStateChange reports back/forward availability. A nil value
	// means unchanged.
	OnNavigationStateChange(canGoBack, canGoForward *bool)

	// OnSecurityChange reports the connection security. host and issuer are
	// nil when unknown.
	OnSecurityChange(secure bool, host, issuer *string)

	OnFindResult(activeMatchOrdinal, numberOfMatches int, isDoneCounting bool)
	OnExternalResource(resource ExternalResource)
	OnOpenWindowRequest(request WindowRequest)
	OnCloseWindowRequest(request WindowRequest)
}

// BaseObserver implements Observer with no-ops.
type BaseObserver struct{}

func (BaseObserver) OnLocationChange(string)                 {}
func (BaseObserver) OnTitleChange(string)                    {}
func (BaseObserver) OnProgress(int)                          {}
func (BaseObserver) OnLoadingStateChange(bool)               {}
func (BaseObserver) OnNavigationStateChange(_, _ *bool)      {}
func (BaseObserver) OnSecurityChange(bool, *string, *string) {}
func (BaseObserver) OnFindResult(int, int, bool)             {}
func (BaseObserver) OnExternalResource(ExternalResource)     {}
func (BaseObserver) OnOpenWindowRequest(WindowRequest)       {}
func (BaseObserver) OnCloseWindowRequest(WindowRequest)      {}

var _ Observer = BaseObserver{}
