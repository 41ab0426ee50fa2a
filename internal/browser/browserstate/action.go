package browserstate

// Action is anything the browser store can reduce.
type Action interface {
	isAction()
}

// WebExtensionAction changes installed extensions.
type WebExtensionAction interface {
	Action
	isWebExtensionAction()
}

// TabListAction changes the tab list or selection.
type TabListAction interface {
	Action
	isTabListAction()
}

// ContentAction changes the content of one tab.
type ContentAction interface {
	Action
	isContentAction()
}

// SearchAction changes search state.
type SearchAction interface {
	Action
	isSearchAction()
}

// DownloadAction changes downloads.
type DownloadAction interface {
	Action
	isDownloadAction()
}

type webExtensionAction struct{}

func (webExtensionAction) isAction()             {}
func (webExtensionAction) isWebExtensionAction() {}

type (
	// InstallWebExtension adds an extension. Installing an id twice fails.
	InstallWebExtension struct {
		webExtensionAction
		Extension WebExtensionState
	}

	// UninstallWebExtension removes an extension.
	UninstallWebExtension struct {
		webExtensionAction
		ExtensionID string
	}

	// UpdateBrowserAction replaces the browser action of an extension.
	UpdateBrowserAction struct {
		webExtensionAction
		ExtensionID   string
		BrowserAction *BrowserAction
	}

	// ConsumeBrowserAction clears the browser action of an extension once it
	// has been shown.
	ConsumeBrowserAction struct {
		webExtensionAction
		ExtensionID string
	}
)

type tabListAction struct{}

func (tabListAction) isAction()        {}
func (tabListAction) isTabListAction() {}

type (
	// AddTab adds a tab after its parent, or at the end. The first tab is
	// always selected.
	AddTab struct {
		tabListAction
		Tab    TabSessionState
		Select bool
	}

	// RemoveTab removes a tab. If it was selected, SelectTabID is selected
	// when set; otherwise the parent, or the neighbouring tab.
	RemoveTab struct {
		tabListAction
		TabID       string
		SelectTabID string
	}

	// RemoveAllTabs clears the tab list.
	RemoveAllTabs struct {
		tabListAction
	}

	// SelectTab selects an existing tab.
	SelectTab struct {
		tabListAction
		TabID string
	}
)

type contentAction struct{}

func (contentAction) isAction()        {}
func (contentAction) isContentAction() {}

type (
	// UpdateURL sets the tab URL and clears its search terms.
	UpdateURL struct {
		contentAction
		TabID string
		URL   string
	}

	// UpdateTitle sets the page title.
	UpdateTitle struct {
		contentAction
		TabID string
		Title string
	}

	// UpdateProgress sets the load progress (0-100).
	UpdateProgress struct {
		contentAction
		TabID    string
		Progress int
	}

	// UpdateLoading sets the loading flag.
	UpdateLoading struct {
		contentAction
		TabID   string
		Loading bool
	}

	// UpdateSearchTerms sets the terms the page was loaded for.
	UpdateSearchTerms struct {
		contentAction
		TabID       string
		SearchTerms string
	}

	// UpdateSecurityInfo replaces the security info.
	UpdateSecurityInfo struct {
		contentAction
		TabID string
		Info  SecurityInfo
	}

	// UpdateNavigationState sets the back/forward flags that are non-nil.
	UpdateNavigationState struct {
		contentAction
		TabID        string
		CanGoBack    *bool
		CanGoForward *bool
	}

	// AddFindResult appends a find-in-page result.
	AddFindResult struct {
		contentAction
		TabID  string
		Result FindResult
	}

	// ClearFindResults drops all find-in-page results.
	ClearFindResults struct {
		contentAction
		TabID string
	}
)

type searchAction struct{}

func (searchAction) isAction()       {}
func (searchAction) isSearchAction() {}

type (
	// SetRegion changes the search region. Engines are loaded for it
	// asynchronously by the search middleware.
	SetRegion struct {
		searchAction
		Region string
	}

	// SetSearchEngines publishes the engines loaded for a region. Results
	// for a region other than the current one are ignored.
	SetSearchEngines struct {
		searchAction
		Region          string
		Engines         []SearchEngine
		DefaultEngineID string
	}
)

type downloadAction struct{}

func (downloadAction) isAction()         {}
func (downloadAction) isDownloadAction() {}

type (
	// QueueDownload adds a download request.
	QueueDownload struct {
		downloadAction
		Download DownloadState
	}

	// UpdateDownloadStatus moves a download to a new status.
	UpdateDownloadStatus struct {
		downloadAction
		DownloadID string
		Status     DownloadStatus
	}

	// RemoveDownload forgets a download.
	RemoveDownload struct {
		downloadAction
		DownloadID string
	}
)
