package browserstate

// The returned pointers alias the state and must be treated as read-only.

// SelectedTab returns the selected tab, or nil if no tab is selected.
func (s *BrowserState) SelectedTab() *TabSessionState {
	if s == nil || s.SelectedTabID == "" {
		return nil
	}
	return s.FindTab(s.SelectedTabID)
}

// FindTab returns the tab with the given id, or nil.
func (s *BrowserState) FindTab(id string) *TabSessionState {
	if s == nil {
		return nil
	}
	if idx := indexOfTab(s.Tabs, id); idx >= 0 {
		return &s.Tabs[idx]
	}
	return nil
}

// TabsOfType returns the normal or private tabs in order.
func (s *BrowserState) TabsOfType(private bool) []TabSessionState {
	if s == nil {
		return nil
	}
	var tabs []TabSessionState
	for _, tab := range s.Tabs {
		if tab.Private == private {
			tabs = append(tabs, tab)
		}
	}
	return tabs
}

// FindExtension returns the extension with the given id, or nil.
func (s *BrowserState) FindExtension(id string) *WebExtensionState {
	if s == nil {
		return nil
	}
	if idx := indexOfExtension(s.Extensions, id); idx >= 0 {
		return &s.Extensions[idx]
	}
	return nil
}

// FindDownload returns the download with the given id, or nil.
func (s *BrowserState) FindDownload(id string) *DownloadState {
	if s == nil {
		return nil
	}
	if idx := indexOfDownload(s.Downloads, id); idx >= 0 {
		return &s.Downloads[idx]
	}
	return nil
}

// PendingBrowserActions returns the extensions carrying a browser action
// that has not been consumed yet.
func (s *BrowserState) PendingBrowserActions() []WebExtensionState {
	if s == nil {
		return nil
	}
	var pending []WebExtensionState
	for _, ext := range s.Extensions {
		if ext.BrowserAction != nil {
			pending = append(pending, ext)
		}
	}
	return pending
}
