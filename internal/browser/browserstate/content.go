package browserstate

func reduceContent(state *BrowserState, action ContentAction) (*BrowserState, error) {
	switch a := action.(type) {
	case UpdateURL:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.URL = a.URL
			c.SearchTerms = ""
		}), nil

	case UpdateTitle:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.Title = a.Title
		}), nil

	case UpdateProgress:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.Progress = clampProgress(a.Progress)
		}), nil

	case UpdateLoading:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.Loading = a.Loading
		}), nil

	case UpdateSearchTerms:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.SearchTerms = a.SearchTerms
		}), nil

	case UpdateSecurityInfo:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.Security = a.Info
		}), nil

	case UpdateNavigationState:
		return updateContent(state, a.TabID, func(c *ContentState) {
			// Nil means unchanged, not false
			if a.CanGoBack != nil {
				c.CanGoBack = *a.CanGoBack
			}
			if a.CanGoForward != nil {
				c.CanGoForward = *a.CanGoForward
			}
		}), nil

	case AddFindResult:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.FindResults = append(cloneSlice(c.FindResults), a.Result)
		}), nil

	case ClearFindResults:
		return updateContent(state, a.TabID, func(c *ContentState) {
			c.FindResults = nil
		}), nil

	default:
		return state, unhandled(action)
	}
}

// updateContent applies update to a copy of the tab's content. Updates for
// tabs that are already gone are dropped.
func updateContent(state *BrowserState, tabID string, update func(*ContentState)) *BrowserState {
	idx := indexOfTab(state.Tabs, tabID)
	if idx < 0 {
		return state
	}

	next := state.clone()
	next.Tabs = cloneSlice(state.Tabs)
	update(&next.Tabs[idx].Content)
	return next
}

func clampProgress(progress int) int {
	return min(max(progress, 0), 100)
}
