package browserstate

import "fmt"

func reduceTabList(state *BrowserState, action TabListAction) (*BrowserState, error) {
	switch a := action.(type) {
	case AddTab:
		if state.FindTab(a.Tab.ID) != nil {
			return state, fmt.Errorf("%w: %s", ErrDuplicateTab, a.Tab.ID)
		}
		index := len(state.Tabs)
		if a.Tab.ParentID != "" {
			if parent := indexOfTab(state.Tabs, a.Tab.ParentID); parent >= 0 {
				index = parent + 1
			}
		}
		next := state.clone()
		next.Tabs = insertAt(state.Tabs, index, a.Tab)
		if a.Select || state.SelectedTabID == "" {
			next.SelectedTabID = a.Tab.ID
		}
		return next, nil

	case RemoveTab:
		idx := indexOfTab(state.Tabs, a.TabID)
		if idx < 0 {
			return state, nil
		}
		removed := state.Tabs[idx]

		next := state.clone()
		next.Tabs = removeAt(state.Tabs, idx)
		if a.SelectTabID != "" && indexOfTab(next.Tabs, a.SelectTabID) >= 0 {
			next.SelectedTabID = a.SelectTabID
		} else if state.SelectedTabID == removed.ID {
			next.SelectedTabID = nextSelection(next.Tabs, removed, idx)
		}
		return next, nil

	case RemoveAllTabs:
		if len(state.Tabs) == 0 && state.SelectedTabID == "" {
			return state, nil
		}
		next := state.clone()
		next.Tabs = nil
		next.SelectedTabID = ""
		return next, nil

	case SelectTab:
		if state.FindTab(a.TabID) == nil {
			return state, fmt.Errorf("%w: %s", ErrTabNotFound, a.TabID)
		}
		if state.SelectedTabID == a.TabID {
			return state, nil
		}
		next := state.clone()
		next.SelectedTabID = a.TabID
		return next, nil

	default:
		return state, unhandled(action)
	}
}

// nextSelection picks the tab to select after removing the selected one:
// its parent if still open, else the tab that took its position, else the
// new last tab.
func nextSelection(tabs []TabSessionState, removed TabSessionState, idx int) string {
	if len(tabs) == 0 {
		return ""
	}
	if removed.ParentID != "" && indexOfTab(tabs, removed.ParentID) >= 0 {
		return removed.ParentID
	}
	if idx >= len(tabs) {
		idx = len(tabs) - 1
	}
	return tabs[idx].ID
}

func indexOfTab(tabs []TabSessionState, id string) int {
	for i := range tabs {
		if tabs[i].ID == id {
			return i
		}
	}
	return -1
}
