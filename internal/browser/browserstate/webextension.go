package browserstate

import "fmt"

func reduceWebExtension(state *BrowserState, action WebExtensionAction) (*BrowserState, error) {
	switch a := action.(type) {
	case InstallWebExtension:
		if state.FindExtension(a.Extension.ID) != nil {
			return state, fmt.Errorf("%w: %s", ErrDuplicateExtension, a.Extension.ID)
		}
		next := state.clone()
		next.Extensions = append(cloneSlice(state.Extensions), a.Extension)
		return next, nil

	case UninstallWebExtension:
		idx := indexOfExtension(state.Extensions, a.ExtensionID)
		if idx < 0 {
			return state, nil
		}
		next := state.clone()
		next.Extensions = removeAt(state.Extensions, idx)
		return next, nil

	case UpdateBrowserAction:
		return updateExtension(state, a.ExtensionID, func(ext *WebExtensionState) {
			ext.BrowserAction = a.BrowserAction
		}), nil

	case ConsumeBrowserAction:
		return updateExtension(state, a.ExtensionID, func(ext *WebExtensionState) {
			ext.BrowserAction = nil
		}), nil

	default:
		return state, unhandled(action)
	}
}

// updateExtension applies update to a copy of the extension with the given
// id. Unknown ids leave the state unchanged; extensions may be uninstalled
// while updates for them are still in flight.
func updateExtension(state *BrowserState, id string, update func(*WebExtensionState)) *BrowserState {
	idx := indexOfExtension(state.Extensions, id)
	if idx < 0 {
		return state
	}

	next := state.clone()
	next.Extensions = cloneSlice(state.Extensions)
	update(&next.Extensions[idx])
	return next
}

func indexOfExtension(extensions []WebExtensionState, id string) int {
	for i := range extensions {
		if extensions[i].ID == id {
			return i
		}
	}
	return -1
}
