// Package browserstate holds the immutable browser state, the actions that
// change it and the reducers that apply them.
//
// A BrowserState value is never mutated once it has been published by the
// store. Reducers copy the slices they touch and return a new *BrowserState;
// an action that changes nothing returns the state it was given, so store
// subscribers comparing pointers are not notified.
//
// Actions form a closed set grouped per slice of state:
//
//   - WebExtensionAction: extension install/uninstall and browser actions
//   - TabListAction: tab list and selection
//   - ContentAction: per-tab page content
//   - SearchAction: search region and engines
//   - DownloadAction: download requests
//
// Example Usage:
//
//	store := browserstate.NewBrowserStore(nil, logger, metrics)
//	defer store.Close()
//
//	err := store.Dispatch(browserstate.InstallWebExtension{
//	    Extension: browserstate.WebExtensionState{ID: "ext-1", URL: "https://a"},
//	}).Join()
package browserstate
