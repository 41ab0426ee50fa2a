package browserstate

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateExtension = errors.New("extension with same ID already exists")
	ErrDuplicateTab       = errors.New("tab with same ID already exists")
	ErrDuplicateDownload  = errors.New("download with same ID already exists")
	ErrTabNotFound        = errors.New("tab not found")
	ErrUnhandledAction    = errors.New("unhandled action")
)

// Reduce is the root reducer. It routes each action to the reducer of its
// slice and never modifies state in place.
func Reduce(state *BrowserState, action Action) (*BrowserState, error) {
	if state == nil {
		state = &BrowserState{}
	}

	switch a := action.(type) {
	case WebExtensionAction:
		return reduceWebExtension(state, a)
	case TabListAction:
		return reduceTabList(state, a)
	case ContentAction:
		return reduceContent(state, a)
	case SearchAction:
		return reduceSearch(state, a)
	case DownloadAction:
		return reduceDownload(state, a)
	default:
		return state, unhandled(action)
	}
}

func unhandled(action Action) error {
	return fmt.Errorf("%w: %T", ErrUnhandledAction, action)
}

// clone returns a shallow copy for a reducer to modify.
func (s *BrowserState) clone() *BrowserState {
	next := *s
	return &next
}
