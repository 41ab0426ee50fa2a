package findinpage

import (
	"fmt"

	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
)

// Interactor forwards find requests to the engine session of a tab.
type Interactor struct {
	manager *session.Manager
}

// NewInteractor creates an interactor for sessions of manager.
func NewInteractor(manager *session.Manager) *Interactor {
	return &Interactor{manager: manager}
}

// Find starts a search for text in the tab, clearing earlier results.
func (i *Interactor) Find(tabID, text string) error {
	s, finder, err := i.finder(tabID)
	if err != nil {
		return err
	}
	s.ClearFindResults()
	return finder.FindAll(text)
}

// Next highlights the next match, or the previous one.
func (i *Interactor) Next(tabID string, forward bool) error {
	_, finder, err := i.finder(tabID)
	if err != nil {
		return err
	}
	return finder.FindNext(forward)
}

// Clear ends the search in the tab.
func (i *Interactor) Clear(tabID string) error {
	s, finder, err := i.finder(tabID)
	if err != nil {
		return err
	}
	s.ClearFindResults()
	return finder.ClearMatches()
}

func (i *Interactor) finder(tabID string) (*session.Session, engine.Finder, error) {
	s, ok := i.manager.FindSessionByID(tabID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, tabID)
	}
	engineSession, err := i.manager.GetOrCreateEngineSession(s)
	if err != nil {
		return nil, nil, err
	}
	finder, ok := engineSession.(engine.Finder)
	if !ok {
		return nil, nil, fmt.Errorf("%w: find in page", engine.ErrUnsupported)
	}
	return s, finder, nil
}
