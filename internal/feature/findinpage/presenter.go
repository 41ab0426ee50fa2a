// Package findinpage shows find-in-page results and drives the engine
// search.
package findinpage

import (
	"slices"
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/state"
)

// View displays find results.
type View interface {
	DisplayResult(result browserstate.FindResult)
	Focus()
	Clear()
}

// Presenter shows the newest find result of the bound tab.
type Presenter struct {
	store *browserstate.Store
	view  View

	mu      sync.Mutex
	started bool
	tabID   string
	sub     *state.Subscription[*browserstate.BrowserState]
}

// NewPresenter creates a presenter drawing on view.
func NewPresenter(store *browserstate.Store, view View) *Presenter {
	return &Presenter{store: store, view: view}
}

// Start observes the bound tab, if any.
func (p *Presenter) Start() {
	p.mu.Lock()
	p.started = true
	tabID := p.tabID
	p.mu.Unlock()

	if tabID != "" {
		p.observe(tabID)
	}
}

// Stop stops observing. The binding is kept.
func (p *Presenter) Stop() {
	p.mu.Lock()
	p.started = false
	p.mu.Unlock()

	p.observe("")
}

// Bind switches to the tab with tabID and focuses the view.
func (p *Presenter) Bind(tabID string) {
	p.mu.Lock()
	p.tabID = tabID
	started := p.started
	p.mu.Unlock()

	if started {
		p.observe(tabID)
	}
	p.view.Focus()
}

// Unbind clears the view and forgets the tab.
func (p *Presenter) Unbind() {
	p.mu.Lock()
	p.tabID = ""
	p.mu.Unlock()

	p.observe("")
	p.view.Clear()
}

// BoundTab returns the bound tab ID.
func (p *Presenter) BoundTab() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tabID
}

// observe replaces the subscription with one for tabID, or none.
func (p *Presenter) observe(tabID string) {
	p.mu.Lock()
	previous := p.sub
	p.sub = nil
	p.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
	}
	if tabID == "" {
		return
	}

	sub := state.SelectFunc(p.store,
		func(s *browserstate.BrowserState) []browserstate.FindResult {
			if tab := s.FindTab(tabID); tab != nil {
				return tab.Content.FindResults
			}
			return nil
		},
		slices.Equal[[]browserstate.FindResult],
		func(results []browserstate.FindResult) {
			if len(results) > 0 {
				p.view.DisplayResult(results[len(results)-1])
			}
		})

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
}
