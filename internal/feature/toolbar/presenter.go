// Package toolbar renders the selected tab and extension browser actions
// onto a toolbar.
package toolbar

import (
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/state"
)

// SiteSecurity is the security indicator of the toolbar.
type SiteSecurity int

const (
	Insecure SiteSecurity = iota
	Secure
)

func (s SiteSecurity) String() string {
	if s == Secure {
		return "secure"
	}
	return "insecure"
}

// ActionButton is an extension browser action shown on the toolbar.
type ActionButton struct {
	ExtensionID string
	Title       string
	Enabled     bool
	BadgeText   string
	Background  *int
	OnClick     func()
}

// Toolbar is the surface the presenter draws on.
type Toolbar interface {
	SetURL(url string)
	SetSearchTerms(terms string)
	DisplayProgress(progress int)
	SetSiteSecurity(security SiteSecurity)
	AddBrowserAction(action ActionButton)
}

// Presenter keeps a Toolbar in sync with the browser store.
type Presenter struct {
	toolbar     Toolbar
	store       *browserstate.Store
	customTabID string

	mu  sync.Mutex
	sub *state.Subscription[*browserstate.BrowserState]

	// added is only touched from render, which the store serialises
	added map[string]*browserstate.BrowserAction
}

// NewPresenter creates a presenter for the selected tab, or for the tab
// with customTabID when it is not empty.
func NewPresenter(toolbar Toolbar, store *browserstate.Store, customTabID string) *Presenter {
	return &Presenter{
		toolbar:     toolbar,
		store:       store,
		customTabID: customTabID,
		added:       make(map[string]*browserstate.BrowserAction),
	}
}

// view is the part of the state the toolbar shows.
type view struct {
	tab     *browserstate.TabSessionState
	actions []*browserstate.BrowserAction
	pending []browserstate.WebExtensionState
}

// Start renders the current state and every later change.
func (p *Presenter) Start() {
	p.mu.Lock()
	if p.sub != nil {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// The first render runs inside SelectFunc
	sub := state.SelectFunc(p.store, p.project, sameView, p.render)

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
}

// Stop stops rendering.
func (p *Presenter) Stop() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (p *Presenter) project(s *browserstate.BrowserState) view {
	v := view{pending: s.PendingBrowserActions()}
	if p.customTabID != "" {
		v.tab = s.FindTab(p.customTabID)
	} else {
		v.tab = s.SelectedTab()
	}
	for _, ext := range v.pending {
		v.actions = append(v.actions, ext.BrowserAction)
	}
	return v
}

func sameView(a, b view) bool {
	if (a.tab == nil) != (b.tab == nil) {
		return false
	}
	if a.tab != nil && !sameTab(*a.tab, *b.tab) {
		return false
	}
	if len(a.actions) != len(b.actions) {
		return false
	}
	for i := range a.actions {
		if a.actions[i] != b.actions[i] {
			return false
		}
	}
	return true
}

func sameTab(a, b browserstate.TabSessionState) bool {
	return a.ID == b.ID &&
		a.Content.URL == b.Content.URL &&
		a.Content.SearchTerms == b.Content.SearchTerms &&
		a.Content.Progress == b.Content.Progress &&
		a.Content.Security == b.Content.Security
}

func (p *Presenter) render(v view) {
	if v.tab != nil {
		content := v.tab.Content
		p.toolbar.SetURL(content.URL)
		p.toolbar.SetSearchTerms(content.SearchTerms)
		p.toolbar.DisplayProgress(content.Progress)
		if content.Security.Secure {
			p.toolbar.SetSiteSecurity(Secure)
		} else {
			p.toolbar.SetSiteSecurity(Insecure)
		}
	} else {
		p.clear()
	}

	for _, ext := range v.pending {
		p.renderAction(ext)
	}
}

// renderAction adds a pending browser action once and consumes it.
func (p *Presenter) renderAction(ext browserstate.WebExtensionState) {
	if p.added[ext.ID] == ext.BrowserAction {
		return
	}
	p.added[ext.ID] = ext.BrowserAction

	p.toolbar.AddBrowserAction(toButton(ext.ID, ext.BrowserAction))
	p.store.Dispatch(browserstate.ConsumeBrowserAction{ExtensionID: ext.ID})
}

func (p *Presenter) clear() {
	p.toolbar.SetURL("")
	p.toolbar.SetSearchTerms("")
	p.toolbar.DisplayProgress(0)
	p.toolbar.SetSiteSecurity(Insecure)
}

func toButton(extensionID string, action *browserstate.BrowserAction) ActionButton {
	button := ActionButton{
		ExtensionID: extensionID,
		Enabled:     true,
		Background:  action.BadgeBackgroundColor,
		OnClick:     action.OnClick,
	}
	if action.Title != nil {
		button.Title = *action.Title
	}
	if action.Enabled != nil {
		button.Enabled = *action.Enabled
	}
	if action.BadgeText != nil {
		button.BadgeText = *action.BadgeText
	}
	return button
}
