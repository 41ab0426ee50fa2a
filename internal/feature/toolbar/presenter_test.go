package toolbar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
)

type fakeToolbar struct {
	mu       sync.Mutex
	url      string
	terms    string
	progress int
	security SiteSecurity
	actions  []ActionButton
	renders  int
}

func (f *fakeToolbar) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	f.renders++
}

func (f *fakeToolbar) SetSearchTerms(terms string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = terms
}

func (f *fakeToolbar) DisplayProgress(progress int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = progress
}

func (f *fakeToolbar) SetSiteSecurity(security SiteSecurity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.security = security
}

func (f *fakeToolbar) AddBrowserAction(action ActionButton) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

func (f *fakeToolbar) snapshot() fakeToolbar {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeToolbar{
		url:      f.url,
		terms:    f.terms,
		progress: f.progress,
		security: f.security,
		actions:  append([]ActionButton(nil), f.actions...),
		renders:  f.renders,
	}
}

func newStore(t *testing.T) *browserstate.Store {
	t.Helper()
	store := browserstate.NewBrowserStore(nil, nil, nil)
	t.Cleanup(store.Close)
	return store
}

func flush(t *testing.T, store *browserstate.Store) {
	t.Helper()
	// Twice, so actions dispatched by subscribers are processed too
	require.NoError(t, store.Flush().Join())
	require.NoError(t, store.Flush().Join())
}

func addTab(store *browserstate.Store, tabID string, selected bool) {
	store.Dispatch(browserstate.AddTab{
		Tab:    browserstate.TabSessionState{ID: tabID},
		Select: selected,
	})
}

func TestPresenterRendersSelectedTab(t *testing.T) {
	store := newStore(t)
	toolbar := &fakeToolbar{url: "stale"}
	presenter := NewPresenter(toolbar, store, "")

	presenter.Start()
	defer presenter.Stop()
	assert.Equal(t, "", toolbar.snapshot().url)

	addTab(store, "a", true)
	store.Dispatch(browserstate.UpdateURL{TabID: "a", URL: "https://example.com"})
	store.Dispatch(browserstate.UpdateSearchTerms{TabID: "a", SearchTerms: "gophers"})
	store.Dispatch(browserstate.UpdateProgress{TabID: "a", Progress: 42})
	store.Dispatch(browserstate.UpdateSecurityInfo{TabID: "a", Info: browserstate.SecurityInfo{Secure: true, Host: "example.com"}})
	flush(t, store)

	got := toolbar.snapshot()
	assert.Equal(t, "https://example.com", got.url)
	assert.Equal(t, "gophers", got.terms)
	assert.Equal(t, 42, got.progress)
	assert.Equal(t, Secure, got.security)

	addTab(store, "b", true)
	flush(t, store)
	got = toolbar.snapshot()
	assert.Equal(t, "", got.url)
	assert.Equal(t, Insecure, got.security)
}

func TestPresenterIgnoresUnrelatedChanges(t *testing.T) {
	store := newStore(t)
	addTab(store, "a", true)
	addTab(store, "b", false)
	flush(t, store)

	toolbar := &fakeToolbar{}
	presenter := NewPresenter(toolbar, store, "")
	presenter.Start()
	defer presenter.Stop()
	renders := toolbar.snapshot().renders

	store.Dispatch(browserstate.UpdateURL{TabID: "b", URL: "https://other.example"})
	store.Dispatch(browserstate.UpdateTitle{TabID: "a", Title: "not shown"})
	flush(t, store)

	assert.Equal(t, renders, toolbar.snapshot().renders)
}

func TestPresenterCustomTab(t *testing.T) {
	store := newStore(t)
	addTab(store, "a", true)
	addTab(store, "custom", false)
	store.Dispatch(browserstate.UpdateURL{TabID: "a", URL: "https://selected.example"})
	store.Dispatch(browserstate.UpdateURL{TabID: "custom", URL: "https://custom.example"})
	flush(t, store)

	toolbar := &fakeToolbar{}
	presenter := NewPresenter(toolbar, store, "custom")
	presenter.Start()
	defer presenter.Stop()

	assert.Equal(t, "https://custom.example", toolbar.snapshot().url)
}

func TestPresenterConsumesBrowserActions(t *testing.T) {
	store := newStore(t)
	toolbar := &fakeToolbar{}
	presenter := NewPresenter(toolbar, store, "")
	presenter.Start()
	defer presenter.Stop()

	title, badge, enabled := "Badger", "7", false
	clicked := false
	store.Dispatch(browserstate.InstallWebExtension{Extension: browserstate.WebExtensionState{ID: "ext"}})
	store.Dispatch(browserstate.UpdateBrowserAction{
		ExtensionID: "ext",
		BrowserAction: &browserstate.BrowserAction{
			Title:     &title,
			BadgeText: &badge,
			Enabled:   &enabled,
			OnClick:   func() { clicked = true },
		},
	})
	flush(t, store)

	got := toolbar.snapshot()
	require.Len(t, got.actions, 1)
	button := got.actions[0]
	assert.Equal(t, "ext", button.ExtensionID)
	assert.Equal(t, "Badger", button.Title)
	assert.Equal(t, "7", button.BadgeText)
	assert.False(t, button.Enabled)
	button.OnClick()
	assert.True(t, clicked)

	assert.Nil(t, store.State().FindExtension("ext").BrowserAction)
	assert.Empty(t, store.State().PendingBrowserActions())

	store.Dispatch(browserstate.UpdateBrowserAction{ExtensionID: "ext", BrowserAction: &browserstate.BrowserAction{}})
	flush(t, store)
	got = toolbar.snapshot()
	require.Len(t, got.actions, 2)
	assert.True(t, got.actions[1].Enabled)
}

func TestPresenterStop(t *testing.T) {
	store := newStore(t)
	toolbar := &fakeToolbar{}
	presenter := NewPresenter(toolbar, store, "")
	presenter.Start()
	presenter.Start()
	presenter.Stop()
	presenter.Stop()

	addTab(store, "a", true)
	store.Dispatch(browserstate.UpdateURL{TabID: "a", URL: "https://example.com"})
	flush(t, store)

	assert.Equal(t, "", toolbar.snapshot().url)
}

func TestSiteSecurityString(t *testing.T) {
	assert.Equal(t, "secure", Secure.String())
	assert.Equal(t, "insecure", Insecure.String())
}
