package findinpage

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/engine/enginetest"
)

type fakeView struct {
	mu      sync.Mutex
	results []browserstate.FindResult
	focused int
	cleared int
}

func (v *fakeView) DisplayResult(result browserstate.FindResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, result)
}

func (v *fakeView) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused++
}

func (v *fakeView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cleared++
}

func (v *fakeView) Results() []browserstate.FindResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]browserstate.FindResult(nil), v.results...)
}

func newStore(t *testing.T, tabIDs ...string) *browserstate.Store {
	t.Helper()
	store := browserstate.NewBrowserStore(nil, nil, nil)
	t.Cleanup(store.Close)
	for _, tabID := range tabIDs {
		store.Dispatch(browserstate.AddTab{Tab: browserstate.TabSessionState{ID: tabID}})
	}
	return store
}

func result(active, matches int) browserstate.FindResult {
	return browserstate.FindResult{ActiveMatchOrdinal: active, NumberOfMatches: matches, IsDoneCounting: true}
}

func addResult(store *browserstate.Store, tabID string, active, matches int) {
	store.Dispatch(browserstate.AddFindResult{
		TabID:  tabID,
		Result: result(active, matches),
	})
}

func TestPresenterShowsNewestResultOfBoundTab(t *testing.T) {
	store := newStore(t, "a", "b")
	view := &fakeView{}
	presenter := NewPresenter(store, view)

	// Results before Start are not shown
	presenter.Bind("a")
	addResult(store, "a", 0, 3)
	require.NoError(t, store.Flush().Join())
	assert.Empty(t, view.Results())

	presenter.Start()
	assert.Equal(t, []browserstate.FindResult{result(0, 3)}, view.Results())

	addResult(store, "a", 1, 3)
	addResult(store, "b", 0, 9)
	store.Dispatch(browserstate.UpdateTitle{TabID: "a", Title: "unrelated"})
	require.NoError(t, store.Flush().Join())
	assert.Equal(t, []browserstate.FindResult{result(0, 3), result(1, 3)}, view.Results())

	presenter.Bind("b")
	require.NoError(t, store.Flush().Join())
	assert.Equal(t, result(0, 9), view.Results()[2])
	assert.Equal(t, 2, view.focused)
	assert.Equal(t, "b", presenter.BoundTab())

	presenter.Unbind()
	addResult(store, "b", 1, 9)
	require.NoError(t, store.Flush().Join())
	assert.Len(t, view.Results(), 3)
	assert.Equal(t, 1, view.cleared)
	assert.Empty(t, presenter.BoundTab())
}

func TestPresenterStopKeepsBinding(t *testing.T) {
	store := newStore(t, "a")
	view := &fakeView{}
	presenter := NewPresenter(store, view)

	presenter.Start()
	presenter.Bind("a")
	presenter.Stop()

	addResult(store, "a", 0, 1)
	require.NoError(t, store.Flush().Join())
	assert.Empty(t, view.Results())
	assert.Equal(t, "a", presenter.BoundTab())

	presenter.Start()
	assert.Len(t, view.Results(), 1)
}

func TestPresenterClearedResultsShowNothing(t *testing.T) {
	store := newStore(t, "a")
	view := &fakeView{}
	presenter := NewPresenter(store, view)
	presenter.Start()
	presenter.Bind("a")

	addResult(store, "a", 0, 2)
	store.Dispatch(browserstate.ClearFindResults{TabID: "a"})
	require.NoError(t, store.Flush().Join())

	assert.Len(t, view.Results(), 1)
}

type noFindSession struct{ engine.Session }

func TestInteractor(t *testing.T) {
	eng := enginetest.NewEngine()
	manager := session.NewManager(eng, nil, nil)
	s := session.New("https://example.com")
	require.NoError(t, manager.Add(s, session.AddOptions{}))

	interactor := NewInteractor(manager)
	require.NoError(t, interactor.Find(s.ID(), "gopher"))

	engineSession := eng.Sessions()[0]
	assert.Equal(t, []string{"gopher"}, engineSession.Finds())
	// The fake reports one match
	assert.Equal(t, []session.FindResult{{ActiveMatchOrdinal: 0, NumberOfMatches: 1, IsDoneCounting: true}}, s.FindResults())

	require.NoError(t, interactor.Next(s.ID(), true))
	require.NoError(t, interactor.Clear(s.ID()))
	assert.Empty(t, s.FindResults())

	err := interactor.Find("missing", "x")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestInteractorUnsupported(t *testing.T) {
	manager := session.NewManager(enginetest.NewEngine(), nil, nil)
	s := session.New("https://example.com")
	require.NoError(t, manager.Add(s, session.AddOptions{
		EngineSession: noFindSession{enginetest.NewSession(false)},
	}))

	err := NewInteractor(manager).Find(s.ID(), "x")
	assert.ErrorIs(t, err, engine.ErrUnsupported)
}

func TestInteractorEngineFailure(t *testing.T) {
	eng := enginetest.NewEngine()
	eng.FailCreate(errors.New("no engine"))
	manager := session.NewManager(eng, nil, nil)
	s := session.New("https://example.com")
	require.NoError(t, manager.Add(s, session.AddOptions{}))

	assert.Error(t, NewInteractor(manager).Find(s.ID(), "x"))
}
