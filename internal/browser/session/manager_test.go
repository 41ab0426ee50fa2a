package session

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/browserkit/internal/engine/enginetest"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) OnSessionAdded(s *Session)    { r.record("added:" + s.URL()) }
func (r *recorder) OnSessionRemoved(s *Session)  { r.record("removed:" + s.URL()) }
func (r *recorder) OnSessionSelected(s *Session) { r.record("selected:" + s.URL()) }
func (r *recorder) OnAllSessionsRemoved()        { r.record("all-removed") }

func newTestManager(t *testing.T) (*Manager, *enginetest.Engine, *recorder) {
	t.Helper()

	eng := enginetest.NewEngine()
	m := NewManager(eng, logging.NewNop(), nil)
	rec := &recorder{}
	m.Register(rec)
	return m, eng, rec
}

func TestAddSelectRemoveScenario(t *testing.T) {
	m, _, rec := newTestManager(t)

	s1 := New("https://a")
	require.NoError(t, m.Add(s1, AddOptions{}))

	selected, err := m.SelectedSession()
	require.NoError(t, err)
	assert.Same(t, s1, selected)

	s2 := New("https://b")
	require.NoError(t, m.Add(s2, AddOptions{Selected: true}))

	selected, err = m.SelectedSession()
	require.NoError(t, err)
	assert.Same(t, s2, selected)
	assert.Equal(t, []*Session{s1, s2}, m.Sessions())

	require.NoError(t, m.Remove(s2, RemoveOptions{}))

	selected, err = m.SelectedSession()
	require.NoError(t, err)
	assert.Same(t, s1, selected)

	assert.Equal(t, []string{
		"added:https://a",
		"selected:https://a",
		"added:https://b",
		"selected:https://b",
		"removed:https://b",
		"selected:https://a",
	}, rec.Events())
}

func TestAddTwiceFails(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))
	assert.ErrorIs(t, m.Add(s, AddOptions{}), ErrSessionExists)
	assert.Equal(t, 1, m.Size())
}

func TestAddTwiceClosesRejectedEngineSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	e1 := enginetest.NewSession(false)
	e2 := enginetest.NewSession(false)
	require.NoError(t, m.Add(s, AddOptions{EngineSession: e1}))

	assert.ErrorIs(t, m.Add(s, AddOptions{EngineSession: e2}), ErrSessionExists)
	assert.Same(t, e1, m.EngineSession(s))
	assert.Equal(t, 0, e1.Closes())
	assert.Equal(t, 1, e2.Closes())
	assert.Empty(t, e2.Loaded())
}

func TestConcurrentAddsOfSameSessionLinkOnce(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	engineSessions := make([]*enginetest.Session, 8)
	errs := make([]error, len(engineSessions))

	var wg sync.WaitGroup
	for i := range engineSessions {
		engineSessions[i] = enginetest.NewSession(false)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Add(s, AddOptions{EngineSession: engineSessions[i]})
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "only one add may succeed")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, ErrSessionExists)
		assert.Equal(t, 1, engineSessions[i].Closes())
	}
	require.NotEqual(t, -1, winner)

	assert.Equal(t, 1, m.Size())
	assert.Same(t, engineSessions[winner], m.EngineSession(s))
	assert.Equal(t, 0, engineSessions[winner].Closes())
	assert.Equal(t, 1, engineSessions[winner].Observers())
}

func TestRemoveAllScenario(t *testing.T) {
	m, eng, rec := newTestManager(t)

	var sessions []*Session
	for _, url := range []string{"https://a", "https://b", "https://c"} {
		s := New(url)
		require.NoError(t, m.Add(s, AddOptions{}))
		_, err := m.GetOrCreateEngineSession(s)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}
	before := len(rec.Events())

	m.RemoveAll()

	assert.Equal(t, []string{"all-removed"}, rec.Events()[before:])
	assert.Equal(t, 0, m.Size())
	assert.Equal(t, NoSelection, m.SelectedIndex())
	_, err := m.SelectedSession()
	assert.ErrorIs(t, err, ErrNoSelection)

	for _, s := range sessions {
		es, obs := s.Holder().Get()
		assert.Nil(t, es)
		assert.Nil(t, obs)
	}
	for _, es := range eng.Sessions() {
		assert.Equal(t, 1, es.Closes())
		assert.Equal(t, 0, es.Observers())
	}
}

func TestLinkReplacesPreviousBinding(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))

	e1 := enginetest.NewSession(false)
	e2 := enginetest.NewSession(false)

	require.NoError(t, m.link(s, e1))
	require.NoError(t, m.link(s, e2))

	es, obs := s.Holder().Get()
	assert.Same(t, e2, es)
	assert.NotNil(t, obs)

	assert.Equal(t, []string{"https://a"}, e2.Loaded())
	assert.Equal(t, 0, e2.Closes())
	assert.Equal(t, 1, e2.Observers())

	assert.Equal(t, 1, e1.Closes())
	assert.Equal(t, 0, e1.Observers())
}

func TestUnlinkIsIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	e := enginetest.NewSession(false)
	require.NoError(t, m.Add(s, AddOptions{EngineSession: e}))

	m.Unlink(s)
	m.Unlink(s)

	assert.Equal(t, 1, e.Closes())
	assert.Nil(t, m.EngineSession(s))
}

func TestRemoveUnlinks(t *testing.T) {
	m, _, _ := newTestManager(t)

	s := New("https://a")
	e := enginetest.NewSession(false)
	require.NoError(t, m.Add(s, AddOptions{EngineSession: e}))
	assert.Equal(t, []string{"https://a"}, e.Loaded())

	require.NoError(t, m.Remove(s, RemoveOptions{}))

	es, obs := s.Holder().Get()
	assert.Nil(t, es)
	assert.Nil(t, obs)
	assert.Equal(t, 1, e.Closes())
	assert.Equal(t, 0, e.Observers())
}

func TestAddLinksBeforeAnnouncing(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)

	s := New("https://a")
	e := enginetest.NewSession(false)

	var linkedWhenAdded bool
	m.Register(&funcObserver{added: func(added *Session) {
		linkedWhenAdded = m.EngineSession(added) == e
	}})

	require.NoError(t, m.Add(s, AddOptions{EngineSession: e}))
	assert.True(t, linkedWhenAdded)
}

func TestAddWithFailingLoad(t *testing.T) {
	m, _, rec := newTestManager(t)

	e := enginetest.NewSession(false)
	e.FailLoadWith(errors.New("dns failure"))

	s := New("https://a")
	err := m.Add(s, AddOptions{EngineSession: e})
	require.Error(t, err)

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, rec.Events())
	assert.Nil(t, m.EngineSession(s))
	assert.Equal(t, 1, e.Closes())
}

func TestInvalidArguments(t *testing.T) {
	m, _, rec := newTestManager(t)

	absent := New("https://absent")
	assert.ErrorIs(t, m.Remove(absent, RemoveOptions{}), ErrSessionNotFound)
	assert.ErrorIs(t, m.Select(absent), ErrSessionNotFound)
	assert.ErrorIs(t, m.RemoveSelected(RemoveOptions{}), ErrNoSelection)

	_, err := m.GetOrCreateEngineSession(absent)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.GetOrCreateSelectedEngineSession()
	assert.ErrorIs(t, err, ErrNoSelection)

	assert.Empty(t, rec.Events())
}

func TestRemoveRecomputesSelection(t *testing.T) {
	tests := []struct {
		name         string
		selected     int
		remove       int
		wantSelected int
		wantEvent    string
	}{
		{name: "left of selection shifts", selected: 2, remove: 0, wantSelected: 1, wantEvent: "selected:2"},
		{name: "right of selection keeps", selected: 0, remove: 2, wantSelected: 0},
		{name: "selected last moves left", selected: 2, remove: 2, wantSelected: 1, wantEvent: "selected:1"},
		{name: "selected middle keeps index", selected: 1, remove: 1, wantSelected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, rec := newTestManager(t)

			sessions := []*Session{New("0"), New("1"), New("2")}
			for _, s := range sessions {
				require.NoError(t, m.Add(s, AddOptions{}))
			}
			require.NoError(t, m.Select(sessions[tt.selected]))
			before := len(rec.Events())

			require.NoError(t, m.Remove(sessions[tt.remove], RemoveOptions{}))

			assert.Equal(t, tt.wantSelected, m.SelectedIndex())
			events := rec.Events()[before:]
			want := []string{"removed:" + sessions[tt.remove].URL()}
			if tt.wantEvent != "" {
				want = append(want, tt.wantEvent)
			}
			assert.Equal(t, want, events)
		})
	}
}

func TestRemoveLastSessionFiresNoSelection(t *testing.T) {
	m, _, rec := newTestManager(t)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))
	require.NoError(t, m.Remove(s, RemoveOptions{}))

	assert.Equal(t, NoSelection, m.SelectedIndex())
	assert.Equal(t, []string{"added:https://a", "selected:https://a", "removed:https://a"}, rec.Events())
}

func TestParentSessions(t *testing.T) {
	m, _, _ := newTestManager(t)

	a, b := New("a"), New("b")
	require.NoError(t, m.Add(a, AddOptions{}))
	require.NoError(t, m.Add(b, AddOptions{}))

	child := New("child")
	require.NoError(t, m.Add(child, AddOptions{Selected: true, Parent: a}))

	assert.Equal(t, []*Session{a, child, b}, m.Sessions())
	assert.Equal(t, a.ID(), child.ParentID())
	assert.Equal(t, 1, m.SelectedIndex())

	require.NoError(t, m.Remove(child, RemoveOptions{SelectParentIfExists: true}))

	selected, err := m.SelectedSession()
	require.NoError(t, err)
	assert.Same(t, a, selected)
}

func TestAddBeforeSelectionKeepsSelectedSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	a, b := New("a"), New("b")
	require.NoError(t, m.Add(a, AddOptions{}))
	require.NoError(t, m.Add(b, AddOptions{Selected: true}))

	require.NoError(t, m.Add(New("child"), AddOptions{Parent: a}))

	selected, err := m.SelectedSession()
	require.NoError(t, err)
	assert.Same(t, b, selected)
}

func TestGetOrCreateEngineSession(t *testing.T) {
	m, eng, _ := newTestManager(t)

	s := New("https://a", WithPrivate(true))
	require.NoError(t, m.Add(s, AddOptions{}))

	first, err := m.GetOrCreateSelectedEngineSession()
	require.NoError(t, err)
	second, err := m.GetOrCreateEngineSession(s)
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, eng.Sessions(), 1)
	assert.True(t, eng.Sessions()[0].Private)
	assert.Equal(t, []string{"https://a"}, eng.Sessions()[0].Loaded())
}

func TestGetOrCreateEngineSessionFailure(t *testing.T) {
	eng := enginetest.NewEngine()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	m := NewManager(eng, nil, metrics)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))

	boom := errors.New("engine crashed")
	eng.FailCreate(boom)

	_, err := m.GetOrCreateEngineSession(s)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, m.EngineSession(s))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EngineFailures.WithLabelValues("create")))
}

func TestConcurrentGetOrCreateCreatesOnce(t *testing.T) {
	m, eng, _ := newTestManager(t)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.GetOrCreateEngineSession(s)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, eng.Sessions(), 1)
}

func TestGetOrCreateEngineSessionRacingRemove(t *testing.T) {
	for range 200 {
		m, eng, _ := newTestManager(t)

		s := New("https://a")
		require.NoError(t, m.Add(s, AddOptions{}))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.GetOrCreateEngineSession(s); err != nil {
				assert.ErrorIs(t, err, ErrSessionNotFound)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Remove(s, RemoveOptions{}))
		}()
		wg.Wait()

		es, obs := s.Holder().Get()
		require.Nil(t, es)
		require.Nil(t, obs)
		for _, created := range eng.Sessions() {
			require.Equal(t, 1, created.Closes())
		}
	}
}

func TestGetOrCreateEngineSessionForRemovedSession(t *testing.T) {
	m, eng, _ := newTestManager(t)

	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))
	require.NoError(t, m.Remove(s, RemoveOptions{}))

	_, err := m.GetOrCreateEngineSession(s)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, m.EngineSession(s))
	assert.Empty(t, eng.Sessions())
}

func TestSelectionInvariantUnderRandomOperations(t *testing.T) {
	m, _, _ := newTestManager(t)
	rng := rand.New(rand.NewSource(42))

	var all []*Session
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(10); {
		case op < 4:
			s := New("s")
			all = append(all, s)
			require.NoError(t, m.Add(s, AddOptions{Selected: rng.Intn(2) == 0}))
		case op < 7 && len(all) > 0:
			_ = m.Remove(all[rng.Intn(len(all))], RemoveOptions{SelectParentIfExists: rng.Intn(2) == 0})
		case op < 9 && len(all) > 0:
			_ = m.Select(all[rng.Intn(len(all))])
		case op == 9:
			if rng.Intn(10) == 0 {
				m.RemoveAll()
			}
		}

		size, index := m.Size(), m.SelectedIndex()
		if size == 0 {
			require.Equal(t, NoSelection, index, "step %d", i)
		} else {
			require.True(t, index >= 0 && index < size, "step %d: index %d size %d", i, index, size)
		}
	}
}

func TestConcurrentMutationsKeepInvariant(t *testing.T) {
	m, _, _ := newTestManager(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s := New("s")
				if err := m.Add(s, AddOptions{Selected: i%2 == 0}); err != nil {
					t.Error(err)
					return
				}
				if i%3 == 0 {
					_ = m.Remove(s, RemoveOptions{})
				}
			}
		}()
	}
	wg.Wait()

	size, index := m.Size(), m.SelectedIndex()
	require.Greater(t, size, 0)
	assert.True(t, index >= 0 && index < size)
}

func TestObserverMayCallBackIntoManager(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)

	var sizes []int
	var nested *Session
	m.Register(&funcObserver{added: func(s *Session) {
		sizes = append(sizes, m.Size())
		if nested == nil {
			nested = New("nested")
			require.NoError(t, m.Add(nested, AddOptions{}))
		}
	}})

	require.NoError(t, m.Add(New("outer"), AddOptions{}))

	assert.Equal(t, 2, m.Size())
	assert.Equal(t, []int{1, 2}, sizes)
}

func TestPanickingObserverDoesNotBlockOthers(t *testing.T) {
	m, _, rec := newTestManager(t)
	m.Register(&funcObserver{added: func(*Session) { panic("observer bug") }})

	require.NoError(t, m.Add(New("a"), AddOptions{}))
	require.NoError(t, m.Add(New("b"), AddOptions{}))

	assert.Contains(t, rec.Events(), "added:b")
}

func TestManagerMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	m := NewManager(enginetest.NewEngine(), nil, metrics)

	a, b := New("a"), New("b")
	require.NoError(t, m.Add(a, AddOptions{EngineSession: enginetest.NewSession(false)}))
	require.NoError(t, m.Add(b, AddOptions{}))
	require.NoError(t, m.Remove(a, RemoveOptions{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsRemoved))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EngineLinks))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EngineUnlinks))
}

func TestSessionsOfTypeAndFind(t *testing.T) {
	m, _, _ := newTestManager(t)

	normal := New("a")
	private := New("b", WithPrivate(true), WithID("tab_restored"))
	require.NoError(t, m.Add(normal, AddOptions{}))
	require.NoError(t, m.Add(private, AddOptions{}))

	assert.Equal(t, []*Session{normal}, m.SessionsOfType(false))
	assert.Equal(t, []*Session{private}, m.SessionsOfType(true))

	found, ok := m.FindSessionByID("tab_restored")
	require.True(t, ok)
	assert.Same(t, private, found)

	_, ok = m.FindSessionByID("missing")
	assert.False(t, ok)
}

type funcObserver struct {
	BaseManagerObserver
	added func(*Session)
}

func (f *funcObserver) OnSessionAdded(s *Session) {
	if f.added != nil {
		f.added(s)
	}
}
