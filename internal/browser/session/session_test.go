package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/engine/enginetest"
	"github.com/GriffinCanCode/browserkit/internal/shared/id"
)

type sessionRecorder struct {
	BaseObserver
	urls       []string
	terms      []string
	progress   []int
	loading    []bool
	navigation [][2]bool
	security   []SecurityInfo
	finds      []FindResult
	downloads  []Download
	consume    bool
	windows    int
}

func (r *sessionRecorder) OnURLChanged(_ *Session, url string) { r.urls = append(r.urls, url) }
func (r *sessionRecorder) OnSearchTermsChanged(_ *Session, terms string) {
	r.terms = append(r.terms, terms)
}
func (r *sessionRecorder) OnProgress(_ *Session, p int) { r.progress = append(r.progress, p) }
func (r *sessionRecorder) OnLoadingStateChanged(_ *Session, l bool) {
	r.loading = append(r.loading, l)
}
func (r *sessionRecorder) OnNavigationStateChanged(_ *Session, back, forward bool) {
	r.navigation = append(r.navigation, [2]bool{back, forward})
}
func (r *sessionRecorder) OnSecurityChanged(_ *Session, info SecurityInfo) {
	r.security = append(r.security, info)
}
func (r *sessionRecorder) OnFindResult(_ *Session, result FindResult) {
	r.finds = append(r.finds, result)
}
func (r *sessionRecorder) OnDownload(_ *Session, d Download) { r.downloads = append(r.downloads, d) }
func (r *sessionRecorder) OnOpenWindowRequested(*Session, engine.WindowRequest) bool {
	r.windows++
	return r.consume
}

func TestNewSession(t *testing.T) {
	s := New("https://a")

	prefix, _ := id.Split(s.ID())
	assert.Equal(t, id.TabPrefix, prefix)
	assert.False(t, s.Private())
	assert.Empty(t, s.ParentID())
	assert.Equal(t, "https://a", s.URL())

	private := New("https://b", WithPrivate(true), WithParent(s.ID()))
	assert.True(t, private.Private())
	assert.Equal(t, s.ID(), private.ParentID())
	assert.NotEqual(t, s.ID(), private.ID())
}

func TestSettersNotifyOnlyOnChange(t *testing.T) {
	s := New("https://a")
	rec := &sessionRecorder{}
	s.Register(rec)

	s.SetURL("https://a")
	s.SetURL("https://b")
	s.SetProgress(50)
	s.SetProgress(50)
	s.SetLoading(true)

	assert.Equal(t, []string{"https://b"}, rec.urls)
	assert.Equal(t, []int{50}, rec.progress)
	assert.Equal(t, []bool{true}, rec.loading)

	s.Unregister(rec)
	s.SetURL("https://c")
	assert.Len(t, rec.urls, 1)
}

func TestEngineObserverMappings(t *testing.T) {
	s := New("https://a")
	s.SetSearchTerms("query")
	s.SetCanGoBack(true)
	rec := &sessionRecorder{}
	s.Register(rec)

	o := NewEngineObserver(s)

	o.OnLocationChange("https://b")
	assert.Equal(t, "https://b", s.URL())
	assert.Empty(t, s.SearchTerms())
	assert.Equal(t, []string{""}, rec.terms)

	o.OnProgress(42)
	assert.Equal(t, 42, s.Progress())

	o.OnLoadingStateChange(true)
	assert.True(t, s.Loading())

	forward := true
	o.OnNavigationStateChange(nil, &forward)
	assert.True(t, s.CanGoBack(), "nil must leave canGoBack unchanged")
	assert.True(t, s.CanGoForward())

	back := false
	o.OnNavigationStateChange(&back, nil)
	assert.False(t, s.CanGoBack())
	assert.True(t, s.CanGoForward())

	host := "example.com"
	o.OnSecurityChange(true, &host, nil)
	assert.Equal(t, SecurityInfo{Secure: true, Host: "example.com", Issuer: ""}, s.SecurityInfo())

	o.OnSecurityChange(false, nil, nil)
	assert.Equal(t, SecurityInfo{}, s.SecurityInfo())

	o.OnTitleChange("Example")
	assert.Equal(t, "Example", s.Title())

	o.OnFindResult(1, 3, true)
	assert.Equal(t, []FindResult{{ActiveMatchOrdinal: 1, NumberOfMatches: 3, IsDoneCounting: true}}, s.FindResults())

	o.OnExternalResource(engine.ExternalResource{URL: "https://b/files/report.pdf", ContentType: "application/pdf"})
	require.Len(t, rec.downloads, 1)
	assert.Equal(t, "report.pdf", rec.downloads[0].FileName)
	assert.NotEmpty(t, rec.downloads[0].ID)
	assert.Equal(t, rec.downloads[0], *s.Download())
}

func TestEngineEventsReachSessionThroughLink(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)
	s := New("https://a")
	require.NoError(t, m.Add(s, AddOptions{}))

	es, err := m.GetOrCreateEngineSession(s)
	require.NoError(t, err)

	fake := es.(*enginetest.Session)
	fake.Notify(func(o engine.Observer) { o.OnLocationChange("https://b") })
	assert.Equal(t, "https://b", s.URL())

	m.Unlink(s)
	fake.Notify(func(o engine.Observer) { o.OnLocationChange("https://c") })
	assert.Equal(t, "https://b", s.URL())
}

func TestWindowRequestsAreConsumedOnce(t *testing.T) {
	s := New("https://a")
	first := &sessionRecorder{consume: true}
	second := &sessionRecorder{consume: true}
	s.Register(first)
	s.Register(second)

	consumed := s.RequestOpenWindow(&enginetest.WindowRequest{Target: "https://popup"})

	assert.True(t, consumed)
	assert.Equal(t, 1, first.windows)
	assert.Equal(t, 0, second.windows)

	assert.False(t, s.RequestCloseWindow(&enginetest.WindowRequest{}))
}

func TestClearFindResults(t *testing.T) {
	s := New("https://a")
	s.AddFindResult(FindResult{NumberOfMatches: 1})
	s.ClearFindResults()
	assert.Empty(t, s.FindResults())
}

func TestSnapshot(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)
	s := New("https://a", WithPrivate(true))
	require.NoError(t, m.Add(s, AddOptions{}))
	s.SetTitle("A")

	snapshot := s.Snapshot()
	assert.Equal(t, "A", snapshot.Title)
	assert.True(t, snapshot.Private)
	assert.False(t, snapshot.Linked)

	_, err := m.GetOrCreateEngineSession(s)
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Linked)
}

func TestSelectionAwareObserverFollowsSelection(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)
	a, b := New("a"), New("b")
	require.NoError(t, m.Add(a, AddOptions{}))
	require.NoError(t, m.Add(b, AddOptions{}))

	rec := &sessionRecorder{}
	observer := NewSelectionAwareObserver(m, rec)
	observer.ObserveSelected()
	assert.Same(t, a, observer.Active())

	a.SetProgress(10)
	b.SetProgress(20)
	assert.Equal(t, []int{10}, rec.progress)

	require.NoError(t, m.Select(b))
	a.SetProgress(30)
	b.SetProgress(40)
	assert.Equal(t, []int{10, 40}, rec.progress)

	require.NoError(t, m.Remove(b, RemoveOptions{}))
	assert.Same(t, a, observer.Active())

	observer.Stop()
	a.SetProgress(50)
	assert.Equal(t, []int{10, 40}, rec.progress)
	assert.Nil(t, observer.Active())
}

func TestSelectionAwareObserverFixed(t *testing.T) {
	m := NewManager(enginetest.NewEngine(), nil, nil)
	a, b := New("a"), New("b")
	require.NoError(t, m.Add(a, AddOptions{}))
	require.NoError(t, m.Add(b, AddOptions{}))

	rec := &sessionRecorder{}
	observer := NewSelectionAwareObserver(m, rec)
	observer.ObserveFixed(b)

	require.NoError(t, m.Select(a))
	assert.Same(t, b, observer.Active())

	m.RemoveAll()
	assert.Nil(t, observer.Active())
}
