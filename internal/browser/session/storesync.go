package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
)

// StoreSync mirrors the Manager's sessions into the browser store, so
// consumers reading the store see sessions driven by the registry.
type StoreSync struct {
	BaseManagerObserver

	manager *Manager
	store   browserstate.Dispatcher
	logger  *logging.Logger

	mu      sync.Mutex
	tracked map[*Session]*contentSync
}

// NewStoreSync creates a bridge from manager to store.
func NewStoreSync(manager *Manager, store browserstate.Dispatcher, logger *logging.Logger) *StoreSync {
	return &StoreSync{
		manager: manager,
		store:   store,
		logger:  logging.OrNop(logger).Named("storesync"),
		tracked: make(map[*Session]*contentSync),
	}
}

// Start mirrors the current sessions and follows later changes.
func (b *StoreSync) Start() {
	b.manager.Register(b)

	sessions := b.manager.Sessions()
	b.logger.Debug("Mirroring sessions into store", zap.Int("sessions", len(sessions)))
	for _, s := range sessions {
		b.OnSessionAdded(s)
	}
	if selected, err := b.manager.SelectedSession(); err == nil {
		b.OnSessionSelected(selected)
	}
}

// Stop stops mirroring. The store keeps its current tabs.
func (b *StoreSync) Stop() {
	b.manager.Unregister(b)

	b.mu.Lock()
	tracked := b.tracked
	b.tracked = make(map[*Session]*contentSync)
	b.mu.Unlock()

	for s, observer := range tracked {
		s.Unregister(observer)
	}
}

func (b *StoreSync) OnSessionAdded(s *Session) {
	b.mu.Lock()
	if _, ok := b.tracked[s]; ok {
		b.mu.Unlock()
		return
	}
	observer := &contentSync{bridge: b}
	b.tracked[s] = observer
	b.mu.Unlock()

	b.dispatch(browserstate.AddTab{Tab: tabState(s)})
	s.Register(observer)
}

func (b *StoreSync) OnSessionRemoved(s *Session) {
	b.untrack(s)

	action := browserstate.RemoveTab{TabID: s.ID()}
	if selected, err := b.manager.SelectedSession(); err == nil {
		action.SelectTabID = selected.ID()
	}
	b.dispatch(action)
}

func (b *StoreSync) OnSessionSelected(s *Session) {
	b.dispatch(browserstate.SelectTab{TabID: s.ID()})
}

func (b *StoreSync) OnAllSessionsRemoved() {
	b.mu.Lock()
	tracked := b.tracked
	b.tracked = make(map[*Session]*contentSync)
	b.mu.Unlock()

	for s, observer := range tracked {
		s.Unregister(observer)
	}
	b.dispatch(browserstate.RemoveAllTabs{})
}

func (b *StoreSync) untrack(s *Session) {
	b.mu.Lock()
	observer, ok := b.tracked[s]
	delete(b.tracked, s)
	b.mu.Unlock()

	if ok {
		s.Unregister(observer)
	}
}

// dispatch never waits; the store logs actions it rejects.
func (b *StoreSync) dispatch(action browserstate.Action) {
	b.store.Dispatch(action)
}

// contentSync turns the changes of one session into content actions.
type contentSync struct {
	BaseObserver
	bridge *StoreSync
}

func (c *contentSync) OnURLChanged(s *Session, url string) {
	c.bridge.dispatch(browserstate.UpdateURL{TabID: s.ID(), URL: url})
}

func (c *contentSync) OnTitleChanged(s *Session, title string) {
	c.bridge.dispatch(browserstate.UpdateTitle{TabID: s.ID(), Title: title})
}

func (c *contentSync) OnProgress(s *Session, progress int) {
	c.bridge.dispatch(browserstate.UpdateProgress{TabID: s.ID(), Progress: progress})
}

func (c *contentSync) OnLoadingStateChanged(s *Session, loading bool) {
	c.bridge.dispatch(browserstate.UpdateLoading{TabID: s.ID(), Loading: loading})
}

func (c *contentSync) OnNavigationStateChanged(s *Session, canGoBack, canGoForward bool) {
	c.bridge.dispatch(browserstate.UpdateNavigationState{
		TabID:        s.ID(),
		CanGoBack:    &canGoBack,
		CanGoForward: &canGoForward,
	})
}

func (c *contentSync) OnSearchTermsChanged(s *Session, searchTerms string) {
	c.bridge.dispatch(browserstate.UpdateSearchTerms{TabID: s.ID(), SearchTerms: searchTerms})
}

func (c *contentSync) OnSecurityChanged(s *Session, info SecurityInfo) {
	c.bridge.dispatch(browserstate.UpdateSecurityInfo{
		TabID: s.ID(),
		Info:  browserstate.SecurityInfo{Secure: info.Secure, Host: info.Host, Issuer: info.Issuer},
	})
}

func (c *contentSync) OnFindResult(s *Session, result FindResult) {
	c.bridge.dispatch(browserstate.AddFindResult{
		TabID: s.ID(),
		Result: browserstate.FindResult{
			ActiveMatchOrdinal: result.ActiveMatchOrdinal,
			NumberOfMatches:    result.NumberOfMatches,
			IsDoneCounting:     result.IsDoneCounting,
		},
	})
}

func (c *contentSync) OnFindResultsCleared(s *Session) {
	c.bridge.dispatch(browserstate.ClearFindResults{TabID: s.ID()})
}

func (c *contentSync) OnDownload(s *Session, download Download) {
	c.bridge.dispatch(browserstate.QueueDownload{Download: browserstate.DownloadState{
		ID:            download.ID,
		URL:           download.URL,
		FileName:      download.FileName,
		ContentType:   download.ContentType,
		ContentLength: download.ContentLength,
		SessionID:     s.ID(),
		Private:       s.Private(),
	}})
}

func tabState(s *Session) browserstate.TabSessionState {
	snapshot := s.Snapshot()
	return browserstate.TabSessionState{
		ID:       snapshot.ID,
		ParentID: snapshot.ParentID,
		Private:  snapshot.Private,
		Content: browserstate.ContentState{
			URL:          snapshot.URL,
			Title:        snapshot.Title,
			Progress:     snapshot.Progress,
			Loading:      snapshot.Loading,
			SearchTerms:  snapshot.SearchTerms,
			Security:     browserstate.SecurityInfo(snapshot.Security),
			CanGoBack:    snapshot.CanGoBack,
			CanGoForward: snapshot.CanGoForward,
		},
	}
}
