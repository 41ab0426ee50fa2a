// Package tabs projects the tab list onto tab counters.
package tabs

import (
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/state"
)

// Counter displays a number of tabs.
type Counter interface {
	SetCount(count int)
}

// CounterPresenter shows the number of normal or private tabs. The counter
// is only updated when the number changes.
type CounterPresenter struct {
	counter Counter
	store   *browserstate.Store
	private bool

	mu  sync.Mutex
	sub *state.Subscription[*browserstate.BrowserState]
}

// NewCounterPresenter creates a presenter counting private tabs if private
// is set, normal tabs otherwise.
func NewCounterPresenter(counter Counter, store *browserstate.Store, private bool) *CounterPresenter {
	return &CounterPresenter{counter: counter, store: store, private: private}
}

func (p *CounterPresenter) Start() {
	p.mu.Lock()
	started := p.sub != nil
	p.mu.Unlock()
	if started {
		return
	}

	sub := state.Select(p.store, p.count, p.counter.SetCount)

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
}

func (p *CounterPresenter) Stop() {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (p *CounterPresenter) count(s *browserstate.BrowserState) int {
	return len(s.TabsOfType(p.private))
}
