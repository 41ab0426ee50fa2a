package session

import (
	"sync"

	"github.com/GriffinCanCode/browserkit/internal/engine"
)

// EngineSessionHolder is the slot binding a session to at most one engine
// session. The engine session and its observer are always set and cleared
// together.
type EngineSessionHolder struct {
	mu             sync.Mutex
	engineSession  engine.Session
	engineObserver *EngineObserver
}

// Get returns the bound engine session and observer, both nil when unbound.
func (h *EngineSessionHolder) Get() (engine.Session, *EngineObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engineSession, h.engineObserver
}

// EngineSession returns the bound engine session or nil.
func (h *EngineSessionHolder) EngineSession() engine.Session {
	es, _ := h.Get()
	return es
}

func (h *EngineSessionHolder) set(engineSession engine.Session, engineObserver *EngineObserver) {
	if engineSession == nil || engineObserver == nil {
		panic("session: engine session and observer must be bound together")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.engineSession = engineSession
	h.engineObserver = engineObserver
}

// clear empties the holder and returns what was bound.
func (h *EngineSessionHolder) clear() (engine.Session, *EngineObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()

	engineSession, engineObserver := h.engineSession, h.engineObserver
	h.engineSession = nil
	h.engineObserver = nil
	return engineSession, engineObserver
}
