package engine

import (
	"fmt"

	"github.com/GriffinCanCode/browserkit/internal/infrastructure/resilience"
)

// Guarded wraps an engine so session creation goes through breaker. While
// the breaker is open CreateSession fails fast with resilience.ErrCircuitOpen
// instead of hitting a backend that keeps failing. Failures are never
// retried.
func Guarded(engine Engine, breaker *resilience.Breaker) Engine {
	return &guardedEngine{Engine: engine, breaker: breaker}
}

type guardedEngine struct {
	Engine
	breaker *resilience.Breaker
}

func (g *guardedEngine) CreateSession(private bool) (Session, error) {
	session, err := resilience.Call(g.breaker, func() (Session, error) {
		return g.Engine.CreateSession(private)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create session: %w", g.Engine.Name(), err)
	}
	return session, nil
}
