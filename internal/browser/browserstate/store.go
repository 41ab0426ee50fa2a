package browserstate

import (
	"reflect"

	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/browserkit/internal/state"
)

type (
	// Store is the browser store.
	Store = state.Store[*BrowserState, Action]

	// Middleware intercepts browser actions.
	Middleware = state.Middleware[*BrowserState, Action]

	// Dispatcher is the part of the browser store features need.
	Dispatcher = state.Dispatcher[*BrowserState, Action]

	// Option configures the browser store.
	Option = state.Option[*BrowserState, Action]
)

// NewBrowserStore creates a store reducing browser actions. A nil initial
// state starts empty.
func NewBrowserStore(initial *BrowserState, logger *logging.Logger, metrics *monitoring.Metrics, opts ...Option) *Store {
	if initial == nil {
		initial = &BrowserState{}
	}

	base := []Option{
		state.WithLogger[*BrowserState, Action](logging.OrNop(logger).Named("store")),
		state.WithMetrics[*BrowserState, Action](metrics),
		state.WithActionName[*BrowserState, Action](ActionName),
	}
	return state.NewStore[*BrowserState, Action](initial, Reduce, append(base, opts...)...)
}

// WithMiddleware adds middleware to the browser store.
func WithMiddleware(middleware ...Middleware) Option {
	return state.WithMiddleware(middleware...)
}

// WithErrorHandler observes rejected browser actions.
func WithErrorHandler(handler func(Action, error)) Option {
	return state.WithErrorHandler[*BrowserState, Action](handler)
}

// ActionName names an action for logs and metrics.
func ActionName(action Action) string {
	if action == nil {
		return "nil"
	}
	return reflect.TypeOf(action).Name()
}
