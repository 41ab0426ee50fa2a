package httpengine

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/resilience"
)

// Name is the engine name.
const Name = "http"

// Engine creates HTTP-backed engine sessions.
type Engine struct {
	settings  *engine.Settings
	logger    *logging.Logger
	transport http.RoundTripper
	limiter   *rate.Limiter
	breaker   *resilience.Breaker
	jar       http.CookieJar
}

// New creates an engine. Nil settings use engine.DefaultSettings.
func New(settings *engine.Settings, logger *logging.Logger) *Engine {
	if settings == nil {
		settings = engine.DefaultSettings()
	}
	return &Engine{
		settings:  settings,
		logger:    logging.OrNop(logger).Named("httpengine"),
		transport: newTransport(),
		limiter:   rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), settings.Burst),
		breaker:   newBreaker(),
		jar:       newJar(),
	}
}

// CreateSession creates a session. Private sessions get their own cookies.
func (e *Engine) CreateSession(private bool) (engine.Session, error) {
	jar := e.jar
	if private {
		jar = newJar()
	}
	c := newClient(e.settings, e.transport, jar, e.limiter, e.breaker)
	return newSession(c, private, e.logger), nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Settings() *engine.Settings { return e.settings }

// Breaker exposes the circuit breaker shared by all sessions.
func (e *Engine) Breaker() *resilience.Breaker { return e.breaker }

var _ engine.Engine = (*Engine)(nil)
