package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/browserkit/internal/api/http"
	"github.com/GriffinCanCode/browserkit/internal/api/ws"
	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/engine/httpengine"
	"github.com/GriffinCanCode/browserkit/internal/extension"
	"github.com/GriffinCanCode/browserkit/internal/feature/findinpage"
	"github.com/GriffinCanCode/browserkit/internal/feature/window"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/server"
	"github.com/GriffinCanCode/browserkit/internal/search"
)

// ErrUnknownEngine is returned for an ENGINE_NAME no backend answers to.
var ErrUnknownEngine = errors.New("unknown engine")

// Browser is the assembled browser core.
type Browser struct {
	Config   *config.Config
	Logger   *logging.Logger
	Registry *prometheus.Registry
	Metrics  *monitoring.Metrics

	Engine  engine.Engine
	Store   *browserstate.Store
	Manager *session.Manager
	Host    *extension.Host
	Addons  *extension.Manager
	Finder  *findinpage.Interactor
	Server  *server.Server

	sync   *session.StoreSync
	window *window.Feature
}

// Option customises New.
type Option func(*options)

type options struct {
	engine engine.Engine
}

// WithEngine uses eng instead of the configured engine backend.
func WithEngine(eng engine.Engine) Option {
	return func(o *options) { o.engine = eng }
}

// New builds every component. Nothing runs until Start.
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Browser, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.OrNop(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	eng := o.engine
	if eng == nil {
		var err error
		if eng, err = newEngine(cfg, logger); err != nil {
			return nil, err
		}
	}

	provider, err := search.LoadProvider(cfg.Search.Catalogue)
	if err != nil {
		return nil, err
	}
	catalog := &extension.Catalog{}
	if cfg.Extension.Catalogue != "" {
		if catalog, err = extension.LoadCatalog(cfg.Extension.Catalogue); err != nil {
			return nil, err
		}
	}

	storeOpts := []browserstate.Option{
		browserstate.WithMiddleware(search.Middleware(provider, logger)),
	}
	if cfg.Store.FatalErrors {
		storeOpts = append(storeOpts, browserstate.WithErrorHandler(func(action browserstate.Action, err error) {
			logger.Fatal("Reducer rejected action",
				zap.String("action", browserstate.ActionName(action)),
				zap.Error(err))
		}))
	}
	store := browserstate.NewBrowserStore(nil, logger, metrics, storeOpts...)

	manager := session.NewManager(eng, logger, metrics)
	windows := window.NewFeature(manager, logger)

	extConfig := extension.DefaultConfig()
	extConfig.Timeout = cfg.Extension.Timeout
	host := extension.NewHost(store, eng, extConfig, logger)
	host.SetTabsDelegate(windows)
	addons := extension.NewManager(catalog, store, host)
	finder := findinpage.NewInteractor(manager)

	b := &Browser{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics,
		Engine:   eng,
		Store:    store,
		Manager:  manager,
		Host:     host,
		Addons:   addons,
		Finder:   finder,
		sync:     session.NewStoreSync(manager, store, logger),
		window:   windows,
	}

	if cfg.API.Enabled {
		handlers := apihttp.NewHandlers(manager, store, host, addons, finder, logger)
		stream := ws.NewHandler(store, finder, metrics, logger)
		b.Server = server.NewServer(cfg, handlers, stream, metrics, registry, logger)
	}

	logger.Info("Browser initialized",
		zap.String("engine", eng.Name()),
		zap.String("region", cfg.Search.Region),
		zap.Bool("api", cfg.API.Enabled),
	)
	return b, nil
}

// newEngine creates the configured engine behind a circuit breaker.
func newEngine(cfg *config.Config, logger *logging.Logger) (engine.Engine, error) {
	if cfg.Engine.Name != httpengine.Name {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine.Name)
	}

	settings := engine.DefaultSettings()
	settings.RequestTimeout = engine.Duration{Duration: cfg.Engine.Timeout}
	if cfg.Engine.SettingsFile != "" {
		var err error
		if settings, err = engine.LoadSettings(cfg.Engine.SettingsFile); err != nil {
			return nil, err
		}
	}

	failures := cfg.Engine.BreakerFailures
	breaker := resilience.New("engine", resilience.Settings{
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
	return engine.Guarded(httpengine.New(settings, logger), breaker), nil
}

// Start mirrors sessions into the store, handles window requests and loads
// the search engines of the configured region.
func (b *Browser) Start() {
	b.sync.Start()
	b.window.Start()
	b.Store.Dispatch(browserstate.SetRegion{Region: b.Config.Search.Region})
}

// Open adds a selected session for url.
func (b *Browser) Open(url string) (*session.Session, error) {
	engineSession, err := b.Engine.CreateSession(false)
	if err != nil {
		return nil, err
	}
	s := session.New(url)
	if err := b.Manager.Add(s, session.AddOptions{Selected: true, EngineSession: engineSession}); err != nil {
		return nil, err
	}
	return s, nil
}

// Run serves the control API until ctx is done. Without the API it just
// waits.
func (b *Browser) Run(ctx context.Context) error {
	if b.Server == nil {
		<-ctx.Done()
		return nil
	}
	return b.Server.Run(ctx)
}

// Close stops the features, drops every session and releases the store.
func (b *Browser) Close() error {
	b.window.Stop()
	if b.Server != nil {
		b.Server.Close()
	}
	b.Manager.RemoveAll()
	b.sync.Stop()
	err := b.Host.Close()
	b.Store.Close()
	_ = b.Logger.Sync()
	return err
}
