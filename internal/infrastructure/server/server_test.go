package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/GriffinCanCode/browserkit/internal/api/http"
	"github.com/GriffinCanCode/browserkit/internal/api/ws"
	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine/enginetest"
	"github.com/GriffinCanCode/browserkit/internal/extension"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	eng := enginetest.NewEngine()
	store := browserstate.NewBrowserStore(nil, nil, metrics)
	t.Cleanup(store.Close)
	manager := session.NewManager(eng, nil, metrics)
	host := extension.NewHost(store, eng, extension.DefaultConfig(), nil)
	t.Cleanup(func() { _ = host.Close() })
	catalog, err := extension.ParseCatalog([]byte("[]"))
	require.NoError(t, err)

	handlers := apihttp.NewHandlers(manager, store, host, extension.NewManager(catalog, store, host), nil, nil)
	s := NewServer(cfg, handlers, ws.NewHandler(store, nil, metrics, nil), metrics, registry, nil)
	t.Cleanup(s.Close)
	return s
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, config.Default())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "browser_api_requests_total")
}

func TestServerRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	s := newTestServer(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestServerRunShutsDown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	cfg := config.Default()
	cfg.API.Port = port
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
