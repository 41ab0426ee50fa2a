package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/extension"
	"github.com/GriffinCanCode/browserkit/internal/feature/findinpage"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/browserkit/internal/state"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	manager    *session.Manager
	store      *browserstate.Store
	host       *extension.Host
	addons     *extension.Manager
	interactor *findinpage.Interactor
	logger     *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	manager *session.Manager,
	store *browserstate.Store,
	host *extension.Host,
	addons *extension.Manager,
	interactor *findinpage.Interactor,
	logger *logging.Logger,
) *Handlers {
	return &Handlers{
		manager:    manager,
		store:      store,
		host:       host,
		addons:     addons,
		interactor: interactor,
		logger:     logging.OrNop(logger).Named("api"),
	}
}

// Register adds every route to r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state", h.GetState)

	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions", h.AddSession)
	r.DELETE("/sessions", h.RemoveAllSessions)
	r.GET("/sessions/:id", h.GetSession)
	r.DELETE("/sessions/:id", h.RemoveSession)
	r.POST("/sessions/:id/select", h.SelectSession)
	r.POST("/sessions/:id/load", h.LoadURL)
	r.POST("/sessions/:id/navigate", h.Navigate)
	r.POST("/sessions/:id/find", h.Find)
	r.POST("/sessions/:id/find/next", h.FindNext)
	r.DELETE("/sessions/:id/find", h.ClearFind)

	r.GET("/extensions", h.ListExtensions)
	r.POST("/extensions", h.SideloadExtension)
	r.DELETE("/extensions/:id", h.UninstallExtension)
	r.POST("/extensions/:id/install", h.InstallExtension)
	r.POST("/extensions/:id/message", h.SendMessage)
	r.GET("/extensions/:id/console", h.ExtensionConsole)

	r.POST("/search/region", h.SetRegion)
	r.PATCH("/downloads/:id", h.UpdateDownload)
	r.DELETE("/downloads/:id", h.RemoveDownload)

	r.POST("/logs", h.StreamLogs)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "browserkit",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"engine":         h.manager.Engine().Name(),
		"sessions":       h.manager.Size(),
		"selected_index": h.manager.SelectedIndex(),
		"extensions":     len(h.host.Installed()),
	})
}

// fail writes err with the status it maps to.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request: " + err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrNoSelection),
		errors.Is(err, extension.ErrNotInstalled),
		errors.Is(err, browserstate.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists),
		errors.Is(err, extension.ErrAlreadyInstalled),
		errors.Is(err, browserstate.ErrDuplicateExtension),
		errors.Is(err, browserstate.ErrDuplicateTab),
		errors.Is(err, browserstate.ErrDuplicateDownload):
		return http.StatusConflict
	case errors.Is(err, extension.ErrScript):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, engine.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests),
		errors.Is(err, state.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
