package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
)

// AddSessionRequest is the body of POST /sessions.
type AddSessionRequest struct {
	URL      string `json:"url" binding:"required"`
	Private  bool   `json:"private"`
	Selected bool   `json:"selected"`
	ParentID string `json:"parent_id"`
}

// LoadRequest is the body of POST /sessions/:id/load.
type LoadRequest struct {
	URL string `json:"url" binding:"required"`
}

// NavigateRequest is the body of POST /sessions/:id/navigate.
type NavigateRequest struct {
	Action string `json:"action" binding:"required,oneof=back forward reload"`
}

// ListSessions lists sessions in order
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.manager.Sessions()
	snapshots := make([]session.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.Snapshot())
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":       snapshots,
		"selected_index": h.manager.SelectedIndex(),
	})
}

// GetSession returns one session
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// AddSession creates a session with a fresh engine session and adds it
func (h *Handlers) AddSession(c *gin.Context) {
	var req AddSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	opts := session.AddOptions{Selected: req.Selected}
	if req.ParentID != "" {
		parent, ok := h.manager.FindSessionByID(req.ParentID)
		if !ok {
			h.fail(c, fmt.Errorf("%w: parent %s", session.ErrSessionNotFound, req.ParentID))
			return
		}
		opts.Parent = parent
	}

	engineSession, err := h.manager.Engine().CreateSession(req.Private)
	if err != nil {
		h.fail(c, fmt.Errorf("failed to create engine session: %w", err))
		return
	}
	opts.EngineSession = engineSession

	s := session.New(req.URL, session.WithPrivate(req.Private))
	// Add closes the engine session itself when it fails
	if err := h.manager.Add(s, opts); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("Session added", zap.String("session", s.ID()), zap.Bool("private", req.Private))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": s.Snapshot(),
	})
}

// SelectSession selects a session
func (h *Handlers) SelectSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := h.manager.Select(s); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "selected_index": h.manager.SelectedIndex()})
}

// RemoveSession removes a session. ?select_parent=true selects its parent
// if it was selected.
func (h *Handlers) RemoveSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	opts := session.RemoveOptions{SelectParentIfExists: c.Query("select_parent") == "true"}
	if err := h.manager.Remove(s, opts); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "selected_index": h.manager.SelectedIndex()})
}

// RemoveAllSessions removes every session
func (h *Handlers) RemoveAllSessions(c *gin.Context) {
	count := h.manager.Size()
	h.manager.RemoveAll()
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": count})
}

// LoadURL loads a URL in a session, linking an engine session if needed
func (h *Handlers) LoadURL(c *gin.Context) {
	var req LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	engineSession, err := h.manager.GetOrCreateEngineSession(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := engineSession.LoadURL(req.URL); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// Navigate moves through the history of a session
func (h *Handlers) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	engineSession, err := h.manager.GetOrCreateEngineSession(s)
	if err != nil {
		h.fail(c, err)
		return
	}
	navigator, ok := engineSession.(engine.Navigator)
	if !ok {
		h.fail(c, fmt.Errorf("%w: navigation", engine.ErrUnsupported))
		return
	}

	switch req.Action {
	case "back":
		err = navigator.GoBack()
	case "forward":
		err = navigator.GoForward()
	default:
		err = navigator.Reload()
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// lookup resolves the :id parameter, writing a 404 if it is unknown.
func (h *Handlers) lookup(c *gin.Context) (*session.Session, bool) {
	sessionID := c.Param("id")
	s, ok := h.manager.FindSessionByID(sessionID)
	if !ok {
		h.fail(c, fmt.Errorf("%w: %s", session.ErrSessionNotFound, sessionID))
		return nil, false
	}
	return s, true
}
