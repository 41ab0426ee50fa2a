package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/browserkit/internal/engine"
)

var errNoInteractor = errors.New("find in page is not configured")

// FindRequest is the body of POST /sessions/:id/find.
type FindRequest struct {
	Text string `json:"text" binding:"required"`
}

// FindNextRequest is the body of POST /sessions/:id/find/next.
type FindNextRequest struct {
	Forward bool `json:"forward"`
}

// Find starts a find in page. Results arrive asynchronously in the store.
func (h *Handlers) Find(c *gin.Context) {
	var req FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.find(c, func(tabID string) error { return h.interactor.Find(tabID, req.Text) })
}

// FindNext moves to the next or previous match
func (h *Handlers) FindNext(c *gin.Context) {
	var req FindNextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.find(c, func(tabID string) error { return h.interactor.Next(tabID, req.Forward) })
}

// ClearFind ends the search
func (h *Handlers) ClearFind(c *gin.Context) {
	h.find(c, h.interactor.Clear)
}

func (h *Handlers) find(c *gin.Context, fn func(tabID string) error) {
	if h.interactor == nil {
		h.fail(c, fmt.Errorf("%w: %v", engine.ErrUnsupported, errNoInteractor))
		return
	}
	if err := fn(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}
