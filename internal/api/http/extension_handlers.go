package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/extension"
)

// SideloadRequest is the body of POST /extensions.
type SideloadRequest struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Name   string `json:"name" binding:"required"`
	Script string `json:"script" binding:"required"`
}

// MessageRequest is the body of POST /extensions/:id/message.
type MessageRequest struct {
	Message any `json:"message"`
}

// ListExtensions lists catalogue addons with their installed state
func (h *Handlers) ListExtensions(c *gin.Context) {
	addons, err := h.addons.Addons(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extensions": addons})
}

// SideloadExtension installs an extension from the request body
func (h *Handlers) SideloadExtension(c *gin.Context) {
	var req SideloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	extensionID, err := h.host.Install(c.Request.Context(), extension.Extension{
		ID:     req.ID,
		URL:    req.URL,
		Name:   req.Name,
		Script: req.Script,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("Extension sideloaded", zap.String("extension", extensionID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": extensionID})
}

// InstallExtension installs a catalogue addon
func (h *Handlers) InstallExtension(c *gin.Context) {
	addonID := c.Param("id")
	if err := h.addons.Install(c.Request.Context(), addonID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": addonID})
}

// UninstallExtension removes an installed extension
func (h *Handlers) UninstallExtension(c *gin.Context) {
	if err := h.addons.Uninstall(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendMessage delivers a message to the extension's onMessage listeners
func (h *Handlers) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.host.SendMessage(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// ExtensionConsole returns console output of an extension
func (h *Handlers) ExtensionConsole(c *gin.Context) {
	entries, err := h.host.Console(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
