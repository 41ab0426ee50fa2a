package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
)

// StateView is the JSON form of the browser state. Browser actions carry
// callbacks, so they are flattened.
type StateView struct {
	Tabs          []TabView       `json:"tabs"`
	SelectedTabID string          `json:"selected_tab_id,omitempty"`
	Extensions    []ExtensionView `json:"extensions"`
	Search        SearchView      `json:"search"`
	Downloads     []DownloadView  `json:"downloads"`
}

type TabView struct {
	ID           string     `json:"id"`
	ParentID     string     `json:"parent_id,omitempty"`
	Private      bool       `json:"private"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Progress     int        `json:"progress"`
	Loading      bool       `json:"loading"`
	SearchTerms  string     `json:"search_terms,omitempty"`
	Secure       bool       `json:"secure"`
	Host         string     `json:"host,omitempty"`
	Issuer       string     `json:"issuer,omitempty"`
	CanGoBack    bool       `json:"can_go_back"`
	CanGoForward bool       `json:"can_go_forward"`
	FindResults  []FindView `json:"find_results,omitempty"`
}

type FindView struct {
	Active  int  `json:"active"`
	Matches int  `json:"matches"`
	Done    bool `json:"done"`
}

type ExtensionView struct {
	ID            string      `json:"id"`
	URL           string      `json:"url"`
	Name          string      `json:"name"`
	Enabled       bool        `json:"enabled"`
	BrowserAction *ActionView `json:"browser_action,omitempty"`
}

type ActionView struct {
	Title                *string `json:"title,omitempty"`
	Enabled              *bool   `json:"enabled,omitempty"`
	BadgeText            *string `json:"badge_text,omitempty"`
	BadgeTextColor       *int    `json:"badge_text_color,omitempty"`
	BadgeBackgroundColor *int    `json:"badge_background_color,omitempty"`
	Clickable            bool    `json:"clickable"`
}

type SearchView struct {
	Region          string                      `json:"region"`
	Engines         []browserstate.SearchEngine `json:"engines"`
	DefaultEngineID string                      `json:"default_engine_id,omitempty"`
	Loading         bool                        `json:"loading"`
}

type DownloadView struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	FileName      string `json:"file_name"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length"`
	Status        string `json:"status"`
	SessionID     string `json:"session_id,omitempty"`
	Private       bool   `json:"private"`
}

// NewStateView converts s.
func NewStateView(s *browserstate.BrowserState) StateView {
	view := StateView{
		Tabs:          make([]TabView, 0, len(s.Tabs)),
		SelectedTabID: s.SelectedTabID,
		Extensions:    make([]ExtensionView, 0, len(s.Extensions)),
		Search: SearchView{
			Region:          s.Search.Region,
			Engines:         s.Search.Engines,
			DefaultEngineID: s.Search.DefaultEngineID,
			Loading:         s.Search.Loading,
		},
		Downloads: make([]DownloadView, 0, len(s.Downloads)),
	}

	for _, tab := range s.Tabs {
		content := tab.Content
		tv := TabView{
			ID:           tab.ID,
			ParentID:     tab.ParentID,
			Private:      tab.Private,
			URL:          content.URL,
			Title:        content.Title,
			Progress:     content.Progress,
			Loading:      content.Loading,
			SearchTerms:  content.SearchTerms,
			Secure:       content.Security.Secure,
			Host:         content.Security.Host,
			Issuer:       content.Security.Issuer,
			CanGoBack:    content.CanGoBack,
			CanGoForward: content.CanGoForward,
		}
		for _, r := range content.FindResults {
			tv.FindResults = append(tv.FindResults, FindView{
				Active:  r.ActiveMatchOrdinal,
				Matches: r.NumberOfMatches,
				Done:    r.IsDoneCounting,
			})
		}
		view.Tabs = append(view.Tabs, tv)
	}

	for _, ext := range s.Extensions {
		ev := ExtensionView{ID: ext.ID, URL: ext.URL, Name: ext.Name, Enabled: ext.Enabled}
		if a := ext.BrowserAction; a != nil {
			ev.BrowserAction = &ActionView{
				Title:                a.Title,
				Enabled:              a.Enabled,
				BadgeText:            a.BadgeText,
				BadgeTextColor:       a.BadgeTextColor,
				BadgeBackgroundColor: a.BadgeBackgroundColor,
				Clickable:            a.OnClick != nil,
			}
		}
		view.Extensions = append(view.Extensions, ev)
	}

	for _, d := range s.Downloads {
		view.Downloads = append(view.Downloads, DownloadView{
			ID:            d.ID,
			URL:           d.URL,
			FileName:      d.FileName,
			ContentType:   d.ContentType,
			ContentLength: d.ContentLength,
			Status:        string(d.Status),
			SessionID:     d.SessionID,
			Private:       d.Private,
		})
	}
	return view
}

// GetState returns the current browser state
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, NewStateView(h.store.State()))
}

// RegionRequest is the body of POST /search/region.
type RegionRequest struct {
	Region string `json:"region" binding:"required"`
}

// SetRegion changes the search region. Engines load asynchronously.
func (h *Handlers) SetRegion(c *gin.Context) {
	var req RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.Dispatch(browserstate.SetRegion{Region: req.Region}).Wait(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "region": req.Region})
}

// DownloadRequest is the body of PATCH /downloads/:id.
type DownloadRequest struct {
	Status string `json:"status" binding:"required,oneof=queued downloading completed failed cancelled"`
}

// UpdateDownload moves a download to a new status
func (h *Handlers) UpdateDownload(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	downloadID := c.Param("id")
	if !h.downloadExists(c, downloadID) {
		return
	}

	action := browserstate.UpdateDownloadStatus{DownloadID: downloadID, Status: browserstate.DownloadStatus(req.Status)}
	if err := h.store.Dispatch(action).Wait(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveDownload forgets a download
func (h *Handlers) RemoveDownload(c *gin.Context) {
	downloadID := c.Param("id")
	if !h.downloadExists(c, downloadID) {
		return
	}
	if err := h.store.Dispatch(browserstate.RemoveDownload{DownloadID: downloadID}).Wait(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) downloadExists(c *gin.Context, downloadID string) bool {
	if h.store.State().FindDownload(downloadID) == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "download not found: " + downloadID,
		})
		return false
	}
	return true
}
