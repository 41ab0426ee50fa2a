package ws

import (
	"time"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/feature/toolbar"
)

// Frame is a server to client message.
type Frame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Message is a client to server message.
type Message struct {
	Type        string `json:"type"`
	ExtensionID string `json:"extension_id,omitempty"`
	TabID       string `json:"tab_id,omitempty"`
	Text        string `json:"text,omitempty"`
	Forward     bool   `json:"forward,omitempty"`
}

// ActionFrame is the data of a browser_action frame.
type ActionFrame struct {
	ExtensionID string `json:"extension_id"`
	Title       string `json:"title"`
	Enabled     bool   `json:"enabled"`
	BadgeText   string `json:"badge_text,omitempty"`
	Background  *int   `json:"background,omitempty"`
}

// FindFrame is the data of a find_result frame.
type FindFrame struct {
	Active  int  `json:"active"`
	Matches int  `json:"matches"`
	Done    bool `json:"done"`
}

func newFrame(frameType string, data any) Frame {
	return Frame{Type: frameType, Data: data, Timestamp: time.Now().Unix()}
}

func errorFrame(message string) Frame {
	return Frame{Type: "error", Message: message, Timestamp: time.Now().Unix()}
}

func actionFrame(button toolbar.ActionButton) ActionFrame {
	return ActionFrame{
		ExtensionID: button.ExtensionID,
		Title:       button.Title,
		Enabled:     button.Enabled,
		BadgeText:   button.BadgeText,
		Background:  button.Background,
	}
}

func findFrame(result browserstate.FindResult) FindFrame {
	return FindFrame{
		Active:  result.ActiveMatchOrdinal,
		Matches: result.NumberOfMatches,
		Done:    result.IsDoneCounting,
	}
}
