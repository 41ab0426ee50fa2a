package browserstate

import "context"

// BrowserState is the root state held by the browser store.
type BrowserState struct {
	Tabs          []TabSessionState
	SelectedTabID string
	Extensions    []WebExtensionState
	Search        SearchState
	Downloads     []DownloadState
}

// TabSessionState is the store-side view of one tab.
type TabSessionState struct {
	ID       string
	ParentID string
	Private  bool
	Content  ContentState
}

// ContentState is the page content of a tab.
type ContentState struct {
	URL          string
	Title        string
	Progress     int
	Loading      bool
	SearchTerms  string
	Security     SecurityInfo
	CanGoBack    bool
	CanGoForward bool
	FindResults  []FindResult
}

// SecurityInfo describes the connection of the loaded page.
type SecurityInfo struct {
	Secure bool
	Host   string
	Issuer string
}

// FindResult is one find-in-page update reported by the engine.
type FindResult struct {
	ActiveMatchOrdinal int
	NumberOfMatches    int
	IsDoneCounting     bool
}

// WebExtensionState is an installed web extension.
type WebExtensionState struct {
	ID            string
	URL           string
	Name          string
	Enabled       bool
	BrowserAction *BrowserAction
}

// IconLoader loads a browser action icon of the given size.
type IconLoader func(ctx context.Context, size int) ([]byte, error)

// BrowserAction is the toolbar action an extension contributes. Nil fields
// are unset.
type BrowserAction struct {
	Title                *string
	Enabled              *bool
	LoadIcon             IconLoader
	BadgeText            *string
	BadgeTextColor       *int
	BadgeBackgroundColor *int
	OnClick              func()
}

// ApplyOverride returns a copy of a with every field set in override
// replacing the corresponding field of a. Tab-specific overrides only carry
// the values that change. OnClick always comes from override.
func (a BrowserAction) ApplyOverride(override BrowserAction) BrowserAction {
	merged := a
	if override.Title != nil {
		merged.Title = override.Title
	}
	if override.Enabled != nil {
		merged.Enabled = override.Enabled
	}
	if override.LoadIcon != nil {
		merged.LoadIcon = override.LoadIcon
	}
	if override.BadgeText != nil {
		merged.BadgeText = override.BadgeText
	}
	if override.BadgeTextColor != nil {
		merged.BadgeTextColor = override.BadgeTextColor
	}
	if override.BadgeBackgroundColor != nil {
		merged.BadgeBackgroundColor = override.BadgeBackgroundColor
	}
	merged.OnClick = override.OnClick
	return merged
}

// SearchState holds the search engines available in the current region.
type SearchState struct {
	Region          string
	Engines         []SearchEngine
	DefaultEngineID string
	Loading         bool
}

// SearchEngine is one search provider.
type SearchEngine struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	URLTemplate string `yaml:"url" json:"url"`
}

// DownloadStatus is the lifecycle state of a download.
type DownloadStatus string

const (
	DownloadQueued      DownloadStatus = "queued"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
	DownloadCancelled   DownloadStatus = "cancelled"
)

// DownloadState is a download requested by a tab.
type DownloadState struct {
	ID            string
	URL           string
	FileName      string
	ContentType   string
	ContentLength int64
	Status        DownloadStatus
	SessionID     string
	Private       bool
}
