package extension

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
)

// Addon is an extension offered by a catalogue, merged with its installed
// state.
type Addon struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	URL       string `yaml:"url" json:"url"`
	Script    string `yaml:"script" json:"-"`
	Installed bool   `yaml:"-" json:"installed"`
	Enabled   bool   `yaml:"-" json:"enabled"`
}

// Provider lists the addons available for installation.
type Provider interface {
	Addons(ctx context.Context) ([]Addon, error)
}

// Catalog is a Provider backed by a fixed list.
type Catalog struct {
	addons []Addon
}

// ParseCatalog reads a YAML list of addons.
func ParseCatalog(data []byte) (*Catalog, error) {
	var addons []Addon
	if err := yaml.Unmarshal(data, &addons); err != nil {
		return nil, fmt.Errorf("failed to parse addon catalog: %w", err)
	}
	for i, addon := range addons {
		if addon.ID == "" {
			return nil, fmt.Errorf("addon %d has no id", i)
		}
	}
	return &Catalog{addons: addons}, nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read addon catalog: %w", err)
	}
	return ParseCatalog(data)
}

func (c *Catalog) Addons(ctx context.Context) ([]Addon, error) {
	return append([]Addon(nil), c.addons...), nil
}

// stateReader is the part of the browser store the manager reads.
type stateReader interface {
	State() *browserstate.BrowserState
}

// Manager lists addons with their installed state and installs them
// through a Host.
type Manager struct {
	provider Provider
	store    stateReader
	host     *Host
}

// NewManager creates an addon manager.
func NewManager(provider Provider, store stateReader, host *Host) *Manager {
	return &Manager{provider: provider, store: store, host: host}
}

// Addons returns the provider's addons marked with their installed state.
// Installed extensions the provider does not know are appended.
func (m *Manager) Addons(ctx context.Context) ([]Addon, error) {
	available, err := m.provider.Addons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list addons: %w", err)
	}

	state := m.store.State()
	seen := make(map[string]bool, len(available))
	for i := range available {
		seen[available[i].ID] = true
		if ext := state.FindExtension(available[i].ID); ext != nil {
			available[i].Installed = true
			available[i].Enabled = ext.Enabled
		}
	}

	for _, ext := range state.Extensions {
		if seen[ext.ID] {
			continue
		}
		available = append(available, Addon{
			ID:        ext.ID,
			Name:      ext.Name,
			URL:       ext.URL,
			Installed: true,
			Enabled:   ext.Enabled,
		})
	}
	return available, nil
}

// Install installs the addon with the given id from the provider.
func (m *Manager) Install(ctx context.Context, addonID string) error {
	available, err := m.provider.Addons(ctx)
	if err != nil {
		return fmt.Errorf("failed to list addons: %w", err)
	}
	for _, addon := range available {
		if addon.ID == addonID {
			_, err := m.host.Install(ctx, Extension{
				ID:     addon.ID,
				URL:    addon.URL,
				Name:   addon.Name,
				Script: addon.Script,
			})
			return err
		}
	}
	return fmt.Errorf("%w: %s is not in the catalog", ErrNotInstalled, addonID)
}

// Uninstall removes an installed addon.
func (m *Manager) Uninstall(ctx context.Context, addonID string) error {
	return m.host.Uninstall(ctx, addonID)
}
