package search

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Engines is the result of loading a region.
type Engines struct {
	Default string                      `yaml:"default_engine"`
	Engines []browserstate.SearchEngine `yaml:"engines"`
}

// Provider loads the search engines of a region.
type Provider interface {
	Engines(ctx context.Context, region string) (Engines, error)
}

// YAMLProvider serves engines from a YAML catalogue.
type YAMLProvider struct {
	fallback Engines
	regions  map[string]Engines
}

type catalogFile struct {
	Default Engines            `yaml:"default"`
	Regions map[string]Engines `yaml:"regions"`
}

// NewYAMLProvider parses a catalogue.
func NewYAMLProvider(data []byte) (*YAMLProvider, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse search catalogue: %w", err)
	}

	regions := make(map[string]Engines, len(file.Regions))
	for region, engines := range file.Regions {
		if err := engines.validate(); err != nil {
			return nil, fmt.Errorf("region %s: %w", region, err)
		}
		regions[strings.ToUpper(region)] = engines
	}
	if err := file.Default.validate(); err != nil {
		return nil, fmt.Errorf("default region: %w", err)
	}

	return &YAMLProvider{fallback: file.Default, regions: regions}, nil
}

// DefaultProvider serves the built-in catalogue.
func DefaultProvider() *YAMLProvider {
	provider, err := NewYAMLProvider(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in search catalogue: %v", err))
	}
	return provider
}

// LoadProvider reads a catalogue file. An empty path yields the built-in
// catalogue.
func LoadProvider(path string) (*YAMLProvider, error) {
	if path == "" {
		return DefaultProvider(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search catalogue: %w", err)
	}
	return NewYAMLProvider(data)
}

// Engines returns the engines of region, or the default set.
func (p *YAMLProvider) Engines(ctx context.Context, region string) (Engines, error) {
	if err := ctx.Err(); err != nil {
		return Engines{}, err
	}
	engines, ok := p.regions[strings.ToUpper(region)]
	if !ok {
		engines = p.fallback
	}
	engines.Engines = append([]browserstate.SearchEngine(nil), engines.Engines...)
	return engines, nil
}

func (e Engines) validate() error {
	seen := make(map[string]bool, len(e.Engines))
	for _, engine := range e.Engines {
		if engine.ID == "" || engine.URLTemplate == "" {
			return fmt.Errorf("engine %q needs an id and url", engine.Name)
		}
		seen[engine.ID] = true
	}
	if e.Default != "" && !seen[e.Default] {
		return fmt.Errorf("default engine %q is not listed", e.Default)
	}
	return nil
}
