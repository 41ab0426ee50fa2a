package extension

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/shared/id"
)

// Host installs extensions and owns their runtimes.
type Host struct {
	store  browserstate.Dispatcher
	engine engine.Engine
	config Config
	logger *logging.Logger

	mu       sync.Mutex
	delegate engine.WebExtensionsTabsDelegate
	runtimes map[string]*Runtime
}

// NewHost creates a host dispatching to store. Tabs opened by extensions
// get engine sessions from eng.
func NewHost(store browserstate.Dispatcher, eng engine.Engine, config Config, logger *logging.Logger) *Host {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Host{
		store:    store,
		engine:   eng,
		config:   config,
		logger:   logging.OrNop(logger).Named("extension"),
		runtimes: make(map[string]*Runtime),
	}
}

// SetTabsDelegate sets who handles tabs opened by extensions.
func (h *Host) SetTabsDelegate(delegate engine.WebExtensionsTabsDelegate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delegate = delegate
}

// Install adds ext to the browser state and runs its background script.
// An empty ID is generated. Returns the extension ID.
func (h *Host) Install(ctx context.Context, ext Extension) (string, error) {
	if ext.ID == "" {
		ext.ID = id.NewExtensionID()
	}

	h.mu.Lock()
	if _, exists := h.runtimes[ext.ID]; exists {
		h.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrAlreadyInstalled, ext.ID)
	}
	runtime := newRuntime(&ext, h.config, h)
	h.runtimes[ext.ID] = runtime
	h.mu.Unlock()

	err := h.store.Dispatch(browserstate.InstallWebExtension{
		Extension: browserstate.WebExtensionState{
			ID:      ext.ID,
			URL:     ext.URL,
			Name:    ext.Name,
			Enabled: true,
		},
	}).Wait(ctx)
	if err != nil {
		h.drop(ext.ID)
		return "", fmt.Errorf("failed to install %s: %w", ext.ID, err)
	}

	if ext.Script != "" {
		if _, err := runtime.Run(ctx, ext.Script); err != nil {
			h.logger.Warn("Background script failed",
				zap.String("extension", ext.ID),
				zap.Error(err))
			_ = h.Uninstall(ctx, ext.ID)
			return "", fmt.Errorf("background script of %s: %w", ext.ID, err)
		}
	}

	h.logger.Info("Extension installed", zap.String("extension", ext.ID), zap.String("name", ext.Name))
	return ext.ID, nil
}

// Uninstall closes the runtime and removes the extension from the state.
func (h *Host) Uninstall(ctx context.Context, extensionID string) error {
	if !h.drop(extensionID) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, extensionID)
	}
	return h.store.Dispatch(browserstate.UninstallWebExtension{ExtensionID: extensionID}).Wait(ctx)
}

// SendMessage delivers msg to the runtime.onMessage listeners of an
// extension and returns their results.
func (h *Host) SendMessage(ctx context.Context, extensionID string, msg any) ([]any, error) {
	runtime, err := h.runtime(extensionID)
	if err != nil {
		return nil, err
	}
	return runtime.Message(ctx, msg)
}

// Console returns the console output of an extension.
func (h *Host) Console(extensionID string) ([]LogEntry, error) {
	runtime, err := h.runtime(extensionID)
	if err != nil {
		return nil, err
	}
	return runtime.Console(), nil
}

// Installed returns the IDs of installed extensions, sorted.
func (h *Host) Installed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.runtimes))
	for extensionID := range h.runtimes {
		ids = append(ids, extensionID)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every runtime. The browser state is left as is.
func (h *Host) Close() error {
	h.mu.Lock()
	runtimes := h.runtimes
	h.runtimes = make(map[string]*Runtime)
	h.mu.Unlock()

	var errs []error
	for _, runtime := range runtimes {
		errs = append(errs, runtime.Close())
	}
	return errors.Join(errs...)
}

func (h *Host) runtime(extensionID string) (*Runtime, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	runtime, ok := h.runtimes[extensionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, extensionID)
	}
	return runtime, nil
}

func (h *Host) drop(extensionID string) bool {
	h.mu.Lock()
	runtime, ok := h.runtimes[extensionID]
	delete(h.runtimes, extensionID)
	h.mu.Unlock()

	if ok {
		_ = runtime.Close()
	}
	return ok
}

func (h *Host) updateBrowserAction(extensionID string, action browserstate.BrowserAction) {
	h.store.Dispatch(browserstate.UpdateBrowserAction{
		ExtensionID:   extensionID,
		BrowserAction: &action,
	})
}

func (h *Host) createTab(ext *Extension, url string) error {
	h.mu.Lock()
	delegate := h.delegate
	h.mu.Unlock()

	if delegate == nil {
		return fmt.Errorf("%w: no tabs delegate", engine.ErrUnsupported)
	}

	session, err := h.engine.CreateSession(false)
	if err != nil {
		return fmt.Errorf("failed to create tab: %w", err)
	}
	delegate.OnNewTab(&engine.WebExtension{ID: ext.ID, URL: ext.URL}, url, session)
	return nil
}

func (h *Host) reportError(extensionID string, err error) {
	h.logger.Warn("Extension listener failed", zap.String("extension", extensionID), zap.Error(err))
}
