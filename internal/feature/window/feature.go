// Package window opens and closes tabs on behalf of the engine and of web
// extensions.
package window

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/session"
	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
)

// Feature adds tabs for window.open and extension tabs.create, and removes
// tabs that ask to be closed. Only the selected session is observed.
type Feature struct {
	manager  *session.Manager
	logger   *logging.Logger
	observer *session.SelectionAwareObserver
}

// NewFeature creates the feature. Register it with the extension host as
// the tabs delegate to receive extension tabs.
func NewFeature(manager *session.Manager, logger *logging.Logger) *Feature {
	f := &Feature{
		manager: manager,
		logger:  logging.OrNop(logger).Named("window"),
	}
	f.observer = session.NewSelectionAwareObserver(manager, &windowObserver{feature: f})
	return f
}

// Start observes window requests of the selected session.
func (f *Feature) Start() {
	f.observer.ObserveSelected()
}

// Stop stops observing.
func (f *Feature) Stop() {
	f.observer.Stop()
}

// OnNewTab adds and selects a tab opened by an extension.
func (f *Feature) OnNewTab(ext *engine.WebExtension, url string, engineSession engine.Session) {
	err := f.manager.Add(session.New(url), session.AddOptions{
		Selected:      true,
		EngineSession: engineSession,
	})
	if err != nil {
		extensionID := ""
		if ext != nil {
			extensionID = ext.ID
		}
		f.logger.Warn("Failed to open extension tab",
			zap.String("extension", extensionID),
			zap.String("url", url),
			zap.Error(err))
	}
}

type windowObserver struct {
	session.BaseObserver
	feature *Feature
}

func (o *windowObserver) OnOpenWindowRequested(parent *session.Session, request engine.WindowRequest) bool {
	f := o.feature

	engineSession, err := request.Prepare()
	if err != nil {
		f.logger.Warn("Failed to prepare window", zap.String("url", request.URL()), zap.Error(err))
		return true
	}

	child := session.New(request.URL(), session.WithPrivate(parent.Private()))
	err = f.manager.Add(child, session.AddOptions{
		Selected:      true,
		EngineSession: engineSession,
		Parent:        parent,
	})
	if err != nil {
		f.logger.Warn("Failed to open window", zap.String("url", request.URL()), zap.Error(err))
		return true
	}

	request.Start()
	return true
}

func (o *windowObserver) OnCloseWindowRequested(s *session.Session, request engine.WindowRequest) bool {
	if err := o.feature.manager.Remove(s, session.RemoveOptions{SelectParentIfExists: true}); err != nil {
		o.feature.logger.Debug("Window already closed", zap.String("session", s.ID()), zap.Error(err))
	}
	return true
}

var _ engine.WebExtensionsTabsDelegate = (*Feature)(nil)
