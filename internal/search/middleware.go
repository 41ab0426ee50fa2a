package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/browser/browserstate"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
)

const defaultLoadTimeout = 10 * time.Second

// Middleware loads engines whenever SetRegion starts loading a region.
// Provider failures publish an empty engine list so the region stops
// loading.
func Middleware(provider Provider, logger *logging.Logger) browserstate.Middleware {
	logger = logging.OrNop(logger).Named("search")

	return func(ctx browserstate.Dispatcher, next func(browserstate.Action) error, action browserstate.Action) error {
		if err := next(action); err != nil {
			return err
		}

		setRegion, ok := action.(browserstate.SetRegion)
		if !ok {
			return nil
		}
		search := ctx.State().Search
		if !search.Loading || search.Region != setRegion.Region {
			return nil
		}

		go load(ctx, provider, setRegion.Region, logger)
		return nil
	}
}

func load(store browserstate.Dispatcher, provider Provider, region string, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultLoadTimeout)
	defer cancel()

	engines, err := provider.Engines(ctx, region)
	if err != nil {
		logger.Warn("Failed to load search engines", zap.String("region", region), zap.Error(err))
		engines = Engines{}
	}

	store.Dispatch(browserstate.SetSearchEngines{
		Region:          region,
		Engines:         engines.Engines,
		DefaultEngineID: engines.Default,
	})
}
