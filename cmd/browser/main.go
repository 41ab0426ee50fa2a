package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/app"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
)

func main() {
	port := flag.String("port", "", "Control API port (overrides API_PORT)")
	open := flag.String("open", "", "URL to open in the first tab")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.API.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger, *open); err != nil {
		logger.Error("Browser stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger, open string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browser, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer browser.Close()

	browser.Start()
	if open != "" {
		if _, err := browser.Open(open); err != nil {
			logger.Warn("Failed to open start page", zap.String("url", open), zap.Error(err))
		}
	}

	if err := browser.Run(ctx); err != nil {
		return err
	}
	logger.Info("Shutting down gracefully")
	return nil
}
