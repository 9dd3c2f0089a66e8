package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/way-19/consulting19/internal/app"
	"github.com/way-19/consulting19/internal/config"
	"github.com/way-19/consulting19/internal/content"
	"github.com/way-19/consulting19/internal/domain"
	"github.com/way-19/consulting19/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("consulting19", cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("consulting19 backend exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("consulting19 backend stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	// The content bundle is compiled in; failing here means a bad build.
	bundle, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content bundle: %w", err)
	}
	log.Info("starting consulting19 backend", startupAttrs(cfg, bundle)...)

	application, err := app.NewApp(cfg, bundle, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return application.Run(ctx)
}

// startupAttrs describes what this instance serves and where orders go.
func startupAttrs(cfg *config.Config, bundle *content.Bundle) []any {
	variants := make([]string, 0, len(domain.Variants()))
	for _, v := range domain.Variants() {
		variants = append(variants, string(v))
	}

	attrs := []any{
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.Int("services", bundle.Catalog.Len()),
		slog.Int("countries", len(bundle.Countries)),
		slog.Int("countries_available", bundle.AvailableCountries()),
		slog.Any("languages", bundle.Languages()),
		slog.Any("wizard_variants", variants),
		slog.String("submit_mode", cfg.SubmitMode),
	}
	if cfg.SubmitMode == config.SubmitModeAPI {
		attrs = append(attrs, slog.String("order_api_url", cfg.OrderAPIURL))
	}
	return attrs
}
