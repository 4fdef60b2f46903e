// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/otakuconnect/internal/api"
	"github.com/tomtom215/otakuconnect/internal/config"
	"github.com/tomtom215/otakuconnect/internal/database"
	"github.com/tomtom215/otakuconnect/internal/logging"
	"github.com/tomtom215/otakuconnect/internal/supervisor"
	"github.com/tomtom215/otakuconnect/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Bool("assistant_enabled", cfg.Assistant.Enabled).
		Msg("Starting OtakuConnect")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedSample {
		if err := db.SeedSampleCatalog(context.Background()); err != nil {
			return err
		}
		logger.Info().Msg("Sample catalog loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	pipeline, err := initActivity(cfg, db, logger)
	if err != nil {
		return err
	}
	defer pipeline.Close()
	tree.AddMessagingService(pipeline.Consumer)

	assistantClient, err := initAssistant(cfg, logger)
	if err != nil {
		return err
	}

	engine, err := initEngine(cfg, db, pipeline.Publisher, assistantClient, logger)
	if err != nil {
		return err
	}

	deps := api.Dependencies{
		Engine:   engine,
		Catalog:  db,
		Activity: db,
		Recorder: pipeline.Publisher,
		Store:    db,
	}
	if assistantClient != nil {
		deps.Assistant = assistantClient
	}
	handler := api.NewHandler(deps, api.Options{
		Version:        version,
		RequestTimeout: cfg.Server.Timeout,
		HistoryLimit:   cfg.Activity.HistoryLimit,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout * 2,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	logger.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	logger.Info().Msg("Shutdown complete")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
