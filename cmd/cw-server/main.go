package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"catalogweb/internal/config"
	"catalogweb/internal/fetch"
	"catalogweb/internal/http"
	"catalogweb/internal/log"
	"catalogweb/internal/repository"
	"catalogweb/internal/service"
	"catalogweb/internal/storage/db"
	"catalogweb/internal/telemetry"
	"catalogweb/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running catalog server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Fetch    config.Fetch
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	productRepository := repository.NewProductRepository(dbClient)
	catalogService := service.NewCatalogService(productRepository)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, catalogService, dbClient)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	if cfg.Fetch.Enabled {
		// One-shot import: runs exactly once per process lifetime, off the
		// request-serving path, and is never rescheduled.
		wg.Go(func() {
			svc := fetch.New(cfg.Fetch, logger, catalogService)
			svc.Run(ctx)
		})
	}

	wg.Wait()

	return nil
}
