// Package main is the entry point for the bookforge HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/config"
	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/lifecycle"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/provider"
	"github.com/nash-team/bookforge/internal/quality"
	"github.com/nash-team/bookforge/internal/registry"
	"github.com/nash-team/bookforge/internal/server"
	"github.com/nash-team/bookforge/internal/service"
	"github.com/nash-team/bookforge/internal/storage"
)

func main() {
	// os.Exit ensures the process exits with a non-zero code on failure.
	// run() is separate so deferred cleanup executes (deferred functions
	// don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("BOOKFORGE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; not a real problem.
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	deps, db, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(cfg, deps, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// wire builds the full dependency graph: storage, event bus, registry,
// provider adapters, the coloring strategy, and the application services.
// The caller owns closing the returned database handle.
func wire(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Deps, *sqlx.DB, error) {
	for _, dir := range []string{
		filepath.Dir(cfg.Storage.DatabasePath),
		cfg.Storage.OutputDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return server.Deps{}, nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return server.Deps{}, nil, fmt.Errorf("opening database: %w", err)
	}

	files, err := storage.NewFileSystem(cfg.Storage.ArtifactDir)
	if err != nil {
		db.Close()
		return server.Deps{}, nil, fmt.Errorf("creating file storage: %w", err)
	}

	ebookRepo := storage.NewEbookRepository(db)
	usageRepo := storage.NewUsageRepository(db)

	bus := events.NewBus(logger)
	reg := registry.New()
	tracker := costs.NewTracker(usageRepo, bus, logger)
	calculator := costs.NewCalculator(usageRepo, bus, logger)
	validator := quality.New(qualityPolicy(cfg.Quality))

	gemini, err := provider.NewGeminiImageProvider(ctx, cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model, logger)
	if err != nil {
		db.Close()
		return server.Deps{}, nil, fmt.Errorf("creating gemini provider: %w", err)
	}

	var pages generation.ContentPageGenerationPort = gemini
	if cfg.Providers.PageProvider == "openai" {
		pages = provider.NewOpenAIImageProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.Model, logger)
	}

	var editor generation.ImageEditPort
	if cfg.Generation.CleanupPages {
		editor = provider.NewBimgEditor()
	}

	assembler := provider.NewPDFAssembler(cfg.Generation.TrimWidthIn, cfg.Generation.TrimHeightIn, logger)

	strategy := generation.NewColoringStrategy(
		generation.ColoringDeps{
			Cover:     gemini,
			Pages:     pages,
			Editor:    editor,
			Vector:    provider.NewVectorizer(logger),
			Assembler: assembler,
			Planner:   provider.NewAnthropicPlanner(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.Model, logger),
			Pricing:   reg,
			Recorder:  tracker,
			Validator: validator,
		},
		generation.ColoringConfig{
			CoverSpec: model.ImageSpec{
				Width:  cfg.Generation.CoverWidth,
				Height: cfg.Generation.CoverHeight,
				Format: model.FormatRaster,
				DPI:    cfg.Generation.PageDPI,
			},
			PageSpec: model.ImageSpec{
				Width:     cfg.Generation.PageWidth,
				Height:    cfg.Generation.PageHeight,
				Format:    model.FormatRaster,
				DPI:       cfg.Generation.PageDPI,
				ColorMode: model.ColorModeBlackWhite,
			},
			Concurrency: cfg.Generation.Concurrency,
			Vectorize:   cfg.Generation.Vectorize,
			Export:      model.ExportType(cfg.Generation.Export),
			OutputDir:   cfg.Storage.OutputDir,
		},
		logger,
	)

	facade := generation.NewFacade(
		map[model.EbookType]generation.Strategy{model.TypeColoring: strategy},
		validator, bus, logger,
	)

	deps := server.Deps{
		BookService: service.NewBookService(facade, ebookRepo, files, assembler, calculator, bus, logger),
		Lifecycle:   lifecycle.NewService(ebookRepo, bus, logger),
		EbookRepo:   ebookRepo,
		Calculator:  calculator,
		Registry:    reg,
	}
	return deps, db, nil
}

func qualityPolicy(q config.QualityConfig) quality.Policy {
	return quality.Policy{
		MinContentPixels: q.MinContentPixels,
		MinCoverPixels:   q.MinCoverPixels,
		MaxPixels:        q.MaxPixels,
		MinDPI:           q.MinDPI,
		MinPages:         q.MinPages,
		MaxPages:         q.MaxPages,
	}
}
