// Package main provides the CLI tool for bookforge.
// Uses Cobra for command parsing — Cobra is the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli generate --title "Forest Friends" --theme "woodland animals" --pages 12
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/config"
	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/events"
	"github.com/nash-team/bookforge/internal/generation"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/provider"
	"github.com/nash-team/bookforge/internal/quality"
	"github.com/nash-team/bookforge/internal/registry"
	"github.com/nash-team/bookforge/internal/service"
	"github.com/nash-team/bookforge/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bookforge",
		Short: "Coloring book generation tools",
	}

	root.AddCommand(generateCmd())
	root.AddCommand(modelsCmd())
	return root
}

func generateCmd() *cobra.Command {
	var (
		title    string
		theme    string
		audience string
		pageN    int
		seed     int64
		seedSet  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a coloring book end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedSet = cmd.Flags().Changed("seed")
			req := model.GenerationRequest{
				Title:     title,
				Theme:     theme,
				Audience:  model.Audience(audience),
				Type:      model.TypeColoring,
				PageCount: pageN,
			}
			if seedSet {
				req.Seed = &seed
			}
			return runGenerate(req)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&theme, "theme", "", "Drawing theme (required)")
	cmd.Flags().StringVar(&audience, "audience", "children", "Target audience: children, adults")
	cmd.Flags().IntVar(&pageN, "pages", 12, "Number of content pages")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible output")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered models and their pricing",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range registry.New().List() {
				fmt.Printf("%-35s provider=%-11s images=%-5t seed=%-5t per_image=%s\n",
					info.ID, info.Provider, info.SupportsImages, info.SupportsSeed,
					info.Pricing.PerImage.String(),
				)
			}
			return nil
		},
	}
}

func runGenerate(req model.GenerationRequest) error {
	cfg, err := config.Load(os.Getenv("BOOKFORGE_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI runs always log in development mode.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, dir := range []string{filepath.Dir(cfg.Storage.DatabasePath), cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	files, err := storage.NewFileSystem(cfg.Storage.ArtifactDir)
	if err != nil {
		return fmt.Errorf("creating file storage: %w", err)
	}

	// Ctrl+C cancels the run; in-flight provider calls stop through the context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("cancelling generation...")
		cancel()
	}()

	ebookRepo := storage.NewEbookRepository(db)
	usageRepo := storage.NewUsageRepository(db)
	bus := events.NewBus(logger)
	reg := registry.New()
	validator := quality.New(quality.Policy{
		MinContentPixels: cfg.Quality.MinContentPixels,
		MinCoverPixels:   cfg.Quality.MinCoverPixels,
		MaxPixels:        cfg.Quality.MaxPixels,
		MinDPI:           cfg.Quality.MinDPI,
		MinPages:         cfg.Quality.MinPages,
		MaxPages:         cfg.Quality.MaxPages,
	})

	gemini, err := provider.NewGeminiImageProvider(ctx, cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model, logger)
	if err != nil {
		return fmt.Errorf("creating gemini provider: %w", err)
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
			Recorder:  costs.NewTracker(usageRepo, bus, logger),
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
	calculator := costs.NewCalculator(usageRepo, bus, logger)
	books := service.NewBookService(facade, ebookRepo, files, assembler, calculator, bus, logger)

	ebook, result, calc, err := books.CreateBook(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("book generated\n")
	fmt.Printf("  ebook id:   %d\n", ebook.ID)
	fmt.Printf("  request id: %s\n", ebook.RequestID)
	fmt.Printf("  artifact:   %s\n", result.ArtifactURI)
	fmt.Printf("  pages:      %d\n", len(result.Pages))
	fmt.Printf("  total cost: %s USD (%d calls)\n", calc.TotalCost.String(), calc.CallCount)
	return nil
}
