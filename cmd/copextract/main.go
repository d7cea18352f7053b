package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/copextract/internal/api"
	"github.com/dgallion1/copextract/internal/chunker"
	"github.com/dgallion1/copextract/internal/config"
	"github.com/dgallion1/copextract/internal/extract"
	"github.com/dgallion1/copextract/internal/metrics"
	"github.com/dgallion1/copextract/internal/parser"
	"github.com/dgallion1/copextract/internal/pipeline"
	"github.com/dgallion1/copextract/internal/publish"
	"github.com/dgallion1/copextract/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic", "panic", r, "stack", string(debug.Stack()))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, log).ExecuteContext(ctx); err != nil {
		log.Error("copextract failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

type extractFlags struct {
	input      string
	output     string
	noClaude   bool
	chunkPages int
	clean      bool
	seed       bool
}

func newRootCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var f extractFlags
	root := &cobra.Command{
		Use:           "copextract",
		Short:         "Extract details, standards and warnings from a code-of-practice PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ChunkPages = f.chunkPages
			return runExtract(cmd.Context(), cfg, f, log)
		},
	}
	root.Flags().StringVar(&f.input, "input", "", "Path to the source PDF")
	root.Flags().StringVar(&f.output, "output", config.DefaultOutputDir, "Output directory")
	root.Flags().BoolVar(&f.noClaude, "no-claude", false, "Use rule-based extraction instead of the model")
	root.Flags().IntVar(&f.chunkPages, "chunk-pages", cfg.ChunkPages, "Pages per partition")
	root.Flags().BoolVar(&f.clean, "clean", false, "Clean records and derive refs and warnings from descriptions")
	root.Flags().BoolVar(&f.seed, "seed", false, "Apply the seed script to DATABASE_URL")
	_ = root.MarkFlagRequired("input")

	root.AddCommand(newServeCmd(cfg, log))
	return root
}

func runExtract(ctx context.Context, cfg config.Config, f extractFlags, log *slog.Logger) error {
	useModel := !f.noClaude
	if err := cfg.Validate(useModel); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := pipeline.CheckInput(f.input); err != nil {
		return err
	}
	if f.seed && cfg.DatabaseURL == "" {
		return errors.New("invalid configuration: --seed requires DATABASE_URL")
	}

	mtr := metrics.New()

	var strategy extract.Strategy = extract.RuleStrategy{}
	if useModel {
		claude := extract.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, extract.ClaudeOptions{
			BaseURL:   cfg.AnthropicBaseURL,
			MaxTokens: cfg.AnthropicMaxTokens,
			Timeout:   cfg.AnthropicTimeout,
		})
		defer claude.Close()
		strategy = extract.NewModelStrategy(claude, cfg.MaxPromptChars, log, mtr)
		log.Info("using model strategy", "model", claude.Model())
	} else {
		log.Info("using rule strategy")
	}

	deps := pipeline.Deps{
		PageTool: chunker.NewPDFCPUTool(),
		Parsers: func(path string) (parser.Parser, error) {
			return parser.ForFile(path, cfg.PDFFallbackPdftotext)
		},
		Strategy: strategy,
		Metrics:  mtr,
		Log:      log,
	}

	if cfg.DatabaseURL != "" {
		s, err := seed.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer s.Close()
		deps.Seeder = s
	}

	if cfg.OutputBucket != "" {
		p, err := publish.New(ctx, publish.Config{
			Bucket:    cfg.OutputBucket,
			Prefix:    cfg.OutputBucketPrefix,
			Region:    cfg.OutputBucketRegion,
			Endpoint:  cfg.OutputBucketEndpoint,
			PathStyle: cfg.OutputBucketPathStyle,
		}, log)
		if err != nil {
			return err
		}
		deps.Publisher = p
	}

	res, err := pipeline.NewOrchestrator(deps).Run(ctx, pipeline.Options{
		Input:       f.input,
		OutputDir:   f.output,
		ChunkPages:  cfg.ChunkPages,
		Clean:       f.clean,
		MetricsFile: cfg.MetricsFile,
	})
	if err != nil {
		return err
	}

	log.Info("extraction complete",
		"run_id", res.Manifest.ID,
		"details", res.Manifest.Counts.Details,
		"standards", res.Manifest.Counts.Standards,
		"warnings", res.Manifest.Counts.Warnings,
		"degraded", len(res.Manifest.Progress.Degraded),
		"output", f.output,
	)
	return nil
}

func newServeCmd(cfg config.Config, log *slog.Logger) *cobra.Command {
	var output, port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only API over an output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), output, port, cfg.APIKey, log)
		},
	}
	cmd.Flags().StringVar(&output, "output", config.DefaultOutputDir, "Output directory to serve")
	cmd.Flags().StringVar(&port, "port", cfg.Port, "Listen port")
	return cmd
}

func runServe(ctx context.Context, output, port, apiKey string, log *slog.Logger) error {
	catalog, err := api.LoadCatalog(output)
	if err != nil {
		return err
	}
	srv := api.NewServer(catalog, log, apiKey)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting preview api", "port", port, "output", output,
		"details", len(catalog.Details), "auth", apiKey != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
