package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bakkerme/reddit-link-scraper/internal/config"
	"github.com/bakkerme/reddit-link-scraper/internal/crawl"
	"github.com/bakkerme/reddit-link-scraper/internal/logging"
	"github.com/bakkerme/reddit-link-scraper/internal/observability/otelx"
	"github.com/bakkerme/reddit-link-scraper/internal/outputs"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit/factory"
	"github.com/bakkerme/reddit-link-scraper/internal/subreddits"
	"github.com/joho/godotenv"
)

const readmeLink = "https://github.com/bakkerme/reddit-link-scraper"

const (
	exitOK     = 0
	exitConfig = 1
	exitSetup  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// loadDotEnv reads .env from the working directory. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	dotenvErr := loadDotEnv()
	env := config.LoadEnv()

	fs := flag.NewFlagSet("scraper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", env.ConfigPath, "path to the configuration document (.json, .yaml or .yml)")
	debug := fs.Bool("debug", env.Debug, "enable debug logging")
	logFormat := fs.String("log-format", env.LogFormat, "log format: text or json")
	mode := fs.String("mode", env.Mode, "fetcher: api, public or mock")
	concurrency := fs.Int("concurrency", env.Concurrency, "subreddits fetched in parallel")
	filter := fs.String("filter", "", `only emit posts matching this expression, e.g. score > 10`)
	tee := fs.Bool("stdout", false, "also print posts to stdout when output_path names a file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitSetup
	}

	logger := logging.New(stderr, logging.Options{Debug: *debug, Format: *logFormat})
	if dotenvErr != nil {
		logger.Warn("Failed to load .env file", slog.Any("error", dotenvErr))
	}
	configFailure := fmt.Sprintf("Please fill out %s per the Configuration section of the README at %s", *configPath, readmeLink)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.Any("error", err))
		return exitSetup
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", slog.Any("error", err))
		}
	}()

	// Configuration stage: nothing below touches the network until it passes.
	store := config.NewStore(*configPath, logger)
	cfg, existed, err := store.LoadOrInit()
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("path", store.Path()), slog.Any("error", err))
		logger.Error(configFailure)
		return exitConfig
	}
	if !existed {
		logger.Error(configFailure)
		return exitConfig
	}

	result := config.Validate(env.Reddit.Apply(cfg))
	result.Log(ctx, logger)
	if !result.OK {
		logger.Error("Invalid configuration - see previous errors for reasons why.")
		logger.Error(configFailure)
		return exitConfig
	}
	logger.Debug("Configuration is valid")
	cfg = result.Config

	forums, err := subreddits.Parse(cfg.Subreddits)
	if err != nil {
		logger.Error("No subreddits have been specified.")
		logger.Error(configFailure)
		return exitConfig
	}
	logger.Debug("Discovered subreddits", slog.String("subreddits", strings.Join(forums, ", ")))
	limit, err := cfg.LimitValue()
	if err != nil {
		logger.Error("Invalid limit", slog.Any("error", err))
		return exitConfig
	}

	// Crawl stage.
	fetcher, err := factory.New(logger, *mode, reddit.Options{
		HTTPTimeout:   env.Reddit.HTTPTimeout,
		UserAgent:     cfg.UserAgent,
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		Username:      env.Reddit.Username,
		Password:      env.Reddit.Password,
		RetryAttempts: env.Reddit.RetryAttempts,
		RatePerSecond: env.Reddit.RatePerSecond,
	})
	if err != nil {
		logger.Error("Failed to create Reddit client", slog.Any("error", err))
		return exitSetup
	}

	sink, err := outputs.Open(cfg.OutputPath, outputs.Options{Console: stdout, Tee: *tee})
	if err != nil {
		logger.Error("Failed to open output", slog.String("output_path", cfg.OutputPath), slog.Any("error", err))
		return exitSetup
	}
	var filtered *outputs.FilterSink
	if strings.TrimSpace(*filter) != "" {
		filtered, err = outputs.NewFilter(*filter, sink)
		if err != nil {
			_ = sink.Close()
			logger.Error("Invalid filter", slog.Any("error", err))
			return exitSetup
		}
		sink = filtered
	}

	orchestrator := &crawl.Orchestrator{
		Fetcher:     fetcher,
		Sink:        sink,
		Logger:      logger,
		Concurrency: *concurrency,
	}
	summary, runErr := orchestrator.Run(ctx, forums, crawl.Params{
		Sort:       cfg.Sort,
		TimeFilter: cfg.Time,
		Limit:      limit,
	})
	if err := sink.Close(); err != nil {
		logger.Error("Failed to close output", slog.Any("error", err))
		if runErr == nil {
			runErr = err
		}
	}

	attrs := []any{
		slog.String("run_id", summary.RunID),
		slog.Int("subreddits", len(summary.Forums)),
		slog.Int("posts", summary.Posts),
		slog.Int("failed", summary.Failed),
	}
	if filtered != nil {
		attrs = append(attrs, slog.Int("filtered", filtered.Dropped()))
	}
	logger.Info("Crawl finished", attrs...)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Crawl aborted", slog.Any("error", runErr))
		return exitSetup
	}
	return exitOK
}
