// Command fetch downloads the two source files without running the
// rest of the pipeline. Useful for pre-seeding an offline run of
// generate -skip-fetch.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"embdash/internal/config"
	"embdash/internal/fetch"
	"embdash/internal/infrastructure"
)

func main() {
	outDir := flag.String("out", "", "output root directory (defaults to the executable directory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var paths *config.Paths
	if *outDir != "" {
		paths = config.PathsAt(*outDir)
	} else {
		paths, err = config.GetPaths()
		if err != nil {
			slog.Error("Failed to initialize paths", "error", err)
			os.Exit(1)
		}
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = paths.GetLogPath("fetch.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewFetcher(cfg.Sources.FetchTimeout, logger, nil)

	weo, err := fetcher.Download(ctx, fetch.WEOSource(cfg.Sources), paths.WEOFile)
	if err != nil {
		logger.Error("WEO download failed", "error", err)
		os.Exit(1)
	}
	logger.Info("WEO dataset downloaded",
		slog.String("release", weo.Label),
		slog.String("path", paths.WEOFile))

	if _, err := fetcher.Download(ctx, fetch.HoldingsSource(cfg.Sources), paths.HoldingsFile); err != nil {
		logger.Error("Holdings download failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Holdings downloaded", slog.String("path", paths.HoldingsFile))
}
