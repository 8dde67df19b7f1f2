// Command generate runs the full report pipeline: download the source
// files, compute the indicator snapshots, write the report artifacts
// and render the dashboard.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"embdash/internal/config"
	"embdash/internal/fetch"
	"embdash/internal/infrastructure"
	"embdash/internal/pipeline"
)

func main() {
	outDir := flag.String("out", "", "output root directory (defaults to the executable directory)")
	targetYear := flag.Int("target-year", 0, "target year for current values (defaults to the configured or calendar year)")
	skipFetch := flag.Bool("skip-fetch", false, "reuse previously downloaded source files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *targetYear > 0 {
		cfg.Pipeline.TargetYear = *targetYear
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid target year", "error", err)
			os.Exit(1)
		}
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

	cfg.Logging.FilePath = paths.GetLogPath("generate.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.MetricExporter = "none" // one-shot run, nothing scrapes it
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	var metrics *infrastructure.PipelineMetrics
	if providers.Meter != nil {
		metrics, err = infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			logger.Warn("Failed to create pipeline metrics", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := &pipeline.State{
		Config:     cfg,
		Paths:      paths,
		TargetYear: cfg.Pipeline.EffectiveTargetYear(time.Now()),
		SkipFetch:  *skipFetch,
	}

	logger.Info("report generation starting",
		slog.Int("target_year", state.TargetYear),
		slog.Bool("skip_fetch", state.SkipFetch),
		slog.String("out", paths.ExecutableDir))

	fetcher := fetch.NewFetcher(cfg.Sources.FetchTimeout, logger, metrics)
	runner := pipeline.NewRunner(pipeline.DefaultSteps(fetcher, metrics), logger, metrics)

	if err := runner.Run(ctx, state); err != nil {
		logger.Error("report generation failed", "error", err)
		shutdownTelemetry(providers, logger)
		os.Exit(1)
	}

	logger.Info("report generation complete",
		slog.String("dashboard", paths.DashboardHTML),
		slog.String("combined_csv", paths.CombinedCSV),
		slog.String("country_metrics", paths.CountryMetricsJSON),
		slog.Int("countries", len(state.Universe)))

	shutdownTelemetry(providers, logger)
}

func shutdownTelemetry(providers *infrastructure.OTelProviders, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}
}
