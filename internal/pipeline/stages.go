package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"embdash/internal/dashboard"
	"embdash/internal/dataprocessing"
	"embdash/internal/exporter"
	"embdash/internal/fetch"
	"embdash/internal/indicators"
	"embdash/internal/infrastructure"
)

// AcquireStep downloads both source files with ordered fallback.
type AcquireStep struct {
	fetcher *fetch.Fetcher
}

// NewAcquireStep creates the acquisition step.
func NewAcquireStep(fetcher *fetch.Fetcher) *AcquireStep {
	return &AcquireStep{fetcher: fetcher}
}

func (s *AcquireStep) ID() string   { return "acquire" }
func (s *AcquireStep) Name() string { return "Download source files" }

func (s *AcquireStep) Validate(state *State) error {
	if !state.SkipFetch {
		return nil
	}
	for _, path := range []string{state.Paths.WEOFile, state.Paths.HoldingsFile} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("skip-fetch requested but %s is missing", path)
		}
	}
	return fmt.Errorf("%w: reusing existing downloads", ErrSkip)
}

func (s *AcquireStep) Execute(ctx context.Context, state *State) error {
	weo, err := s.fetcher.Download(ctx, fetch.WEOSource(state.Config.Sources), state.Paths.WEOFile)
	if err != nil {
		return fmt.Errorf("WEO download failed: %w", err)
	}
	slog.InfoContext(ctx, "WEO release selected", slog.String("release", weo.Label))

	if _, err := s.fetcher.Download(ctx, fetch.HoldingsSource(state.Config.Sources), state.Paths.HoldingsFile); err != nil {
		return fmt.Errorf("holdings download failed: %w", err)
	}
	return nil
}

// ParseStep reads the holdings universe and the WEO series.
type ParseStep struct {
	metrics *infrastructure.PipelineMetrics
}

// NewParseStep creates the parsing step. metrics may be nil.
func NewParseStep(metrics *infrastructure.PipelineMetrics) *ParseStep {
	return &ParseStep{metrics: metrics}
}

func (s *ParseStep) ID() string   { return "parse" }
func (s *ParseStep) Name() string { return "Parse source files" }

func (s *ParseStep) Validate(state *State) error {
	for _, path := range []string{state.Paths.WEOFile, state.Paths.HoldingsFile} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("source file %s is missing", path)
		}
	}
	return nil
}

func (s *ParseStep) Execute(ctx context.Context, state *State) error {
	universe, err := dataprocessing.ParseHoldingsFile(state.Paths.HoldingsFile, dataprocessing.HoldingsOptions{
		SkipLines:     state.Config.Sources.HoldingsSkipLines,
		CountryColumn: state.Config.Sources.HoldingsCountryColumn,
		Mapping:       state.Config.Pipeline.Countries,
	})
	if err != nil {
		return fmt.Errorf("holdings parse failed: %w", err)
	}
	if len(universe) == 0 {
		return fmt.Errorf("no holdings country mapped to an ISO3 code")
	}
	state.Universe = universe

	codes := make([]string, 0, len(state.Config.Pipeline.Indicators))
	for _, ind := range state.Config.Pipeline.Indicators {
		codes = append(codes, ind.Code)
	}

	series, err := dataprocessing.ParseWEOFile(state.Paths.WEOFile, dataprocessing.WEOOptions{
		SubjectColumn:  state.Config.Pipeline.SubjectColumn,
		CountryColumns: state.Config.Pipeline.CountryColumns,
		Indicators:     codes,
		Countries:      universe,
	})
	if err != nil {
		return fmt.Errorf("WEO parse failed: %w", err)
	}
	state.Series = series

	if s.metrics != nil {
		s.metrics.RowsParsedTotal.Add(ctx, int64(len(universe)))
	}
	return nil
}

// ComputeStep assembles the snapshot table.
type ComputeStep struct {
	metrics *infrastructure.PipelineMetrics
}

// NewComputeStep creates the computation step. metrics may be nil.
func NewComputeStep(metrics *infrastructure.PipelineMetrics) *ComputeStep {
	return &ComputeStep{metrics: metrics}
}

func (s *ComputeStep) ID() string   { return "compute" }
func (s *ComputeStep) Name() string { return "Compute indicator snapshots" }

func (s *ComputeStep) Validate(state *State) error {
	if state.Series == nil {
		return fmt.Errorf("no parsed series available")
	}
	return nil
}

func (s *ComputeStep) Execute(ctx context.Context, state *State) error {
	table := indicators.Compute(state.Series, state.Config.Pipeline.Indicators, state.TargetYear)
	if len(table.Snapshots) == 0 {
		return fmt.Errorf("no indicator could be computed from the dataset")
	}
	state.Table = table
	state.Metrics = exporter.BuildCountryMetrics(table, state.Config.Pipeline.DisplayOrder)

	if s.metrics != nil {
		s.metrics.IndicatorsComputed.Add(ctx, int64(len(table.Snapshots)))
		dropped := len(state.Config.Pipeline.Indicators) - len(table.Snapshots)
		if dropped > 0 {
			s.metrics.IndicatorsDropped.Add(ctx, int64(dropped))
		}
	}
	return nil
}

// ExportStep writes the report artifacts.
type ExportStep struct{}

// NewExportStep creates the export step.
func NewExportStep() *ExportStep { return &ExportStep{} }

func (s *ExportStep) ID() string   { return "export" }
func (s *ExportStep) Name() string { return "Export report artifacts" }

func (s *ExportStep) Validate(state *State) error {
	if state.Table == nil {
		return fmt.Errorf("no snapshot table available")
	}
	return nil
}

func (s *ExportStep) Execute(ctx context.Context, state *State) error {
	order := state.Config.Pipeline.DisplayOrder
	if err := exporter.WriteCombinedCSV(state.Paths.CombinedCSV, state.Table, order); err != nil {
		return err
	}
	if err := exporter.WriteCountryMetricsJSON(state.Paths.CountryMetricsJSON, state.Table, order); err != nil {
		return err
	}
	return exporter.WriteWorkbook(state.Paths.WorkbookXLSX, state.Table, order)
}

// RenderStep writes the dashboard page.
type RenderStep struct{}

// NewRenderStep creates the render step.
func NewRenderStep() *RenderStep { return &RenderStep{} }

func (s *RenderStep) ID() string   { return "render" }
func (s *RenderStep) Name() string { return "Render dashboard" }

func (s *RenderStep) Validate(state *State) error {
	if state.Metrics == nil {
		return fmt.Errorf("no country metrics available")
	}
	return nil
}

func (s *RenderStep) Execute(ctx context.Context, state *State) error {
	return dashboard.WriteFile(state.Paths.DashboardHTML, dashboard.Input{
		Metrics:    state.Metrics,
		Continents: state.Config.Pipeline.Continents,
		TargetYear: state.TargetYear,
	})
}

// DefaultSteps builds the standard end-to-end step sequence.
func DefaultSteps(fetcher *fetch.Fetcher, metrics *infrastructure.PipelineMetrics) []Step {
	return []Step{
		NewAcquireStep(fetcher),
		NewParseStep(metrics),
		NewComputeStep(metrics),
		NewExportStep(),
		NewRenderStep(),
	}
}
