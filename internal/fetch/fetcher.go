package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"embdash/internal/config"
	"embdash/internal/infrastructure"
)

// ErrExhausted is returned when every candidate of a source failed.
var ErrExhausted = errors.New("all download candidates failed")

// Candidate is one concrete URL to try for a source.
type Candidate struct {
	Label string
	URL   string
}

// Source is a named download with an ordered candidate list. Both data
// sources go through the same fallback-and-validate path; a source with
// no alternates simply carries a single candidate.
type Source struct {
	Name       string
	Candidates []Candidate
	// ManualHint is appended to the exhaustion error so the operator
	// knows where to fetch the file by hand.
	ManualHint string
}

// WEOSource builds the WEO database source from the configured release
// fallback list.
func WEOSource(cfg config.SourcesConfig) Source {
	candidates := make([]Candidate, 0, len(cfg.WEOReleases))
	for _, rel := range cfg.WEOReleases {
		candidates = append(candidates, Candidate{
			Label: rel.Label(),
			URL:   rel.URL(cfg.WEOBaseURL),
		})
	}
	return Source{
		Name:       "weo",
		Candidates: candidates,
		ManualHint: "download manually from https://www.imf.org/en/Publications/WEO/weo-database",
	}
}

// HoldingsSource builds the ETF holdings source. One candidate only.
func HoldingsSource(cfg config.SourcesConfig) Source {
	return Source{
		Name:       "holdings",
		Candidates: []Candidate{{Label: "holdings", URL: cfg.HoldingsURL}},
		ManualHint: "download the holdings CSV from the fund page by hand",
	}
}

// Fetcher downloads a source to a local file, validating that the body
// is tabular data rather than an HTML error or redirect page.
type Fetcher struct {
	client  *http.Client
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewFetcher creates a fetcher with the given per-attempt timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Download tries the source's candidates in order and writes the first
// valid body to destPath. It returns the winning candidate. Exhausting
// the list is fatal to the caller: the error wraps ErrExhausted and
// carries the source's manual-download hint.
func (f *Fetcher) Download(ctx context.Context, source Source, destPath string) (Candidate, error) {
	if len(source.Candidates) == 0 {
		return Candidate{}, fmt.Errorf("source %s has no candidates", source.Name)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return Candidate{}, fmt.Errorf("create download directory: %w", err)
	}

	for _, candidate := range source.Candidates {
		f.logger.InfoContext(ctx, "attempting download",
			slog.String("source", source.Name),
			slog.String("candidate", candidate.Label),
			slog.String("url", candidate.URL))

		err := f.attempt(ctx, candidate.URL, destPath)
		f.recordAttempt(ctx, source.Name, err == nil)
		if err != nil {
			if ctx.Err() != nil {
				return Candidate{}, ctx.Err()
			}
			f.logger.WarnContext(ctx, "download attempt failed",
				slog.String("source", source.Name),
				slog.String("candidate", candidate.Label),
				slog.String("error", err.Error()))
			continue
		}

		if err := validateTabular(destPath); err != nil {
			f.logger.WarnContext(ctx, "downloaded file rejected",
				slog.String("source", source.Name),
				slog.String("candidate", candidate.Label),
				slog.String("error", err.Error()))
			os.Remove(destPath)
			continue
		}

		f.logger.InfoContext(ctx, "download succeeded",
			slog.String("source", source.Name),
			slog.String("candidate", candidate.Label),
			slog.String("path", destPath))
		return candidate, nil
	}

	return Candidate{}, fmt.Errorf("source %s: %w; %s", source.Name, ErrExhausted, source.ManualHint)
}

// attempt performs a single GET and writes the body to destPath.
func (f *Fetcher) attempt(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	if f.metrics != nil {
		f.metrics.FetchBytesTotal.Add(ctx, written)
	}

	return nil
}

func (f *Fetcher) recordAttempt(ctx context.Context, source string, success bool) {
	if f.metrics == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	f.metrics.FetchAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	))
}

// validateTabular rejects files whose first line looks like an HTML
// document; the IMF endpoint answers stale release URLs with a redirect
// page instead of a 404.
func validateTabular(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open downloaded file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		return fmt.Errorf("downloaded file is empty")
	}

	firstLine := strings.ToLower(scanner.Text())
	if strings.Contains(firstLine, "<html") || strings.Contains(firstLine, "<head") || strings.Contains(firstLine, "<!doctype") {
		return fmt.Errorf("body is an HTML page, not tabular data")
	}

	return nil
}
