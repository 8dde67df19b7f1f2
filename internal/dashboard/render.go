// Package dashboard renders the static single-page dashboard. The
// page markup lives in an embedded template; the country metrics and
// the continent grouping are injected at render time so data and
// presentation stay separate.
package dashboard

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"embdash/internal/exporter"
	"embdash/pkg/contracts/domain"
)

//go:embed template.html
var pageTemplate string

// The markup is JSX-heavy, so the template uses square-bracket
// delimiters to keep Go's default braces out of the way.
var page = template.Must(template.New("dashboard").Delims("[[", "]]").Parse(pageTemplate))

// Input is everything the page needs.
type Input struct {
	// Metrics is the nested country document embedded into the page.
	Metrics exporter.CountryMetrics
	// Continents groups the country buttons by continent heading.
	Continents map[string]domain.ContinentGroup
	// TargetYear labels the "current" column.
	TargetYear int
}

type pageData struct {
	MetricsJSON    string
	ContinentsJSON string
	TargetYear     string
}

// Render produces the complete HTML page.
func Render(in Input) ([]byte, error) {
	metricsJSON, err := json.MarshalIndent(in.Metrics, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	continentsJSON, err := json.MarshalIndent(in.Continents, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal continents: %w", err)
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, pageData{
		MetricsJSON:    string(metricsJSON),
		ContinentsJSON: string(continentsJSON),
		TargetYear:     strconv.Itoa(in.TargetYear),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the page and writes it to disk.
func WriteFile(filePath string, in Input) error {
	html, err := Render(in)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, html, 0644); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}

	slog.Info("dashboard written",
		slog.String("path", filePath),
		slog.Int("countries", len(in.Metrics)),
		slog.Int("bytes", len(html)))
	return nil
}
