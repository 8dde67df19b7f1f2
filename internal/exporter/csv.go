package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"embdash/internal/indicators"
)

// WriteCombinedCSV writes the combined table in long form, one row per
// country, indicator and period. Rows are ordered by country code,
// then display order, then period, so reruns produce byte-identical
// files.
func WriteCombinedCSV(filePath string, table *indicators.Table, displayOrder []string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"country", "indicator", "period", "value"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	periods := periodKeys(table.TargetYear)
	rowCount := 0
	for _, record := range table.Records(displayOrder) {
		for _, name := range record.Indicators {
			triple := record.Metrics[name]
			cells := [3]*float64{triple.Target, triple.Baseline, triple.Median}
			for i, period := range periods {
				row := []string{record.Code, name, period, formatRounded(cells[i])}
				if err := writer.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
				rowCount++
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	slog.Info("combined CSV written",
		slog.String("path", filePath),
		slog.Int("rows", rowCount))
	return nil
}
