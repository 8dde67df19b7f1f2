package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"embdash/internal/indicators"
)

// WriteWorkbook writes the combined table as an Excel workbook with one
// sheet per period: countries as rows, indicators as columns. Missing
// observations stay as empty cells.
func WriteWorkbook(filePath string, table *indicators.Table, displayOrder []string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	periods := periodKeys(table.TargetYear)
	records := table.Records(displayOrder)

	var indicatorNames []string
	if len(records) > 0 {
		indicatorNames = records[0].Indicators
	}

	for periodIdx, sheet := range periods {
		if periodIdx == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		header := append([]string{"Country"}, indicatorNames...)
		for col, name := range header {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return fmt.Errorf("failed to address header cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, name); err != nil {
				return fmt.Errorf("failed to write header cell: %w", err)
			}
		}

		for rowIdx, record := range records {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to address row cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, record.Code); err != nil {
				return fmt.Errorf("failed to write country cell: %w", err)
			}
			for colIdx, name := range indicatorNames {
				triple := record.Metrics[name]
				values := [3]*float64{triple.Target, triple.Baseline, triple.Median}
				v := values[periodIdx]
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
				if err != nil {
					return fmt.Errorf("failed to address value cell: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, round1(*v)); err != nil {
					return fmt.Errorf("failed to write value cell: %w", err)
				}
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("workbook written",
		slog.String("path", filePath),
		slog.Int("countries", len(records)),
		slog.Int("sheets", len(periods)))
	return nil
}
