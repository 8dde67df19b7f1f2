package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"embdash/pkg/contracts/domain"
)

// WEOOptions controls how the WEO bulk export is read. The column names
// come from configuration so dataset-format drift is an operator fix,
// not a code change.
type WEOOptions struct {
	// SubjectColumn names the column carrying the indicator code.
	SubjectColumn string
	// CountryColumns is the priority list probed for the ISO3 column;
	// the first header that matches wins.
	CountryColumns []string
	// Indicators is the set of indicator codes to extract.
	Indicators []string
	// Countries restricts every series to this ISO3 universe. Countries
	// with no observations keep an empty entry so all series share one
	// country set.
	Countries []string
}

// ParseWEOFile reads the WEO bulk data file at path. See ParseWEO.
func ParseWEOFile(path string, opts WEOOptions) (map[string]*domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WEO file: %w", err)
	}
	defer f.Close()
	return ParseWEO(f, opts)
}

// ParseWEO parses the tab-delimited WEO bulk export and returns one
// series per requested indicator, keyed by indicator code. Indicators
// with no rows at all in the dataset are absent from the result; the
// caller decides whether that is fatal. Cells that do not parse as
// numbers ("n/a", "--", empty) become missing observations.
func ParseWEO(r io.Reader, opts WEOOptions) (map[string]*domain.Series, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read WEO header: %w", err)
		}
		return nil, fmt.Errorf("WEO file is empty")
	}
	header := splitWEOLine(scanner.Text())

	subjectCol := -1
	countryCol := -1
	countryColName := ""
	yearCols := make(map[int]int)

	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == opts.SubjectColumn {
			subjectCol = i
		}
		if year, err := strconv.Atoi(name); err == nil {
			yearCols[i] = year
		}
	}

	// The country column header has drifted across WEO vintages, so we
	// probe a priority list rather than hardcoding one name.
	for _, candidate := range opts.CountryColumns {
		for i, name := range header {
			if strings.TrimSpace(name) == candidate {
				countryCol = i
				countryColName = candidate
				break
			}
		}
		if countryCol >= 0 {
			break
		}
	}

	if subjectCol < 0 {
		return nil, fmt.Errorf("could not find subject column %q in WEO header", opts.SubjectColumn)
	}
	if countryCol < 0 {
		return nil, fmt.Errorf("could not find country column in WEO header; tried %v", opts.CountryColumns)
	}
	if len(yearCols) == 0 {
		return nil, fmt.Errorf("could not find any year columns in WEO header")
	}

	slog.Debug("WEO header resolved",
		slog.String("country_column", countryColName),
		slog.Int("year_columns", len(yearCols)))

	wanted := make(map[string]bool, len(opts.Indicators))
	for _, code := range opts.Indicators {
		wanted[code] = true
	}
	universe := make(map[string]bool, len(opts.Countries))
	for _, code := range opts.Countries {
		universe[code] = true
	}

	series := make(map[string]*domain.Series)
	rowCount := 0

	for scanner.Scan() {
		row := splitWEOLine(scanner.Text())
		rowCount++

		if len(row) <= subjectCol || len(row) <= countryCol {
			slog.Warn("skipping malformed WEO row",
				slog.Int("row", rowCount),
				slog.Int("columns", len(row)))
			continue
		}
		subject := strings.TrimSpace(row[subjectCol])
		if !wanted[subject] {
			continue
		}
		country := strings.TrimSpace(row[countryCol])
		if len(universe) > 0 && !universe[country] {
			continue
		}

		s, ok := series[subject]
		if !ok {
			s = domain.NewSeries(subject)
			series[subject] = s
		}
		for i, year := range yearCols {
			if i >= len(row) {
				continue
			}
			v, ok := parseWEOValue(row[i])
			if !ok {
				continue
			}
			s.Set(country, year, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read WEO file: %w", err)
	}

	// Every series gets the full universe so downstream views never
	// disagree on which countries exist.
	if len(opts.Countries) > 0 {
		for code, s := range series {
			series[code] = s.Restrict(opts.Countries)
		}
	}

	for _, code := range opts.Indicators {
		if _, ok := series[code]; !ok {
			slog.Warn("indicator has no rows in WEO dataset", slog.String("indicator", code))
		}
	}
	slog.Info("WEO dataset parsed",
		slog.Int("rows_scanned", rowCount),
		slog.Int("indicators_found", len(series)),
		slog.Int("indicators_requested", len(opts.Indicators)))

	return series, nil
}

// splitWEOLine splits one tab-delimited line, tolerating the trailing
// carriage returns the IMF export carries.
func splitWEOLine(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r"), "\t")
}

// parseWEOValue coerces one WEO cell to a float. The export uses
// thousands separators and a handful of not-available markers; anything
// that does not parse is treated as a missing observation.
func parseWEOValue(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "n/a" || cell == "--" {
		return 0, false
	}
	cell = strings.ReplaceAll(cell, ",", "")
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
