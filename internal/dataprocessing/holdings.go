package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"embdash/pkg/contracts/domain"
)

// HoldingsOptions controls how the ETF holdings CSV is read.
type HoldingsOptions struct {
	// SkipLines is the number of leading metadata lines before the
	// header row.
	SkipLines int
	// CountryColumn names the header column carrying the free-text
	// country name.
	CountryColumn string
	// Mapping translates holdings country names to ISO3 codes. Names
	// not in the table are dropped with a warning.
	Mapping domain.CountryMapping
}

// ParseHoldingsFile reads the holdings CSV at path. See ParseHoldings.
func ParseHoldingsFile(path string, opts HoldingsOptions) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer f.Close()
	return ParseHoldings(f, opts)
}

// ParseHoldings parses the holdings CSV and returns the sorted,
// deduplicated ISO3 codes of the countries the fund holds. The leading
// metadata lines are skipped before CSV parsing begins; the country
// column is located by header name rather than position.
func ParseHoldings(r io.Reader, opts HoldingsOptions) ([]string, error) {
	buf := bufio.NewReader(r)
	for i := 0; i < opts.SkipLines; i++ {
		if _, err := buf.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("holdings file ended inside the %d-line preamble", opts.SkipLines)
			}
			return nil, fmt.Errorf("failed to skip holdings preamble: %w", err)
		}
	}

	reader := csv.NewReader(buf)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings header: %w", err)
	}

	countryCol := -1
	for i, name := range header {
		if strings.TrimSpace(name) == opts.CountryColumn {
			countryCol = i
			break
		}
	}
	if countryCol < 0 {
		return nil, fmt.Errorf("could not find column %q in holdings header", opts.CountryColumn)
	}

	names := make(map[string]bool)
	rowCount := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The file ends with footnote lines that are not valid CSV
			// rows; anything unreadable past the data block is ignored.
			slog.Warn("skipping unreadable holdings row", slog.String("error", err.Error()))
			continue
		}
		rowCount++
		if countryCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[countryCol])
		if name == "" {
			continue
		}
		names[name] = true
	}

	codes := make(map[string]bool, len(names))
	for name := range names {
		code, ok := opts.Mapping[name]
		if !ok {
			slog.Warn("holdings country not in mapping table, dropping",
				slog.String("country", name))
			continue
		}
		codes[code] = true
	}

	universe := make([]string, 0, len(codes))
	for code := range codes {
		universe = append(universe, code)
	}
	sort.Strings(universe)

	slog.Info("holdings parsed",
		slog.Int("rows", rowCount),
		slog.Int("distinct_names", len(names)),
		slog.Int("mapped_countries", len(universe)))

	return universe, nil
}
