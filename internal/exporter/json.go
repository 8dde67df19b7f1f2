package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"embdash/internal/indicators"
)

// CountryMetrics is the nested document the dashboard consumes:
// ISO3 code -> indicator display name -> period label -> value.
// Missing observations serialize as JSON null, never as zero.
type CountryMetrics map[string]*IndicatorMetrics

// IndicatorMetrics holds one country's indicator entries in display
// order. encoding/json sorts map keys, and the dashboard renders
// indicators in document order, so the order has to survive
// marshaling; a plain map would shuffle the configured priority into
// alphabetical order.
type IndicatorMetrics struct {
	names  []string
	values map[string]map[string]*float64
}

// NewIndicatorMetrics creates an empty indicator mapping.
func NewIndicatorMetrics() *IndicatorMetrics {
	return &IndicatorMetrics{values: make(map[string]map[string]*float64)}
}

// Set adds or replaces an indicator entry. The first insertion of a
// name fixes its position.
func (m *IndicatorMetrics) Set(name string, periods map[string]*float64) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = periods
}

// Get returns the period values for an indicator, or nil when absent.
func (m *IndicatorMetrics) Get(name string) map[string]*float64 {
	return m.values[name]
}

// Names returns the indicator names in document order.
func (m *IndicatorMetrics) Names() []string {
	return append([]string(nil), m.names...)
}

// Len reports the number of indicator entries.
func (m *IndicatorMetrics) Len() int { return len(m.names) }

// MarshalJSON writes the object with keys in document order.
func (m *IndicatorMetrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores entries in the order the document carries
// them, so a re-served artifact keeps its display order.
func (m *IndicatorMetrics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("indicator metrics: expected object, got %v", tok)
	}

	m.names = nil
	m.values = make(map[string]map[string]*float64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("indicator metrics: expected key, got %v", tok)
		}
		var periods map[string]*float64
		if err := dec.Decode(&periods); err != nil {
			return err
		}
		m.Set(name, periods)
	}
	_, err = dec.Token()
	return err
}

// BuildCountryMetrics projects the combined table into the nested
// document shape, rounding every value to one decimal place. The
// target-year period is keyed by the year itself, e.g. "2025".
func BuildCountryMetrics(table *indicators.Table, displayOrder []string) CountryMetrics {
	periods := periodKeys(table.TargetYear)
	doc := make(CountryMetrics, len(table.Countries))

	for _, record := range table.Records(displayOrder) {
		byIndicator := NewIndicatorMetrics()
		for _, name := range record.Indicators {
			triple := record.Metrics[name]
			byIndicator.Set(name, map[string]*float64{
				periods[0]: roundPtr(triple.Target),
				periods[1]: roundPtr(triple.Baseline),
				periods[2]: roundPtr(triple.Median),
			})
		}
		doc[record.Code] = byIndicator
	}
	return doc
}

// WriteCountryMetricsJSON writes the nested document to disk, indented
// for human inspection.
func WriteCountryMetricsJSON(filePath string, table *indicators.Table, displayOrder []string) error {
	doc := BuildCountryMetrics(table, displayOrder)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal country metrics: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write country metrics: %w", err)
	}

	slog.Info("country metrics JSON written",
		slog.String("path", filePath),
		slog.Int("countries", len(doc)))
	return nil
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}
