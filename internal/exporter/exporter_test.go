package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"embdash/internal/indicators"
	"embdash/pkg/contracts/domain"
)

func fixtureTable(t *testing.T) (*indicators.Table, []string) {
	t.Helper()

	gdp := domain.NewSeries("NGDPD")
	gdp.Set("BRA", 2019, 1873.29)
	gdp.Set("BRA", 2021, 1670.05)
	gdp.Set("BRA", 2025, 2307.16)
	gdp.Set("MEX", 2019, 1305.1)
	gdp.Values["MEX"][2025] = 1852.72

	inflation := domain.NewSeries("PCPIPCH")
	inflation.Set("BRA", 2025, 4.217)
	// Mexico has no inflation data; the nulls must survive export.
	inflation.Values["MEX"] = make(map[int]float64)

	defs := []domain.Indicator{
		{Code: "NGDPD", DisplayName: "GDP (USD bn)"},
		{Code: "PCPIPCH", DisplayName: "CPI Inflation (%)"},
	}
	series := map[string]*domain.Series{"NGDPD": gdp, "PCPIPCH": inflation}
	order := []string{"GDP (USD bn)", "CPI Inflation (%)"}
	return indicators.Compute(series, defs, 2025), order
}

func TestBuildCountryMetrics(t *testing.T) {
	table, order := fixtureTable(t)
	doc := BuildCountryMetrics(table, order)

	require.Contains(t, doc, "BRA")
	require.Contains(t, doc, "MEX")

	gdp := doc["BRA"].Get("GDP (USD bn)")
	require.NotNil(t, gdp["2025"])
	assert.InDelta(t, 2307.2, *gdp["2025"], 1e-9)
	require.NotNil(t, gdp["2019"])
	assert.InDelta(t, 1873.3, *gdp["2019"], 1e-9)
	require.NotNil(t, gdp["10yr_Median"])

	// Absence is preserved as nil, never zero.
	inflation := doc["MEX"].Get("CPI Inflation (%)")
	require.Contains(t, inflation, "2025")
	assert.Nil(t, inflation["2025"])
	assert.Nil(t, inflation["2019"])
	assert.Nil(t, inflation["10yr_Median"])
}

func TestBuildCountryMetricsRoundsOnce(t *testing.T) {
	table, order := fixtureTable(t)
	doc := BuildCountryMetrics(table, order)

	v := doc["BRA"].Get("CPI Inflation (%)")["2025"]
	require.NotNil(t, v)
	assert.Equal(t, 4.2, *v)
	assert.Equal(t, round1(*v), *v, "rounding must be idempotent")
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 4.217, want: 4.2},
		{in: 4.25, want: 4.3},
		{in: -2.35, want: -2.4},
		{in: 0, want: 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, round1(tt.in), 1e-9, "round1(%v)", tt.in)
	}
}

func TestWriteCountryMetricsJSONRoundTrip(t *testing.T) {
	table, order := fixtureTable(t)
	path := filepath.Join(t.TempDir(), "country_metrics.json")

	require.NoError(t, WriteCountryMetricsJSON(path, table, order))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc CountryMetrics
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotNil(t, doc["BRA"].Get("GDP (USD bn)")["2025"])
	assert.InDelta(t, 2307.2, *doc["BRA"].Get("GDP (USD bn)")["2025"], 1e-9)
	assert.Nil(t, doc["MEX"].Get("CPI Inflation (%)")["2019"])

	// The artifact carries the display order, and re-reading it keeps
	// that order intact.
	assert.Equal(t, []string{"GDP (USD bn)", "CPI Inflation (%)"}, doc["BRA"].Names())
}

func TestCountryMetricsJSONKeepsDisplayOrder(t *testing.T) {
	table, order := fixtureTable(t)
	doc := BuildCountryMetrics(table, order)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	// "CPI Inflation (%)" sorts before "GDP (USD bn)" alphabetically,
	// so map-key sorting would invert the configured order.
	gdpIdx := bytes.Index(data, []byte(`"GDP (USD bn)"`))
	cpiIdx := bytes.Index(data, []byte(`"CPI Inflation (%)"`))
	require.NotEqual(t, -1, gdpIdx)
	require.NotEqual(t, -1, cpiIdx)
	assert.Less(t, gdpIdx, cpiIdx)
}

func TestWriteCombinedCSV(t *testing.T) {
	table, order := fixtureTable(t)
	path := filepath.Join(t.TempDir(), "combined_metrics.csv")

	require.NoError(t, WriteCombinedCSV(path, table, order))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"country", "indicator", "period", "value"}, rows[0])

	// 2 countries x 2 indicators x 3 periods, plus the header.
	assert.Len(t, rows, 1+2*2*3)
	assert.Equal(t, []string{"BRA", "GDP (USD bn)", "2025", "2307.2"}, rows[1])

	// Missing observations are blank cells, not zeros.
	var mexInflation []string
	for _, row := range rows[1:] {
		if row[0] == "MEX" && row[1] == "CPI Inflation (%)" && row[2] == "2025" {
			mexInflation = row
		}
	}
	require.NotNil(t, mexInflation)
	assert.Equal(t, "", mexInflation[3])
}

func TestWriteWorkbook(t *testing.T) {
	table, order := fixtureTable(t)
	path := filepath.Join(t.TempDir(), "country_metrics.xlsx")

	require.NoError(t, WriteWorkbook(path, table, order))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"2025", "2019", "10yr_Median"}, f.GetSheetList())

	v, err := f.GetCellValue("2025", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2307.2", v)

	name, err := f.GetCellValue("2019", "A2")
	require.NoError(t, err)
	assert.Equal(t, "BRA", name)
}
