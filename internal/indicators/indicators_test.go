package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embdash/pkg/contracts/domain"
)

func seriesWith(indicator string, values map[string]map[int]float64) *domain.Series {
	s := domain.NewSeries(indicator)
	for country, byYear := range values {
		for year, v := range byYear {
			s.Set(country, year, v)
		}
		if len(byYear) == 0 {
			s.Values[country] = make(map[int]float64)
		}
	}
	return s
}

func TestResolveYearExactMatch(t *testing.T) {
	s := seriesWith("NGDPD", map[string]map[int]float64{
		"BRA": {2024: 2188.4, 2025: 2307.2},
		"MEX": {2024: 1852.7},
	})

	view := ResolveYear(s, 2025, domain.PeriodTarget)
	assert.Equal(t, 2025, view.UsedYear)
	require.NotNil(t, view.Values["BRA"])
	assert.InDelta(t, 2307.2, *view.Values["BRA"], 1e-9)
	// Mexico has no 2025 value; the key stays, the value is nil.
	require.Contains(t, view.Values, "MEX")
	assert.Nil(t, view.Values["MEX"])
}

func TestResolveYearClosestSubstitution(t *testing.T) {
	s := seriesWith("GGXWDG_NGDP", map[string]map[int]float64{
		"BRA": {2026: 80.1, 2028: 84.3},
	})

	view := ResolveYear(s, 2030, domain.PeriodTarget)
	assert.Equal(t, 2028, view.UsedYear)
	require.NotNil(t, view.Values["BRA"])
	assert.InDelta(t, 84.3, *view.Values["BRA"], 1e-9)
}

func TestResolveYearTieGoesToEarlierYear(t *testing.T) {
	s := seriesWith("LP", map[string]map[int]float64{
		"BRA": {2024: 215.3, 2026: 216.8},
	})

	view := ResolveYear(s, 2025, domain.PeriodTarget)
	assert.Equal(t, 2024, view.UsedYear)
}

func TestResolveYearEmptySeries(t *testing.T) {
	s := seriesWith("BCA_NGDPD", map[string]map[int]float64{
		"BRA": {},
		"MEX": {},
	})

	view := ResolveYear(s, 2025, domain.PeriodTarget)
	assert.Zero(t, view.UsedYear)
	assert.Len(t, view.Values, 2)
	assert.Nil(t, view.Values["BRA"])
	assert.Nil(t, view.Values["MEX"])
}

func TestResolveMedianWindowBounds(t *testing.T) {
	byYear := make(map[int]float64)
	// 2010 sits just outside a 10-year window ending 2020 and must not
	// contribute; 2011..2020 are 1..10 with median 5.5.
	byYear[2010] = 1000
	for i, year := 1, 2011; year <= 2020; i, year = i+1, year+1 {
		byYear[year] = float64(i)
	}
	s := seriesWith("PCPIPCH", map[string]map[int]float64{"BRA": byYear})

	view := ResolveMedian(s, 2020)
	require.NotNil(t, view.Values["BRA"])
	assert.InDelta(t, 5.5, *view.Values["BRA"], 1e-9)
}

func TestResolveMedianOddCount(t *testing.T) {
	s := seriesWith("PCPIPCH", map[string]map[int]float64{
		"BRA": {2018: 3.0, 2019: 9.0, 2020: 4.0},
	})

	view := ResolveMedian(s, 2020)
	require.NotNil(t, view.Values["BRA"])
	assert.InDelta(t, 4.0, *view.Values["BRA"], 1e-9)
}

func TestResolveMedianEmptyWindow(t *testing.T) {
	s := seriesWith("PCPIPCH", map[string]map[int]float64{
		"BRA": {1995: 22.4},
	})

	view := ResolveMedian(s, 2025)
	require.Contains(t, view.Values, "BRA")
	assert.Nil(t, view.Values["BRA"])
}

func testIndicators() []domain.Indicator {
	return []domain.Indicator{
		{Code: "NGDPD", DisplayName: "GDP (USD bn)"},
		{Code: "LP", DisplayName: "Population (mn)"},
		{Code: "PCPIPCH", DisplayName: "CPI Inflation (%)"},
	}
}

func TestComputeDropsMissingIndicator(t *testing.T) {
	series := map[string]*domain.Series{
		"NGDPD": seriesWith("NGDPD", map[string]map[int]float64{
			"BRA": {2025: 2307.2},
		}),
		"LP": seriesWith("LP", map[string]map[int]float64{
			"BRA": {2025: 216.1},
		}),
	}

	table := Compute(series, testIndicators(), 2025)
	require.Len(t, table.Snapshots, 2)
	assert.Equal(t, "NGDPD", table.Snapshots[0].Indicator.Code)
	assert.Equal(t, "LP", table.Snapshots[1].Indicator.Code)

	record := table.ProjectCountry("BRA", []string{"Population (mn)", "CPI Inflation (%)", "GDP (USD bn)"})
	// The dropped indicator appears nowhere, listed or not.
	assert.Equal(t, []string{"Population (mn)", "GDP (USD bn)"}, record.Indicators)
	assert.NotContains(t, record.Metrics, "CPI Inflation (%)")
}

func TestProjectCountryDisplayOrderWithRemainder(t *testing.T) {
	series := map[string]*domain.Series{
		"NGDPD":   seriesWith("NGDPD", map[string]map[int]float64{"BRA": {2025: 2307.2}}),
		"LP":      seriesWith("LP", map[string]map[int]float64{"BRA": {2025: 216.1}}),
		"PCPIPCH": seriesWith("PCPIPCH", map[string]map[int]float64{"BRA": {2025: 4.2}}),
	}

	table := Compute(series, testIndicators(), 2025)
	record := table.ProjectCountry("BRA", []string{"CPI Inflation (%)"})
	assert.Equal(t, []string{"CPI Inflation (%)", "GDP (USD bn)", "Population (mn)"}, record.Indicators)
}

func TestProjectCountryMetricTriple(t *testing.T) {
	s := seriesWith("NGDPD", map[string]map[int]float64{
		"BRA": {2016: 1795.0, 2019: 1873.3, 2021: 1670.0, 2025: 2307.2},
	})
	table := Compute(map[string]*domain.Series{"NGDPD": s}, testIndicators()[:1], 2025)

	record := table.ProjectCountry("BRA", []string{"GDP (USD bn)"})
	triple := record.Metrics["GDP (USD bn)"]
	require.NotNil(t, triple.Target)
	assert.InDelta(t, 2307.2, *triple.Target, 1e-9)
	require.NotNil(t, triple.Baseline)
	assert.InDelta(t, 1873.3, *triple.Baseline, 1e-9)
	require.NotNil(t, triple.Median)
	// Window 2016..2025 holds 1795.0, 1873.3, 1670.0, 2307.2.
	assert.InDelta(t, (1795.0+1873.3)/2, *triple.Median, 1e-9)
}

func TestRecordsCoverSortedUniverse(t *testing.T) {
	s := seriesWith("NGDPD", map[string]map[int]float64{
		"MEX": {2025: 1852.7},
		"BRA": {2025: 2307.2},
	})
	table := Compute(map[string]*domain.Series{"NGDPD": s}, testIndicators()[:1], 2025)

	records := table.Records([]string{"GDP (USD bn)"})
	require.Len(t, records, 2)
	assert.Equal(t, "BRA", records[0].Code)
	assert.Equal(t, "MEX", records[1].Code)
}

func TestTargetUsedYearReportsSubstitution(t *testing.T) {
	s := seriesWith("NGDPD", map[string]map[int]float64{"BRA": {2028: 2500.0}})
	table := Compute(map[string]*domain.Series{"NGDPD": s}, testIndicators()[:1], 2030)

	used, substituted := table.TargetUsedYear("GDP (USD bn)")
	assert.True(t, substituted)
	assert.Equal(t, 2028, used)
}
