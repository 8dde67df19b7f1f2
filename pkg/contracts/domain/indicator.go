package domain

import "sort"

// Indicator describes one WEO subject the pipeline extracts.
type Indicator struct {
	Code        string `json:"code" yaml:"code" validate:"required"`
	DisplayName string `json:"display_name" yaml:"display_name" validate:"required"`
}

// Series holds the full time series of one indicator for a set of
// countries: ISO3 code -> calendar year -> observed value.
// Missing observations are simply absent from the inner map.
type Series struct {
	Indicator string
	Values    map[string]map[int]float64
}

// NewSeries creates an empty series for the given indicator code.
func NewSeries(indicator string) *Series {
	return &Series{
		Indicator: indicator,
		Values:    make(map[string]map[int]float64),
	}
}

// Set records an observation for a country and year.
func (s *Series) Set(country string, year int, value float64) {
	if s.Values[country] == nil {
		s.Values[country] = make(map[int]float64)
	}
	s.Values[country][year] = value
}

// Get returns the observation for a country and year, if present.
func (s *Series) Get(country string, year int) (float64, bool) {
	years, ok := s.Values[country]
	if !ok {
		return 0, false
	}
	v, ok := years[year]
	return v, ok
}

// Countries returns the country codes present in the series, sorted.
func (s *Series) Countries() []string {
	codes := make([]string, 0, len(s.Values))
	for code := range s.Values {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Years returns the sorted union of years observed across all countries.
func (s *Series) Years() []int {
	seen := make(map[int]bool)
	for _, byYear := range s.Values {
		for year := range byYear {
			seen[year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Restrict returns a copy of the series containing only the given
// countries. Countries absent from the source keep an entry with no
// observations so the three snapshot views share one country universe.
func (s *Series) Restrict(countries []string) *Series {
	out := NewSeries(s.Indicator)
	for _, code := range countries {
		if byYear, ok := s.Values[code]; ok {
			dst := make(map[int]float64, len(byYear))
			for year, v := range byYear {
				dst[year] = v
			}
			out.Values[code] = dst
		} else {
			out.Values[code] = make(map[int]float64)
		}
	}
	return out
}

// Period identifies one of the three snapshot views of an indicator.
type Period string

const (
	// PeriodTarget is the configured target year (usually the current
	// calendar year); its JSON key is the year itself, e.g. "2025".
	PeriodTarget Period = "target"
	// PeriodBaseline is the fixed pre-pandemic reference year.
	PeriodBaseline Period = "2019"
	// PeriodMedian is the trailing 10-year median ending at the target.
	PeriodMedian Period = "10yr_Median"
)

// BaselineYear is the fixed historical comparison year.
const BaselineYear = 2019

// MedianWindowYears is the width of the trailing median window.
const MedianWindowYears = 10

// SnapshotView maps country code to a single optional value for one
// indicator and one period definition. A nil entry means the source had
// no usable observation for that country; the key is still present so
// every view covers the same country universe.
type SnapshotView struct {
	Indicator string
	Period    Period
	Values    map[string]*float64
	// UsedYear is the year the resolver actually read, when the view is
	// year-based. Zero for the median view or a positional fallback.
	UsedYear int
}
