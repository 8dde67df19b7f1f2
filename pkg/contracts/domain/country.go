package domain

// MetricTriple is the three time-sliced values of one indicator for one
// country. Nil members mean the source data had no usable observation;
// absence is preserved, never collapsed to zero.
type MetricTriple struct {
	Target   *float64 `json:"target"`
	Baseline *float64 `json:"2019"`
	Median   *float64 `json:"10yr_median"`
}

// CountryRecord is one country's row of the combined table: indicator
// display name -> metric triple, in display order.
type CountryRecord struct {
	Code       string
	Indicators []string // display names, projection order
	Metrics    map[string]MetricTriple
}

// CountryMapping resolves a free-text holdings country name to its ISO3
// code. Names absent from the table are dropped by the resolver.
type CountryMapping map[string]string

// ContinentGroup names the countries shown under one continent heading
// on the dashboard: ISO3 code -> canonical display name.
type ContinentGroup map[string]string
