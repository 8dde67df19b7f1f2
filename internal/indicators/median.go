package indicators

import (
	"sort"

	"embdash/pkg/contracts/domain"
)

// ResolveMedian builds the trailing-median snapshot view of a series:
// for each country, the median of the observations in the closed
// window [target-(MedianWindowYears-1), target]. Countries with no
// observations in the window get a nil entry. Years outside the window
// never contribute, even when the window is sparse.
func ResolveMedian(s *domain.Series, target int) domain.SnapshotView {
	view := domain.SnapshotView{
		Indicator: s.Indicator,
		Period:    domain.PeriodMedian,
		Values:    make(map[string]*float64, len(s.Values)),
	}
	from := target - (domain.MedianWindowYears - 1)

	for country, byYear := range s.Values {
		window := make([]float64, 0, domain.MedianWindowYears)
		for year := from; year <= target; year++ {
			if v, ok := byYear[year]; ok {
				window = append(window, v)
			}
		}
		if len(window) == 0 {
			view.Values[country] = nil
			continue
		}
		m := median(window)
		view.Values[country] = &m
	}
	return view
}

// median of a non-empty slice; the slice is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
