package indicators

import (
	"log/slog"

	"embdash/pkg/contracts/domain"
)

// ResolveYear builds the snapshot view of a series for one requested
// year. The year choice is made once per series, against the union of
// observed years, so every country in the view reads from the same
// year:
//
//   - the requested year, when any country observes it;
//   - otherwise the observed year closest to the request, ties going
//     to the earlier year;
//   - otherwise (no observations at all) an empty view.
//
// Countries without a value at the chosen year get a nil entry; the
// key is still present so all views share one country universe.
func ResolveYear(s *domain.Series, year int, period domain.Period) domain.SnapshotView {
	view := domain.SnapshotView{
		Indicator: s.Indicator,
		Period:    period,
		Values:    make(map[string]*float64, len(s.Values)),
	}
	for country := range s.Values {
		view.Values[country] = nil
	}

	years := s.Years()
	if len(years) == 0 {
		return view
	}

	used := closestYear(years, year)
	view.UsedYear = used
	if used != year {
		slog.Warn("requested year not in dataset, substituting closest",
			slog.String("indicator", s.Indicator),
			slog.Int("requested", year),
			slog.Int("used", used))
	}

	for country := range s.Values {
		if v, ok := s.Get(country, used); ok {
			value := v
			view.Values[country] = &value
		}
	}
	return view
}

// closestYear picks the element of years nearest to target. years must
// be non-empty and sorted ascending; on a tie the earlier year wins.
func closestYear(years []int, target int) int {
	best := years[0]
	bestDist := abs(best - target)
	for _, y := range years[1:] {
		if d := abs(y - target); d < bestDist {
			best = y
			bestDist = d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
