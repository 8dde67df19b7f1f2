package indicators

import (
	"log/slog"
	"sort"

	"embdash/pkg/contracts/domain"
)

// Snapshot is one indicator's three resolved views.
type Snapshot struct {
	Indicator domain.Indicator
	Target    domain.SnapshotView
	Baseline  domain.SnapshotView
	Median    domain.SnapshotView
}

// Table is the combined result of resolving every available indicator.
// Snapshots appear in indicator definition order; indicators with no
// rows in the source dataset are not present at all.
type Table struct {
	TargetYear int
	Countries  []string
	Snapshots  []Snapshot
}

// Compute resolves the three views of every indicator that the source
// dataset actually carried. The definition order of indicators is
// preserved; series missing from the input are skipped with a warning
// and appear in no view.
func Compute(series map[string]*domain.Series, indicators []domain.Indicator, targetYear int) *Table {
	table := &Table{TargetYear: targetYear}
	countries := make(map[string]bool)

	for _, ind := range indicators {
		s, ok := series[ind.Code]
		if !ok {
			slog.Warn("indicator missing from dataset, dropping from all views",
				slog.String("indicator", ind.Code),
				slog.String("display_name", ind.DisplayName))
			continue
		}
		table.Snapshots = append(table.Snapshots, Snapshot{
			Indicator: ind,
			Target:    ResolveYear(s, targetYear, domain.PeriodTarget),
			Baseline:  ResolveYear(s, domain.BaselineYear, domain.PeriodBaseline),
			Median:    ResolveMedian(s, targetYear),
		})
		for country := range s.Values {
			countries[country] = true
		}
	}

	table.Countries = make([]string, 0, len(countries))
	for country := range countries {
		table.Countries = append(table.Countries, country)
	}
	sort.Strings(table.Countries)
	return table
}

// ProjectCountry extracts one country's record from the table, with
// indicators ordered by displayOrder. Computed indicators not named in
// displayOrder append afterwards in definition order; displayOrder
// entries that were dropped upstream are silently skipped.
func (t *Table) ProjectCountry(code string, displayOrder []string) domain.CountryRecord {
	record := domain.CountryRecord{
		Code:    code,
		Metrics: make(map[string]domain.MetricTriple, len(t.Snapshots)),
	}

	byName := make(map[string]Snapshot, len(t.Snapshots))
	for _, snap := range t.Snapshots {
		byName[snap.Indicator.DisplayName] = snap
	}

	listed := make(map[string]bool, len(displayOrder))
	for _, name := range displayOrder {
		if _, ok := byName[name]; !ok {
			continue
		}
		record.Indicators = append(record.Indicators, name)
		listed[name] = true
	}
	for _, snap := range t.Snapshots {
		if !listed[snap.Indicator.DisplayName] {
			record.Indicators = append(record.Indicators, snap.Indicator.DisplayName)
		}
	}

	for _, name := range record.Indicators {
		snap := byName[name]
		record.Metrics[name] = domain.MetricTriple{
			Target:   snap.Target.Values[code],
			Baseline: snap.Baseline.Values[code],
			Median:   snap.Median.Values[code],
		}
	}
	return record
}

// Records projects every country in the table, in sorted code order.
func (t *Table) Records(displayOrder []string) []domain.CountryRecord {
	records := make([]domain.CountryRecord, 0, len(t.Countries))
	for _, code := range t.Countries {
		records = append(records, t.ProjectCountry(code, displayOrder))
	}
	return records
}

// TargetUsedYear reports the year the target view of the named
// indicator actually read, when it differs from the requested target.
func (t *Table) TargetUsedYear(displayName string) (int, bool) {
	for _, snap := range t.Snapshots {
		if snap.Indicator.DisplayName == displayName {
			return snap.Target.UsedYear, snap.Target.UsedYear != 0 && snap.Target.UsedYear != t.TargetYear
		}
	}
	return 0, false
}
