package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// round1 rounds to one decimal place. Rounding happens exactly once,
// at serialization time; intermediate math always uses full precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatRounded renders an optional metric for CSV output: one decimal
// place, or an empty cell when the observation is missing.
func formatRounded(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", round1(*v))
}

// periodKeys returns the three period column labels for a target year,
// in output order. The target year is its own label so readers can see
// which year "current" meant for this run.
func periodKeys(targetYear int) [3]string {
	return [3]string{strconv.Itoa(targetYear), "2019", "10yr_Median"}
}
