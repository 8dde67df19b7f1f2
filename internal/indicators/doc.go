// Package indicators turns full indicator time series into the three
// snapshot views the dashboard shows: the target year, the 2019
// baseline, and the trailing 10-year median.
package indicators
