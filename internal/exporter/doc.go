// Package exporter writes the pipeline's report artifacts: the combined
// metrics CSV, the nested country-metrics JSON the dashboard embeds,
// and an Excel workbook for ad-hoc analysis.
package exporter
