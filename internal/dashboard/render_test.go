package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embdash/internal/exporter"
	"embdash/pkg/contracts/domain"
)

func fixtureInput() Input {
	v := func(f float64) *float64 { return &f }
	bra := exporter.NewIndicatorMetrics()
	bra.Set("GDP (USD bn)", map[string]*float64{
		"2025":        v(2307.2),
		"2019":        v(1873.3),
		"10yr_Median": v(1834.2),
	})
	bra.Set("CPI Inflation (%)", map[string]*float64{
		"2025":        nil,
		"2019":        v(3.7),
		"10yr_Median": v(4.6),
	})
	return Input{
		Metrics: exporter.CountryMetrics{"BRA": bra},
		Continents: map[string]domain.ContinentGroup{
			"Americas": {"BRA": "Brazil"},
		},
		TargetYear: 2025,
	}
}

func TestRenderEmbedsDataAndYear(t *testing.T) {
	html, err := Render(fixtureInput())
	require.NoError(t, err)
	page := string(html)

	assert.Contains(t, page, `const targetYear = '2025';`)
	assert.Contains(t, page, `"GDP (USD bn)"`)
	assert.Contains(t, page, `"2025": 2307.2`)
	assert.Contains(t, page, `"Americas"`)
	assert.Contains(t, page, `"BRA": "Brazil"`)
	// Absent observations must land as JSON null, which the page shows
	// as N/A.
	assert.Contains(t, page, `"2025": null`)

	// The page renders indicators in document order, so the embedded
	// JSON must keep the display order ("CPI..." sorts before "GDP..."
	// alphabetically).
	assert.Less(t, strings.Index(page, `"GDP (USD bn)"`), strings.Index(page, `"CPI Inflation (%)"`))
}

func TestRenderLeavesNoDelimiters(t *testing.T) {
	html, err := Render(fixtureInput())
	require.NoError(t, err)
	page := string(html)

	assert.False(t, strings.Contains(page, "[[") || strings.Contains(page, "]]"),
		"unexpanded template delimiters left in output")
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web", "index.html")
	require.NoError(t, WriteFile(path, fixtureInput()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Emerging Markets Dashboard")
}
