package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embdash/pkg/contracts/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9, cfg.Sources.HoldingsSkipLines)
	assert.Equal(t, "Location", cfg.Sources.HoldingsCountryColumn)

	require.NotEmpty(t, cfg.Sources.WEOReleases)
	assert.Equal(t, 2025, cfg.Sources.WEOReleases[0].Year)

	assert.Len(t, cfg.Pipeline.Indicators, 12)
	assert.Len(t, cfg.Pipeline.DisplayOrder, 12)
	assert.Len(t, cfg.Pipeline.Countries, 40)

	require.NoError(t, cfg.Validate())
}

func TestCountryMappingInjective(t *testing.T) {
	// No two holdings names may map to the same ISO3 code.
	seen := make(map[string]string)
	for name, code := range DefaultCountryMapping() {
		prev, dup := seen[code]
		require.Falsef(t, dup, "both %q and %q map to %s", prev, name, code)
		seen[code] = name
	}
}

func TestValidateRejectsDuplicateCodes(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Countries["Brasil"] = "BRA" // second name for BRA
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not injective")
}

func TestValidateRejectsBadCode(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Countries["Narnia"] = "NARN"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBaselineTargetYear(t *testing.T) {
	// A target year equal to the baseline year would collapse the two
	// period columns into one "2019" key.
	cfg := Default()
	cfg.Pipeline.TargetYear = domain.BaselineYear
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline")
}

func TestReleaseCandidateURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate ReleaseCandidate
		wantURL   string
		wantLabel string
	}{
		{
			name:      "october release",
			candidate: ReleaseCandidate{Year: 2025, Release: 2},
			wantURL:   "https://example.org/weo/2025/Oct/WEOOct2025all.ashx",
			wantLabel: "Oct 2025",
		},
		{
			name:      "april release",
			candidate: ReleaseCandidate{Year: 2024, Release: 1},
			wantURL:   "https://example.org/weo/2024/Apr/WEOApr2024all.ashx",
			wantLabel: "Apr 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantURL, tt.candidate.URL("https://example.org/weo"))
			assert.Equal(t, tt.wantLabel, tt.candidate.Label())
		})
	}
}

func TestEffectiveTargetYear(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	p := PipelineConfig{TargetYear: 0}
	assert.Equal(t, 2026, p.EffectiveTargetYear(now))

	p.TargetYear = 2024
	assert.Equal(t, 2024, p.EffectiveTargetYear(now))
}

func TestPathsAt(t *testing.T) {
	root := t.TempDir()
	paths := PathsAt(root)

	assert.Equal(t, root, paths.ExecutableDir)
	assert.Contains(t, paths.WEOFile, "downloads")
	assert.Contains(t, paths.DashboardHTML, "web")

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.DownloadsDir)
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.WebDir)
}
