package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"embdash/pkg/contracts/domain"
)

// Config represents the complete application configuration. Everything
// the pipeline consumes - release candidates, indicator set, country
// table, display order, continent grouping - lives here so tests and
// operators can substitute any of it without touching pipeline code.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration for the serve command.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// ReleaseCandidate identifies one WEO database release to try. Release 1
// is the April vintage, release 2 the October vintage.
type ReleaseCandidate struct {
	Year    int `yaml:"year" validate:"min=2000"`
	Release int `yaml:"release" validate:"min=1,max=2"`
}

// Label returns the human-readable release name, e.g. "Oct 2025".
func (r ReleaseCandidate) Label() string {
	month := "Apr"
	if r.Release == 2 {
		month = "Oct"
	}
	return fmt.Sprintf("%s %d", month, r.Year)
}

// URL renders the candidate against the configured template. The IMF
// bulk-download layout is year/WEO{Month}{Year}all.ashx under the base.
func (r ReleaseCandidate) URL(base string) string {
	month := "Apr"
	if r.Release == 2 {
		month = "Oct"
	}
	return fmt.Sprintf("%s/%d/%s/WEO%s%dall.ashx", base, r.Year, month, month, r.Year)
}

// SourcesConfig describes the two inbound data sources.
type SourcesConfig struct {
	// WEOBaseURL is the root of the IMF bulk-download tree.
	WEOBaseURL string `yaml:"weo_base_url" envconfig:"WEO_BASE_URL" default:"https://www.imf.org/-/media/Files/Publications/WEO/WEO-Database" validate:"url"`
	// WEOReleases is the ordered fallback list; the first candidate that
	// yields tabular (non-HTML) content wins.
	WEOReleases []ReleaseCandidate `yaml:"weo_releases"`
	// HoldingsURL is the ETF holdings CSV endpoint. It has no alternate
	// releases, so it becomes a one-element candidate list downstream.
	HoldingsURL string `yaml:"holdings_url" envconfig:"HOLDINGS_URL" default:"https://www.ishares.com/us/products/239572/ishares-jp-morgan-usd-emerging-markets-bond-etf/1467271812596.ajax?fileType=csv&fileName=EMB_holdings&dataType=fund" validate:"url"`
	// HoldingsSkipLines is the number of leading metadata lines before
	// the holdings CSV header row.
	HoldingsSkipLines int `yaml:"holdings_skip_lines" envconfig:"HOLDINGS_SKIP_LINES" default:"9" validate:"min=0"`
	// HoldingsCountryColumn names the holdings column carrying the
	// free-text country name.
	HoldingsCountryColumn string `yaml:"holdings_country_column" envconfig:"HOLDINGS_COUNTRY_COLUMN" default:"Location"`
	// FetchTimeout bounds each individual download attempt.
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"2m"`
}

// PipelineConfig carries the analytic parameters and reference tables.
type PipelineConfig struct {
	// TargetYear is the year "current" values are requested for.
	// Zero means the run's real-world calendar year.
	TargetYear int `yaml:"target_year" envconfig:"TARGET_YEAR" default:"0"`
	// CountryColumns is the priority list probed to identify the WEO
	// country-code column; dataset-format drift is handled here, not in
	// code.
	CountryColumns []string `yaml:"country_columns"`
	// SubjectColumn names the WEO column carrying the indicator code.
	SubjectColumn string `yaml:"subject_column" envconfig:"SUBJECT_COLUMN" default:"WEO Subject Code"`
	// Indicators is the extraction set, in definition order.
	Indicators []domain.Indicator `yaml:"indicators" validate:"dive"`
	// DisplayOrder fixes the indicator ordering on a country card;
	// indicators not listed append in their natural remaining order.
	DisplayOrder []string `yaml:"display_order"`
	// Countries maps free-text holdings names to ISO3 codes.
	Countries domain.CountryMapping `yaml:"countries"`
	// Continents groups dashboard countries by continent heading.
	Continents map[string]domain.ContinentGroup `yaml:"continents"`
}

// EffectiveTargetYear resolves the zero default to the current year.
func (p PipelineConfig) EffectiveTargetYear(now time.Time) int {
	if p.TargetYear > 0 {
		return p.TargetYear
	}
	return now.Year()
}

// Load loads configuration from environment variables and an optional
// config file, fills reference-table defaults, and validates the result.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EMB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		mergeReferenceTables(&cfg, fileCfg)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// environment or the filesystem. Tests use this as a starting point.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Sources: SourcesConfig{
			WEOBaseURL:            "https://www.imf.org/-/media/Files/Publications/WEO/WEO-Database",
			HoldingsURL:           "https://www.ishares.com/us/products/239572/ishares-jp-morgan-usd-emerging-markets-bond-etf/1467271812596.ajax?fileType=csv&fileName=EMB_holdings&dataType=fund",
			HoldingsSkipLines:     9,
			HoldingsCountryColumn: "Location",
			FetchTimeout:          2 * time.Minute,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills any reference table the environment and config
// file left empty with the built-in defaults.
func (c *Config) applyDefaults() {
	if len(c.Sources.WEOReleases) == 0 {
		c.Sources.WEOReleases = DefaultReleases()
	}
	if len(c.Pipeline.CountryColumns) == 0 {
		c.Pipeline.CountryColumns = DefaultCountryColumns()
	}
	if c.Pipeline.SubjectColumn == "" {
		c.Pipeline.SubjectColumn = "WEO Subject Code"
	}
	if len(c.Pipeline.Indicators) == 0 {
		c.Pipeline.Indicators = DefaultIndicators()
	}
	if len(c.Pipeline.DisplayOrder) == 0 {
		c.Pipeline.DisplayOrder = DefaultDisplayOrder()
	}
	if len(c.Pipeline.Countries) == 0 {
		c.Pipeline.Countries = DefaultCountryMapping()
	}
	if len(c.Pipeline.Continents) == 0 {
		c.Pipeline.Continents = DefaultContinents()
	}
}

// Validate checks the configuration for structural problems, including
// the injectivity of the country table (two holdings names mapping to
// one ISO3 code would silently merge countries downstream).
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]string, len(c.Pipeline.Countries))
	for name, code := range c.Pipeline.Countries {
		if len(code) != 3 {
			return fmt.Errorf("country %q maps to non-ISO3 code %q", name, code)
		}
		if prev, dup := seen[code]; dup {
			return fmt.Errorf("country table not injective: %q and %q both map to %s", prev, name, code)
		}
		seen[code] = name
	}

	codes := make(map[string]bool, len(c.Pipeline.Indicators))
	for _, ind := range c.Pipeline.Indicators {
		if codes[ind.Code] {
			return fmt.Errorf("duplicate indicator code %s", ind.Code)
		}
		codes[ind.Code] = true
	}

	// The baseline year labels its own period column; a target year
	// equal to it would collapse the two into one key and the baseline
	// values would silently shadow the target values.
	if c.Pipeline.TargetYear == domain.BaselineYear {
		return fmt.Errorf("target year %d collides with the baseline year period", domain.BaselineYear)
	}

	return nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeReferenceTables copies file-provided tables into cfg where the
// environment left them empty. Scalar fields keep env precedence.
func mergeReferenceTables(cfg, fileCfg *Config) {
	if len(cfg.Sources.WEOReleases) == 0 {
		cfg.Sources.WEOReleases = fileCfg.Sources.WEOReleases
	}
	if len(cfg.Pipeline.CountryColumns) == 0 {
		cfg.Pipeline.CountryColumns = fileCfg.Pipeline.CountryColumns
	}
	if len(cfg.Pipeline.Indicators) == 0 {
		cfg.Pipeline.Indicators = fileCfg.Pipeline.Indicators
	}
	if len(cfg.Pipeline.DisplayOrder) == 0 {
		cfg.Pipeline.DisplayOrder = fileCfg.Pipeline.DisplayOrder
	}
	if len(cfg.Pipeline.Countries) == 0 {
		cfg.Pipeline.Countries = fileCfg.Pipeline.Countries
	}
	if len(cfg.Pipeline.Continents) == 0 {
		cfg.Pipeline.Continents = fileCfg.Pipeline.Continents
	}
	if cfg.Pipeline.TargetYear == 0 {
		cfg.Pipeline.TargetYear = fileCfg.Pipeline.TargetYear
	}
}

// findConfigFile returns the path of the first config file found in the
// conventional locations, or empty when only env vars apply.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
