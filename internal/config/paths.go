package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths. This is the single source
// of truth for file locations; every command resolves against it.
type Paths struct {
	ExecutableDir string
	DataDir       string
	DownloadsDir  string
	ReportsDir    string
	WebDir        string
	LogsDir       string

	// Well-known data files
	WEOFile      string
	HoldingsFile string

	// Well-known report artifacts
	CombinedCSV        string
	CountryMetricsJSON string
	WorkbookXLSX       string
	DashboardHTML      string
}

// GetPaths returns the application paths relative to the executable
// location, never the current working directory.
//
// Layout:
//
//	<exe dir>/
//	  ├── data/
//	  │   ├── downloads/   (weo.csv, holdings.csv)
//	  │   └── reports/     (combined CSV, country metrics JSON, workbook)
//	  ├── web/             (index.html dashboard)
//	  └── logs/
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsAt(filepath.Dir(exe)), nil
}

// PathsAt builds the path set anchored at an explicit root directory.
// Commands expose this through an -out flag; tests point it at a temp dir.
func PathsAt(root string) *Paths {
	dataDir := filepath.Join(root, "data")
	downloadsDir := filepath.Join(dataDir, "downloads")
	reportsDir := filepath.Join(dataDir, "reports")
	webDir := filepath.Join(root, "web")

	return &Paths{
		ExecutableDir: root,
		DataDir:       dataDir,
		DownloadsDir:  downloadsDir,
		ReportsDir:    reportsDir,
		WebDir:        webDir,
		LogsDir:       filepath.Join(root, "logs"),

		WEOFile:      filepath.Join(downloadsDir, "weo.csv"),
		HoldingsFile: filepath.Join(downloadsDir, "holdings.csv"),

		CombinedCSV:        filepath.Join(reportsDir, "combined_metrics.csv"),
		CountryMetricsJSON: filepath.Join(reportsDir, "country_metrics.json"),
		WorkbookXLSX:       filepath.Join(reportsDir, "country_metrics.xlsx"),
		DashboardHTML:      filepath.Join(webDir, "index.html"),
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.DownloadsDir,
		p.ReportsDir,
		p.WebDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path of a named log file under the logs dir.
func (p *Paths) GetLogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
