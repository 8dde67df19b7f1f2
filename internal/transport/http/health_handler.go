package http

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/render"

	"embdash/internal/config"
)

// HealthHandler reports service and artifact health.
type HealthHandler struct {
	paths   *config.Paths
	started time.Time
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(paths *config.Paths, version string) *HealthHandler {
	return &HealthHandler{paths: paths, started: time.Now(), version: version}
}

// HealthCheck handles GET /api/health. The service is healthy as long
// as it is up; artifact freshness is reported but never fails the check.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	artifacts := map[string]bool{
		"dashboard":       fileExists(h.paths.DashboardHTML),
		"country_metrics": fileExists(h.paths.CountryMetricsJSON),
		"combined_csv":    fileExists(h.paths.CombinedCSV),
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"uptime":    time.Since(h.started).String(),
		"artifacts": artifacts,
	})
}

// ReadinessCheck handles GET /api/health/ready: ready once the report
// artifacts exist.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !fileExists(h.paths.DashboardHTML) || !fileExists(h.paths.CountryMetricsJSON) {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "not_ready"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ready"})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
