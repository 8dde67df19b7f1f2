package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"embdash/internal/config"
	apierrors "embdash/internal/errors"
	"embdash/internal/exporter"
)

// ReportHandler serves the generated report artifacts. It reads the
// country metrics JSON from disk on each request so a regenerated
// report is picked up without a restart.
type ReportHandler struct {
	paths      *config.Paths
	continents map[string]string
	logger     *slog.Logger
}

// NewReportHandler creates a report handler. cfg supplies the
// continent grouping used to annotate country listings.
func NewReportHandler(paths *config.Paths, cfg *config.Config, logger *slog.Logger) *ReportHandler {
	continents := make(map[string]string)
	for continent, group := range cfg.Pipeline.Continents {
		for code := range group {
			continents[code] = continent
		}
	}
	return &ReportHandler{
		paths:      paths,
		continents: continents,
		logger:     logger.With(slog.String("handler", "report")),
	}
}

// CountrySummary is one row of the country listing.
type CountrySummary struct {
	Code      string `json:"code"`
	Continent string `json:"continent,omitempty"`
}

// Dashboard handles GET /, serving the rendered page.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.paths.DashboardHTML); err != nil {
		render.Render(w, r, apierrors.ErrReportNotReady)
		return
	}
	http.ServeFile(w, r, h.paths.DashboardHTML)
}

// ListCountries handles GET /api/countries.
func (h *ReportHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadMetrics(w, r)
	if !ok {
		return
	}

	countries := make([]CountrySummary, 0, len(doc))
	for code := range doc {
		countries = append(countries, CountrySummary{
			Code:      code,
			Continent: h.continents[code],
		})
	}
	sort.Slice(countries, func(i, j int) bool { return countries[i].Code < countries[j].Code })

	render.JSON(w, r, countries)
}

// GetCountry handles GET /api/countries/{code}.
func (h *ReportHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadMetrics(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	metrics, found := doc[code]
	if !found {
		render.Render(w, r, apierrors.NotFoundError("country "+code))
		return
	}

	render.JSON(w, r, metrics)
}

// loadMetrics reads the country metrics artifact, rendering the
// appropriate error when it is missing or unreadable.
func (h *ReportHandler) loadMetrics(w http.ResponseWriter, r *http.Request) (exporter.CountryMetrics, bool) {
	data, err := os.ReadFile(h.paths.CountryMetricsJSON)
	if err != nil {
		if os.IsNotExist(err) {
			render.Render(w, r, apierrors.ErrReportNotReady)
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "failed to read country metrics",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternalServer)
		return nil, false
	}

	var doc exporter.CountryMetrics
	if err := json.Unmarshal(data, &doc); err != nil {
		h.logger.ErrorContext(r.Context(), "country metrics artifact is corrupt",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternalServer)
		return nil, false
	}
	return doc, true
}
