package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embdash/internal/config"
)

func testApplication(t *testing.T) (*Application, *config.Paths) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimitRPS = 0 // no limiter in tests

	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewApplication(cfg, paths, logger, nil, nil), paths
}

func TestRouterServesAPI(t *testing.T) {
	a, paths := testApplication(t)
	require.NoError(t, os.WriteFile(paths.CountryMetricsJSON,
		[]byte(`{"BRA": {"GDP (USD bn)": {"2025": 2307.2}}}`), 0644))

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/countries", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BRA")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterHealth(t *testing.T) {
	a, _ := testApplication(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	a, _ := testApplication(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	a, _ := testApplication(t)
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
