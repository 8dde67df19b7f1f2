// Package http exposes the generated report over HTTP: the dashboard
// page itself, a small JSON API over the country metrics, health
// endpoints and Prometheus metrics.
package http
