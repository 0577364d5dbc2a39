// Package api exposes the catalog over HTTP. Handlers validate input
// before touching the database, run store operations inside a transaction
// scope, and report every failure through one JSON error boundary.
package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"saucebottle/internal/db"
)

// ServiceName identifies the service in the info endpoints.
const ServiceName = "sauce-bottle-api"

// Version is the reported API version.
const Version = "1.0.0"

// Handler holds the dependencies shared by all routes.
type Handler struct {
	factory *db.Factory
	logger  *slog.Logger
}

// New returns a handler serving the catalog from the given factory.
func New(factory *db.Factory, logger *slog.Logger) *Handler {
	return &Handler{factory: factory, logger: logger}
}

// Router builds the full route table.
func (h *Handler) Router(metrics prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.serviceInfo)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /health/db", h.healthDB)
	if metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /api/v1/{$}", h.apiInfo)

	mux.HandleFunc("GET /api/v1/politicians", h.listPoliticians)
	mux.HandleFunc("POST /api/v1/politicians", h.createPolitician)
	mux.HandleFunc("GET /api/v1/politicians/{id}", h.getPolitician)
	mux.HandleFunc("PUT /api/v1/politicians/{id}", h.updatePolitician)
	mux.HandleFunc("DELETE /api/v1/politicians/{id}", h.deletePolitician)

	mux.HandleFunc("GET /api/v1/statements", h.listStatements)
	mux.HandleFunc("POST /api/v1/statements", h.createStatement)
	mux.HandleFunc("POST /api/v1/statements/bulk", h.bulkCreateStatements)
	mux.HandleFunc("GET /api/v1/statements/{id}", h.getStatement)
	mux.HandleFunc("PUT /api/v1/statements/{id}", h.updateStatement)
	mux.HandleFunc("DELETE /api/v1/statements/{id}", h.deleteStatement)

	return mux
}
