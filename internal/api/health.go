package api

import (
	"net/http"
	"time"
)

// healthResponse is the shallow liveness report.
type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// dbHealthResponse is the deep health report including the engine probe.
type dbHealthResponse struct {
	Status    string `json:"status"`
	Backend   string `json:"backend"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) healthDB(w http.ResponseWriter, r *http.Request) {
	status := h.factory.Engine().Health(r.Context())

	resp := dbHealthResponse{
		Status:    "ok",
		Backend:   string(status.Backend),
		LatencyMS: status.Latency.Milliseconds(),
		Error:     status.Error,
	}

	code := http.StatusOK
	if !status.Healthy {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, resp)
}

// infoResponse describes the service for the index endpoints.
type infoResponse struct {
	Service string   `json:"service"`
	Version string   `json:"version"`
	Docs    []string `json:"endpoints"`
}

func (h *Handler) serviceInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, infoResponse{
		Service: ServiceName,
		Version: Version,
		Docs: []string{
			"/health",
			"/health/db",
			"/metrics",
			"/api/v1/",
		},
	})
}

func (h *Handler) apiInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, infoResponse{
		Service: ServiceName,
		Version: Version,
		Docs: []string{
			"/api/v1/politicians",
			"/api/v1/politicians/{id}",
			"/api/v1/statements",
			"/api/v1/statements/bulk",
			"/api/v1/statements/{id}",
		},
	})
}
