package handler

import (
	"context"
	"net/http"

	"github.com/bizdesk/bizdesk/internal/api/middleware"
	"github.com/bizdesk/bizdesk/internal/api/response"
)

// StorePinger verifies the key-value store is reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service and storage health.
type HealthHandler struct {
	store   StorePinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store StorePinger, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	resp := healthResponse{Status: "ok", Version: h.version, Store: "ok"}
	status := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Store = err.Error()
		status = http.StatusServiceUnavailable
	}

	response.Success(w, status, resp, requestID)
}
