package handlers

import (
	"net/http"

	"github.com/hongminglow/auth-examples/internal/http/respond"
	"github.com/hongminglow/auth-examples/internal/models/dto"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct{}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, dto.HealthResponse{Healthy: "Ok"})
}
