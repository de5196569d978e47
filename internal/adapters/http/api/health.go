package api

import (
	"net/http"
	"time"
)

// healthResponse mirrors the response schema for GET / and GET /health.
type healthResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthHandler handles liveness and readiness requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleRoot handles GET / requests.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Message:   "Employee attrition prediction API is running",
		Timestamp: time.Now(),
		Version:   apiVersion,
	})
}

// HandleHealth handles GET /health requests with model details.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	health := h.deps.Health()
	details := map[string]any{
		"model_loaded":      health.ModelLoaded,
		"total_predictions": health.TotalPredictions,
	}
	if !health.LastTraining.IsZero() {
		details["last_training"] = health.LastTraining.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Message:   "All systems operational",
		Timestamp: time.Now(),
		Version:   apiVersion,
		Details:   details,
	})
}
