package api

import (
	"net/http"
	"time"
)

// modelStatsResponse mirrors the response schema for GET /model/stats.
type modelStatsResponse struct {
	TotalEmployees            int     `json:"total_employees"`
	HighPotentialCount        int     `json:"high_potential_count"`
	MeetsExpectationCount     int     `json:"meets_expectation_count"`
	BelowExpectationCount     int     `json:"below_expectation_count"`
	AtRiskCount               int     `json:"at_risk_count"`
	NotAtRiskCount            int     `json:"not_at_risk_count"`
	AvgPerformanceScore       float64 `json:"avg_performance_score"`
	AvgResignationProbability float64 `json:"avg_resignation_probability"`
	AvgAttendanceRate         float64 `json:"avg_attendance_rate"`
	ModelVersion              string  `json:"model_version"`
	LastTraining              *string `json:"last_training"`
	LastUpdated               string  `json:"last_updated"`
}

// ModelHandler handles model lifecycle requests.
type ModelHandler struct {
	deps Dependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps Dependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

// HandleStats handles GET /model/stats requests.
func (h *ModelHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats := h.deps.Stats()
	resp := modelStatsResponse{
		TotalEmployees:            stats.TotalEmployees,
		HighPotentialCount:        stats.HighPotential,
		MeetsExpectationCount:     stats.MeetsExpectation,
		BelowExpectationCount:     stats.BelowExpectation,
		AtRiskCount:               stats.AtRisk,
		NotAtRiskCount:            stats.NotAtRisk,
		AvgPerformanceScore:       stats.AvgPerformanceScore,
		AvgResignationProbability: stats.AvgResignationProb,
		AvgAttendanceRate:         stats.AvgAttendanceRate,
		ModelVersion:              stats.ModelVersion,
		LastUpdated:               stats.LastUpdated.UTC().Format(time.RFC3339),
	}
	if !stats.LastTraining.IsZero() {
		s := stats.LastTraining.UTC().Format(time.RFC3339)
		resp.LastTraining = &s
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleClearCache handles DELETE /model/cache requests.
func (h *ModelHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}

	h.deps.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, ackResponse{
		Success:   true,
		Message:   "Model cache cleared successfully",
		Timestamp: time.Now(),
	})
}

// HandleReload handles POST /model/reload requests.
func (h *ModelHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if err := h.deps.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reload_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{
		Success:   true,
		Message:   "Model reloaded successfully",
		Timestamp: time.Now(),
	})
}
