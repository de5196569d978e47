package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hrsignal/attrition/internal/app"
)

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	results, err := h.deps.Predict(r.Context(), req.Employees)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptyBatch), errors.Is(err, app.ErrBatchTooLarge):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "prediction_failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Success:        true,
		Data:           results,
		Timestamp:      time.Now(),
		TotalEmployees: len(results),
		ModelVersion:   h.deps.Version(),
	})
}
