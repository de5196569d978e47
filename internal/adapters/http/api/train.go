package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hrsignal/attrition/internal/app"
	"github.com/hrsignal/attrition/internal/domain/forest"
)

// TrainHandler handles training requests.
type TrainHandler struct {
	deps Dependencies
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps Dependencies) *TrainHandler {
	return &TrainHandler{deps: deps}
}

// HandleTrain handles POST /train requests. Training runs in the background;
// the response only acknowledges the queued job.
func (h *TrainHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	jobID, err := h.deps.Train(r.Context(), req.Employees)
	if err != nil {
		switch {
		case errors.Is(err, forest.ErrInsufficientData):
			writeError(w, http.StatusBadRequest, "insufficient_data", err)
		case errors.Is(err, app.ErrQueueFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		default:
			writeError(w, http.StatusInternalServerError, "training_failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{
		Success:          true,
		Message:          "Model training started in background",
		Timestamp:        time.Now(),
		JobID:            jobID.String(),
		TrainingDataSize: len(req.Employees),
	})
}
