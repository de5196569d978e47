// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hrsignal/attrition/internal/app"
	"github.com/hrsignal/attrition/internal/domain/model"
)

const apiVersion = "1.0.0"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Predict scores a batch of employees against the current model.
	Predict(ctx context.Context, records []model.EmployeeRecord) ([]model.PredictionResult, error)

	// Train queues a background training job and returns its id.
	Train(ctx context.Context, records []model.EmployeeRecord) (uuid.UUID, error)

	// Reload replaces the in-memory model with the persisted pair.
	Reload(ctx context.Context) error

	// ClearCache drops the in-memory model.
	ClearCache(ctx context.Context)

	// Read operations expose model state.
	Stats() app.ModelStats
	Health() app.Health
	Version() string
}

// Server wires HTTP routes for the prediction API.
type Server struct {
	healthHandler  *HealthHandler
	predictHandler *PredictHandler
	trainHandler   *TrainHandler
	modelHandler   *ModelHandler

	apiKey         string
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires the key on model-mutating routes. Empty disables the
// check.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithAllowedOrigins sets the CORS origin allowlist.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(deps),
		predictHandler: NewPredictHandler(deps),
		trainHandler:   NewTrainHandler(deps),
		modelHandler:   NewModelHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	cors := CORSMiddleware(s.allowedOrigins)
	keyed := APIKeyMiddleware(s.apiKey)

	mux.HandleFunc("/", cors(MetricsMiddleware(s.healthHandler.HandleRoot, "root")))
	mux.HandleFunc("/health", cors(MetricsMiddleware(s.healthHandler.HandleHealth, "health")))
	mux.HandleFunc("/predict", cors(MetricsMiddleware(s.predictHandler.HandlePredict, "predict")))
	mux.HandleFunc("/train", cors(keyed(MetricsMiddleware(s.trainHandler.HandleTrain, "train"))))
	mux.HandleFunc("/model/stats", cors(MetricsMiddleware(s.modelHandler.HandleStats, "model_stats")))
	mux.HandleFunc("/model/cache", cors(keyed(MetricsMiddleware(s.modelHandler.HandleClearCache, "model_cache"))))
	mux.HandleFunc("/model/reload", cors(keyed(MetricsMiddleware(s.modelHandler.HandleReload, "model_reload"))))
}

// predictionRequest mirrors the request schema for POST /predict and
// POST /train.
type predictionRequest struct {
	Employees []model.EmployeeRecord `json:"employees"`
}

// predictionResponse is the envelope for POST /predict.
type predictionResponse struct {
	Success        bool                     `json:"success"`
	Data           []model.PredictionResult `json:"data"`
	Timestamp      time.Time                `json:"timestamp"`
	TotalEmployees int                      `json:"total_employees"`
	ModelVersion   string                   `json:"model_version"`
}

type ackResponse struct {
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	Timestamp        time.Time `json:"timestamp"`
	JobID            string    `json:"job_id,omitempty"`
	TrainingDataSize int       `json:"training_data_size,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Success: false, Code: code, Message: msg})
}
