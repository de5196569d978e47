// Package app provides the core prediction service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	trainqueue "github.com/hrsignal/attrition/internal/adapters/mq/queue"
	workerpool "github.com/hrsignal/attrition/internal/adapters/mq/worker"
	"github.com/hrsignal/attrition/internal/adapters/repository"
	"github.com/hrsignal/attrition/internal/domain/features"
	"github.com/hrsignal/attrition/internal/domain/forest"
	"github.com/hrsignal/attrition/internal/domain/model"
	"github.com/hrsignal/attrition/internal/domain/potential"
	"github.com/hrsignal/attrition/pkg/logger"
	"github.com/hrsignal/attrition/pkg/metrics"
)

// serviceAgeFloor keeps engineered ages at working age even when a birthday
// puts the arithmetic below it.
const serviceAgeFloor = 18

// snapshot bundles a trained model with its metadata so both swap together.
type snapshot struct {
	forest *forest.Forest
	meta   model.Metadata
}

// ModelStats aggregates the most recent prediction batch together with
// model bookkeeping. Counts are zero until the first prediction.
type ModelStats struct {
	TotalEmployees      int
	HighPotential       int
	MeetsExpectation    int
	BelowExpectation    int
	AtRisk              int
	NotAtRisk           int
	AvgPerformanceScore float64
	AvgResignationProb  float64
	AvgAttendanceRate   float64
	ModelVersion        string
	LastTraining        time.Time
	LastUpdated         time.Time
}

// Health describes the service state for health endpoints.
type Health struct {
	ModelLoaded      bool
	LastTraining     time.Time
	TotalPredictions int64
}

// Service implements the API dependencies for the attrition system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.FileStore
	trainQueue trainqueue.Queue
	workerPool *workerpool.Pool
	engineer   *features.Engineer
	current    atomic.Pointer[snapshot]

	// Configuration
	workerCount        int
	queueSize          int
	minTrainingSamples int
	maxBatchSize       int
	modelDir           string

	// State
	started     bool
	predictions atomic.Int64
	lastStats   ModelStats

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of training workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending training jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMinTrainingSamples sets the floor on training batch size.
func WithMinTrainingSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minTrainingSamples = n
		}
	}
}

// WithMaxBatchSize caps the number of employees per prediction request.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithModelDir sets the directory models are persisted under.
func WithModelDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.modelDir = dir
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        1,
		queueSize:          16,
		minTrainingSamples: 10,
		maxBatchSize:       1000,
		modelDir:           "models",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting attrition service...")

	store, err := repository.NewFileStore(repository.WithDir(s.modelDir))
	if err != nil {
		return fmt.Errorf("init model store: %w", err)
	}
	s.store = store

	s.engineer = features.NewEngineer(features.WithAgeFloor(serviceAgeFloor))

	s.trainQueue = trainqueue.NewInMemoryQueue(
		trainqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.trainQueue, s)
	s.workerPool.Start(ctx)

	// A model from a previous run is loaded best-effort. A corrupt or
	// missing pair just means predictions start without a model.
	if err := s.loadFromDisk(ctx); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn(ctx, "could not load persisted model", logger.Error(err))
	}

	s.started = true
	s.logger.Info(ctx, "attrition service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("modelDir", s.modelDir),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping attrition service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "attrition service stopped")
}

// Predict scores a batch of employee records against the current model.
func (s *Service) Predict(ctx context.Context, records []model.EmployeeRecord) ([]model.PredictionResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(records) == 0 {
		metrics.RecordPredictionError()
		return nil, ErrEmptyBatch
	}
	if len(records) > s.maxBatchSize {
		metrics.RecordPredictionError()
		return nil, fmt.Errorf("%w: got %d, max %d", ErrBatchTooLarge, len(records), s.maxBatchSize)
	}

	vectors := s.engineer.Engineer(records)

	// One load pairs the forest with the threshold it was trained with,
	// even when a retrain swaps the snapshot mid-request.
	var f *forest.Forest
	threshold := 0.5
	if snap := s.snapshot(ctx); snap != nil {
		f = snap.forest
		threshold = snap.meta.Threshold
	}
	results := PredictWithModel(f, threshold, records, vectors)

	s.recordBatch(results)
	metrics.RecordPrediction(len(results))

	return results, nil
}

// PredictWithModel scores pre-engineered vectors. Potential labels are
// cohort-relative to the batch. With no model every row reports
// insufficient data; rows at or above the batch's top performance quartile
// are reported as not at risk without consulting the model.
func PredictWithModel(f *forest.Forest, threshold float64, records []model.EmployeeRecord, vectors []model.FeatureVector) []model.PredictionResult {
	labels := potential.Classify(vectors)
	_, high, hasThresholds := potential.Thresholds(vectors)

	results := make([]model.PredictionResult, len(records))
	for i, r := range records {
		v := vectors[i]
		res := model.PredictionResult{
			EmployeeID:        r.EmployeeID,
			EmployeeName:      r.EmployeeName,
			PerformanceScore:  round(v.Performance, 2),
			Potential:         labels[i],
			ResignationStatus: model.StatusNotAtRisk,
			AttendanceRate:    round(v.AttendanceRate, 2),
			LateCount:         r.LateCount,
			AbsentCount:       r.AbsentCount,
			TenureMonths:      int(v.TenureMonths),
			OverallScore:      round(v.OverallScore, 2),
			AvgEvaluation:     round(v.AvgEvaluation, 2),
		}

		switch {
		case f == nil:
			res.Potential = model.LabelInsufficientData
			res.ResignationStatus = model.LabelInsufficientData
		case !features.IsComplete(&v):
			// Probability stays 0 and the row is not flagged.
		case hasThresholds && v.Performance >= high:
			// Top performers are exempt from risk scoring.
		default:
			p, err := f.Proba(v)
			if err == nil {
				res.ResignationProbability = round(p, 4)
				if p > threshold {
					res.ResignationStatus = model.StatusAtRisk
				}
			}
		}

		results[i] = res
	}
	return results
}

// Train validates a batch and queues it for background training. It returns
// the job id for log correlation.
func (s *Service) Train(ctx context.Context, records []model.EmployeeRecord) (uuid.UUID, error) {
	if len(records) < s.minTrainingSamples {
		return uuid.Nil, fmt.Errorf("%w: got %d rows, need %d", forest.ErrInsufficientData, len(records), s.minTrainingSamples)
	}

	job := trainqueue.NewJob(records)
	if !s.trainQueue.Enqueue(ctx, job) {
		return uuid.Nil, ErrQueueFull
	}

	s.logger.Info(ctx, "training job queued",
		logger.String("jobID", job.ID.String()),
		logger.Int("records", len(records)),
	)
	return job.ID, nil
}

// TrainJob fits a model from the job's records, persists it, and publishes
// it for subsequent predictions. Called from the worker pool.
func (s *Service) TrainJob(ctx context.Context, job trainqueue.Job) error {
	start := time.Now()
	metrics.RecordTrainingRun()
	defer func() {
		metrics.RecordTrainingLatency(float64(time.Since(start).Milliseconds()))
	}()

	vectors := s.engineer.Engineer(job.Records)

	f, threshold, err := forest.Train(vectors, forest.WithMinSamples(s.minTrainingSamples))
	if err != nil {
		metrics.RecordTrainingFailure()
		return fmt.Errorf("train: %w", err)
	}

	now := time.Now()
	meta := model.Metadata{
		Threshold:        threshold,
		Version:          fmt.Sprintf("1.0.%d", now.Unix()),
		LastTraining:     now,
		TotalPredictions: s.predictions.Load(),
	}

	if err := s.store.Save(f, meta); err != nil {
		metrics.RecordTrainingFailure()
		return fmt.Errorf("persist model: %w", err)
	}

	s.publish(&snapshot{forest: f, meta: meta})

	s.logger.Info(ctx, "model published",
		logger.String("version", meta.Version),
		logger.Float64("threshold", threshold),
		logger.Int("trees", len(f.Trees)),
	)
	return nil
}

// Reload replaces the in-memory model with the persisted pair.
func (s *Service) Reload(ctx context.Context) error {
	return s.loadFromDisk(ctx)
}

// ClearCache drops the in-memory model. The next prediction lazily reloads
// from disk if a persisted pair exists.
func (s *Service) ClearCache(ctx context.Context) {
	s.current.Store(nil)
	metrics.UpdateModelLoaded(false)
	s.logger.Info(ctx, "model cache cleared")
}

// Stats returns aggregates over the most recent prediction batch plus
// model bookkeeping.
func (s *Service) Stats() ModelStats {
	s.mu.RLock()
	stats := s.lastStats
	s.mu.RUnlock()

	stats.ModelVersion = s.Version()
	if snap := s.current.Load(); snap != nil {
		stats.LastTraining = snap.meta.LastTraining
	}
	if stats.LastUpdated.IsZero() {
		stats.LastUpdated = time.Now()
	}
	return stats
}

// Health reports model availability for health endpoints.
func (s *Service) Health() Health {
	h := Health{TotalPredictions: s.predictions.Load()}
	if snap := s.current.Load(); snap != nil {
		h.ModelLoaded = true
		h.LastTraining = snap.meta.LastTraining
	}
	return h
}

// Version returns the active model version, or a sentinel when no model is
// loaded.
func (s *Service) Version() string {
	if snap := s.current.Load(); snap != nil {
		return snap.meta.Version
	}
	return "untrained"
}

// snapshot returns the active model pair, lazily loading from disk when the
// cache was cleared.
func (s *Service) snapshot(ctx context.Context) *snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	if s.store == nil || !s.store.Exists() {
		return nil
	}
	if err := s.loadFromDisk(ctx); err != nil {
		return nil
	}
	return s.current.Load()
}

func (s *Service) loadFromDisk(ctx context.Context) error {
	f, meta, err := s.store.Load()
	if err != nil {
		return err
	}
	s.publish(&snapshot{forest: f, meta: meta})
	s.logger.Info(ctx, "model loaded",
		logger.String("version", meta.Version),
		logger.Float64("threshold", meta.Threshold),
	)
	return nil
}

// publish swaps the active model atomically so readers never see a forest
// paired with someone else's metadata.
func (s *Service) publish(snap *snapshot) {
	s.current.Store(snap)
	metrics.UpdateModelLoaded(true)
	metrics.UpdateModelThreshold(snap.meta.Threshold)
	metrics.UpdateLastTraining(snap.meta.LastTraining)
}

func (s *Service) recordBatch(results []model.PredictionResult) {
	stats := ModelStats{
		TotalEmployees: len(results),
		LastUpdated:    time.Now(),
	}
	var perfSum, probSum, rateSum float64
	for _, r := range results {
		switch r.Potential {
		case model.PotentialHigh:
			stats.HighPotential++
		case model.PotentialMeets:
			stats.MeetsExpectation++
		case model.PotentialBelow:
			stats.BelowExpectation++
		}
		if r.ResignationStatus == model.StatusAtRisk {
			stats.AtRisk++
		} else {
			stats.NotAtRisk++
		}
		perfSum += r.PerformanceScore
		probSum += r.ResignationProbability
		rateSum += r.AttendanceRate
	}
	n := float64(len(results))
	stats.AvgPerformanceScore = round(perfSum/n, 2)
	stats.AvgResignationProb = round(probSum/n, 4)
	stats.AvgAttendanceRate = round(rateSum/n, 2)

	s.predictions.Add(int64(len(results)))
	metrics.UpdateEmployeesAtRisk(stats.AtRisk)
	metrics.UpdateEmployeesHighPotential(stats.HighPotential)

	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
}

// round rounds to the given number of decimal places, mapping NaN to zero
// so results always serialize.
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
