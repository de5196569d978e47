// Command predict-db generates attrition predictions for every active
// employee straight from an HRMS database and prints them as JSON. It is
// meant to be invoked by the HRMS backend, so all output goes to stdout as a
// single JSON document.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hrsignal/attrition/internal/adapters/hrdb"
	"github.com/hrsignal/attrition/internal/adapters/repository"
	"github.com/hrsignal/attrition/internal/app"
	"github.com/hrsignal/attrition/internal/domain/features"
	"github.com/hrsignal/attrition/internal/domain/forest"
	"github.com/hrsignal/attrition/internal/domain/model"
	"github.com/hrsignal/attrition/pkg/logger"
)

type successOutput struct {
	Success   bool                     `json:"success"`
	Data      []model.PredictionResult `json:"data"`
	Timestamp string                   `json:"timestamp"`
}

type errorOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func main() {
	if len(os.Args) < 5 {
		fail("Insufficient arguments. Expected: host port database user [password]")
	}

	cfg := hrdb.Config{
		Host:     os.Args[1],
		Port:     os.Args[2],
		Database: os.Args[3],
		User:     os.Args[4],
	}
	if len(os.Args) > 5 {
		cfg.Password = strings.TrimSpace(os.Args[5])
	}

	if err := logger.Init(); err != nil {
		fail("failed to initialize logging: " + err.Error())
	}
	// Logs would corrupt the JSON document on stdout.
	_ = logger.SetLevelString("error")

	ctx := context.Background()

	results, err := run(ctx, cfg)
	if err != nil {
		fail(err.Error())
	}

	emit(successOutput{
		Success:   true,
		Data:      results,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func run(ctx context.Context, cfg hrdb.Config) ([]model.PredictionResult, error) {
	client, err := hrdb.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	records, err := client.FetchEmployeeRecords(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []model.PredictionResult{}, nil
	}

	// Batch-level medians cover sparse evaluations better than a constant
	// when the whole cohort is available.
	engineer := features.NewEngineer(features.WithMedianImputation())
	vectors := engineer.Engineer(records)

	f, threshold := loadOrTrain(vectors)

	return app.PredictWithModel(f, threshold, records, vectors), nil
}

// loadOrTrain loads the persisted model pair, training a fresh one from the
// cohort when none exists. A nil forest means predictions degrade to the
// insufficient-data form rather than failing the run.
func loadOrTrain(vectors []model.FeatureVector) (*forest.Forest, float64) {
	store, err := repository.NewFileStore()
	if err != nil {
		return trainOnly(vectors, nil)
	}

	f, meta, err := store.Load()
	if err == nil {
		return f, meta.Threshold
	}

	return trainOnly(vectors, store)
}

func trainOnly(vectors []model.FeatureVector, store *repository.FileStore) (*forest.Forest, float64) {
	complete := make([]model.FeatureVector, 0, len(vectors))
	for i := range vectors {
		if features.IsComplete(&vectors[i]) {
			complete = append(complete, vectors[i])
		}
	}

	f, threshold, err := forest.Train(complete)
	if err != nil {
		return nil, 0.5
	}

	if store != nil {
		meta := model.Metadata{
			Threshold:    threshold,
			Version:      fmt.Sprintf("1.0.%d", time.Now().Unix()),
			LastTraining: time.Now(),
		}
		_ = store.Save(f, meta)
	}
	return f, threshold
}

func emit(v any) {
	_ = json.NewEncoder(os.Stdout).Encode(v)
}

func fail(msg string) {
	emit(errorOutput{Success: false, Error: msg})
	os.Exit(1)
}
