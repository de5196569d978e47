package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	trainqueue "github.com/hrsignal/attrition/internal/adapters/mq/queue"
	app "github.com/hrsignal/attrition/internal/app"
	"github.com/hrsignal/attrition/internal/domain/forest"
	"github.com/hrsignal/attrition/internal/domain/model"
	"github.com/hrsignal/attrition/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

func fp(v float64) *float64 { return &v }

// record builds an employee with every score set to base and the given
// attendance shape.
func record(id int, name string, base float64, totalDays, present, late, absent int) model.EmployeeRecord {
	return model.EmployeeRecord{
		EmployeeID:                id,
		EmployeeName:              name,
		AttendanceScore:           fp(base),
		DedicationScore:           fp(base),
		PerformanceJobKnowledge:   fp(base),
		PerformanceWorkEfficiency: fp(base),
		CooperationTaskAcceptance: fp(base),
		CooperationAdaptability:   fp(base),
		InitiativeAutonomy:        fp(base),
		InitiativeUnderPressure:   fp(base),
		Communication:             fp(base),
		Teamwork:                  fp(base),
		Character:                 fp(base),
		Responsiveness:            fp(base),
		Personality:               fp(base),
		Appearance:                fp(base),
		WorkHabits:                fp(base),
		OverallScore:              fp(base),
		TotalDays:                 totalDays,
		PresentCount:              present,
		LateCount:                 late,
		AbsentCount:               absent,
	}
}

// cohort returns a separable 12-employee batch: eight healthy, four at risk.
func cohort() []model.EmployeeRecord {
	var out []model.EmployeeRecord
	for i := 0; i < 8; i++ {
		out = append(out, record(i+1, "Healthy", 4.0+float64(i%4)*0.2, 20, 19, 1, 0))
	}
	for i := 0; i < 4; i++ {
		out = append(out, record(i+10, "Risky", 1.4+float64(i)*0.1, 20, 12, 5, 8))
	}
	return out
}

func newService(t *testing.T) *app.Service {
	t.Helper()
	svc := app.New(
		app.WithModelDir(t.TempDir()),
		app.WithWorkerCount(1),
		app.WithQueueSize(2),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_PredictWithoutModel(t *testing.T) {
	Convey("Given a started service with no persisted model", t, func() {
		svc := newService(t)
		ctx := context.Background()

		Convey("When predicting a batch", func() {
			results, err := svc.Predict(ctx, cohort())

			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 12)

			Convey("Then every row reports insufficient data", func() {
				for _, r := range results {
					So(r.Potential, ShouldEqual, model.LabelInsufficientData)
					So(r.ResignationStatus, ShouldEqual, model.LabelInsufficientData)
					So(r.ResignationProbability, ShouldEqual, 0)
				}
			})

			Convey("And pass-through fields survive", func() {
				So(results[0].AttendanceRate, ShouldEqual, 95)
				So(results[11].LateCount, ShouldEqual, 5)
				So(results[11].AbsentCount, ShouldEqual, 8)
			})
		})

		Convey("When predicting an empty batch", func() {
			_, err := svc.Predict(ctx, nil)

			So(errors.Is(err, app.ErrEmptyBatch), ShouldBeTrue)
		})
	})
}

func TestService_TrainAndPredict(t *testing.T) {
	Convey("Given a service trained on a separable cohort", t, func() {
		svc := newService(t)
		ctx := context.Background()

		job := trainqueue.NewJob(cohort())
		So(svc.TrainJob(ctx, job), ShouldBeNil)

		Convey("When predicting the same cohort", func() {
			results, err := svc.Predict(ctx, cohort())

			So(err, ShouldBeNil)
			So(len(results), ShouldEqual, 12)

			byName := map[string][]model.PredictionResult{}
			for _, r := range results {
				byName[r.EmployeeName] = append(byName[r.EmployeeName], r)
			}

			Convey("Then top-quartile performers bypass the model", func() {
				for _, r := range results {
					if r.Potential == model.PotentialHigh {
						So(r.ResignationProbability, ShouldEqual, 0)
						So(r.ResignationStatus, ShouldEqual, model.StatusNotAtRisk)
					}
				}
			})

			Convey("And risky employees never rank as high potential", func() {
				So(len(byName["Risky"]), ShouldEqual, 4)
				for _, r := range byName["Risky"] {
					So(r.Potential, ShouldBeIn, model.PotentialBelow, model.PotentialMeets)
				}
			})

			Convey("And probabilities stay in range", func() {
				for _, r := range results {
					So(r.ResignationProbability, ShouldBeGreaterThanOrEqualTo, 0)
					So(r.ResignationProbability, ShouldBeLessThanOrEqualTo, 1)
				}
			})
		})

		Convey("When the cache is cleared", func() {
			svc.ClearCache(ctx)

			Convey("Then prediction lazily reloads the persisted model", func() {
				results, err := svc.Predict(ctx, cohort())
				So(err, ShouldBeNil)
				So(results[0].Potential, ShouldNotEqual, model.LabelInsufficientData)
			})
		})

		Convey("Then stats reflect the last batch after predicting", func() {
			_, err := svc.Predict(ctx, cohort())
			So(err, ShouldBeNil)

			stats := svc.Stats()
			So(stats.TotalEmployees, ShouldEqual, 12)
			So(stats.AtRisk+stats.NotAtRisk, ShouldEqual, 12)
			So(stats.ModelVersion, ShouldStartWith, "1.0.")
			So(stats.LastTraining.IsZero(), ShouldBeFalse)
		})

		Convey("Then health reports the loaded model", func() {
			h := svc.Health()
			So(h.ModelLoaded, ShouldBeTrue)
		})
	})
}

func TestService_TrainValidation(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(t)
		ctx := context.Background()

		Convey("When training with too few records", func() {
			_, err := svc.Train(ctx, cohort()[:4])

			So(errors.Is(err, forest.ErrInsufficientData), ShouldBeTrue)
		})

		Convey("When training with enough records", func() {
			jobID, err := svc.Train(ctx, cohort())

			So(err, ShouldBeNil)
			So(jobID.String(), ShouldNotBeEmpty)
		})
	})
}

func TestService_FailedTrainingLeavesModelUntouched(t *testing.T) {
	Convey("Given a service with a trained and persisted model", t, func() {
		dir := t.TempDir()
		svc := app.New(
			app.WithModelDir(dir),
			app.WithWorkerCount(1),
			app.WithQueueSize(2),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		So(svc.TrainJob(ctx, trainqueue.NewJob(cohort())), ShouldBeNil)
		version := svc.Version()
		before := modelFiles(t, dir)

		Convey("When a training job has too few rows", func() {
			err := svc.TrainJob(ctx, trainqueue.NewJob(cohort()[:4]))
			So(errors.Is(err, forest.ErrInsufficientData), ShouldBeTrue)

			Convey("Then the published model is unchanged", func() {
				So(svc.Version(), ShouldEqual, version)
			})

			Convey("And the persisted pair is byte-identical", func() {
				So(modelFiles(t, dir), ShouldResemble, before)
			})
		})
	})
}

// modelFiles reads every file under dir keyed by name.
func modelFiles(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read model dir: %v", err)
	}
	out := map[string][]byte{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("failed to read %s: %v", e.Name(), err)
		}
		out[e.Name()] = b
	}
	return out
}

func TestService_ReloadWithoutModel(t *testing.T) {
	Convey("Given a service with nothing persisted", t, func() {
		svc := newService(t)

		Convey("Then reload surfaces the missing model", func() {
			So(svc.Reload(context.Background()), ShouldNotBeNil)
		})
	})
}
