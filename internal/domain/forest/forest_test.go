package forest_test

import (
	"testing"

	forest "github.com/hrsignal/attrition/internal/domain/forest"
	"github.com/hrsignal/attrition/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// strongVector resembles a healthy, engaged employee.
func strongVector(id int) model.FeatureVector {
	return model.FeatureVector{
		EmployeeID: id, Attendance: 4.5, Dedication: 4.2, Performance: 4.4,
		Cooperation: 4.1, Initiative: 4.3, Communication: 4.0, Teamwork: 4.4,
		Character: 4.2, Responsiveness: 4.1, Personality: 4.0, Appearance: 4.3,
		WorkHabits: 4.2, OverallScore: 4.3, AvgEvaluation: 4.2, LowScoreCount: 0,
		Age: 32, GenderEncoded: 0, TenureMonths: 30, LateCount: 1, AbsentCount: 0,
		AttendanceRate: 96,
	}
}

// weakVector resembles a disengaged employee trending toward resignation.
func weakVector(id int) model.FeatureVector {
	return model.FeatureVector{
		EmployeeID: id, Attendance: 1.5, Dedication: 1.8, Performance: 1.6,
		Cooperation: 2.0, Initiative: 1.4, Communication: 2.1, Teamwork: 1.9,
		Character: 2.0, Responsiveness: 1.8, Personality: 2.2, Appearance: 2.0,
		WorkHabits: 1.7, OverallScore: 1.8, AvgEvaluation: 1.8, LowScoreCount: 3,
		Age: 24, GenderEncoded: 1, TenureMonths: 5, LateCount: 9, AbsentCount: 6,
		AttendanceRate: 55,
	}
}

func trainingSet() []model.FeatureVector {
	var out []model.FeatureVector
	for i := 0; i < 14; i++ {
		v := strongVector(i + 1)
		v.Performance += float64(i%5) * 0.1
		v.AttendanceRate -= float64(i % 4)
		out = append(out, v)
	}
	for i := 0; i < 6; i++ {
		v := weakVector(100 + i)
		v.Performance += float64(i%3) * 0.2
		v.AttendanceRate += float64(i % 5)
		out = append(out, v)
	}
	return out
}

func TestSyntheticLabel(t *testing.T) {
	Convey("Given the risk labeling rule", t, func() {
		Convey("A strong employee is negative", func() {
			So(forest.SyntheticLabel(strongVector(1)), ShouldEqual, 0)
		})

		Convey("Low performance alone flags the row", func() {
			v := strongVector(1)
			v.Performance = 2.4
			So(forest.SyntheticLabel(v), ShouldEqual, 1)
		})

		Convey("Poor attendance alone flags the row", func() {
			v := strongVector(1)
			v.AttendanceRate = 69
			So(forest.SyntheticLabel(v), ShouldEqual, 1)
		})

		Convey("Two low core scores flag the row", func() {
			v := strongVector(1)
			v.LowScoreCount = 2
			So(forest.SyntheticLabel(v), ShouldEqual, 1)
		})
	})
}

func TestTrain(t *testing.T) {
	Convey("Given a separable training set", t, func() {
		set := trainingSet()

		Convey("When training with defaults", func() {
			f, threshold, err := forest.Train(set, forest.WithNumTrees(50))

			So(err, ShouldBeNil)
			So(f, ShouldNotBeNil)
			So(len(f.Trees), ShouldEqual, 50)
			So(threshold, ShouldBeGreaterThanOrEqualTo, 0)
			So(threshold, ShouldBeLessThanOrEqualTo, 1)

			Convey("Then risky rows score higher than safe rows", func() {
				pWeak, err := f.Proba(weakVector(200))
				So(err, ShouldBeNil)
				pStrong, err := f.Proba(strongVector(201))
				So(err, ShouldBeNil)
				So(pWeak, ShouldBeGreaterThan, pStrong)
			})
		})

		Convey("When training twice with the same seed", func() {
			f1, t1, err1 := forest.Train(set, forest.WithNumTrees(30))
			f2, t2, err2 := forest.Train(set, forest.WithNumTrees(30))

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(t1, ShouldEqual, t2)

			Convey("Then predictions are identical", func() {
				probe := weakVector(300)
				p1, _ := f1.Proba(probe)
				p2, _ := f2.Proba(probe)
				So(p1, ShouldEqual, p2)
			})
		})

		Convey("When the set is below the sample floor", func() {
			_, _, err := forest.Train(set[:5])

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "insufficient training data")
		})

		Convey("When every row carries the same label", func() {
			var uniform []model.FeatureVector
			for i := 0; i < 12; i++ {
				uniform = append(uniform, strongVector(i+1))
			}

			_, threshold, err := forest.Train(uniform, forest.WithNumTrees(20))

			So(err, ShouldBeNil)

			Convey("Then the threshold falls back to the midpoint", func() {
				So(threshold, ShouldEqual, 0.5)
			})
		})
	})
}

func TestProba_NotTrained(t *testing.T) {
	Convey("Given an empty forest", t, func() {
		var f *forest.Forest

		_, err := f.Proba(strongVector(1))

		So(err, ShouldEqual, forest.ErrNotTrained)
	})
}

func TestOptimalThreshold(t *testing.T) {
	Convey("Given perfectly separated scores", t, func() {
		labels := []int{0, 0, 0, 1, 1, 1}
		scores := []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9}

		threshold := forest.OptimalThreshold(labels, scores)

		Convey("Then the threshold separates the classes", func() {
			So(threshold, ShouldBeGreaterThan, 0.3)
			So(threshold, ShouldBeLessThanOrEqualTo, 0.9)
		})
	})

	Convey("Given a single class", t, func() {
		So(forest.OptimalThreshold([]int{1, 1}, []float64{0.4, 0.6}), ShouldEqual, 0.5)
	})
}
