package features_test

import (
	"math"
	"testing"
	"time"

	features "github.com/hrsignal/attrition/internal/domain/features"
	"github.com/hrsignal/attrition/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fp(v float64) *float64 { return &v }

func sp(s string) *string { return &s }

// fullRecord returns a record with every evaluation score set to the given
// value and a clean attendance block.
func fullRecord(id int, score float64) model.EmployeeRecord {
	return model.EmployeeRecord{
		EmployeeID:                id,
		EmployeeName:              "Employee",
		AttendanceScore:           fp(score),
		DedicationScore:           fp(score),
		PerformanceJobKnowledge:   fp(score),
		PerformanceWorkEfficiency: fp(score),
		CooperationTaskAcceptance: fp(score),
		CooperationAdaptability:   fp(score),
		InitiativeAutonomy:        fp(score),
		InitiativeUnderPressure:   fp(score),
		Communication:             fp(score),
		Teamwork:                  fp(score),
		Character:                 fp(score),
		Responsiveness:            fp(score),
		Personality:               fp(score),
		Appearance:                fp(score),
		WorkHabits:                fp(score),
		OverallScore:              fp(score),
		TotalDays:                 20,
		PresentCount:              20,
	}
}

func TestEngineer_Scores(t *testing.T) {
	Convey("Given a feature engineer with fixed imputation", t, func() {
		eng := features.NewEngineer()

		Convey("When scores exceed the 1-5 scale", func() {
			r := fullRecord(1, 3)
			r.AttendanceScore = fp(9.5)
			r.DedicationScore = fp(-2)

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then they are clamped into range", func() {
				So(v.Attendance, ShouldEqual, 5)
				So(v.Dedication, ShouldEqual, 1)
			})
		})

		Convey("When a score is missing", func() {
			r := fullRecord(1, 4)
			r.Teamwork = nil

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then it is filled with the neutral value", func() {
				So(v.Teamwork, ShouldEqual, 3.0)
			})
		})

		Convey("When composite sub-scores are present", func() {
			r := fullRecord(1, 3)
			r.PerformanceJobKnowledge = fp(4)
			r.PerformanceWorkEfficiency = fp(2)
			r.InitiativeAutonomy = fp(5)
			r.InitiativeUnderPressure = fp(3)

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then composites are the mean of their pair", func() {
				So(v.Performance, ShouldEqual, 3)
				So(v.Initiative, ShouldEqual, 4)
			})
		})

		Convey("When all twelve evaluation scores are equal", func() {
			v := eng.Engineer([]model.EmployeeRecord{fullRecord(1, 4)})[0]

			Convey("Then the evaluation average equals that value", func() {
				So(v.AvgEvaluation, ShouldEqual, 4)
			})
		})

		Convey("When core scores sit at the bottom of the scale", func() {
			r := fullRecord(1, 4)
			r.AttendanceScore = fp(1.5)
			r.PerformanceJobKnowledge = fp(1)
			r.PerformanceWorkEfficiency = fp(1)

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then the low score count reflects them", func() {
				So(v.LowScoreCount, ShouldEqual, 2)
			})
		})
	})
}

func TestEngineer_Attendance(t *testing.T) {
	Convey("Given a feature engineer", t, func() {
		eng := features.NewEngineer()

		Convey("When attendance days are recorded", func() {
			r := fullRecord(1, 3)
			r.TotalDays = 20
			r.PresentCount = 15

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then the rate is present over total", func() {
				So(v.AttendanceRate, ShouldEqual, 75)
			})
		})

		Convey("When no days are scheduled", func() {
			r := fullRecord(1, 3)
			r.TotalDays = 0
			r.PresentCount = 0

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then the rate defaults to full attendance", func() {
				So(v.AttendanceRate, ShouldEqual, 100)
			})
		})
	})
}

func TestEngineer_Demographics(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }

	Convey("Given a feature engineer pinned to a fixed date", t, func() {
		eng := features.NewEngineer(features.WithNow(now))

		Convey("When the birthday is missing", func() {
			v := eng.Engineer([]model.EmployeeRecord{fullRecord(1, 3)})[0]

			So(v.Age, ShouldEqual, 30)
		})

		Convey("When the birthday is malformed", func() {
			r := fullRecord(1, 3)
			r.Birthday = sp("not-a-date")

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then the row still gets the default age", func() {
				So(v.Age, ShouldEqual, 30)
			})
		})

		Convey("When the birthday has not yet occurred this year", func() {
			r := fullRecord(1, 3)
			r.Birthday = sp("1990-12-01")

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			So(v.Age, ShouldEqual, 35)
		})

		Convey("When an age floor is configured", func() {
			floored := features.NewEngineer(features.WithNow(now), features.WithAgeFloor(18))
			r := fullRecord(1, 3)
			r.Birthday = sp("2012-01-01")

			v := floored.Engineer([]model.EmployeeRecord{r})[0]

			So(v.Age, ShouldEqual, 18)
		})

		Convey("When the joining date is missing", func() {
			v := eng.Engineer([]model.EmployeeRecord{fullRecord(1, 3)})[0]

			So(v.TenureMonths, ShouldEqual, 12)
		})

		Convey("When the joining date is set", func() {
			r := fullRecord(1, 3)
			r.JoiningDate = sp("2024-03-15")

			v := eng.Engineer([]model.EmployeeRecord{r})[0]

			Convey("Then tenure is counted in whole months", func() {
				So(v.TenureMonths, ShouldEqual, 27)
			})
		})

		Convey("When only one row has a malformed date", func() {
			good := fullRecord(1, 3)
			good.Birthday = sp("1990-12-01")
			bad := fullRecord(2, 3)
			bad.Birthday = sp("31/12/1990")

			vs := eng.Engineer([]model.EmployeeRecord{good, bad})

			Convey("Then only that row falls back to the default", func() {
				So(vs[0].Age, ShouldEqual, 35)
				So(vs[1].Age, ShouldEqual, 30)
			})
		})
	})
}

func TestEngineer_Gender(t *testing.T) {
	Convey("Given a feature engineer", t, func() {
		eng := features.NewEngineer()

		Convey("Then gender codes are a fixed enumeration", func() {
			male := fullRecord(1, 3)
			male.Gender = sp("Male")
			female := fullRecord(2, 3)
			female.Gender = sp("Female")
			other := fullRecord(3, 3)
			other.Gender = sp("Nonbinary")
			missing := fullRecord(4, 3)

			vs := eng.Engineer([]model.EmployeeRecord{male, female, other, missing})

			So(vs[0].GenderEncoded, ShouldEqual, 0)
			So(vs[1].GenderEncoded, ShouldEqual, 1)
			So(vs[2].GenderEncoded, ShouldEqual, 2)
			So(vs[3].GenderEncoded, ShouldEqual, 0)
		})
	})
}

func TestEngineer_MedianImputation(t *testing.T) {
	Convey("Given a feature engineer with median imputation", t, func() {
		eng := features.NewEngineer(features.WithMedianImputation())

		Convey("When a column has some present values", func() {
			a := fullRecord(1, 3)
			a.Teamwork = fp(2)
			b := fullRecord(2, 3)
			b.Teamwork = fp(4)
			c := fullRecord(3, 3)
			c.Teamwork = nil

			vs := eng.Engineer([]model.EmployeeRecord{a, b, c})

			Convey("Then gaps are filled with the column median", func() {
				So(vs[2].Teamwork, ShouldEqual, 3)
			})
		})

		Convey("When a column is entirely missing", func() {
			a := fullRecord(1, 3)
			a.Teamwork = nil
			b := fullRecord(2, 3)
			b.Teamwork = nil

			vs := eng.Engineer([]model.EmployeeRecord{a, b})

			Convey("Then the rows stay incomplete", func() {
				So(math.IsNaN(vs[0].Teamwork), ShouldBeTrue)
				So(features.IsComplete(&vs[0]), ShouldBeFalse)
			})
		})
	})
}

func TestIsComplete(t *testing.T) {
	Convey("Given an engineered vector with fixed imputation", t, func() {
		eng := features.NewEngineer()
		v := eng.Engineer([]model.EmployeeRecord{{EmployeeID: 1, EmployeeName: "Sparse"}})[0]

		Convey("Then even a bare record is complete", func() {
			So(features.IsComplete(&v), ShouldBeTrue)
		})
	})
}
