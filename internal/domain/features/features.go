// Package features derives model-ready feature vectors from raw employee rows.
//
// Missing values never fail a row: dates fall back to fixed defaults, scores
// are imputed (per-batch median or a fixed neutral value, depending on the
// configured variant) and then clamped to the 1-5 evaluation scale.
package features

import (
	"math"
	"sort"
	"time"

	"github.com/hrsignal/attrition/internal/domain/model"
)

// Defaults applied when raw fields are absent or unparseable.
const (
	defaultAge          = 30
	defaultTenureMonths = 12
	neutralScore        = 3.0
	scoreMin            = 1.0
	scoreMax            = 5.0
	lowScoreCutoff      = 2.0
)

// dateLayouts accepted for birthday and joining date fields.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// Engineer converts employee records into feature vectors.
type Engineer struct {
	medianImpute bool
	ageFloor     int
	now          func() time.Time
}

// NewEngineer creates an Engineer with default configuration: fixed neutral
// imputation and no age floor (the single-request service variant).
func NewEngineer(opts ...Option) *Engineer {
	e := &Engineer{
		medianImpute: false,
		ageFloor:     0,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// rawScores is the per-row view of the 16 evaluation sub-scores, in column
// order. nil means missing.
func rawScores(r *model.EmployeeRecord) [16]*float64 {
	return [16]*float64{
		r.AttendanceScore,
		r.DedicationScore,
		r.PerformanceJobKnowledge,
		r.PerformanceWorkEfficiency,
		r.CooperationTaskAcceptance,
		r.CooperationAdaptability,
		r.InitiativeAutonomy,
		r.InitiativeUnderPressure,
		r.Communication,
		r.Teamwork,
		r.Character,
		r.Responsiveness,
		r.Personality,
		r.Appearance,
		r.WorkHabits,
		r.OverallScore,
	}
}

// Engineer derives a FeatureVector per employee. Rows are processed
// independently except for the imputation step, which in the median variant
// is computed per column over the whole batch.
func (e *Engineer) Engineer(rows []model.EmployeeRecord) []model.FeatureVector {
	if len(rows) == 0 {
		return nil
	}

	// Column fill values: batch medians or the fixed neutral score. A median
	// over an entirely missing column is NaN, which keeps those rows
	// incomplete rather than inventing data.
	var fill [16]float64
	if e.medianImpute {
		for col := 0; col < 16; col++ {
			values := make([]float64, 0, len(rows))
			for i := range rows {
				if p := rawScores(&rows[i])[col]; p != nil {
					values = append(values, *p)
				}
			}
			fill[col] = median(values)
		}
	} else {
		for col := 0; col < 16; col++ {
			fill[col] = neutralScore
		}
	}

	out := make([]model.FeatureVector, 0, len(rows))
	for i := range rows {
		out = append(out, e.engineerRow(&rows[i], fill))
	}
	return out
}

func (e *Engineer) engineerRow(r *model.EmployeeRecord, fill [16]float64) model.FeatureVector {
	var s [16]float64
	for col, p := range rawScores(r) {
		if p != nil {
			s[col] = clampScore(*p)
		} else {
			s[col] = clampScore(fill[col])
		}
	}

	attendance := s[0]
	dedication := s[1]
	performance := meanSkipNaN(s[2], s[3])
	cooperation := meanSkipNaN(s[4], s[5])
	initiative := meanSkipNaN(s[6], s[7])
	communication := s[8]
	teamwork := s[9]
	character := s[10]
	responsiveness := s[11]
	personality := s[12]
	appearance := s[13]
	workHabits := s[14]
	overall := s[15]

	avgEvaluation := meanSkipNaN(
		attendance, dedication, performance, cooperation,
		initiative, communication, teamwork, character,
		responsiveness, personality, appearance, workHabits,
	)

	lowScoreCount := 0.0
	for _, v := range []float64{attendance, performance, initiative} {
		if v <= lowScoreCutoff {
			lowScoreCount++
		}
	}

	attendanceRate := 100.0
	if r.TotalDays > 0 {
		attendanceRate = float64(r.PresentCount) / float64(r.TotalDays) * 100
	}

	gender := ""
	if r.Gender != nil {
		gender = *r.Gender
	}

	return model.FeatureVector{
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		Attendance:     attendance,
		Dedication:     dedication,
		Performance:    performance,
		Cooperation:    cooperation,
		Initiative:     initiative,
		Communication:  communication,
		Teamwork:       teamwork,
		Character:      character,
		Responsiveness: responsiveness,
		Personality:    personality,
		Appearance:     appearance,
		WorkHabits:     workHabits,
		OverallScore:   overall,
		AvgEvaluation:  avgEvaluation,
		LowScoreCount:  lowScoreCount,
		Age:            float64(e.age(r.Birthday)),
		GenderEncoded:  float64(model.EncodeGender(gender)),
		TenureMonths:   float64(e.tenure(r.JoiningDate)),
		LateCount:      float64(r.LateCount),
		AbsentCount:    float64(r.AbsentCount),
		AttendanceRate: attendanceRate,
	}
}

// age computes whole years since birthday, decremented by one when the
// current month/day precedes the birth month/day. Missing or unparseable
// birthdays yield the default.
func (e *Engineer) age(birthday *string) int {
	if birthday == nil || *birthday == "" {
		return defaultAge
	}
	born, ok := parseDate(*birthday)
	if !ok {
		return defaultAge
	}

	now := e.now()
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if e.ageFloor > 0 && age < e.ageFloor {
		return e.ageFloor
	}
	return age
}

// tenure computes whole months between the joining date and now, ignoring the
// day of month and floored at zero.
func (e *Engineer) tenure(joiningDate *string) int {
	if joiningDate == nil || *joiningDate == "" {
		return defaultTenureMonths
	}
	joined, ok := parseDate(*joiningDate)
	if !ok {
		return defaultTenureMonths
	}

	now := e.now()
	months := (now.Year()-joined.Year())*12 + int(now.Month()) - int(joined.Month())
	if months < 0 {
		return 0
	}
	return months
}

// IsComplete reports whether every feature in v carries a usable value.
// Incomplete vectors are excluded from training and skip the classifier at
// prediction time.
func IsComplete(v *model.FeatureVector) bool {
	for _, f := range v.Values() {
		if math.IsNaN(f) {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampScore(v float64) float64 {
	// NaN passes through so missing-column rows stay incomplete.
	return math.Max(scoreMin, math.Min(scoreMax, v))
}

// meanSkipNaN averages the non-NaN inputs; all-NaN yields NaN.
func meanSkipNaN(values ...float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// median returns the middle value of values (mean of the middle two for even
// counts), or NaN for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
