// Package model contains domain models passed between layers.
package model

import "time"

// Classification labels produced by the predictors.
const (
	PotentialHigh         = "High Potential"
	PotentialMeets        = "Meets Expectation"
	PotentialBelow        = "Below Expectation"
	StatusAtRisk          = "At Risk of Resigning"
	StatusNotAtRisk       = "Not at Risk"
	LabelInsufficientData = "Insufficient Data"
)

// Gender encoding is a fixed enumeration decided at the system boundary and
// never refit at inference time. Missing gender defaults to Male.
const (
	GenderMale   = 0
	GenderFemale = 1
	GenderOther  = 2
)

// EncodeGender maps a raw gender string to its fixed integer code.
func EncodeGender(gender string) int {
	switch gender {
	case "", "Male", "male":
		return GenderMale
	case "Female", "female":
		return GenderFemale
	default:
		return GenderOther
	}
}

// EmployeeRecord is a single employee row as ingested from a database query
// or a JSON request body. Optional fields are pointers so missing values are
// distinguishable from zeros. Immutable once ingested.
type EmployeeRecord struct {
	EmployeeID   int    `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	PositionID   *int   `json:"position_id,omitempty"`

	// Dates are YYYY-MM-DD strings; unparseable values fall back to defaults
	// during feature engineering rather than failing the row.
	JoiningDate *string `json:"joining_date,omitempty"`
	Birthday    *string `json:"birthday,omitempty"`
	Gender      *string `json:"gender,omitempty"`

	// Evaluation sub-scores, each nominally 1-5.
	AttendanceScore           *float64 `json:"attendance_score,omitempty"`
	DedicationScore           *float64 `json:"dedication_score,omitempty"`
	PerformanceJobKnowledge   *float64 `json:"performance_job_knowledge,omitempty"`
	PerformanceWorkEfficiency *float64 `json:"performance_work_efficiency,omitempty"`
	CooperationTaskAcceptance *float64 `json:"cooperation_task_acceptance,omitempty"`
	CooperationAdaptability   *float64 `json:"cooperation_adaptability,omitempty"`
	InitiativeAutonomy        *float64 `json:"initiative_autonomy,omitempty"`
	InitiativeUnderPressure   *float64 `json:"initiative_under_pressure,omitempty"`
	Communication             *float64 `json:"communication,omitempty"`
	Teamwork                  *float64 `json:"teamwork,omitempty"`
	Character                 *float64 `json:"character,omitempty"`
	Responsiveness            *float64 `json:"responsiveness,omitempty"`
	Personality               *float64 `json:"personality,omitempty"`
	Appearance                *float64 `json:"appearance,omitempty"`
	WorkHabits                *float64 `json:"work_habits,omitempty"`
	OverallScore              *float64 `json:"overall_score,omitempty"`

	// Attendance statistics over the reporting window (typically 30 days).
	TotalDays    int `json:"total_days"`
	LateCount    int `json:"late_count"`
	AbsentCount  int `json:"absent_count"`
	PresentCount int `json:"present_count"`
}

// FeatureVector holds the engineered features for one employee. Invariants:
// every evaluation score lies in [1,5] after imputation; AttendanceRate lies
// in [0,100].
type FeatureVector struct {
	EmployeeID   int
	EmployeeName string

	Attendance     float64
	Dedication     float64
	Performance    float64
	Cooperation    float64
	Initiative     float64
	Communication  float64
	Teamwork       float64
	Character      float64
	Responsiveness float64
	Personality    float64
	Appearance     float64
	WorkHabits     float64
	OverallScore   float64
	AvgEvaluation  float64
	LowScoreCount  float64
	Age            float64
	GenderEncoded  float64
	TenureMonths   float64
	LateCount      float64
	AbsentCount    float64
	AttendanceRate float64
}

// NumFeatures is the width of the model input vector.
const NumFeatures = 21

// Values returns the features in the fixed order the classifier was trained
// with. The order must never change between training and inference.
func (v *FeatureVector) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{
		v.Attendance,
		v.Dedication,
		v.Performance,
		v.Cooperation,
		v.Initiative,
		v.Communication,
		v.Teamwork,
		v.Character,
		v.Responsiveness,
		v.Personality,
		v.Appearance,
		v.WorkHabits,
		v.OverallScore,
		v.AvgEvaluation,
		v.LowScoreCount,
		v.Age,
		v.GenderEncoded,
		v.TenureMonths,
		v.LateCount,
		v.AbsentCount,
		v.AttendanceRate,
	}
}

// PredictionResult is the per-employee output record. Created fresh on every
// prediction call; never persisted.
type PredictionResult struct {
	EmployeeID             int     `json:"employee_id"`
	EmployeeName           string  `json:"employee_name"`
	PerformanceScore       float64 `json:"performance_score"`
	Potential              string  `json:"potential"`
	ResignationProbability float64 `json:"resignation_probability"`
	ResignationStatus      string  `json:"resignation_status"`
	AttendanceRate         float64 `json:"attendance_rate"`
	LateCount              int     `json:"late_count"`
	AbsentCount            int     `json:"absent_count"`
	TenureMonths           int     `json:"tenure_months"`
	OverallScore           float64 `json:"overall_score"`
	AvgEvaluation          float64 `json:"avg_evaluation"`
}

// Metadata describes a persisted classifier: the decision threshold, a
// version tag, and training/usage accounting.
type Metadata struct {
	Threshold        float64
	Version          string
	LastTraining     time.Time
	TotalPredictions int64
}
