// Package hrdb reads employee, evaluation, and attendance rows out of the
// HRMS MySQL schema and assembles them into records for the predictor.
package hrdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hrsignal/attrition/internal/domain/model"
)

// defaultAttendanceWindow is how far back attendance statistics reach.
const defaultAttendanceWindow = 30 * 24 * time.Hour

// Config holds the connection parameters for the HRMS database.
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DSN renders the MySQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Client fetches prediction inputs from the HRMS schema.
type Client struct {
	db     *gorm.DB
	window time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAttendanceWindow sets how far back attendance rows are aggregated.
func WithAttendanceWindow(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.window = d
		}
	}
}

// New opens a connection to the HRMS database.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	c := &Client{db: db, window: defaultAttendanceWindow}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// employeeRow mirrors the active-employee query.
type employeeRow struct {
	ID          int
	Name        string
	PositionID  *int
	JoiningDate *time.Time
	Birthday    *time.Time
	Gender      *string
}

// evaluationRow mirrors one completed evaluation averaged across evaluators.
type evaluationRow struct {
	EmployeeID                int
	PeriodEnd                 time.Time
	Attendance                *float64
	Dedication                *float64
	PerformanceJobKnowledge   *float64
	PerformanceWorkEfficiency *float64
	CooperationTaskAcceptance *float64
	CooperationAdaptability   *float64
	InitiativeAutonomy        *float64
	InitiativeUnderPressure   *float64
	Communication             *float64
	Teamwork                  *float64
	Character                 *float64
	Responsiveness            *float64
	Personality               *float64
	Appearance                *float64
	WorkHabits                *float64
	OverallScore              *float64
}

// attendanceRow mirrors the per-employee attendance aggregate.
type attendanceRow struct {
	EmployeeID   int
	TotalDays    int
	LateCount    int
	AbsentCount  int
	PresentCount int
}

// FetchEmployeeRecords assembles one record per active employee, joined with
// the latest completed evaluation and attendance counts over the window.
// Employees without evaluations or attendance still get a record; the
// feature engineering decides what to do with the gaps.
func (c *Client) FetchEmployeeRecords(ctx context.Context) ([]model.EmployeeRecord, error) {
	employees, err := c.fetchActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}

	ids := make([]int, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	evaluations, err := c.fetchLatestEvaluations(ctx, ids)
	if err != nil {
		return nil, err
	}
	attendance, err := c.fetchAttendance(ctx, ids)
	if err != nil {
		return nil, err
	}

	records := make([]model.EmployeeRecord, 0, len(employees))
	for _, e := range employees {
		r := model.EmployeeRecord{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			PositionID:   e.PositionID,
			JoiningDate:  formatDate(e.JoiningDate),
			Birthday:     formatDate(e.Birthday),
			Gender:       e.Gender,
		}
		if ev, ok := evaluations[e.ID]; ok {
			r.AttendanceScore = ev.Attendance
			r.DedicationScore = ev.Dedication
			r.PerformanceJobKnowledge = ev.PerformanceJobKnowledge
			r.PerformanceWorkEfficiency = ev.PerformanceWorkEfficiency
			r.CooperationTaskAcceptance = ev.CooperationTaskAcceptance
			r.CooperationAdaptability = ev.CooperationAdaptability
			r.InitiativeAutonomy = ev.InitiativeAutonomy
			r.InitiativeUnderPressure = ev.InitiativeUnderPressure
			r.Communication = ev.Communication
			r.Teamwork = ev.Teamwork
			r.Character = ev.Character
			r.Responsiveness = ev.Responsiveness
			r.Personality = ev.Personality
			r.Appearance = ev.Appearance
			r.WorkHabits = ev.WorkHabits
			r.OverallScore = ev.OverallScore
		}
		if at, ok := attendance[e.ID]; ok {
			r.TotalDays = at.TotalDays
			r.LateCount = at.LateCount
			r.AbsentCount = at.AbsentCount
			r.PresentCount = at.PresentCount
		}
		records = append(records, r)
	}
	return records, nil
}

func (c *Client) fetchActiveEmployees(ctx context.Context) ([]employeeRow, error) {
	var rows []employeeRow
	err := c.db.WithContext(ctx).Raw(`
		SELECT
			id,
			CONCAT(first_name, ' ', last_name) AS name,
			position_id,
			joining_date,
			birthday,
			gender
		FROM users
		WHERE employment_status = 'active'`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: active employees: %v", ErrQuery, err)
	}
	return rows, nil
}

// fetchLatestEvaluations returns the most recent completed evaluation per
// employee, with sub-scores averaged across evaluators.
func (c *Client) fetchLatestEvaluations(ctx context.Context, ids []int) (map[int]evaluationRow, error) {
	var rows []evaluationRow
	err := c.db.WithContext(ctx).Raw(`
		SELECT
			pe.employee_id,
			pep.evaluation_end AS period_end,
			AVG(per.attendance) AS attendance,
			AVG(per.dedication) AS dedication,
			AVG(per.performance_job_knowledge) AS performance_job_knowledge,
			AVG(per.performance_work_efficiency_professionalism) AS performance_work_efficiency,
			AVG(per.cooperation_task_acceptance) AS cooperation_task_acceptance,
			AVG(per.cooperation_adaptability) AS cooperation_adaptability,
			AVG(per.initiative_autonomy) AS initiative_autonomy,
			AVG(per.initiative_under_pressure) AS initiative_under_pressure,
			AVG(per.communication) AS communication,
			AVG(per.teamwork) AS teamwork,
			AVG(per.character) AS `+"`character`"+`,
			AVG(per.responsiveness) AS responsiveness,
			AVG(per.personality) AS personality,
			AVG(per.appearance) AS appearance,
			AVG(per.work_habits) AS work_habits,
			pe.average_score AS overall_score
		FROM performance_evaluations pe
		JOIN performance_evaluation_periods pep ON pe.period_id = pep.id
		LEFT JOIN performance_evaluator_responses per ON pe.id = per.evaluation_id
		WHERE pe.employee_id IN ? AND pe.completed_at IS NOT NULL
		GROUP BY pe.id, pe.employee_id, pep.evaluation_end, pe.average_score
		ORDER BY pe.employee_id, pep.evaluation_end`, ids).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: evaluations: %v", ErrQuery, err)
	}

	// Last period wins per employee.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PeriodEnd.Before(rows[j].PeriodEnd) })
	latest := make(map[int]evaluationRow, len(rows))
	for _, r := range rows {
		latest[r.EmployeeID] = r
	}
	return latest, nil
}

func (c *Client) fetchAttendance(ctx context.Context, ids []int) (map[int]attendanceRow, error) {
	threshold := time.Now().Add(-c.window).Format("2006-01-02")

	var rows []attendanceRow
	err := c.db.WithContext(ctx).Raw(`
		SELECT
			sa.user_id AS employee_id,
			COUNT(*) AS total_days,
			SUM(CASE WHEN a.status = 'late' THEN 1 ELSE 0 END) AS late_count,
			SUM(CASE WHEN a.status = 'absent' THEN 1 ELSE 0 END) AS absent_count,
			SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END) AS present_count
		FROM schedule_assignments sa
		JOIN schedules s ON sa.schedule_id = s.id
		LEFT JOIN attendances a ON sa.id = a.schedule_assignment_id
		WHERE sa.user_id IN ? AND s.date >= ?
		GROUP BY sa.user_id`, ids, threshold).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: attendance: %v", ErrQuery, err)
	}

	out := make(map[int]attendanceRow, len(rows))
	for _, r := range rows {
		out[r.EmployeeID] = r
	}
	return out, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
