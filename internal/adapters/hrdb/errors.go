package hrdb

import "errors"

var (
	// ErrConnect is returned when the HRMS database cannot be reached.
	ErrConnect = errors.New("hr database connection failed")
	// ErrQuery is returned when a fetch query fails.
	ErrQuery = errors.New("hr database query failed")
)
