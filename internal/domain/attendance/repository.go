package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// LockByID is GetByID holding a row lock until the transaction ends.
	LockByID(ctx context.Context, id string) (Attendance, error)

	// LockByEmployeeAndDate returns nil when the employee has no record on
	// date. The row stays locked until the transaction ends.
	LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	Update(ctx context.Context, attendance Attendance) error

	// List retrieves attendance records with filters and pagination, newest date first.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListBetween returns an employee's records in [from, to] ordered by date.
	ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
}
