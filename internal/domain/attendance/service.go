package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn records the caller's arrival for a date (today by default).
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut records the caller's departure for a date (today by default).
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// UpdateAttendance corrects a record and recomputes its derived fields. Privileged.
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendanceStats(ctx context.Context, req StatsRequest) (StatsResponse, error)
}
