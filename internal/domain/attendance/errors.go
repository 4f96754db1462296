package attendance

import "github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn  = apperror.Conflict("ALREADY_CHECKED_IN", "already checked in for this date")
	ErrNoCheckIn         = apperror.NotFound("NO_CHECK_IN", "no check-in found for this date, please check in first")
	ErrAlreadyCheckedOut = apperror.State("ALREADY_CHECKED_OUT", "already checked out for this date")

	ErrCheckOutBeforeCheckIn = apperror.Validation("CHECK_OUT_BEFORE_CHECK_IN", "check-out time must not be earlier than check-in time")
	ErrAttendanceNotFound    = apperror.NotFound("ATTENDANCE_NOT_FOUND", "attendance record not found")
)
