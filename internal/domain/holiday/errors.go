package holiday

import "github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"

var (
	ErrHolidayNotFound = apperror.NotFound("HOLIDAY_NOT_FOUND", "holiday not found")
	ErrHolidayExists   = apperror.Conflict("HOLIDAY_EXISTS", "holiday already exists for this date")
)
