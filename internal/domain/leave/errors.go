package leave

import "github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"

var (
	ErrLeaveNotFound           = apperror.NotFound("LEAVE_NOT_FOUND", "leave application not found")
	ErrInvalidRange            = apperror.Validation("INVALID_RANGE", "invalid leave date range")
	ErrStartDateInPast         = apperror.Validation("INVALID_RANGE", "start date cannot be in the past")
	ErrEndBeforeStart          = apperror.Validation("INVALID_RANGE", "end date must not be before start date")
	ErrOverlappingLeave        = apperror.Conflict("OVERLAPPING_LEAVE", "you already have a leave application for this period")
	ErrNotPending              = apperror.State("NOT_PENDING", "leave application is not pending")
	ErrNotOwner                = apperror.Permission("NOT_OWNER", "you can only cancel your own leave")
	ErrRejectionReasonRequired = apperror.Validation("REJECTION_REASON_REQUIRED", "rejection reason is required")
	ErrOverdrawNotAcknowledged = apperror.State("OVERDRAW_NOT_ACKNOWLEDGED", "leave exceeds the available balance; approve with allow_overdraw to confirm")
)
