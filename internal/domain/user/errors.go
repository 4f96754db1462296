package user

import "github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"

var (
	ErrUnauthenticated         = apperror.Unauthorized("UNAUTHENTICATED", "authentication required")
	ErrForbidden               = apperror.Permission("FORBIDDEN", "you don't have permission to access this resource")
	ErrPrivilegedRoleRequired  = apperror.Permission("PRIVILEGED_ROLE_REQUIRED", "HR, Executive or System Admin role required")
	ErrInsufficientPermissions = apperror.Permission("INSUFFICIENT_PERMISSIONS", "insufficient permissions")
)
