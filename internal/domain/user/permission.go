package user

import "strings"

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage"

	// Leave
	PermissionLeaveViewOwn          Permission = "leave.view_own"
	PermissionLeaveCreate           Permission = "leave.create"
	PermissionLeaveViewAll          Permission = "leave.view_all"
	PermissionLeaveApprove          Permission = "leave.approve"
	PermissionLeaveManageAllocation Permission = "leave.manage_allocation"

	// Calendar & holidays
	PermissionCalendarViewOwn Permission = "calendar.view_own"
	PermissionCalendarViewAll Permission = "calendar.view_all"
	PermissionHolidayView     Permission = "holiday.view"
	PermissionHolidayManage   Permission = "holiday.manage"
)

// Object and Action split "leave.approve" into "leave" and "approve".
func (p Permission) Object() string {
	obj, _, _ := strings.Cut(string(p), ".")
	return obj
}

func (p Permission) Action() string {
	_, act, _ := strings.Cut(string(p), ".")
	return act
}

var selfService = []Permission{
	PermissionAttendanceViewOwn,
	PermissionAttendanceCreate,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionCalendarViewOwn,
	PermissionHolidayView,
}

var management = []Permission{
	PermissionAttendanceViewAll,
	PermissionAttendanceManage,
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionLeaveManageAllocation,
	PermissionCalendarViewAll,
	PermissionHolidayManage,
}

// RolePermissions maps roles to their permissions. It seeds the RBAC policy.
var RolePermissions = map[Role][]Permission{
	RoleSystemAdmin: append(append([]Permission{}, selfService...), management...),
	RoleExecutive:   append(append([]Permission{}, selfService...), management...),
	RoleHR:          append(append([]Permission{}, selfService...), management...),
	RoleEmployee:    selfService,
	RoleIntern:      selfService,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
