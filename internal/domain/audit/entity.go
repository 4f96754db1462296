package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionCheckIn               = "CHECK_IN"
	ActionCheckOut              = "CHECK_OUT"
	ActionUpdateAttendance      = "UPDATE_ATTENDANCE"
	ActionApplyLeave            = "APPLY_LEAVE"
	ActionApproveLeave          = "APPROVE_LEAVE"
	ActionRejectLeave           = "REJECT_LEAVE"
	ActionCancelLeave           = "CANCEL_LEAVE"
	ActionUpdateLeaveAllocation = "UPDATE_LEAVE_ALLOCATION"
	ActionCreateHoliday         = "CREATE_HOLIDAY"
	ActionUpdateHoliday         = "UPDATE_HOLIDAY"
	ActionDeleteHoliday         = "DELETE_HOLIDAY"
)

const (
	EntityAttendance   = "Attendance"
	EntityLeave        = "Leave"
	EntityLeaveBalance = "LeaveBalance"
	EntityHoliday      = "Holiday"
)

const StatusSuccess = "SUCCESS"

// Entry is one audit-log record.
type Entry struct {
	ID          string
	Action      string
	EntityType  string
	EntityID    string
	ActorID     string
	ActorRole   string
	ActorEmail  string
	Changes     json.RawMessage
	Metadata    json.RawMessage
	IPAddress   string
	UserAgent   string
	RequestID   string
	Status      string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// Event is what callers hand to the Recorder. Before/After/Created are
// marshalled into Entry.Changes.
type Event struct {
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
	Created    any
	Deleted    any
	Metadata   map[string]any
}
