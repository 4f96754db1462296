package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type ApplyLeaveRequest struct {
	LeaveType string  `json:"leave_type" validate:"required"`
	StartDate string  `json:"start_date" validate:"required,date"`
	EndDate   string  `json:"end_date" validate:"required,date"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *ApplyLeaveRequest) Validate() error {
	errs := validator.Struct(r)
	if r.LeaveType != "" && !Type(r.LeaveType).Valid() {
		errs.Add("leave_type", fmt.Sprintf("leave_type must be one of: %s", strings.Join(Types, ", ")))
	}
	return errs.Err()
}

type ApproveLeaveRequest struct {
	ID            string `json:"-"`
	AllowOverdraw bool   `json:"allow_overdraw"`
}

type RejectLeaveRequest struct {
	ID              string `json:"-"`
	RejectionReason string `json:"rejection_reason"`
}

func (r *RejectLeaveRequest) Validate() error {
	if validator.IsEmpty(r.RejectionReason) {
		return ErrRejectionReasonRequired
	}
	return nil
}

type LeaveFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	LeaveType  *string `json:"leave_type,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Resolved by Validate.
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", fmt.Sprintf("status must be one of: %s", strings.Join(Statuses, ", ")))
	}
	if f.LeaveType != nil && !Type(*f.LeaveType).Valid() {
		errs.Add("leave_type", fmt.Sprintf("leave_type must be one of: %s", strings.Join(Types, ", ")))
	}

	if f.StartDate != nil && f.EndDate != nil {
		start, okStart := validator.IsValidDate(*f.StartDate)
		end, okEnd := validator.IsValidDate(*f.EndDate)
		if !okStart {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		if !okEnd {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		if okStart && okEnd {
			f.From, f.To = &start, &end
		}
	}

	return errs.Err()
}

type UpdateAllocationRequest struct {
	EmployeeID     string   `json:"employee_id" validate:"required"`
	Year           int      `json:"year" validate:"required,gte=1900,lte=9999"`
	LeaveType      string   `json:"leave_type" validate:"required"`
	TotalAllocated *float64 `json:"total_allocated" validate:"required,gte=0"`
}

func (r *UpdateAllocationRequest) Validate() error {
	errs := validator.Struct(r)
	if r.LeaveType != "" && !Type(r.LeaveType).Valid() {
		errs.Add("leave_type", fmt.Sprintf("leave_type must be one of: %s", strings.Join(Types, ", ")))
	}
	return errs.Err()
}

type BalanceRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Status          string  `json:"status"`
	IsExtraLeave    bool    `json:"is_extra_leave"`
	Reason          *string `json:"reason,omitempty"`
	AppliedBy       string  `json:"applied_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedByRole  *string `json:"approved_by_type,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListLeaveResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Leaves     []LeaveResponse `json:"leaves"`
}

type BalanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	Year           int     `json:"year"`
	LeaveType      string  `json:"leave_type"`
	TotalAllocated float64 `json:"total_allocated"`
	Used           float64 `json:"used"`
	Pending        float64 `json:"pending"`
	Balance        float64 `json:"balance"`
}

type Totals struct {
	TotalAllocated float64 `json:"total_allocated"`
	TotalUsed      float64 `json:"total_used"`
	TotalPending   float64 `json:"total_pending"`
	TotalBalance   float64 `json:"total_balance"`
}

type LeaveBalanceResponse struct {
	EmployeeID    string            `json:"employee_id"`
	Year          int               `json:"year"`
	LeaveBalances []BalanceResponse `json:"leave_balances"`
	Totals        Totals            `json:"totals"`
}

func SumBalances(balances []Balance) Totals {
	var t Totals
	for _, b := range balances {
		t.TotalAllocated += b.TotalAllocated
		t.TotalUsed += b.Used
		t.TotalPending += b.Pending
		t.TotalBalance += b.Balance
	}
	return t
}

func ToResponse(a Application) LeaveResponse {
	var approvedAt *string
	if a.ApprovedAt != nil {
		s := a.ApprovedAt.Format(time.RFC3339)
		approvedAt = &s
	}
	return LeaveResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		LeaveType:       string(a.LeaveType),
		StartDate:       workday.FormatDate(a.StartDate),
		EndDate:         workday.FormatDate(a.EndDate),
		TotalDays:       a.TotalDays,
		Status:          string(a.Status),
		IsExtraLeave:    a.IsExtraLeave,
		Reason:          a.Reason,
		AppliedBy:       a.AppliedBy,
		ApprovedBy:      a.ApprovedBy,
		ApprovedByRole:  a.ApprovedByRole,
		ApprovedAt:      approvedAt,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}
}

func ToBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		ID:             b.ID,
		EmployeeID:     b.EmployeeID,
		Year:           b.Year,
		LeaveType:      string(b.LeaveType),
		TotalAllocated: b.TotalAllocated,
		Used:           b.Used,
		Pending:        b.Pending,
		Balance:        b.Balance,
	}
}
