package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type CheckInRequest struct {
	Date        string  `json:"date,omitempty" validate:"omitempty,date"`
	CheckInTime string  `json:"check_in_time,omitempty" validate:"omitempty,clock"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r).Err()
}

type CheckOutRequest struct {
	Date         string  `json:"date,omitempty" validate:"omitempty,date"`
	CheckOutTime string  `json:"check_out_time,omitempty" validate:"omitempty,clock"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

func (r *CheckOutRequest) Validate() error {
	return validator.Struct(r).Err()
}

// UpdateAttendanceRequest lets HR fix wrong attendance data, e.g. a
// forgotten check-out. All fields are optional.
type UpdateAttendanceRequest struct {
	ID               string  `json:"-"`
	CheckInTime      *string `json:"check_in_time,omitempty" validate:"omitempty,clock"`
	CheckOutTime     *string `json:"check_out_time,omitempty" validate:"omitempty,clock"`
	Status           *string `json:"status,omitempty" validate:"omitempty,oneof='Present' 'Absent' 'Half Day' 'Leave' 'Holiday'"`
	Remarks          *string `json:"remarks,omitempty"`
	ExpectedCheckIn  *string `json:"expected_check_in,omitempty" validate:"omitempty,clock"`
	ExpectedCheckOut *string `json:"expected_check_out,omitempty" validate:"omitempty,clock"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	errs := validator.Struct(r)
	if r.ID == "" {
		errs.Add("id", "is required")
	}
	if r.CheckInTime == nil && r.CheckOutTime == nil && r.Status == nil && r.Remarks == nil &&
		r.ExpectedCheckIn == nil && r.ExpectedCheckOut == nil {
		errs.Add("request", "at least one field must be provided")
	}
	return errs.Err()
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Resolved by Validate from StartDate/EndDate or Month/Year.
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
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
		errs.Add("status", fmt.Sprintf("status must be one of: %v", Statuses))
	}

	switch {
	case f.StartDate != nil && f.EndDate != nil:
		start, okStart := validator.IsValidDate(*f.StartDate)
		end, okEnd := validator.IsValidDate(*f.EndDate)
		if !okStart {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		if !okEnd {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		if okStart && okEnd {
			if end.Before(start) {
				errs.Add("end_date", "end_date must not be before start_date")
			}
			f.From, f.To = &start, &end
		}
	case f.Month != nil && f.Year != nil:
		if *f.Month < 1 || *f.Month > 12 {
			errs.Add("month", "month must be between 1 and 12")
			break
		}
		from, to := workday.MonthRange(*f.Year, time.Month(*f.Month))
		f.From, f.To = &from, &to
	}

	return errs.Err()
}

type StatsRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

func (r *StatsRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month != nil && (*r.Month < 1 || *r.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if r.Year != nil && (*r.Year < 1900 || *r.Year > 9999) {
		errs.Add("year", "year is out of range")
	}
	return errs.Err()
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	Date             string   `json:"date"`
	CheckInTime      *string  `json:"check_in_time"`
	CheckOutTime     *string  `json:"check_out_time"`
	CheckInLocation  *string  `json:"check_in_location,omitempty"`
	CheckOutLocation *string  `json:"check_out_location,omitempty"`
	ExpectedCheckIn  string   `json:"expected_check_in"`
	ExpectedCheckOut string   `json:"expected_check_out"`
	IsLate           bool     `json:"is_late"`
	LateMinutes      int      `json:"late_minutes"`
	IsEarlyExit      bool     `json:"is_early_exit"`
	EarlyExitMinutes int      `json:"early_exit_minutes"`
	WorkHours        *float64 `json:"work_hours"`
	Status           string   `json:"status"`
	Remarks          *string  `json:"remarks,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type Stats struct {
	TotalDays             int     `json:"total_days"`
	Present               int     `json:"present"`
	Absent                int     `json:"absent"`
	Leave                 int     `json:"leave"`
	HalfDay               int     `json:"half_day"`
	Holiday               int     `json:"holiday"`
	LateCount             int     `json:"late_count"`
	EarlyExitCount        int     `json:"early_exit_count"`
	TotalLateMinutes      int     `json:"total_late_minutes"`
	TotalEarlyExitMinutes int     `json:"total_early_exit_minutes"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	AverageWorkHours      float64 `json:"average_work_hours"`
}

type StatsResponse struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Stats      Stats  `json:"stats"`
}

// Summarize counts statuses and sums hours over records. The average
// only considers records that have positive work hours.
func Summarize(records []Attendance) Stats {
	stats := Stats{TotalDays: len(records)}
	worked := 0
	for _, a := range records {
		switch a.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusLeave:
			stats.Leave++
		case StatusHalfDay:
			stats.HalfDay++
		case StatusHoliday:
			stats.Holiday++
		}
		if a.IsLate {
			stats.LateCount++
		}
		if a.IsEarlyExit {
			stats.EarlyExitCount++
		}
		stats.TotalLateMinutes += a.LateMinutes
		stats.TotalEarlyExitMinutes += a.EarlyExitMinutes
		if a.WorkHours != nil {
			stats.TotalWorkHours += *a.WorkHours
			if *a.WorkHours > 0 {
				worked++
			}
		}
	}
	if worked > 0 {
		stats.AverageWorkHours = stats.TotalWorkHours / float64(worked)
	}
	return stats
}

func clockPtrToString(c *workday.Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		Date:             workday.FormatDate(a.Date),
		CheckInTime:      clockPtrToString(a.CheckInTime),
		CheckOutTime:     clockPtrToString(a.CheckOutTime),
		CheckInLocation:  a.CheckInLocation,
		CheckOutLocation: a.CheckOutLocation,
		ExpectedCheckIn:  a.ExpectedCheckIn.String(),
		ExpectedCheckOut: a.ExpectedCheckOut.String(),
		IsLate:           a.IsLate,
		LateMinutes:      a.LateMinutes,
		IsEarlyExit:      a.IsEarlyExit,
		EarlyExitMinutes: a.EarlyExitMinutes,
		WorkHours:        a.WorkHours,
		Status:           string(a.Status),
		Remarks:          a.Remarks,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
}
