package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/requestctx"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/utils/paging"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

// HolidayChecker tells whether a date is an active holiday.
type HolidayChecker interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

type Config struct {
	ExpectedCheckIn  workday.Clock
	ExpectedCheckOut workday.Clock
}

func DefaultConfig() Config {
	return Config{
		ExpectedCheckIn:  workday.DefaultExpectedCheckIn,
		ExpectedCheckOut: workday.DefaultExpectedCheckOut,
	}
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	holidays HolidayChecker
	audit    audit.Recorder
	cfg      Config
	now      func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	holidays HolidayChecker,
	recorder audit.Recorder,
	cfg Config,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		holidays:             holidays,
		audit:                recorder,
		cfg:                  cfg,
		now:                  time.Now,
	}
}

// dateAndClock resolves the optional date and time of a check-in or
// check-out request against the service clock.
func (s *AttendanceServiceImpl) dateAndClock(dateStr, clockStr string) (time.Time, workday.Clock) {
	now := s.now()
	date := workday.DateOf(now)
	if dateStr != "" {
		date, _ = workday.ParseDate(dateStr)
	}
	at := workday.ClockOf(now)
	if clockStr != "" {
		at, _ = workday.ParseClock(clockStr)
	}
	return date, at
}

func locationOrClientIP(ctx context.Context, location *string) *string {
	if location != nil && *location != "" {
		return location
	}
	if ip := requestctx.GetClient(ctx).IP; ip != "" {
		return &ip
	}
	return nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, at := s.dateAndClock(req.Date, req.CheckInTime)

	var before *attendance.Attendance
	var saved attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.LockByEmployeeAndDate(ctx, actor.EmployeeID, date)
		if err != nil {
			return err
		}
		if existing != nil && existing.CheckInTime != nil {
			return attendance.ErrAlreadyCheckedIn
		}

		onHoliday, err := s.holidays.IsHoliday(ctx, date)
		if err != nil {
			return err
		}
		status := attendance.StatusPresent
		if onHoliday {
			status = attendance.StatusHoliday
		}

		if existing == nil {
			saved = attendance.Attendance{
				EmployeeID:       actor.EmployeeID,
				Date:             date,
				ExpectedCheckIn:  s.cfg.ExpectedCheckIn,
				ExpectedCheckOut: s.cfg.ExpectedCheckOut,
				CheckInLocation:  locationOrClientIP(ctx, req.Location),
				Status:           status,
			}
			saved.ApplyCheckIn(at)
			saved, err = s.AttendanceRepository.Create(ctx, saved)
			return err
		}

		snapshot := *existing
		before = &snapshot
		saved = *existing
		saved.CheckInLocation = locationOrClientIP(ctx, req.Location)
		saved.Status = status
		saved.ApplyCheckIn(at)
		saved.UpdatedAt = s.now().UTC()
		return s.AttendanceRepository.Update(ctx, saved)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if saved.IsLate {
		slog.Info("Late check-in", "employee_id", saved.EmployeeID, "date", workday.FormatDate(date), "late_minutes", saved.LateMinutes)
	}

	resp := attendance.ToResponse(saved)
	event := audit.Event{
		Action:     audit.ActionCheckIn,
		EntityType: audit.EntityAttendance,
		EntityID:   saved.ID,
		Metadata:   map[string]any{"date": resp.Date, "check_in_time": at.String()},
	}
	if before != nil {
		event.Before, event.After = attendance.ToResponse(*before), resp
	} else {
		event.Created = resp
	}
	s.audit.Record(ctx, event)

	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, at := s.dateAndClock(req.Date, req.CheckOutTime)

	var before, saved attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.LockByEmployeeAndDate(ctx, actor.EmployeeID, date)
		if err != nil {
			return err
		}
		if existing == nil {
			return attendance.ErrNoCheckIn
		}
		if existing.CheckOutTime != nil {
			return fmt.Errorf("%w at %s", attendance.ErrAlreadyCheckedOut, existing.CheckOutTime)
		}

		before = *existing
		saved = *existing
		saved.CheckOutLocation = locationOrClientIP(ctx, req.Location)
		saved.ApplyCheckOut(at)
		if saved.ChecksOutBeforeCheckIn() {
			return attendance.ErrCheckOutBeforeCheckIn
		}
		saved.UpdatedAt = s.now().UTC()
		return s.AttendanceRepository.Update(ctx, saved)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp := attendance.ToResponse(saved)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCheckOut,
		EntityType: audit.EntityAttendance,
		EntityID:   saved.ID,
		Before:     attendance.ToResponse(before),
		After:      resp,
		Metadata:   map[string]any{"date": resp.Date, "work_hours": saved.WorkHours},
	})

	return resp, nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.IsPrivileged() {
		return attendance.AttendanceResponse{}, user.ErrPrivilegedRoleRequired
	}

	var before, saved attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.AttendanceRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}
		before = existing
		saved = existing

		recompute := false
		if req.ExpectedCheckIn != nil {
			saved.ExpectedCheckIn, _ = workday.ParseClock(*req.ExpectedCheckIn)
			recompute = true
		}
		if req.ExpectedCheckOut != nil {
			saved.ExpectedCheckOut, _ = workday.ParseClock(*req.ExpectedCheckOut)
			recompute = true
		}
		if req.CheckInTime != nil {
			c, _ := workday.ParseClock(*req.CheckInTime)
			saved.CheckInTime = &c
			recompute = true
		}
		if req.CheckOutTime != nil {
			c, _ := workday.ParseClock(*req.CheckOutTime)
			saved.CheckOutTime = &c
			recompute = true
		}
		if recompute {
			saved.Recompute()
		}
		if saved.ChecksOutBeforeCheckIn() {
			return attendance.ErrCheckOutBeforeCheckIn
		}
		if req.Status != nil {
			saved.Status = attendance.Status(*req.Status)
		}
		if req.Remarks != nil {
			saved.Remarks = req.Remarks
		}
		saved.UpdatedAt = s.now().UTC()

		return s.AttendanceRepository.Update(ctx, saved)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	resp := attendance.ToResponse(saved)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionUpdateAttendance,
		EntityType: audit.EntityAttendance,
		EntityID:   saved.ID,
		Before:     attendance.ToResponse(before),
		After:      resp,
	})

	return resp, nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	requested := ""
	if filter.EmployeeID != nil {
		requested = *filter.EmployeeID
	}
	subject, err := user.ResolveSubject(actor, requested)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.EmployeeID = &subject

	attendances, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, attendance.ToResponse(att))
	}

	totalPages, showing := paging.Summary(total, filter.Page, filter.Limit)
	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetAttendanceStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendanceStats(ctx context.Context, req attendance.StatsRequest) (attendance.StatsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StatsResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return attendance.StatsResponse{}, err
	}

	requested := ""
	if req.EmployeeID != nil {
		requested = *req.EmployeeID
	}
	subject, err := user.ResolveSubject(actor, requested)
	if err != nil {
		return attendance.StatsResponse{}, err
	}

	now := s.now()
	year, month := now.Year(), now.Month()
	if req.Year != nil {
		year = *req.Year
	}
	if req.Month != nil {
		month = time.Month(*req.Month)
	}
	from, to := workday.MonthRange(year, month)

	records, err := s.AttendanceRepository.ListBetween(ctx, subject, from, to)
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	return attendance.StatsResponse{
		EmployeeID: subject,
		Month:      int(month),
		Year:       year,
		Stats:      attendance.Summarize(records),
	}, nil
}
