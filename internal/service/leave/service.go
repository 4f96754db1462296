package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/utils/paging"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

// Notifier pushes leave decisions to the employee's live streams.
type Notifier interface {
	Publish(employeeID string, event sse.Event)
}

type Config struct {
	// OverdrawRequiresFlag makes approving extra leave require allow_overdraw.
	OverdrawRequiresFlag bool
}

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.ApplicationRepository
	ledger   leave.Ledger
	audit    audit.Recorder
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	applicationRepo leave.ApplicationRepository,
	ledger leave.Ledger,
	recorder audit.Recorder,
	notifier Notifier,
	cfg Config,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                    tx,
		ApplicationRepository: applicationRepo,
		ledger:                ledger,
		audit:                 recorder,
		notifier:              notifier,
		cfg:                   cfg,
		now:                   time.Now,
	}
}

func notPending(status leave.Status) error {
	return fmt.Errorf("%w: leave is already %s", leave.ErrNotPending, strings.ToLower(string(status)))
}

// ApplyLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ApplyLeave(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	start, _ := workday.ParseDate(req.StartDate)
	end, _ := workday.ParseDate(req.EndDate)
	if start.Before(workday.DateOf(s.now())) {
		return leave.LeaveResponse{}, leave.ErrStartDateInPast
	}
	if end.Before(start) {
		return leave.LeaveResponse{}, leave.ErrEndBeforeStart
	}
	totalDays := workday.BusinessDaysBetween(start, end)
	if totalDays <= 0 {
		return leave.LeaveResponse{}, fmt.Errorf("%w: the period has no working days", leave.ErrInvalidRange)
	}

	leaveType := leave.Type(req.LeaveType)
	var created leave.Application
	var available float64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ApplicationRepository.LockEmployee(ctx, actor.EmployeeID); err != nil {
			return err
		}

		balance, err := s.ledger.GetOrCreate(ctx, actor.EmployeeID, start.Year(), leaveType)
		if err != nil {
			return err
		}
		available = balance.Available()

		overlapping, err := s.ApplicationRepository.HasOverlapping(ctx, actor.EmployeeID, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlapping {
			return leave.ErrOverlappingLeave
		}

		created, err = s.ApplicationRepository.Create(ctx, leave.Application{
			EmployeeID:   actor.EmployeeID,
			LeaveType:    leaveType,
			StartDate:    start,
			EndDate:      end,
			TotalDays:    totalDays,
			Status:       leave.StatusPending,
			IsExtraLeave: available < float64(totalDays) && !leaveType.Unlimited(),
			Reason:       req.Reason,
			AppliedBy:    actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave application: %w", err)
		}

		_, err = s.ledger.Reserve(ctx, balance, float64(totalDays))
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	if created.IsExtraLeave {
		slog.Warn("Extra leave requested", "employee_id", created.EmployeeID, "leave_id", created.ID,
			"leave_type", created.LeaveType, "total_days", totalDays, "available", available)
	}

	resp := leave.ToResponse(created)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionApplyLeave,
		EntityType: audit.EntityLeave,
		EntityID:   created.ID,
		Created:    resp,
	})
	return resp, nil
}

// GetLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}

	requested := ""
	if filter.EmployeeID != nil {
		requested = *filter.EmployeeID
	}
	subject, err := user.ResolveSubject(actor, requested)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	filter.EmployeeID = &subject

	applications, total, err := s.ApplicationRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	responses := make([]leave.LeaveResponse, 0, len(applications))
	for _, a := range applications {
		responses = append(responses, leave.ToResponse(a))
	}

	totalPages, showing := paging.Summary(total, filter.Page, filter.Limit)
	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Leaves:     responses,
	}, nil
}

// GetLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string) (leave.LeaveResponse, error) {
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	application, err := s.ApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !actor.CanView(application.EmployeeID) {
		return leave.LeaveResponse{}, user.ErrForbidden
	}
	return leave.ToResponse(application), nil
}

// ApproveLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveLeave(ctx context.Context, req leave.ApproveLeaveRequest) (leave.LeaveResponse, error) {
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !actor.IsPrivileged() {
		return leave.LeaveResponse{}, user.ErrPrivilegedRoleRequired
	}

	var before, saved leave.Application
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := s.ApplicationRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if application.Status != leave.StatusPending {
			return notPending(application.Status)
		}
		if application.IsExtraLeave && s.cfg.OverdrawRequiresFlag && !req.AllowOverdraw {
			return leave.ErrOverdrawNotAcknowledged
		}

		before = application
		saved = s.decide(application, actor, leave.StatusApproved)
		if err := s.ApplicationRepository.Update(ctx, saved); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}

		days := float64(saved.TotalDays)
		balance, err := s.ledger.Find(ctx, saved.EmployeeID, saved.Year(), saved.LeaveType)
		if err != nil {
			return err
		}
		if balance == nil {
			_, err = s.ledger.ChargeUnreserved(ctx, saved.EmployeeID, saved.Year(), saved.LeaveType, days)
			return err
		}
		_, err = s.ledger.Commit(ctx, *balance, days)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	resp := leave.ToResponse(saved)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionApproveLeave,
		EntityType: audit.EntityLeave,
		EntityID:   saved.ID,
		Before:     leave.ToResponse(before),
		After:      resp,
		Metadata:   map[string]any{"is_extra_leave": saved.IsExtraLeave, "allow_overdraw": req.AllowOverdraw},
	})
	s.notify(saved.EmployeeID, sse.EventLeaveApproved, resp)
	return resp, nil
}

// RejectLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeave(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !actor.IsPrivileged() {
		return leave.LeaveResponse{}, user.ErrPrivilegedRoleRequired
	}

	var before, saved leave.Application
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := s.ApplicationRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if application.Status != leave.StatusPending {
			return notPending(application.Status)
		}

		before = application
		saved = s.decide(application, actor, leave.StatusRejected)
		reason := strings.TrimSpace(req.RejectionReason)
		saved.RejectionReason = &reason
		if err := s.ApplicationRepository.Update(ctx, saved); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}

		return s.release(ctx, saved)
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	resp := leave.ToResponse(saved)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionRejectLeave,
		EntityType: audit.EntityLeave,
		EntityID:   saved.ID,
		Before:     leave.ToResponse(before),
		After:      resp,
	})
	s.notify(saved.EmployeeID, sse.EventLeaveRejected, resp)
	return resp, nil
}

// CancelLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) CancelLeave(ctx context.Context, id string) (leave.LeaveResponse, error) {
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	var before, saved leave.Application
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		application, err := s.ApplicationRepository.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if application.EmployeeID != actor.EmployeeID {
			return leave.ErrNotOwner
		}
		if application.Status != leave.StatusPending {
			return notPending(application.Status)
		}

		before = application
		saved = application
		saved.Status = leave.StatusCancelled
		saved.UpdatedAt = s.now().UTC()
		if err := s.ApplicationRepository.Update(ctx, saved); err != nil {
			return fmt.Errorf("failed to update leave application: %w", err)
		}

		return s.release(ctx, saved)
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	resp := leave.ToResponse(saved)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCancelLeave,
		EntityType: audit.EntityLeave,
		EntityID:   saved.ID,
		Before:     leave.ToResponse(before),
		After:      resp,
	})
	return resp, nil
}

// UpdateLeaveAllocation implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateLeaveAllocation(ctx context.Context, req leave.UpdateAllocationRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	if !actor.IsPrivileged() {
		return leave.BalanceResponse{}, user.ErrPrivilegedRoleRequired
	}

	var before *leave.Balance
	var after leave.Balance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		before, after, err = s.ledger.SetAllocation(ctx, req.EmployeeID, req.Year, leave.Type(req.LeaveType), *req.TotalAllocated)
		return err
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	resp := leave.ToBalanceResponse(after)
	event := audit.Event{
		Action:     audit.ActionUpdateLeaveAllocation,
		EntityType: audit.EntityLeaveBalance,
		EntityID:   after.ID,
	}
	if before != nil {
		event.Before, event.After = leave.ToBalanceResponse(*before), resp
	} else {
		event.Created = resp
	}
	s.audit.Record(ctx, event)
	return resp, nil
}

// GetLeaveBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveBalance(ctx context.Context, req leave.BalanceRequest) (leave.LeaveBalanceResponse, error) {
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	requested := ""
	if req.EmployeeID != nil {
		requested = *req.EmployeeID
	}
	subject, err := user.ResolveSubject(actor, requested)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	year := s.now().Year()
	if req.Year != nil {
		year = *req.Year
	}

	balances, err := s.ledger.List(ctx, subject, year)
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.ToBalanceResponse(b))
	}
	return leave.LeaveBalanceResponse{
		EmployeeID:    subject,
		Year:          year,
		LeaveBalances: responses,
		Totals:        leave.SumBalances(balances),
	}, nil
}

// decide stamps the approver fields shared by approve and reject.
func (s *LeaveServiceImpl) decide(a leave.Application, actor user.Actor, status leave.Status) leave.Application {
	now := s.now().UTC()
	role := string(actor.Role)
	approver := actor.UserID
	a.Status = status
	a.ApprovedBy = &approver
	a.ApprovedByRole = &role
	a.ApprovedAt = &now
	a.UpdatedAt = now
	return a
}

// release returns the application's pending days when its balance row exists.
func (s *LeaveServiceImpl) release(ctx context.Context, a leave.Application) error {
	balance, err := s.ledger.Find(ctx, a.EmployeeID, a.Year(), a.LeaveType)
	if err != nil {
		return err
	}
	if balance == nil {
		slog.Warn("Leave balance missing on release", "employee_id", a.EmployeeID, "leave_id", a.ID, "leave_type", a.LeaveType)
		return nil
	}
	_, err = s.ledger.Release(ctx, *balance, float64(a.TotalDays))
	return err
}

func (s *LeaveServiceImpl) notify(employeeID, name string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(employeeID, sse.Event{Name: name, Data: data})
}
