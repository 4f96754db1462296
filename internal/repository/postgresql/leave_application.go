package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

const leaveColumns = `
	id, employee_id, leave_type, start_date, end_date, total_days, status,
	is_extra_leave, reason, applied_by, approved_by, approved_by_role, approved_at,
	rejection_reason, created_at, updated_at`

// employeeLockSpace namespaces the advisory locks taken by LockEmployee.
const employeeLockSpace = "leaves.employee"

type leaveApplicationRepository struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.ApplicationRepository {
	return &leaveApplicationRepository{db: db}
}

func scanLeave(row pgx.Row) (leave.Application, error) {
	var l leave.Application
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.TotalDays, &l.Status,
		&l.IsExtraLeave, &l.Reason, &l.AppliedBy, &l.ApprovedBy, &l.ApprovedByRole, &l.ApprovedAt,
		&l.RejectionReason, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *leaveApplicationRepository) Create(ctx context.Context, application leave.Application) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leaves (
			employee_id, leave_type, start_date, end_date, total_days, status,
			is_extra_leave, reason, applied_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		application.EmployeeID,
		application.LeaveType,
		application.StartDate,
		application.EndDate,
		application.TotalDays,
		application.Status,
		application.IsExtraLeave,
		application.Reason,
		application.AppliedBy,
	).Scan(&application.ID, &application.CreatedAt, &application.UpdatedAt)
	if err != nil {
		return leave.Application{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	return application, nil
}

func (r *leaveApplicationRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	return r.getByID(ctx, id, "")
}

func (r *leaveApplicationRepository) LockByID(ctx context.Context, id string) (leave.Application, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *leaveApplicationRepository) getByID(ctx context.Context, id, lock string) (leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLeave(q.QueryRow(ctx, "SELECT "+leaveColumns+" FROM leaves WHERE id = $1 "+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Application{}, leave.ErrLeaveNotFound
		}
		return leave.Application{}, fmt.Errorf("failed to get leave application: %w", err)
	}
	return l, nil
}

func (r *leaveApplicationRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))", employeeLockSpace, employeeID); err != nil {
		return fmt.Errorf("failed to lock employee leaves: %w", err)
	}
	return nil
}

func (r *leaveApplicationRepository) Update(ctx context.Context, application leave.Application) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leaves SET
			status = $2,
			is_extra_leave = $3,
			approved_by = $4,
			approved_by_role = $5,
			approved_at = $6,
			rejection_reason = $7,
			updated_at = $8
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		application.ID,
		application.Status,
		application.IsExtraLeave,
		application.ApprovedBy,
		application.ApprovedByRole,
		application.ApprovedAt,
		application.RejectionReason,
		application.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveApplicationRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Application, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		baseWhere += fmt.Sprintf(" AND leave_type = $%d", argIdx)
		args = append(args, *filter.LeaveType)
		argIdx++
	}
	// Applications overlapping the requested window.
	if filter.From != nil && filter.To != nil {
		baseWhere += fmt.Sprintf(" AND start_date <= $%d AND end_date >= $%d", argIdx+1, argIdx)
		args = append(args, *filter.From, *filter.To)
		argIdx += 2
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM leaves WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leaves
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave applications: %w", err)
	}
	defer rows.Close()

	leaves, err := collectLeaves(rows)
	if err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (r *leaveApplicationRepository) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leaves
			WHERE employee_id = $1
			  AND status IN ('Pending', 'Approved')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return exists, nil
}

func (r *leaveApplicationRepository) ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveColumns + `
		FROM leaves
		WHERE employee_id = $1
		  AND status IN ('Pending', 'Approved')
		  AND start_date <= $3
		  AND end_date >= $2
		ORDER BY start_date ASC`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave applications: %w", err)
	}
	defer rows.Close()

	return collectLeaves(rows)
}

func collectLeaves(rows pgx.Rows) ([]leave.Application, error) {
	leaves := []leave.Application{}
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave application: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}
