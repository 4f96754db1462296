package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

const attendanceColumns = `
	id, employee_id, date, check_in_time, check_out_time,
	check_in_location, check_out_location, expected_check_in, expected_check_out,
	is_late, late_minutes, is_early_exit, early_exit_minutes, work_hours,
	status, remarks, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att                     attendance.Attendance
		checkIn, checkOut       pgtype.Time
		expectedIn, expectedOut pgtype.Time
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &checkIn, &checkOut,
		&att.CheckInLocation, &att.CheckOutLocation, &expectedIn, &expectedOut,
		&att.IsLate, &att.LateMinutes, &att.IsEarlyExit, &att.EarlyExitMinutes, &att.WorkHours,
		&att.Status, &att.Remarks, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.CheckInTime = clockPtr(checkIn)
	att.CheckOutTime = clockPtr(checkOut)
	att.ExpectedCheckIn = workday.ClockFromMicroseconds(expectedIn.Microseconds)
	att.ExpectedCheckOut = workday.ClockFromMicroseconds(expectedOut.Microseconds)
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, date, check_in_time, check_out_time,
			check_in_location, check_out_location, expected_check_in, expected_check_out,
			is_late, late_minutes, is_early_exit, early_exit_minutes, work_hours,
			status, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.Date,
		timeParam(newAttendance.CheckInTime),
		timeParam(newAttendance.CheckOutTime),
		newAttendance.CheckInLocation,
		newAttendance.CheckOutLocation,
		clockParam(newAttendance.ExpectedCheckIn),
		clockParam(newAttendance.ExpectedCheckOut),
		newAttendance.IsLate,
		newAttendance.LateMinutes,
		newAttendance.IsEarlyExit,
		newAttendance.EarlyExitMinutes,
		newAttendance.WorkHours,
		newAttendance.Status,
		newAttendance.Remarks,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return a.getByID(ctx, id, "")
}

// LockByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return a.getByID(ctx, id, "FOR UPDATE")
}

func (a *attendanceRepository) getByID(ctx context.Context, id, lock string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + " FROM attendances WHERE id = $1 " + lock

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return att, nil
}

// LockByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2
		FOR UPDATE`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_in_time = $2,
			check_out_time = $3,
			check_in_location = $4,
			check_out_location = $5,
			expected_check_in = $6,
			expected_check_out = $7,
			is_late = $8,
			late_minutes = $9,
			is_early_exit = $10,
			early_exit_minutes = $11,
			work_hours = $12,
			status = $13,
			remarks = $14,
			updated_at = $15
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		timeParam(att.CheckInTime),
		timeParam(att.CheckOutTime),
		att.CheckInLocation,
		att.CheckOutLocation,
		clockParam(att.ExpectedCheckIn),
		clockParam(att.ExpectedCheckOut),
		att.IsLate,
		att.LateMinutes,
		att.IsEarlyExit,
		att.EarlyExitMinutes,
		att.WorkHours,
		att.Status,
		att.Remarks,
		att.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count total
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendances WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// ListBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows)
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	attendances := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	return attendances, rows.Err()
}
