package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

const balanceColumns = `
	id, employee_id, year, leave_type, total_allocated, used, pending, balance,
	created_at, updated_at`

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

func scanBalance(row pgx.Row) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Year, &b.LeaveType, &b.TotalAllocated, &b.Used, &b.Pending, &b.Balance,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *leaveBalanceRepository) Lock(ctx context.Context, employeeID string, year int, leaveType leave.Type) (*leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + balanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND year = $2 AND leave_type = $3
		FOR UPDATE`

	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, year, leaveType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return &b, nil
}

func (r *leaveBalanceRepository) CreateIfAbsent(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO leave_balances (
			employee_id, year, leave_type, total_allocated, used, pending, balance
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (employee_id, year, leave_type) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert,
		b.EmployeeID, b.Year, b.LeaveType, b.TotalAllocated, b.Used, b.Pending, b.Balance,
	); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}

	stored, err := r.Lock(ctx, b.EmployeeID, b.Year, b.LeaveType)
	if err != nil {
		return leave.Balance{}, err
	}
	if stored == nil {
		return leave.Balance{}, fmt.Errorf("leave balance for %s/%d/%s vanished after insert", b.EmployeeID, b.Year, b.LeaveType)
	}
	return *stored, nil
}

func (r *leaveBalanceRepository) Save(ctx context.Context, b leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			total_allocated = $2,
			used = $3,
			pending = $4,
			balance = $5,
			updated_at = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, b.ID, b.TotalAllocated, b.Used, b.Pending, b.Balance, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leave balance %s not found", b.ID)
	}
	return nil
}

func (r *leaveBalanceRepository) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + balanceColumns + `
		FROM leave_balances
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_type ASC`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balances: %w", err)
	}
	defer rows.Close()

	balances := []leave.Balance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
