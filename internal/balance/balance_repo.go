package balance

import (
	"context"
	"database/sql"

	balanceerrors "github.com/LamineOzilJr/memoire-master2/internal/balance/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	FindOne(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
	Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	sqlDB, _ := db.DB()
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC, leave_type_id ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) FindOne(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, leaveTypeID, year).
		First(&b).Error
	return &b, err
}

// Debit consumes days atomically: the guard on days_remaining makes the
// row update itself the overdraw check, so two concurrent debits cannot
// both pass. Runs through the surrounding transaction when one is set.
func (r *repository) Debit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if days.LessThanOrEqual(decimal.Zero) {
		return balanceerrors.ErrInvalidDays
	}

	const query = `
UPDATE leave_balances
SET
	days_taken = days_taken + $4,
	days_remaining = days_remaining - $4,
	updated_at = NOW()
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	AND days_remaining >= $4
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return balanceerrors.ErrInsufficientBalance
	}
	return nil
}

// Credit restores previously debited days, used when a request is rejected
// after the balance-consuming stage already ran.
func (r *repository) Credit(ctx context.Context, employeeID, leaveTypeID string, year int, days decimal.Decimal) error {
	if days.LessThanOrEqual(decimal.Zero) {
		return balanceerrors.ErrInvalidDays
	}

	const query = `
UPDATE leave_balances
SET
	days_taken = days_taken - $4,
	days_remaining = days_remaining + $4,
	updated_at = NOW()
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return balanceerrors.ErrBalanceNotFound
	}
	return nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
