package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance tracks one employee's entitlement for one leave type and
// year. Amounts are decimals because accrual policies can grant half days.
// Invariant: DaysRemaining = DaysAccrued - DaysTaken, maintained by the
// repository's atomic debit/credit statements.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balances_employee_type_year"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balances_employee_type_year"`
	Year        int       `gorm:"not null;uniqueIndex:uq_balances_employee_type_year"`

	DaysAccrued   decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	DaysTaken     decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	DaysRemaining decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
