package request

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveRequest is the aggregate root of the approval pipeline. The four
// stage records live as flat columns so queue filters stay plain SQL; the
// StageRecord accessor gives the rest of the package a uniform view.
// Version backs the optimistic-concurrency save: every decision and edit
// goes through a compare-and-swap on it.
type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_employee_dates"`
	ManagerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate   time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates"`
	EndDate     time.Time `gorm:"type:date;not null;index:idx_requests_employee_dates"`
	TotalDays   int       `gorm:"type:int;not null;default:1"`
	Reason      string    `gorm:"type:text"`
	DocumentRef string    `gorm:"type:varchar(255)"`

	ManagerStatus    StageStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ManagerComment   *string     `gorm:"type:text"`
	ManagerDecidedAt *time.Time

	RhStatus    StageStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	RhComment   *string     `gorm:"type:text"`
	RhDecidedAt *time.Time

	ChefServiceStatus    StageStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ChefServiceComment   *string     `gorm:"type:text"`
	ChefServiceDecidedAt *time.Time

	DgStatus    StageStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DgComment   *string     `gorm:"type:text"`
	DgDecidedAt *time.Time

	// OverlapFlag is advisory: set at submission and refreshed at manager
	// approval, it never blocks the pipeline on its own.
	OverlapFlag bool `gorm:"not null;default:false"`

	// BalanceDebited guards the credit-back on rejection so the ledger
	// moves exactly once in each direction.
	BalanceDebited bool `gorm:"not null;default:false"`

	Version int `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// StageRecord is one stage's slice of the aggregate.
type StageRecord struct {
	Status    StageStatus
	Comment   *string
	DecidedAt *time.Time
}

func (r *LeaveRequest) StageRecord(s Stage) StageRecord {
	switch s {
	case StageManager:
		return StageRecord{r.ManagerStatus, r.ManagerComment, r.ManagerDecidedAt}
	case StageRH:
		return StageRecord{r.RhStatus, r.RhComment, r.RhDecidedAt}
	case StageChefService:
		return StageRecord{r.ChefServiceStatus, r.ChefServiceComment, r.ChefServiceDecidedAt}
	case StageDG:
		return StageRecord{r.DgStatus, r.DgComment, r.DgDecidedAt}
	}
	return StageRecord{}
}

func (r *LeaveRequest) SetStageRecord(s Stage, rec StageRecord) {
	switch s {
	case StageManager:
		r.ManagerStatus, r.ManagerComment, r.ManagerDecidedAt = rec.Status, rec.Comment, rec.DecidedAt
	case StageRH:
		r.RhStatus, r.RhComment, r.RhDecidedAt = rec.Status, rec.Comment, rec.DecidedAt
	case StageChefService:
		r.ChefServiceStatus, r.ChefServiceComment, r.ChefServiceDecidedAt = rec.Status, rec.Comment, rec.DecidedAt
	case StageDG:
		r.DgStatus, r.DgComment, r.DgDecidedAt = rec.Status, rec.Comment, rec.DecidedAt
	}
}
