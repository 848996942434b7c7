package leavetype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveType is a catalog entry (annual, sick, unpaid, ...). MaxDays seeds
// the yearly balance; nil means the type is not balance-limited.
type LeaveType struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description      string    `gorm:"type:text"`
	MaxDays          *int      `gorm:"type:int"`
	RequiresDocument bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
