package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is one inbox entry for one employee. Role-addressed events
// fan out to one row per role member at consumption time.
type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_employee_read"`
	RequestID  *uuid.UUID `gorm:"type:uuid"`

	Title   string `gorm:"type:varchar(255);not null"`
	Message string `gorm:"type:text;not null"`
	Read    bool   `gorm:"not null;default:false;index:idx_notifications_employee_read"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
