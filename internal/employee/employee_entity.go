package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Matricule    string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_employees_matricule"`
	FullName     string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_employees_email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null;index"`
	ManagerID    *uuid.UUID `gorm:"type:uuid;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	Phone        string     `gorm:"type:varchar(30)"`
	HireDate     time.Time  `gorm:"type:date"`

	Manager *Employee `gorm:"foreignKey:ManagerID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
