package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []Notification) error
	FindByEmployee(ctx context.Context, employeeID string) ([]Notification, error)
	CountUnread(ctx context.Context, employeeID string) (int64, error)
	MarkRead(ctx context.Context, employeeID, id string) (int64, error)
	MarkAllRead(ctx context.Context, employeeID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) CreateBatch(ctx context.Context, ns []Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Notification, error) {
	var ns []Notification
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Limit(200).
		Find(&ns).Error
	return ns, err
}

func (r *repository) CountUnread(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("employee_id = ? AND read = ?", employeeID, false).
		Count(&count).Error
	return count, err
}

// MarkRead is scoped to the owner so one employee cannot touch another's
// inbox; the row count distinguishes not-found from done.
func (r *repository) MarkRead(ctx context.Context, employeeID, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND employee_id = ?", id, employeeID).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *repository) MarkAllRead(ctx context.Context, employeeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("employee_id = ? AND read = ?", employeeID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
