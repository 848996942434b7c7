package request

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindManagerQueue(ctx context.Context, managerID string) ([]LeaveRequest, error)
	FindStageQueue(ctx context.Context, stage Stage) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindApprovedBetween(ctx context.Context, from, to time.Time) ([]LeaveRequest, error)
	UpdateVersioned(ctx context.Context, r *LeaveRequest, expectedVersion int) (int64, error)
	Delete(ctx context.Context, id string) error
	HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// FindManagerQueue returns the manager's visible set: requests of their
// direct reports still sitting at the manager gate, plus those the manager
// rejected (history).
func (r *repository) FindManagerQueue(ctx context.Context, managerID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Where("manager_status IN ?", []StageStatus{StatusPending, StatusInfoRequested, StatusRejected}).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// FindStageQueue returns the visible set for a downstream stage: every
// request whose immediately preceding stage is approved. The actionable
// subset is derived in the service via ActiveStage.
func (r *repository) FindStageQueue(ctx context.Context, stage Stage) ([]LeaveRequest, error) {
	var column string
	switch stage {
	case StageRH:
		column = "manager_status"
	case StageChefService:
		column = "rh_status"
	case StageDG:
		column = "chef_service_status"
	default:
		return nil, gorm.ErrInvalidField
	}

	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where(column+" = ?", StatusApproved).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindApprovedBetween(ctx context.Context, from, to time.Time) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("manager_status = ? AND rh_status = ? AND chef_service_status = ? AND dg_status = ?",
			StatusApproved, StatusApproved, StatusApproved, StatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", from, to).
		Order("start_date ASC").
		Find(&reqs).Error
	return reqs, err
}

// UpdateVersioned writes every mutable column gated by the version token.
// Raw SQL through the surrounding transaction so the stage write, the
// ledger movement and the outbox row commit or roll back together. The
// returned row count is zero on a version mismatch.
func (r *repository) UpdateVersioned(ctx context.Context, req *LeaveRequest, expectedVersion int) (int64, error) {
	const query = `
UPDATE leave_requests SET
	leave_type_id = $2,
	start_date = $3,
	end_date = $4,
	total_days = $5,
	reason = $6,
	document_ref = $7,
	manager_status = $8,
	manager_comment = $9,
	manager_decided_at = $10,
	rh_status = $11,
	rh_comment = $12,
	rh_decided_at = $13,
	chef_service_status = $14,
	chef_service_comment = $15,
	chef_service_decided_at = $16,
	dg_status = $17,
	dg_comment = $18,
	dg_decided_at = $19,
	overlap_flag = $20,
	balance_debited = $21,
	version = version + 1,
	updated_at = now()
WHERE id = $1 AND version = $22 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query,
		req.ID, req.LeaveTypeID,
		req.StartDate, req.EndDate, req.TotalDays, req.Reason, req.DocumentRef,
		req.ManagerStatus, req.ManagerComment, req.ManagerDecidedAt,
		req.RhStatus, req.RhComment, req.RhDecidedAt,
		req.ChefServiceStatus, req.ChefServiceComment, req.ChefServiceDecidedAt,
		req.DgStatus, req.DgComment, req.DgDecidedAt,
		req.OverlapFlag, req.BalanceDebited,
		expectedVersion,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveRequest{}, "id = ?", id).Error
}

// HasOverlappingPeriod looks for any other non-rejected request of the
// employee sharing at least one day with [start,end]. Inclusive on both
// boundaries, mirroring PeriodsOverlap.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("manager_status <> ?", StatusRejected).
		Where("rh_status <> ?", StatusRejected).
		Where("chef_service_status <> ?", StatusRejected).
		Where("dg_status <> ?", StatusRejected).
		Where("NOT (end_date < ? OR start_date > ?)", start, end)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
