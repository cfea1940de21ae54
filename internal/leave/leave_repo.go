package leave

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	// List methods return newest first; limit <= 0 means no limit.
	FindByEmployee(ctx context.Context, employeeID string, limit int) ([]Leave, error)
	FindByStatus(ctx context.Context, status Status, limit int) ([]Leave, error)
	CountByEmployeeAndStatus(ctx context.Context, employeeID string, status Status) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// CompareAndSetStatus applies d only while the row is still in status
	// from, and reports whether it did.
	CompareAndSetStatus(ctx context.Context, id string, from Status, d Decision) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.conn(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, limit int) ([]Leave, error) {
	return list(r.conn(ctx).Where("employee_id = ?", employeeID), limit)
}

func (r *repository) FindByStatus(ctx context.Context, status Status, limit int) ([]Leave, error) {
	return list(r.conn(ctx).Where("status = ?", status), limit)
}

func list(q *gorm.DB, limit int) ([]Leave, error) {
	q = q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	leaves := []Leave{}
	if err := q.Find(&leaves).Error; err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *repository) CountByEmployeeAndStatus(ctx context.Context, employeeID string, status Status) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ? AND status = ?", employeeID, status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&Leave{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *repository) CompareAndSetStatus(ctx context.Context, id string, from Status, d Decision) (bool, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":           d.Status,
			"approved_by":      d.ApprovedBy,
			"approved_at":      d.ApprovedAt,
			"rejection_reason": d.RejectionReason,
			"updated_at":       d.ApprovedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
