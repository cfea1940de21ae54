package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"breakly/internal/rbac"
	usererrors "breakly/internal/user/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ProfileUpdate carries the editable profile fields; nil means unchanged.
// An empty Department or PhoneNumber clears the column to NULL.
type ProfileUpdate struct {
	DisplayName *string
	Department  *string
	PhoneNumber *string
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	// The bool results below report whether a row matched id.
	TouchLastLogin(ctx context.Context, id string, at time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (bool, error)
	UpdateRole(ctx context.Context, id string, role rbac.Role) (bool, error)
	AdjustBalance(ctx context.Context, id string, bucket Bucket, delta int) (bool, error)
}

var balanceColumns = map[Bucket]string{
	BucketAnnual:   "balance_annual",
	BucketSick:     "balance_sick",
	BucketPersonal: "balance_personal",
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

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).Create(u).Error
	if isDuplicateKey(err) {
		return usererrors.ErrUserAlreadyExists
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) TouchLastLogin(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_login": at})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (bool, error) {
	values := map[string]any{}
	if p.DisplayName != nil {
		values["display_name"] = *p.DisplayName
	}
	if p.Department != nil {
		values["department"] = nullable(*p.Department)
	}
	if p.PhoneNumber != nil {
		values["phone_number"] = nullable(*p.PhoneNumber)
	}
	if len(values) == 0 {
		var count int64
		err := r.conn(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error
		return count > 0, err
	}

	res := r.conn(ctx).Model(&User{}).Where("id = ?", id).Updates(values)
	return res.RowsAffected > 0, res.Error
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (r *repository) UpdateRole(ctx context.Context, id string, role rbac.Role) (bool, error) {
	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": string(role)})
	return res.RowsAffected > 0, res.Error
}

// AdjustBalance adds delta to one bucket in a single UPDATE, so concurrent
// adjustments never lose each other.
func (r *repository) AdjustBalance(ctx context.Context, id string, bucket Bucket, delta int) (bool, error) {
	col, ok := balanceColumns[bucket]
	if !ok {
		return false, fmt.Errorf("unknown balance bucket %q", bucket)
	}

	res := r.conn(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{col: gorm.Expr(col+" + ?", delta)})
	return res.RowsAffected > 0, res.Error
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return false
}
