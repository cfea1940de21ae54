package user

import (
	"time"

	"breakly/internal/rbac"
)

// Bucket names one of the three leave balance counters.
type Bucket string

const (
	BucketAnnual   Bucket = "annual"
	BucketSick     Bucket = "sick"
	BucketPersonal Bucket = "personal"
)

const (
	DefaultAnnualDays   = 25
	DefaultSickDays     = 5
	DefaultPersonalDays = 3
)

// LeaveBalance values may go negative; approvals are not capped.
type LeaveBalance struct {
	Annual   int `gorm:"column:annual;not null"`
	Sick     int `gorm:"column:sick;not null"`
	Personal int `gorm:"column:personal;not null"`
}

func DefaultLeaveBalance() LeaveBalance {
	return LeaveBalance{
		Annual:   DefaultAnnualDays,
		Sick:     DefaultSickDays,
		Personal: DefaultPersonalDays,
	}
}

func (b LeaveBalance) Get(bucket Bucket) int {
	switch bucket {
	case BucketAnnual:
		return b.Annual
	case BucketSick:
		return b.Sick
	default:
		return b.Personal
	}
}

type User struct {
	ID           string       `gorm:"column:id;type:varchar(128);primaryKey"`
	Email        string       `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	DisplayName  string       `gorm:"column:display_name;type:varchar(255);not null"`
	Role         rbac.Role    `gorm:"column:role;type:varchar(20);not null"`
	Department   *string      `gorm:"column:department;type:varchar(255)"`
	PhoneNumber  *string      `gorm:"column:phone_number;type:varchar(50)"`
	LeaveBalance LeaveBalance `gorm:"embedded;embeddedPrefix:balance_"`
	LastLogin    *time.Time   `gorm:"column:last_login"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// NewUser returns an Employee with the default balance.
func NewUser(id, email, displayName string) *User {
	return &User{
		ID:           id,
		Email:        email,
		DisplayName:  displayName,
		Role:         rbac.RoleEmployee,
		LeaveBalance: DefaultLeaveBalance(),
	}
}
