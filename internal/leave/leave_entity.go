package leave

import (
	"strings"
	"time"

	"breakly/internal/user"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypePersonal  Type = "personal"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
)

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity:
		return t, true
	}
	return "", false
}

// Bucket is the balance counter an approval of this type is charged to.
func (t Type) Bucket() user.Bucket {
	switch t {
	case TypeAnnual:
		return user.BucketAnnual
	case TypeSick:
		return user.BucketSick
	default:
		return user.BucketPersonal
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionApprove, ActionReject:
		return a, true
	}
	return "", false
}

// Status returns the terminal status the action moves a pending leave to.
func (a Action) Status() Status {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

const DateLayout = "2006-01-02"

// MaxAttachmentLen bounds the attachment reference, which clients send as a
// base64 data URL of at most 5MB of file content.
const MaxAttachmentLen = 7 * 1024 * 1024

type Leave struct {
	ID              string     `gorm:"column:id;type:varchar(36);primaryKey"`
	EmployeeID      string     `gorm:"column:employee_id;type:varchar(128);not null;index"`
	EmployeeName    string     `gorm:"column:employee_name;type:varchar(255);not null"`
	EmployeeEmail   string     `gorm:"column:employee_email;type:varchar(255);not null"`
	Type            Type       `gorm:"column:type;type:varchar(20);not null"`
	StartDate       time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time  `gorm:"column:end_date;type:date;not null"`
	Days            int        `gorm:"column:days;not null"`
	Reason          *string    `gorm:"column:reason;type:text"`
	Attachment      *string    `gorm:"column:attachment;type:text"`
	Status          Status     `gorm:"column:status;type:varchar(20);not null;index"`
	ApprovedBy      *string    `gorm:"column:approved_by;type:varchar(128)"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;index"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null"`
}

func (Leave) TableName() string {
	return "leaves"
}

// Decision is the set of fields written when a leave leaves pending.
type Decision struct {
	Status          Status
	ApprovedBy      string
	ApprovedAt      time.Time
	RejectionReason *string
}

// InclusiveDays counts both the start and the end date.
func InclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
