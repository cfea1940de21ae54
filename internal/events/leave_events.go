package events

import "time"

const LeaveLifecycleTopic = "breakly.leave.lifecycle.v1"

const (
	AggregateLeave = "leave"

	EventLeaveSubmitted = "leave_submitted"
	EventLeaveDecided   = "leave_decided"
)

// Envelope is decoded first to route a message by event type.
type Envelope struct {
	EventType string `json:"event_type"`
}

type LeaveSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       int       `json:"days"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LeaveDecidedEvent struct {
	EventType  string `json:"event_type"`
	RequestID  string `json:"request_id,omitempty"`
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	DecidedBy  string `json:"decided_by"`
	Status     string `json:"status"`
	Days       int    `json:"days"`
	// BalanceBucket is set only when an approval charged the employee.
	BalanceBucket string    `json:"balance_bucket,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
