package leave

type CreateLeaveRequest struct {
	Type       string  `json:"type" binding:"required"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Reason     *string `json:"reason" binding:"omitempty,max=2000"`
	Attachment *string `json:"attachment"`
}

type DecideLeaveRequest struct {
	LeaveID         string `json:"leave_id" binding:"required"`
	Action          string `json:"action" binding:"required"`
	RejectionReason string `json:"rejection_reason" binding:"omitempty,max=2000"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name"`
	EmployeeEmail   string  `json:"employee_email"`
	Type            string  `json:"type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          *string `json:"reason,omitempty"`
	Attachment      *string `json:"attachment,omitempty"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
