package user

type RegisterRequest struct {
	IDToken     string `json:"id_token" binding:"required"`
	DisplayName string `json:"display_name" binding:"omitempty,max=255"`
	Department  string `json:"department" binding:"omitempty,max=255"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=50"`
}

type LoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=255"`
	Department  *string `json:"department" binding:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=50"`
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type LeaveBalanceResponse struct {
	Annual   int `json:"annual"`
	Sick     int `json:"sick"`
	Personal int `json:"personal"`
}

type UserResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	DisplayName  string               `json:"display_name"`
	Role         string               `json:"role"`
	Department   *string              `json:"department,omitempty"`
	PhoneNumber  *string              `json:"phone_number,omitempty"`
	LeaveBalance LeaveBalanceResponse `json:"leave_balance"`
	LastLogin    *string              `json:"last_login,omitempty"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
}
