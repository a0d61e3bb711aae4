package models

type CreateUserRequest struct {
	Phone        string  `json:"phone" validate:"required,numeric,min=9,max=15"`
	Password     string  `json:"password" validate:"required,min=8"`
	FirstName    string  `json:"firstname" validate:"required,max=100"`
	LastName     string  `json:"lastname" validate:"required,max=100"`
	RoleID       *string `json:"roleId"`
	DepartmentID *string `json:"departmentId"`
	PositionID   *string `json:"positionId"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ListUsersRequest represents the query parameters for listing users
type ListUsersRequest struct {
	Page     int    `query:"page" validate:"min=1"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
	Search   string `query:"search"`
	RoleID   string `query:"role_id"`
	SortBy   string `query:"sort_by" validate:"oneof=phone firstname lastname created_at last_login"`
	SortDir  string `query:"sort_dir" validate:"oneof=asc desc"`
}

// ListUsersResponse represents the response for listing users
type ListUsersResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
