package dto

// UserDTO represents a user (admin or agent) in API responses
type UserDTO struct {
	ID          uint   `json:"id" example:"12"`
	UUID        string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username    string `json:"username" example:"agent.sara"`
	Role        string `json:"role" example:"agent"`
	IsActive    *bool  `json:"is_active" example:"true"`
	CreatedAt   string `json:"created_at" example:"2026-01-15T10:30:00Z"`
	LastLoginAt string `json:"last_login_at,omitempty" example:"2026-02-03T08:12:00Z"`
}

// CreateUserRequest represents the admin request to create an agent or admin account
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64" example:"agent.sara"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	Role     string `json:"role" validate:"required,oneof=admin agent" example:"agent"`
}

// UpdateUserRequest represents the admin request to update an account
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=100" example:"NewPass123!"`
	IsActive *bool   `json:"is_active,omitempty" example:"false"`
}

// ListUsersRequest represents query parameters when listing users
type ListUsersRequest struct {
	Role     *string `query:"role" validate:"omitempty,oneof=admin agent" example:"agent"`
	IsActive *bool   `query:"is_active" example:"true"`
	Page     int     `query:"page" validate:"omitempty,min=1" example:"1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100" example:"20"`
}

// ListUsersResponse represents the data section of a user list response
type ListUsersResponse struct {
	Users      []UserDTO     `json:"users"`
	Pagination PaginationDTO `json:"pagination"`
}
