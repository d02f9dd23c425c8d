// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64" example:"agent.sara"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AdminLoginRequest represents the captcha-gated admin login payload
type AdminLoginRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64" example:"admin"`
	Password     string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	CaptchaID    string `json:"captcha_id" validate:"required" example:"8f9a2c1e"`
	CaptchaAngle int    `json:"captcha_angle" validate:"required" example:"152"`
}

// SessionDTO represents the issued token pair
type SessionDTO struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"3600"`
}

// LoginResultDTO represents the data section of a successful login response
type LoginResultDTO struct {
	Session SessionDTO `json:"session"`
	User    UserDTO    `json:"user"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ChangePasswordRequest represents the request to change the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=100" example:"OldPass123!"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100" example:"NewSecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword" example:"NewSecurePass123!"`
}

// ChangePasswordResponse represents the response after a successful password change
type ChangePasswordResponse struct {
	PasswordChangedAt time.Time `json:"password_changed_at" example:"2026-01-15T16:30:00Z"`
}

// Common error codes for login operations
const (
	ErrorUserNotFound      = "USER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorInvalidCaptcha    = "INVALID_CAPTCHA"
)
