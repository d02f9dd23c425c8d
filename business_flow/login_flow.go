// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/app/services"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication and password maintenance operations
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResultDTO, error)
	AdminLogin(ctx context.Context, request *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.LoginResultDTO, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.SessionDTO, error)
	ChangePassword(ctx context.Context, userID uint, request *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo       repository.UserRepository
	tokenService   services.TokenService
	captchaService services.CaptchaService
	db             *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	captchaService services.CaptchaService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:       userRepo,
		tokenService:   tokenService,
		captchaService: captchaService,
		db:             db,
	}
}

// Login authenticates a user with username and password
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResultDTO, error) {
	resp, err := lf.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResultDTO, error) {
		user, err := lf.authenticate(ctx, request.Username, request.Password)
		if err != nil {
			return nil, err
		}

		return lf.issueSession(ctx, user)
	})

	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	return resp, nil
}

// AdminLogin authenticates an admin. It additionally requires a solved rotate
// captcha and rejects non-admin accounts.
func (lf *LoginFlowImpl) AdminLogin(ctx context.Context, request *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.LoginResultDTO, error) {
	if lf.captchaService != nil {
		if !lf.captchaService.VerifyRotate(ctx, request.CaptchaID, float64(request.CaptchaAngle)) {
			return nil, NewBusinessError("INVALID_CAPTCHA", "Captcha verification failed", ErrInvalidCaptcha)
		}
	}

	resp, err := lf.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResultDTO, error) {
		user, err := lf.authenticate(ctx, request.Username, request.Password)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin() {
			// Do not leak whether the account exists with a different role
			return nil, ErrIncorrectPassword
		}

		return lf.issueSession(ctx, user)
	})

	if err != nil {
		return nil, NewBusinessError("ADMIN_LOGIN_FAILED", "Admin login failed", err)
	}
	return resp, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (lf *LoginFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.SessionDTO, error) {
	accessToken, refreshToken, err := lf.tokenService.RefreshToken(request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	return &dto.SessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
	}, nil
}

// ChangePassword verifies the caller's current password and stores a new hash
func (lf *LoginFlowImpl) ChangePassword(ctx context.Context, userID uint, request *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error) {
	resp, err := lf.WithChangePasswordTransaction(ctx, func(ctx context.Context) (*dto.ChangePasswordResponse, error) {
		user, err := lf.userRepo.ByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.CurrentPassword)); err != nil {
			return nil, ErrIncorrectPassword
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		if err := lf.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
			return nil, err
		}

		return &dto.ChangePasswordResponse{PasswordChangedAt: utils.UTCNow()}, nil
	})

	if err != nil {
		return nil, NewBusinessError("CHANGE_PASSWORD_FAILED", "Password change failed", err)
	}
	return resp, nil
}

// Private helper methods

func (lf *LoginFlowImpl) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}
	if password == "" {
		return nil, ErrIncorrectPassword
	}

	user, err := lf.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !utils.IsTrue(user.IsActive) {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	return user, nil
}

func (lf *LoginFlowImpl) issueSession(ctx context.Context, user *models.User) (*dto.LoginResultDTO, error) {
	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := lf.userRepo.UpdateLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
		return nil, err
	}

	return &dto.LoginResultDTO{
		Session: dto.SessionDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		},
		User: ToUserDTO(*user),
	}, nil
}

func (lf *LoginFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResultDTO, error)) (*dto.LoginResultDTO, error) {
	var result *dto.LoginResultDTO
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) WithChangePasswordTransaction(ctx context.Context, fn func(context.Context) (*dto.ChangePasswordResponse, error)) (*dto.ChangePasswordResponse, error) {
	var result *dto.ChangePasswordResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
