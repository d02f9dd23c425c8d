package businessflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFlow handles admin management of agent and admin accounts
type UserFlow interface {
	CreateUser(ctx context.Context, request *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, userID uint, request *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	ListUsers(ctx context.Context, request *dto.ListUsersRequest) (*dto.ListUsersResponse, error)
}

// UserFlowImpl implements the user management business flow
type UserFlowImpl struct {
	userRepo repository.UserRepository
	db       *gorm.DB
}

// NewUserFlow creates a new user flow instance
func NewUserFlow(userRepo repository.UserRepository, db *gorm.DB) UserFlow {
	return &UserFlowImpl{userRepo: userRepo, db: db}
}

// CreateUser registers a new agent or admin account
func (uf *UserFlowImpl) CreateUser(ctx context.Context, request *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	username := strings.TrimSpace(request.Username)

	resp, err := uf.WithUserTransaction(ctx, func(ctx context.Context) (*dto.UserDTO, error) {
		existing, err := uf.userRepo.ByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameTaken
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		user := &models.User{
			UUID:         uuid.New(),
			Username:     username,
			PasswordHash: string(hashedPassword),
			Role:         models.UserRole(request.Role),
			IsActive:     utils.ToPtr(true),
		}
		if err := uf.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}

		result := ToUserDTO(*user)
		return &result, nil
	})

	if err != nil {
		return nil, NewBusinessError("USER_CREATE_FAILED", "Failed to create user", err)
	}
	return resp, nil
}

// UpdateUser resets a password or toggles account activation
func (uf *UserFlowImpl) UpdateUser(ctx context.Context, userID uint, request *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	resp, err := uf.WithUserTransaction(ctx, func(ctx context.Context) (*dto.UserDTO, error) {
		user, err := uf.userRepo.ByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if request.Password != nil && *request.Password != "" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = string(hashedPassword)
		}
		if request.IsActive != nil {
			user.IsActive = request.IsActive
		}

		if err := uf.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}

		result := ToUserDTO(*user)
		return &result, nil
	})

	if err != nil {
		return nil, NewBusinessError("USER_UPDATE_FAILED", "Failed to update user", err)
	}
	return resp, nil
}

// ListUsers returns a filtered, paginated page of accounts
func (uf *UserFlowImpl) ListUsers(ctx context.Context, request *dto.ListUsersRequest) (*dto.ListUsersResponse, error) {
	page, pageSize, err := normalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.UserFilter{IsActive: request.IsActive}
	if request.Role != nil {
		role := models.UserRole(*request.Role)
		filter.Role = &role
	}

	total, err := uf.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to count users", err)
	}

	users, err := uf.userRepo.ByFilter(ctx, filter, "id ASC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to list users", err)
	}

	out := &dto.ListUsersResponse{
		Users: make([]dto.UserDTO, 0, len(users)),
		Pagination: dto.PaginationDTO{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	for _, user := range users {
		out.Users = append(out.Users, ToUserDTO(*user))
	}
	return out, nil
}

func (uf *UserFlowImpl) WithUserTransaction(ctx context.Context, fn func(context.Context) (*dto.UserDTO, error)) (*dto.UserDTO, error) {
	var result *dto.UserDTO
	var fnErr error

	err := repository.WithTransaction(ctx, uf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
