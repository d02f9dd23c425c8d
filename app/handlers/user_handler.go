// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
)

// UserHandlerInterface defines the contract for user management handlers
type UserHandlerInterface interface {
	CreateUser(c fiber.Ctx) error
	UpdateUser(c fiber.Ctx) error
	ListUsers(c fiber.Ctx) error
}

// UserHandler handles user management HTTP requests (admin only)
type UserHandler struct {
	userFlow  businessflow.UserFlow
	validator *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(userFlow businessflow.UserFlow) *UserHandler {
	return &UserHandler{
		userFlow:  userFlow,
		validator: validator.New(),
	}
}

// CreateUser creates an admin or agent account
// @Summary Create User
// @Description Create a new admin or agent account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.APIResponse{data=dto.UserDTO} "User created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Username taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users [post]
func (h *UserHandler) CreateUser(c fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	user, err := h.userFlow.CreateUser(createRequestContext(c, "/api/v1/admin/users"), &req, metadata)
	if err != nil {
		if businessflow.IsUsernameTaken(err) {
			return errorResponse(c, fiber.StatusConflict, "Username already exists", "USERNAME_TAKEN", nil)
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "User validation failed", "USER_VALIDATION_FAILED", err.Error())
		}

		log.Println("User creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "User creation failed", "USER_CREATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "User created", user)
}

// UpdateUser edits an account's password or active flag
// @Summary Update User
// @Description Update a user's password or activation status
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "User updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user ID", "INVALID_USER_ID", nil)
	}

	var req dto.UpdateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	user, err := h.userFlow.UpdateUser(createRequestContext(c, "/api/v1/admin/users/:id"), userID, &req, metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "User validation failed", "USER_VALIDATION_FAILED", err.Error())
		}

		log.Println("User update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "User update failed", "USER_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "User updated", user)
}

// ListUsers lists accounts with filters and pagination
// @Summary List Users
// @Description List users filtered by role and activation status
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter (admin or agent)"
// @Param is_active query bool false "Activation filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListUsersResponse} "Users listed"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	var req dto.ListUsersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.userFlow.ListUsers(createRequestContext(c, "/api/v1/admin/users"), &req)
	if err != nil {
		log.Println("User listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "User listing failed", "USER_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Users listed", result)
}
