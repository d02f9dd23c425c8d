// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/app/middleware"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
)

// CallHandlerInterface defines the contract for call lifecycle handlers
type CallHandlerInterface interface {
	CreateCall(c fiber.Ctx) error
	ListCalls(c fiber.Ctx) error
	GetCall(c fiber.Ctx) error
	UpdateCall(c fiber.Ctx) error
	AnswerCall(c fiber.Ctx) error
	EndCall(c fiber.Ctx) error
	MarkUnattended(c fiber.Ctx) error
	MarkCallback(c fiber.Ctx) error
	ResetCall(c fiber.Ctx) error
	AssignAgent(c fiber.Ctx) error
	CheckDuplicate(c fiber.Ctx) error
}

// CallHandler handles call lifecycle HTTP requests
type CallHandler struct {
	callFlow  businessflow.CallFlow
	validator *validator.Validate
}

// NewCallHandler creates a new call handler
func NewCallHandler(callFlow businessflow.CallFlow) *CallHandler {
	return &CallHandler{
		callFlow:  callFlow,
		validator: validator.New(),
	}
}

// mapCallError turns call-flow business errors into HTTP responses.
// Returns false when the error is not one of the known sentinels.
func (h *CallHandler) mapCallError(c fiber.Ctx, err error) (bool, error) {
	switch {
	case businessflow.IsCallNotFound(err):
		return true, errorResponse(c, fiber.StatusNotFound, "Call not found", "CALL_NOT_FOUND", nil)
	case businessflow.IsDuplicateCall(err):
		return true, errorResponse(c, fiber.StatusConflict, "A call for this phone number already exists on this date", "DUPLICATE_CALL", nil)
	case businessflow.IsInvalidTransition(err):
		return true, errorResponse(c, fiber.StatusConflict, "Call status does not allow this action", "INVALID_TRANSITION", err.Error())
	case businessflow.IsCallAlreadyComplete(err):
		return true, errorResponse(c, fiber.StatusConflict, "Call is already complete", "CALL_ALREADY_COMPLETE", nil)
	case businessflow.IsCallNotInProgress(err):
		return true, errorResponse(c, fiber.StatusConflict, "Call is not in progress", "CALL_NOT_IN_PROGRESS", nil)
	case businessflow.IsAgentNotFound(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Agent not found", "AGENT_NOT_FOUND", nil)
	case businessflow.IsNotAnAgent(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "User is not an agent", "NOT_AN_AGENT", nil)
	case businessflow.IsAgentInactive(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Agent is inactive", "AGENT_INACTIVE", nil)
	case businessflow.IsPhoneRequired(err), businessflow.IsCustomerNameRequired(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	case businessflow.IsStartDateAfterEndDate(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Start date must not be after end date", "INVALID_DATE_RANGE", nil)
	}
	return false, nil
}

// CreateCall registers a new call
// @Summary Create Call
// @Description Register a telemarketing call, enforcing one call per phone per day
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCallRequest true "Call data"
// @Success 201 {object} dto.APIResponse{data=dto.CallDTO} "Call created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Duplicate call"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls [post]
func (h *CallHandler) CreateCall(c fiber.Ctx) error {
	var req dto.CreateCallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	call, err := h.callFlow.CreateCall(createRequestContext(c, "/api/v1/calls"), &req, metadata)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Call validation failed", "CALL_VALIDATION_FAILED", err.Error())
		}

		log.Println("Call creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call creation failed", "CALL_CREATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Call created", call)
}

// ListCalls lists calls with filters and pagination
// @Summary List Calls
// @Description List calls filtered by status, type, agent, phone, upsell flag, and date range
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param status query string false "Call status filter"
// @Param call_type query string false "Call type filter"
// @Param agent_id query int false "Agent ID filter"
// @Param phone query string false "Phone number filter"
// @Param is_upsell query bool false "Upsell flag filter"
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCallsResponse} "Calls listed"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls [get]
func (h *CallHandler) ListCalls(c fiber.Ctx) error {
	var req dto.ListCallsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.callFlow.ListCalls(createRequestContext(c, "/api/v1/calls"), &req)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid call filters", "INVALID_FILTERS", err.Error())
		}

		log.Println("Call listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call listing failed", "CALL_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Calls listed", result)
}

// GetCall returns a single call with its history
// @Summary Get Call
// @Description Fetch a call and its audit history by ID
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallWithHistoryDTO} "Call found"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id} [get]
func (h *CallHandler) GetCall(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	call, err := h.callFlow.GetCall(createRequestContext(c, "/api/v1/calls/:id"), callID)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}

		log.Println("Call lookup failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call lookup failed", "CALL_LOOKUP_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Call found", call)
}

// UpdateCall edits intake fields of a call
// @Summary Update Call
// @Description Update customer and order details of a call
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.UpdateCallRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id} [put]
func (h *CallHandler) UpdateCall(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	var req dto.UpdateCallRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	call, err := h.callFlow.UpdateCall(createRequestContext(c, "/api/v1/calls/:id"), callID, &req, metadata)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Call validation failed", "CALL_VALIDATION_FAILED", err.Error())
		}

		log.Println("Call update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call update failed", "CALL_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Call updated", call)
}

// AnswerCall starts the handling timer and moves the call to in_progress
// @Summary Answer Call
// @Description Mark a call as in progress and start its handling timer
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call answered"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/answer [post]
func (h *CallHandler) AnswerCall(c fiber.Ctx) error {
	return h.lifecycleAction(c, "/api/v1/calls/:id/answer", "Call answered", "CALL_ANSWER_FAILED",
		func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error) {
			return h.callFlow.AnswerCall(createRequestContext(c, "/api/v1/calls/:id/answer"), callID, actorID, md)
		})
}

// EndCall stops the handling timer and closes out the conversation
// @Summary End Call
// @Description End an in-progress call; it becomes purchased when an order exists, otherwise called
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.EndCallRequest false "End call data"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call ended"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Call not in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/end [post]
func (h *CallHandler) EndCall(c fiber.Ctx) error {
	var req dto.EndCallRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	return h.lifecycleAction(c, "/api/v1/calls/:id/end", "Call ended", "CALL_END_FAILED",
		func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error) {
			return h.callFlow.EndCall(createRequestContext(c, "/api/v1/calls/:id/end"), callID, actorID, &req, md)
		})
}

// MarkUnattended records that the customer did not pick up
// @Summary Mark Unattended
// @Description Mark a call as unattended (no answer)
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.CallbackRequest false "Optional remarks"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call marked unattended"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/unattended [post]
func (h *CallHandler) MarkUnattended(c fiber.Ctx) error {
	var req dto.CallbackRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	return h.lifecycleAction(c, "/api/v1/calls/:id/unattended", "Call marked unattended", "CALL_UNATTENDED_FAILED",
		func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error) {
			return h.callFlow.MarkUnattended(createRequestContext(c, "/api/v1/calls/:id/unattended"), callID, actorID, &req, md)
		})
}

// MarkCallback schedules the customer for another attempt
// @Summary Mark Callback
// @Description Mark a call as needing a callback
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.CallbackRequest false "Optional remarks"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call marked for callback"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/callback [post]
func (h *CallHandler) MarkCallback(c fiber.Ctx) error {
	var req dto.CallbackRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	return h.lifecycleAction(c, "/api/v1/calls/:id/callback", "Call marked for callback", "CALL_CALLBACK_FAILED",
		func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error) {
			return h.callFlow.MarkCallback(createRequestContext(c, "/api/v1/calls/:id/callback"), callID, actorID, &req, md)
		})
}

// ResetCall puts a call back to the new status, clearing its timers
// @Summary Reset Call
// @Description Reset a call to the new status from any state
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Call reset"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/reset [post]
func (h *CallHandler) ResetCall(c fiber.Ctx) error {
	return h.lifecycleAction(c, "/api/v1/calls/:id/reset", "Call reset", "CALL_RESET_FAILED",
		func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error) {
			return h.callFlow.ResetCall(createRequestContext(c, "/api/v1/calls/:id/reset"), callID, actorID, md)
		})
}

// AssignAgent hands a call to a specific agent
// @Summary Assign Agent
// @Description Assign an active agent to a call
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.AssignAgentRequest true "Agent assignment"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Agent assigned"
// @Failure 400 {object} dto.APIResponse "Agent invalid"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/assign [post]
func (h *CallHandler) AssignAgent(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	var req dto.AssignAgentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	call, err := h.callFlow.AssignAgent(createRequestContext(c, "/api/v1/calls/:id/assign"), callID, &req, metadata)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}

		log.Println("Agent assignment failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Agent assignment failed", "AGENT_ASSIGNMENT_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Agent assigned", call)
}

// CheckDuplicate runs the duplicate guard without creating anything
// @Summary Check Duplicate
// @Description Check whether a call already exists for a phone number on a date
// @Tags Calls
// @Produce json
// @Security BearerAuth
// @Param phone query string true "Phone number"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.APIResponse{data=dto.DuplicateCheckResponse} "Duplicate check result"
// @Failure 400 {object} dto.APIResponse "Invalid parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/duplicate-check [get]
func (h *CallHandler) CheckDuplicate(c fiber.Ctx) error {
	var req dto.DuplicateCheckRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.callFlow.CheckDuplicate(createRequestContext(c, "/api/v1/calls/duplicate-check"), &req)
	if err != nil {
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Duplicate check failed", "DUPLICATE_CHECK_FAILED", err.Error())
		}

		log.Println("Duplicate check failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Duplicate check failed", "DUPLICATE_CHECK_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Duplicate check completed", result)
}

// lifecycleAction factors out the shared path-param, auth, and error plumbing
// of the status transition endpoints.
func (h *CallHandler) lifecycleAction(
	c fiber.Ctx,
	endpoint, successMessage, failureCode string,
	action func(callID, actorID uint, md *businessflow.ClientMetadata) (*dto.CallDTO, error),
) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	call, err := action(callID, actorID, metadata)
	if err != nil {
		if handled, resp := h.mapCallError(c, err); handled {
			return resp
		}

		log.Println(endpoint, "failed:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Call action failed", failureCode, nil)
	}

	return successResponse(c, fiber.StatusOK, successMessage, call)
}
