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

// UpsellHandlerInterface defines the contract for upsell handlers
type UpsellHandlerInterface interface {
	OfferUpsell(c fiber.Ctx) error
	ApplyUpsell(c fiber.Ctx) error
	DeclineUpsell(c fiber.Ctx) error
}

// UpsellHandler handles upsell HTTP requests
type UpsellHandler struct {
	upsellFlow businessflow.UpsellFlow
	validator  *validator.Validate
}

// NewUpsellHandler creates a new upsell handler
func NewUpsellHandler(upsellFlow businessflow.UpsellFlow) *UpsellHandler {
	return &UpsellHandler{
		upsellFlow: upsellFlow,
		validator:  validator.New(),
	}
}

func (h *UpsellHandler) mapUpsellError(c fiber.Ctx, err error) (bool, error) {
	switch {
	case businessflow.IsCallNotFound(err):
		return true, errorResponse(c, fiber.StatusNotFound, "Call not found", "CALL_NOT_FOUND", nil)
	case businessflow.IsCallNotInProgress(err):
		return true, errorResponse(c, fiber.StatusConflict, "Call is not in progress", "CALL_NOT_IN_PROGRESS", nil)
	case businessflow.IsNoOriginalOrder(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Call has no original order to upsell from", "NO_ORIGINAL_ORDER", nil)
	case businessflow.IsUpsellNotOffered(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "No upsell has been offered on this call", "UPSELL_NOT_OFFERED", nil)
	case businessflow.IsProductNotFound(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsProductInactive(err):
		return true, errorResponse(c, fiber.StatusBadRequest, "Product is inactive", "PRODUCT_INACTIVE", nil)
	case businessflow.IsInvalidTransition(err):
		return true, errorResponse(c, fiber.StatusConflict, "Call status does not allow this action", "INVALID_TRANSITION", err.Error())
	}
	return false, nil
}

// OfferUpsell records that an upsell was pitched during the call
// @Summary Offer Upsell
// @Description Record that an upsell offer was made on an in-progress call
// @Tags Upsell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.OfferUpsellRequest true "Offer details"
// @Success 200 {object} dto.APIResponse{data=dto.CallDTO} "Upsell offered"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Call not in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/upsell/offer [post]
func (h *UpsellHandler) OfferUpsell(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.OfferUpsellRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	call, err := h.upsellFlow.OfferUpsell(createRequestContext(c, "/api/v1/calls/:id/upsell/offer"), callID, actorID, &req, metadata)
	if err != nil {
		if handled, resp := h.mapUpsellError(c, err); handled {
			return resp
		}

		log.Println("Upsell offer failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Upsell offer failed", "UPSELL_OFFER_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Upsell offered", call)
}

// ApplyUpsell swaps the order and records the revenue delta
// @Summary Apply Upsell
// @Description Accept an upsell: snapshot the original order, swap in the new SKU, and record revenue
// @Tags Upsell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.ApplyUpsellRequest true "New order details"
// @Success 200 {object} dto.APIResponse{data=dto.UpsellResultDTO} "Upsell applied"
// @Failure 400 {object} dto.APIResponse "No original order or invalid product"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Call not in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/upsell/apply [post]
func (h *UpsellHandler) ApplyUpsell(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ApplyUpsellRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.upsellFlow.ApplyUpsell(createRequestContext(c, "/api/v1/calls/:id/upsell/apply"), callID, actorID, &req, metadata)
	if err != nil {
		if handled, resp := h.mapUpsellError(c, err); handled {
			return resp
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Upsell validation failed", "UPSELL_VALIDATION_FAILED", err.Error())
		}

		log.Println("Upsell apply failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Upsell apply failed", "UPSELL_APPLY_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Upsell applied", result)
}

// DeclineUpsell records the refusal and completes the call
// @Summary Decline Upsell
// @Description Record that the customer declined the upsell and complete the call
// @Tags Upsell
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Call ID"
// @Param request body dto.DeclineUpsellRequest false "Optional note"
// @Success 200 {object} dto.APIResponse{data=dto.UpsellResultDTO} "Upsell declined"
// @Failure 404 {object} dto.APIResponse "Call not found"
// @Failure 409 {object} dto.APIResponse "Call not in progress"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/calls/{id}/upsell/decline [post]
func (h *UpsellHandler) DeclineUpsell(c fiber.Ctx) error {
	callID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid call ID", "INVALID_CALL_ID", nil)
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.DeclineUpsellRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.upsellFlow.DeclineUpsell(createRequestContext(c, "/api/v1/calls/:id/upsell/decline"), callID, actorID, &req, metadata)
	if err != nil {
		if handled, resp := h.mapUpsellError(c, err); handled {
			return resp
		}

		log.Println("Upsell decline failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Upsell decline failed", "UPSELL_DECLINE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Upsell declined", result)
}
