// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	businessflow "github.com/sepehr-hosseini/simorgh-crm/business_flow"
)

// ProductHandlerInterface defines the contract for product catalog handlers
type ProductHandlerInterface interface {
	CreateProduct(c fiber.Ctx) error
	UpdateProduct(c fiber.Ctx) error
	ListProducts(c fiber.Ctx) error
}

// ProductHandler handles product catalog HTTP requests (admin only)
type ProductHandler struct {
	productFlow businessflow.ProductFlow
	validator   *validator.Validate
}

// NewProductHandler creates a new product handler
func NewProductHandler(productFlow businessflow.ProductFlow) *ProductHandler {
	return &ProductHandler{
		productFlow: productFlow,
		validator:   validator.New(),
	}
}

// CreateProduct adds a product to the catalog
// @Summary Create Product
// @Description Add a product to the upsell catalog
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "Product data"
// @Success 201 {object} dto.APIResponse{data=dto.ProductDTO} "Product created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "SKU taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/products [post]
func (h *ProductHandler) CreateProduct(c fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	product, err := h.productFlow.CreateProduct(createRequestContext(c, "/api/v1/admin/products"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "PRODUCT_SKU_TAKEN":
				return errorResponse(c, fiber.StatusConflict, "A product with this SKU already exists", be.Code, nil)
			default:
				return errorResponse(c, fiber.StatusBadRequest, "Product validation failed", be.Code, be.Error())
			}
		}

		log.Println("Product creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Product creation failed", "PRODUCT_CREATION_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Product created", product)
}

// UpdateProduct edits a catalog entry
// @Summary Update Product
// @Description Update a product's name, price, unit count, or activation status
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body dto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ProductDTO} "Product updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c fiber.Ctx) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid product ID", "INVALID_PRODUCT_ID", nil)
	}

	var req dto.UpdateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	product, err := h.productFlow.UpdateProduct(createRequestContext(c, "/api/v1/admin/products/:id"), productID, &req, metadata)
	if err != nil {
		if businessflow.IsProductNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if businessflow.IsBusinessError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Product validation failed", "PRODUCT_VALIDATION_FAILED", err.Error())
		}

		log.Println("Product update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Product update failed", "PRODUCT_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Product updated", product)
}

// ListProducts lists catalog entries with filters and pagination
// @Summary List Products
// @Description List products filtered by name and activation status
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name filter"
// @Param is_active query bool false "Activation filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListProductsResponse} "Products listed"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/products [get]
func (h *ProductHandler) ListProducts(c fiber.Ctx) error {
	var req dto.ListProductsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if validationErrors := validateStruct(h.validator, &req); validationErrors != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.productFlow.ListProducts(createRequestContext(c, "/api/v1/admin/products"), &req)
	if err != nil {
		log.Println("Product listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Product listing failed", "PRODUCT_LISTING_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Products listed", result)
}
