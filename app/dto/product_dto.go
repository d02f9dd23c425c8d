package dto

// ProductDTO represents a product in API responses
type ProductDTO struct {
	ID        uint   `json:"id" example:"4"`
	UUID      string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	SKU       string `json:"sku" example:"GL-500"`
	Name      string `json:"name" example:"Glucosamine 500mg"`
	Price     string `json:"price" example:"499.00"`
	UnitCount int    `json:"unit_count" example:"60"`
	IsActive  *bool  `json:"is_active" example:"true"`
	CreatedAt string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

// CreateProductRequest represents the admin request to register a product
type CreateProductRequest struct {
	SKU       string `json:"sku" validate:"required,min=1,max=64" example:"GL-500"`
	Name      string `json:"name" validate:"required,min=1,max=255" example:"Glucosamine 500mg"`
	Price     string `json:"price" validate:"required" example:"499.00"`
	UnitCount int    `json:"unit_count" validate:"omitempty,min=1" example:"60"`
}

// UpdateProductRequest represents the admin request to update a product
type UpdateProductRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=255" example:"Glucosamine 750mg"`
	Price     *string `json:"price,omitempty" example:"599.00"`
	UnitCount *int    `json:"unit_count,omitempty" validate:"omitempty,min=1" example:"90"`
	IsActive  *bool   `json:"is_active,omitempty" example:"false"`
}

// ListProductsRequest represents query parameters when listing products
type ListProductsRequest struct {
	Name     *string `query:"name" example:"glucosamine"`
	IsActive *bool   `query:"is_active" example:"true"`
	Page     int     `query:"page" validate:"omitempty,min=1" example:"1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100" example:"20"`
}

// ListProductsResponse represents the data section of a product list response
type ListProductsResponse struct {
	Products   []ProductDTO  `json:"products"`
	Pagination PaginationDTO `json:"pagination"`
}
