package businessflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/repository"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFlow handles the product catalog the upsell ledger prices against
type ProductFlow interface {
	CreateProduct(ctx context.Context, request *dto.CreateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uint, request *dto.UpdateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error)
	ListProducts(ctx context.Context, request *dto.ListProductsRequest) (*dto.ListProductsResponse, error)
}

// ProductFlowImpl implements the product catalog business flow
type ProductFlowImpl struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
}

// NewProductFlow creates a new product flow instance
func NewProductFlow(productRepo repository.ProductRepository, db *gorm.DB) ProductFlow {
	return &ProductFlowImpl{productRepo: productRepo, db: db}
}

// CreateProduct registers a catalog entry under a unique SKU
func (pf *ProductFlowImpl) CreateProduct(ctx context.Context, request *dto.CreateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	sku := strings.TrimSpace(request.SKU)
	price, err := decimal.NewFromString(request.Price)
	if err != nil || price.IsNegative() {
		return nil, NewBusinessError("PRODUCT_VALIDATION_FAILED", "Invalid product price", err)
	}

	resp, err := pf.WithProductTransaction(ctx, func(ctx context.Context) (*dto.ProductDTO, error) {
		existing, err := pf.productRepo.BySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, NewBusinessErrorf("PRODUCT_SKU_TAKEN", "Product with SKU %s already exists", nil, sku)
		}

		product := &models.Product{
			UUID:      uuid.New(),
			SKU:       sku,
			Name:      strings.TrimSpace(request.Name),
			Price:     price,
			UnitCount: 1,
			IsActive:  utils.ToPtr(true),
		}
		if request.UnitCount > 0 {
			product.UnitCount = request.UnitCount
		}
		if err := pf.productRepo.Save(ctx, product); err != nil {
			return nil, err
		}

		result := ToProductDTO(*product)
		return &result, nil
	})

	if err != nil {
		return nil, NewBusinessError("PRODUCT_CREATE_FAILED", "Failed to create product", err)
	}
	return resp, nil
}

// UpdateProduct applies partial edits to a catalog entry
func (pf *ProductFlowImpl) UpdateProduct(ctx context.Context, productID uint, request *dto.UpdateProductRequest, metadata *ClientMetadata) (*dto.ProductDTO, error) {
	resp, err := pf.WithProductTransaction(ctx, func(ctx context.Context) (*dto.ProductDTO, error) {
		product, err := pf.productRepo.ByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}

		if request.Name != nil && strings.TrimSpace(*request.Name) != "" {
			product.Name = strings.TrimSpace(*request.Name)
		}
		if request.Price != nil {
			price, err := decimal.NewFromString(*request.Price)
			if err != nil || price.IsNegative() {
				return nil, NewBusinessError("PRODUCT_VALIDATION_FAILED", "Invalid product price", err)
			}
			product.Price = price
		}
		if request.UnitCount != nil && *request.UnitCount > 0 {
			product.UnitCount = *request.UnitCount
		}
		if request.IsActive != nil {
			product.IsActive = request.IsActive
		}

		if err := pf.productRepo.Update(ctx, product); err != nil {
			return nil, err
		}

		result := ToProductDTO(*product)
		return &result, nil
	})

	if err != nil {
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Failed to update product", err)
	}
	return resp, nil
}

// ListProducts returns a filtered, paginated page of catalog entries
func (pf *ProductFlowImpl) ListProducts(ctx context.Context, request *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	page, pageSize, err := normalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.ProductFilter{
		Name:     request.Name,
		IsActive: request.IsActive,
	}

	total, err := pf.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to count products", err)
	}

	products, err := pf.productRepo.ByFilter(ctx, filter, "sku ASC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}

	out := &dto.ListProductsResponse{
		Products: make([]dto.ProductDTO, 0, len(products)),
		Pagination: dto.PaginationDTO{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	for _, product := range products {
		out.Products = append(out.Products, ToProductDTO(*product))
	}
	return out, nil
}

func (pf *ProductFlowImpl) WithProductTransaction(ctx context.Context, fn func(context.Context) (*dto.ProductDTO, error)) (*dto.ProductDTO, error) {
	var result *dto.ProductDTO
	var fnErr error

	err := repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
