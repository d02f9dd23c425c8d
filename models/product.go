package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Calls reference products by SKU, not by a
// strict foreign key, so an imported call may carry a SKU that is not (yet)
// in the catalog.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_products_uuid" json:"uuid"`
	SKU       string          `gorm:"size:60;not null;uniqueIndex:uk_products_sku" json:"sku"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	UnitCount int             `gorm:"not null;default:1" json:"unit_count"`
	IsActive  *bool           `gorm:"default:true;index:idx_products_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductFilter represents filter criteria for product queries
type ProductFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	SKU           *string
	Name          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
