package dto

// OfferUpsellRequest represents the payload for recording an upsell pitch
type OfferUpsellRequest struct {
	NewOrderSKU string `json:"new_order_sku" validate:"required,min=1,max=64" example:"GL-900"`
	Note        string `json:"note,omitempty" validate:"omitempty,max=2048" example:"pitched the 90-count bottle"`
}

// ApplyUpsellRequest represents the payload for accepting an upsell
type ApplyUpsellRequest struct {
	NewOrderSKU string  `json:"new_order_sku" validate:"required,min=1,max=64" example:"GL-900"`
	NewPrice    *string `json:"new_price,omitempty" example:"799.00"`
	Note        string  `json:"note,omitempty" validate:"omitempty,max=2048"`
}

// DeclineUpsellRequest represents the payload for declining an upsell
type DeclineUpsellRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=2048" example:"not interested in the bigger pack"`
}

// UpsellResultDTO represents the order ledger after an upsell decision
type UpsellResultDTO struct {
	Call             CallDTO `json:"call"`
	OriginalOrderSKU string  `json:"original_order_sku" example:"GL-500"`
	OriginalPrice    string  `json:"original_price" example:"499.00"`
	NewOrderSKU      string  `json:"new_order_sku,omitempty" example:"GL-900"`
	NewPrice         string  `json:"new_price,omitempty" example:"799.00"`
	Revenue          string  `json:"revenue" example:"300.00"`
	IsUpsell         bool    `json:"is_upsell" example:"true"`
}
