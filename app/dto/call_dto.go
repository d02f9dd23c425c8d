package dto

// CallDTO represents a call record in API responses
type CallDTO struct {
	ID               uint    `json:"id" example:"321"`
	UUID             string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	CallDate         string  `json:"call_date" example:"2026-02-03T00:00:00Z"`
	CustomerName     string  `json:"customer_name" example:"Maryam Rahimi"`
	Phone            string  `json:"phone" example:"+989123456789"`
	AWB              string  `json:"awb,omitempty" example:"IR-2026-009812"`
	Address          string  `json:"address,omitempty" example:"Tehran, Valiasr St."`
	OrderSKU         string  `json:"order_sku,omitempty" example:"GL-500"`
	Quantity         int     `json:"quantity" example:"1"`
	CurrentPrice     string  `json:"current_price" example:"499.00"`
	ShippingFee      string  `json:"shipping_fee" example:"45.00"`
	Status           string  `json:"status" example:"in_progress"`
	StatusLabel      string  `json:"status_label" example:"In Progress"`
	CallType         string  `json:"call_type" example:"promo"`
	AgentID          *uint   `json:"agent_id,omitempty" example:"12"`
	AgentUsername    string  `json:"agent_username,omitempty" example:"agent.sara"`
	CallStartedAt    string  `json:"call_started_at,omitempty" example:"2026-02-03T09:15:00Z"`
	CallEndedAt      string  `json:"call_ended_at,omitempty" example:"2026-02-03T09:22:30Z"`
	DurationSeconds  *int    `json:"duration_seconds,omitempty" example:"450"`
	Remarks          string  `json:"remarks,omitempty" example:"asked to call back after lunch"`
	OriginalOrderSKU *string `json:"original_order_sku,omitempty" example:"GL-500"`
	OriginalPrice    *string `json:"original_price,omitempty" example:"499.00"`
	NewOrderSKU      *string `json:"new_order_sku,omitempty" example:"GL-900"`
	NewPrice         *string `json:"new_price,omitempty" example:"799.00"`
	Revenue          string  `json:"revenue" example:"300.00"`
	IsUpsell         *bool   `json:"is_upsell,omitempty" example:"true"`
	CreatedAt        string  `json:"created_at" example:"2026-02-03T08:00:00Z"`
	UpdatedAt        string  `json:"updated_at" example:"2026-02-03T09:22:30Z"`
}

// CallHistoryDTO represents one audit entry on a call
type CallHistoryDTO struct {
	ID        uint   `json:"id" example:"98"`
	CallID    uint   `json:"call_id" example:"321"`
	AgentID   *uint  `json:"agent_id,omitempty" example:"12"`
	Action    string `json:"action" example:"upsell_accepted"`
	Note      string `json:"note,omitempty" example:"upgraded GL-500 -> GL-900"`
	CreatedAt string `json:"created_at" example:"2026-02-03T09:20:00Z"`
}

// CreateCallRequest represents the payload for registering a new call record
type CreateCallRequest struct {
	CallDate     string `json:"call_date,omitempty" example:"2026-02-03"`
	CustomerName string `json:"customer_name" validate:"required,min=1,max=255" example:"Maryam Rahimi"`
	Phone        string `json:"phone" validate:"required,min=3,max=20" example:"+989123456789"`
	AWB          string `json:"awb,omitempty" validate:"omitempty,max=50" example:"IR-2026-009812"`
	Address      string `json:"address,omitempty" validate:"omitempty,max=255" example:"Tehran, Valiasr St."`
	OrderSKU     string `json:"order_sku,omitempty" validate:"omitempty,max=60" example:"GL-500"`
	Quantity     int    `json:"quantity,omitempty" validate:"omitempty,min=1" example:"1"`
	CurrentPrice string `json:"current_price,omitempty" example:"499.00"`
	ShippingFee  string `json:"shipping_fee,omitempty" example:"45.00"`
	CallType     string `json:"call_type,omitempty" validate:"omitempty,oneof=confirmation promo" example:"promo"`
	AgentID      *uint  `json:"agent_id,omitempty" example:"12"`
	Remarks      string `json:"remarks,omitempty" validate:"omitempty,max=2048"`
}

// UpdateCallRequest represents partial edits to a call's customer and order fields
type UpdateCallRequest struct {
	CustomerName *string `json:"customer_name,omitempty" validate:"omitempty,min=1,max=255"`
	AWB          *string `json:"awb,omitempty" validate:"omitempty,max=50"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Quantity     *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	ShippingFee  *string `json:"shipping_fee,omitempty"`
	Remarks      *string `json:"remarks,omitempty" validate:"omitempty,max=2048"`
}

// EndCallRequest represents the payload for ending an in-progress call
type EndCallRequest struct {
	Remarks string `json:"remarks,omitempty" validate:"omitempty,max=2048" example:"customer satisfied"`
}

// CallbackRequest represents the payload for flagging a callback
type CallbackRequest struct {
	Remarks string `json:"remarks,omitempty" validate:"omitempty,max=2048" example:"call back after 5pm"`
}

// AssignAgentRequest represents the admin request to assign a call to an agent
type AssignAgentRequest struct {
	AgentID uint `json:"agent_id" validate:"required" example:"12"`
}

// ListCallsRequest represents query parameters when listing calls
type ListCallsRequest struct {
	Status    *string `query:"status" example:"callback"`
	CallType  *string `query:"call_type" validate:"omitempty,oneof=confirmation promo" example:"promo"`
	AgentID   *uint   `query:"agent_id" example:"12"`
	Phone     *string `query:"phone" example:"+989123456789"`
	IsUpsell  *bool   `query:"is_upsell" example:"true"`
	StartDate *string `query:"start_date" example:"2026-02-01"`
	EndDate   *string `query:"end_date" example:"2026-02-28"`
	Page      int     `query:"page" validate:"omitempty,min=1" example:"1"`
	PageSize  int     `query:"page_size" validate:"omitempty,min=1,max=100" example:"20"`
}

// ListCallsResponse represents the data section of a call list response
type ListCallsResponse struct {
	Calls      []CallDTO     `json:"calls"`
	Pagination PaginationDTO `json:"pagination"`
}

// CallWithHistoryDTO represents a call together with its full audit trail
type CallWithHistoryDTO struct {
	Call    CallDTO          `json:"call"`
	History []CallHistoryDTO `json:"history"`
}

// DuplicateCheckRequest represents query parameters for the duplicate guard lookup
type DuplicateCheckRequest struct {
	Phone string `query:"phone" validate:"required,min=3,max=20" example:"+989123456789"`
	Date  string `query:"date" example:"2026-02-03"`
}

// DuplicateCheckResponse reports whether a call already exists for a phone on a date
type DuplicateCheckResponse struct {
	Duplicate bool     `json:"duplicate" example:"true"`
	Call      *CallDTO `json:"call,omitempty"`
}
