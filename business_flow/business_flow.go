// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/sepehr-hosseini/simorgh-crm/app/dto"
	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/shopspring/decimal"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToUserDTO converts a user model to its API representation
func ToUserDTO(user models.User) dto.UserDTO {
	out := dto.UserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Username:  user.Username,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		out.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	return out
}

// ToProductDTO converts a product model to its API representation
func ToProductDTO(product models.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:        product.ID,
		UUID:      product.UUID.String(),
		SKU:       product.SKU,
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		UnitCount: product.UnitCount,
		IsActive:  product.IsActive,
		CreatedAt: product.CreatedAt.Format(time.RFC3339),
	}
}

// ToCallDTO converts a call model to its API representation
func ToCallDTO(call models.Call) dto.CallDTO {
	out := dto.CallDTO{
		ID:              call.ID,
		UUID:            call.UUID.String(),
		CallDate:        call.CallDate.Format(time.RFC3339),
		CustomerName:    call.CustomerName,
		Phone:           call.Phone,
		AWB:             derefString(call.AWB),
		Address:         derefString(call.Address),
		OrderSKU:        derefString(call.OrderSKU),
		Quantity:        call.Quantity,
		CurrentPrice:    call.CurrentPrice.StringFixed(2),
		ShippingFee:     call.ShippingFee.StringFixed(2),
		Status:          string(call.Status),
		StatusLabel:     call.StatusLabel(),
		CallType:        string(call.CallType),
		AgentID:         call.AgentID,
		DurationSeconds: call.CallDuration,
		Remarks:         derefString(call.Remarks),
		Revenue:         call.Revenue.StringFixed(2),
		IsUpsell:        call.IsUpsell,
		CreatedAt:       call.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       call.UpdatedAt.Format(time.RFC3339),
	}
	if call.Agent != nil {
		out.AgentUsername = call.Agent.Username
	}
	if call.CallStartedAt != nil {
		out.CallStartedAt = call.CallStartedAt.Format(time.RFC3339)
	}
	if call.CallEndedAt != nil {
		out.CallEndedAt = call.CallEndedAt.Format(time.RFC3339)
	}
	out.OriginalPrice = decimalString(call.OriginalPrice)
	out.NewPrice = decimalString(call.NewPrice)
	out.OriginalOrderSKU = call.OriginalOrderSKU
	out.NewOrderSKU = call.NewOrderSKU
	return out
}

// ToCallHistoryDTO converts a history entry to its API representation
func ToCallHistoryDTO(entry models.CallHistory) dto.CallHistoryDTO {
	return dto.CallHistoryDTO{
		ID:        entry.ID,
		CallID:    entry.CallID,
		AgentID:   entry.AgentID,
		Action:    entry.Action,
		Note:      derefString(entry.Note),
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
