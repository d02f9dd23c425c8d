package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CallStatus represents where a call sits in its lifecycle
type CallStatus string

const (
	CallStatusNew        CallStatus = "new"         // Freshly created, nobody dialed yet
	CallStatusInProgress CallStatus = "in_progress" // Agent is on the line
	CallStatusCalled     CallStatus = "called"      // Call ended without an order
	CallStatusUnattended CallStatus = "unattended"  // Customer did not pick up
	CallStatusCallback   CallStatus = "callback"    // Customer asked to be called later
	CallStatusCompleted  CallStatus = "completed"   // Call ended with an order placed
)

// CallType distinguishes confirmation calls from promo/upsell campaigns
type CallType string

const (
	CallTypeConfirmation CallType = "confirmation"
	CallTypePromo        CallType = "promo"
)

// callTransitions is the single source of truth for valid status moves.
// Only completed is terminal; called/unattended/callback records may be
// re-dialed, re-entering in_progress.
var callTransitions = map[CallStatus][]CallStatus{
	CallStatusNew:        {CallStatusInProgress, CallStatusUnattended, CallStatusCallback},
	CallStatusInProgress: {CallStatusCompleted, CallStatusCalled, CallStatusUnattended, CallStatusCallback},
	CallStatusCalled:     {CallStatusInProgress},
	CallStatusUnattended: {CallStatusInProgress},
	CallStatusCallback:   {CallStatusInProgress},
	CallStatusCompleted:  {},
}

// statusDisplayLabels maps stored statuses to UI labels. "purchased" is a
// display label only, never a stored value.
var statusDisplayLabels = map[CallStatus]string{
	CallStatusNew:        "New",
	CallStatusInProgress: "In Progress",
	CallStatusCalled:     "Called",
	CallStatusUnattended: "Unattended",
	CallStatusCallback:   "Callback",
	CallStatusCompleted:  "Purchased",
}

// Call is the merged call/transaction record: it starts life as a plain call
// and accumulates order and upsell bookkeeping as the agent works it.
type Call struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_calls_uuid" json:"uuid"`

	// Customer-facing fields
	CallDate     time.Time `gorm:"not null;index:idx_calls_call_date" json:"call_date"`
	CustomerName string    `gorm:"size:255;not null" json:"customer_name"`
	Phone        string    `gorm:"size:20;not null;index:idx_calls_phone" json:"phone"`
	AWB          *string   `gorm:"size:50" json:"awb,omitempty"`
	Address      *string   `gorm:"size:255" json:"address,omitempty"`

	// Current order fields (overwritten by upsells)
	OrderSKU     *string         `gorm:"size:60;index:idx_calls_order_sku" json:"order_sku,omitempty"`
	Quantity     int             `gorm:"not null;default:1" json:"quantity"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"current_price"`
	ShippingFee  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_fee"`

	Status   CallStatus `gorm:"type:varchar(20);not null;default:'new';index:idx_calls_status" json:"status"`
	CallType CallType   `gorm:"type:varchar(20);not null;default:'confirmation'" json:"call_type"`

	AgentID *uint `gorm:"index:idx_calls_agent_id" json:"agent_id,omitempty"`
	Agent   *User `gorm:"foreignKey:AgentID;references:ID" json:"agent,omitempty"`

	// Timer bookkeeping
	CallStartedAt *time.Time `json:"call_started_at,omitempty"`
	CallEndedAt   *time.Time `json:"call_ended_at,omitempty"`
	CallDuration  *int       `json:"call_duration,omitempty"` // seconds
	Remarks       *string    `gorm:"type:text" json:"remarks,omitempty"`

	// Upsell ledger. The original snapshot is captured once on the first
	// upsell and must never be overwritten afterwards.
	OriginalOrderSKU *string          `gorm:"size:60" json:"original_order_sku,omitempty"`
	OriginalPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"original_price,omitempty"`
	NewOrderSKU      *string          `gorm:"size:60" json:"new_order_sku,omitempty"`
	NewPrice         *decimal.Decimal `gorm:"type:numeric(12,2)" json:"new_price,omitempty"`
	Revenue          decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"revenue"`
	IsUpsell         *bool            `gorm:"default:false;index:idx_calls_is_upsell" json:"is_upsell"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_calls_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	History []CallHistory `gorm:"foreignKey:CallID" json:"-"`
}

func (Call) TableName() string {
	return "calls"
}

// CanTransitionTo reports whether moving to the target status is a valid
// lifecycle step from the current one.
func (c *Call) CanTransitionTo(target CallStatus) bool {
	for _, next := range callTransitions[c.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (c *Call) IsTerminal() bool {
	return len(callTransitions[c.Status]) == 0
}

// HasOrder reports whether any order (original or upsell) exists on the
// record. Ending a call with an order completes it; without one it is only
// marked called.
func (c *Call) HasOrder() bool {
	return (c.OrderSKU != nil && *c.OrderSKU != "") || c.HasOriginalSnapshot()
}

// HasOriginalSnapshot reports whether the pre-upsell baseline was captured.
func (c *Call) HasOriginalSnapshot() bool {
	return c.OriginalOrderSKU != nil && *c.OriginalOrderSKU != ""
}

// StatusLabel returns the canonical display label for the stored status.
func (c *Call) StatusLabel() string {
	if label, ok := statusDisplayLabels[c.Status]; ok {
		return label
	}
	return string(c.Status)
}

// ValidCallStatus reports whether s is a known stored status value.
func ValidCallStatus(s CallStatus) bool {
	_, ok := statusDisplayLabels[s]
	return ok
}

// CallFilter represents filter criteria for call queries
type CallFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Phone         *string
	Status        *CallStatus
	CallType      *CallType
	AgentID       *uint
	OrderSKU      *string
	IsUpsell      *bool
	DateAfter     *time.Time
	DateBefore    *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
