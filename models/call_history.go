package models

import (
	"time"
)

// Call history action constants. One entry is appended per lifecycle
// transition or upsell decision; entries are never mutated or deleted.
const (
	CallHistoryActionStarted          = "started"
	CallHistoryActionEnded            = "ended"
	CallHistoryActionUpsellOffered    = "upsell_offered"
	CallHistoryActionUpsellAccepted   = "upsell_accepted"
	CallHistoryActionUpsellDeclined   = "upsell_declined"
	CallHistoryActionMarkedUnattended = "marked_unattended"
	CallHistoryActionMarkedCallback   = "marked_callback"
	CallHistoryActionReset            = "reset"
)

type CallHistory struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	CallID  uint    `gorm:"not null;index:idx_call_history_call_id" json:"call_id"`
	AgentID *uint   `gorm:"index:idx_call_history_agent_id" json:"agent_id,omitempty"`
	Action  string  `gorm:"size:30;not null;index:idx_call_history_action" json:"action"`
	Note    *string `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_call_history_created_at" json:"created_at"`

	Call  *Call `gorm:"foreignKey:CallID;references:ID" json:"-"`
	Agent *User `gorm:"foreignKey:AgentID;references:ID" json:"-"`
}

func (CallHistory) TableName() string {
	return "call_history"
}

// CallHistoryFilter represents filter criteria for call history queries
type CallHistoryFilter struct {
	ID            *uint
	CallID        *uint
	AgentID       *uint
	Action        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
