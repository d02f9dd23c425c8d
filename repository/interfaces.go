// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/shopspring/decimal"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// UserRepository defines operations for users (admins and agents)
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ListActiveAgents(ctx context.Context) ([]*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// ProductRepository defines operations for the product catalog
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	BySKU(ctx context.Context, sku string) (*models.Product, error)
}

// StatusCount is a report row counting calls per status
type StatusCount struct {
	Status models.CallStatus `json:"status"`
	Count  int64             `json:"count"`
}

// DayRevenue is a report row summing revenue per calendar day
type DayRevenue struct {
	Day     time.Time       `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

// AgentPerformanceRow is a leaderboard row aggregated per agent
type AgentPerformanceRow struct {
	AgentID            uint            `json:"agent_id"`
	Username           string          `json:"username"`
	CallsHandled       int64           `json:"calls_handled"`
	UpsellsClosed      int64           `json:"upsells_closed"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	AvgHandlingSeconds float64         `json:"avg_handling_seconds"`
}

// CallRepository defines operations for call/transaction records, including
// the grouped aggregates the dashboard is built on
type CallRepository interface {
	Repository[models.Call, models.CallFilter]
	FindDuplicate(ctx context.Context, phone string, date time.Time) (*models.Call, error)
	CountInWindow(ctx context.Context, from, to time.Time, agentID *uint) (int64, error)
	CountUpsellsInWindow(ctx context.Context, from, to time.Time, agentID *uint) (int64, error)
	SumRevenueInWindow(ctx context.Context, from, to time.Time, agentID *uint) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, from, to time.Time, agentID *uint) ([]StatusCount, error)
	RevenueByDay(ctx context.Context, from, to time.Time, agentID *uint) ([]DayRevenue, error)
	AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error)
}

// CallHistoryRepository defines operations for the append-only call audit
// trail. There is deliberately no update or delete.
type CallHistoryRepository interface {
	Save(ctx context.Context, entry *models.CallHistory) error
	SaveBatch(ctx context.Context, entries []*models.CallHistory) error
	ListByCall(ctx context.Context, callID uint) ([]*models.CallHistory, error)
	ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]*models.CallHistory, error)
}
