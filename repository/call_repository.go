package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sepehr-hosseini/simorgh-crm/models"
	"github.com/sepehr-hosseini/simorgh-crm/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CallRepositoryImpl implements CallRepository interface
type CallRepositoryImpl struct {
	*BaseRepository[models.Call, models.CallFilter]
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) CallRepository {
	return &CallRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Call, models.CallFilter](db),
	}
}

// FindDuplicate returns an existing call with the same phone whose date falls
// within the calendar day of the supplied date (midnight-to-midnight in the
// date's own location). Returns nil when no duplicate exists.
func (r *CallRepositoryImpl) FindDuplicate(ctx context.Context, phone string, date time.Time) (*models.Call, error) {
	db := r.getDB(ctx)
	start, end := utils.DayBounds(date)

	var call models.Call
	err := db.Where("phone = ? AND call_date >= ? AND call_date < ?", phone, start, end).
		Last(&call).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &call, nil
}

// ByFilter retrieves calls matching the filter criteria
func (r *CallRepositoryImpl) ByFilter(ctx context.Context, filter models.CallFilter, orderBy string, limit, offset int) ([]*models.Call, error) {
	db := r.getDB(ctx)
	query := applyCallFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var calls []*models.Call
	if err := query.Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// Count returns the number of calls matching the filter
func (r *CallRepositoryImpl) Count(ctx context.Context, filter models.CallFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := applyCallFilter(db.Model(&models.Call{}), filter).Count(&count).Error
	return count, err
}

// CountInWindow counts calls created inside [from, to), optionally scoped to
// one agent.
func (r *CallRepositoryImpl) CountInWindow(ctx context.Context, from, to time.Time, agentID *uint) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Call{}).Where("created_at >= ? AND created_at < ?", from, to)
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountUpsellsInWindow counts calls flagged as upsells created inside [from, to)
func (r *CallRepositoryImpl) CountUpsellsInWindow(ctx context.Context, from, to time.Time, agentID *uint) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Call{}).
		Where("is_upsell = ? AND created_at >= ? AND created_at < ?", true, from, to)
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// SumRevenueInWindow sums upsell revenue for calls created inside [from, to)
func (r *CallRepositoryImpl) SumRevenueInWindow(ctx context.Context, from, to time.Time, agentID *uint) (decimal.Decimal, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Call{}).
		Select("COALESCE(SUM(revenue), 0) AS revenue").
		Where("created_at >= ? AND created_at < ?", from, to)
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}

	var row struct {
		Revenue decimal.Decimal
	}
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}

// CountByStatus groups calls created inside [from, to) by status
func (r *CallRepositoryImpl) CountByStatus(ctx context.Context, from, to time.Time, agentID *uint) ([]StatusCount, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Call{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to)
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}

	var rows []StatusCount
	err := query.Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenueByDay sums revenue per calendar day inside [from, to), ordered oldest
// first. Days with no calls are absent from the result; callers fill gaps.
func (r *CallRepositoryImpl) RevenueByDay(ctx context.Context, from, to time.Time, agentID *uint) ([]DayRevenue, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Call{}).
		Select("date_trunc('day', created_at) AS day, COALESCE(SUM(revenue), 0) AS revenue").
		Where("created_at >= ? AND created_at < ?", from, to)
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}

	var rows []DayRevenue
	err := query.Group("date_trunc('day', created_at)").Order("day ASC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AgentPerformance aggregates the leaderboard across all active agents,
// ordered by calls handled descending. Agents with no calls still appear
// with zero counts.
func (r *CallRepositoryImpl) AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error) {
	db := r.getDB(ctx)

	var rows []AgentPerformanceRow
	err := db.Table("users AS u").
		Select("u.id AS agent_id, u.username AS username, " +
			"COUNT(c.id) AS calls_handled, " +
			"COALESCE(SUM(CASE WHEN c.is_upsell THEN 1 ELSE 0 END), 0) AS upsells_closed, " +
			"COALESCE(SUM(c.revenue), 0) AS total_revenue, " +
			"COALESCE(AVG(EXTRACT(EPOCH FROM (c.call_ended_at - c.call_started_at))), 0) AS avg_handling_seconds").
		Joins("LEFT JOIN calls c ON c.agent_id = u.id").
		Where("u.role = ? AND u.is_active = ?", models.UserRoleAgent, true).
		Group("u.id, u.username").
		Order("calls_handled DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func applyCallFilter(db *gorm.DB, filter models.CallFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Phone != nil {
		db = db.Where("phone = ?", *filter.Phone)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CallType != nil {
		db = db.Where("call_type = ?", *filter.CallType)
	}
	if filter.AgentID != nil {
		db = db.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.OrderSKU != nil {
		db = db.Where("order_sku = ?", *filter.OrderSKU)
	}
	if filter.IsUpsell != nil {
		db = db.Where("is_upsell = ?", *filter.IsUpsell)
	}
	if filter.DateAfter != nil {
		db = db.Where("call_date >= ?", *filter.DateAfter)
	}
	if filter.DateBefore != nil {
		db = db.Where("call_date <= ?", *filter.DateBefore)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}
