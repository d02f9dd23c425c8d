package repository

import (
	"context"

	"github.com/sepehr-hosseini/simorgh-crm/models"
	"gorm.io/gorm"
)

// CallHistoryRepositoryImpl implements CallHistoryRepository interface.
// History rows are append-only; there is deliberately no update or delete.
type CallHistoryRepositoryImpl struct {
	db *gorm.DB
}

// NewCallHistoryRepository creates a new call history repository
func NewCallHistoryRepository(db *gorm.DB) CallHistoryRepository {
	return &CallHistoryRepositoryImpl{db: db}
}

func (r *CallHistoryRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Save persists a single history entry
func (r *CallHistoryRepositoryImpl) Save(ctx context.Context, entry *models.CallHistory) error {
	return r.getDB(ctx).Create(entry).Error
}

// SaveBatch persists multiple history entries
func (r *CallHistoryRepositoryImpl) SaveBatch(ctx context.Context, entries []*models.CallHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.getDB(ctx).CreateInBatches(entries, 100).Error
}

// ListByCall returns the full history for one call, oldest first
func (r *CallHistoryRepositoryImpl) ListByCall(ctx context.Context, callID uint) ([]*models.CallHistory, error) {
	var entries []*models.CallHistory
	err := r.getDB(ctx).
		Where("call_id = ?", callID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByAgent returns the most recent history entries recorded by one agent
func (r *CallHistoryRepositoryImpl) ListByAgent(ctx context.Context, agentID uint, limit, offset int) ([]*models.CallHistory, error) {
	query := r.getDB(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []*models.CallHistory
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
