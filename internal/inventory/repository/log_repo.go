package repository

import (
	"context"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"gorm.io/gorm"
)

// LogRepository reads the append-only inventory ledger. Writes happen only
// through the ledger service inside its transaction; there is no update or
// delete path by design.
type LogRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// LogListParams filters the ledger listing.
type LogListParams struct {
	ItemID     string
	ActionType string
	UserID     string
	Page       int
	PageSize   int
}

// FindAll lists ledger entries, newest first.
func (r *LogRepository) FindAll(ctx context.Context, p LogListParams) ([]entity.InventoryLogEntry, int64, error) {
	var entries []entity.InventoryLogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryLogEntry{})

	if p.ItemID != "" {
		query = query.Where("item_id = ?", p.ItemID)
	}
	if p.ActionType != "" {
		query = query.Where("action_type = ?", p.ActionType)
	}
	if p.UserID != "" {
		query = query.Where("user_id = ?", p.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.PageSize
	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(p.PageSize).
		Find(&entries).Error

	return entries, total, err
}

// FindByItemAsc returns every entry for one item in commit order, oldest
// first. Used for replay/reconciliation and export.
func (r *LogRepository) FindByItemAsc(ctx context.Context, itemID string) ([]entity.InventoryLogEntry, error) {
	var entries []entity.InventoryLogEntry
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// SumDeltas totals the signed deltas committed for one item.
func (r *LogRepository) SumDeltas(ctx context.Context, itemID string) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&entity.InventoryLogEntry{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("item_id = ?", itemID).
		Scan(&sum).Error
	return sum, err
}
