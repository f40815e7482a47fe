package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/expiry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchRepository persists batches and their append-only note history.
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// BatchListParams filters the batch listing.
type BatchListParams struct {
	ItemID     string
	SupplierID string
	Status     string
	// ExpiringBefore keeps only batches with an expiry date on or before the
	// given instant.
	ExpiringBefore *time.Time
	// ExpiryStatus narrows by classification. It is translated into date
	// range predicates so pagination and totals cover the whole matching
	// set. ExpiryRef and HorizonDays must match the classification the
	// caller computes for display.
	ExpiryStatus string
	ExpiryRef    time.Time
	HorizonDays  int
	Page         int
	PageSize     int
}

// FindAll lists batches, most recently received first.
func (r *BatchRepository) FindAll(ctx context.Context, p BatchListParams) ([]entity.Batch, int64, error) {
	var batches []entity.Batch
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Batch{})

	if p.ItemID != "" {
		query = query.Where("item_id = ?", p.ItemID)
	}
	if p.SupplierID != "" {
		query = query.Where("supplier_id = ?", p.SupplierID)
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	}
	if p.ExpiringBefore != nil {
		query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", *p.ExpiringBefore)
	}
	if p.ExpiryStatus != "" {
		// Date windows matching expiry.Classify.
		horizonEnd := p.ExpiryRef.AddDate(0, 0, p.HorizonDays)
		switch p.ExpiryStatus {
		case expiry.Expired:
			query = query.Where("expiry_date IS NOT NULL AND expiry_date < ?", p.ExpiryRef)
		case expiry.ExpiringSoon:
			query = query.Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", p.ExpiryRef, horizonEnd)
		case expiry.Valid:
			query = query.Where("expiry_date IS NULL OR expiry_date > ?", horizonEnd)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.PageSize
	err := query.
		Preload("Item").
		Preload("Supplier").
		Order("received_date DESC").
		Offset(offset).
		Limit(p.PageSize).
		Find(&batches).Error

	return batches, total, err
}

// FindByID looks up one batch with item, supplier and note history.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	var batch entity.Batch
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Supplier").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// LockByID re-reads a batch under FOR UPDATE inside tx.
func (r *BatchRepository) LockByID(tx *gorm.DB, id string) (*entity.Batch, error) {
	var batch entity.Batch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// Create inserts a batch.
func (r *BatchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// CountExpiringBetween counts batches whose expiry date falls in [from, to),
// excluding terminal statuses that no longer hold stock.
func (r *BatchRepository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Batch{}).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date < ?", from, to).
		Where("status IN ?", []string{entity.BatchStatusActive, entity.BatchStatusQuarantine}).
		Count(&n).Error
	return n, err
}

// CountExpiredBefore counts non-terminal batches already past expiry.
func (r *BatchRepository) CountExpiredBefore(ctx context.Context, ref time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Batch{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", ref).
		Where("status IN ?", []string{entity.BatchStatusActive, entity.BatchStatusQuarantine}).
		Count(&n).Error
	return n, err
}

// GenerateBatchNumber produces the next BCH-{year}-{seq} number.
func (r *BatchRepository) GenerateBatchNumber(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("BCH-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Batch{}).
		Select("COALESCE(MAX(batch_number), '')").
		Where("batch_number LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "BCH-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("BCH-%s-%04d", year, seq), nil
}

// ListNotes returns a batch's history, oldest first.
func (r *BatchRepository) ListNotes(ctx context.Context, batchID string) ([]entity.BatchNote, error) {
	var notes []entity.BatchNote
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}
