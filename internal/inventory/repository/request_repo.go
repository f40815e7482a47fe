package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository persists stock requests.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// RequestListParams filters the request listing.
type RequestListParams struct {
	ItemID      string
	Status      string
	Priority    string
	RequestedBy string
	Page        int
	PageSize    int
}

// FindAll lists stock requests, newest first.
func (r *RequestRepository) FindAll(ctx context.Context, p RequestListParams) ([]entity.StockRequest, int64, error) {
	var requests []entity.StockRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockRequest{})

	if p.ItemID != "" {
		query = query.Where("item_id = ?", p.ItemID)
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	}
	if p.Priority != "" {
		query = query.Where("priority = ?", p.Priority)
	}
	if p.RequestedBy != "" {
		query = query.Where("requested_by = ?", p.RequestedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.PageSize
	err := query.
		Preload("Item").
		Order("requested_date DESC").
		Offset(offset).
		Limit(p.PageSize).
		Find(&requests).Error

	return requests, total, err
}

// FindByID looks up one request with its item.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.StockRequest, error) {
	var req entity.StockRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// LockByID re-reads a request under FOR UPDATE inside tx. Every workflow
// transition goes through this so the status check always sees the committed
// state, not a value cached before the transaction began.
func (r *RequestRepository) LockByID(tx *gorm.DB, id string) (*entity.StockRequest, error) {
	var req entity.StockRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create inserts a request.
func (r *RequestRepository) Create(ctx context.Context, req *entity.StockRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// CountByStatus counts requests in one status.
func (r *RequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.StockRequest{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// GenerateCode produces the next REQ-{year}-{seq} code.
func (r *RequestRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("REQ-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.StockRequest{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "REQ-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("REQ-%s-%04d", year, seq), nil
}
