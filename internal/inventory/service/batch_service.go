package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/expiry"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BatchService manages received lots and their append-only history.
type BatchService struct {
	db          *gorm.DB
	repos       *repository.Repositories
	minioClient *minio.Client
	bucket      string
	horizonDays int
	logger      *zap.Logger
	timeout     time.Duration
}

func NewBatchService(db *gorm.DB, repos *repository.Repositories, mc *minio.Client, cfg *config.Config, logger *zap.Logger) *BatchService {
	horizon := cfg.Inventory.ExpiryHorizonDays
	if horizon <= 0 {
		horizon = expiry.DefaultHorizonDays
	}
	timeout := cfg.Inventory.OperationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BatchService{
		db:          db,
		repos:       repos,
		minioClient: mc,
		bucket:      cfg.MinIO.Bucket,
		horizonDays: horizon,
		logger:      logger,
		timeout:     timeout,
	}
}

// BatchView is a batch plus its computed expiry classification. The
// classification never touches storage.
type BatchView struct {
	entity.Batch
	ExpiryStatus string `json:"expiry_status"`
}

func (s *BatchService) view(b entity.Batch, ref time.Time) BatchView {
	return BatchView{
		Batch:        b,
		ExpiryStatus: expiry.Classify(b.ExpiryDate, ref, s.horizonDays),
	}
}

type ReceiveBatchReq struct {
	ItemID            string     `json:"item_id" binding:"required"`
	Quantity          float64    `json:"quantity" binding:"required"`
	ManufacturingDate *time.Time `json:"manufacturing_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	SupplierID        *string    `json:"supplier_id"`
	CostPerUnit       float64    `json:"cost_per_unit"`
	Notes             string     `json:"notes"`
}

// Receive registers a new lot. It records no stock movement; quantity entering
// the ledger is a separate purchase action against the item.
func (s *BatchService) Receive(ctx context.Context, req ReceiveBatchReq, userID string) (*BatchView, error) {
	if req.Quantity <= 0 {
		return nil, validationErr("quantity", "must be greater than zero")
	}
	if req.ManufacturingDate != nil && req.ExpiryDate != nil && req.ExpiryDate.Before(*req.ManufacturingDate) {
		return nil, validationErr("expiry_date", "must not precede the manufacturing date")
	}

	item, err := s.repos.Item.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != entity.ItemStatusActive {
		return nil, validationErr("item_id", "item is inactive")
	}

	if req.SupplierID != nil && *req.SupplierID != "" {
		if _, err := s.repos.Supplier.FindByID(ctx, *req.SupplierID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationErr("supplier_id", "unknown supplier")
			}
			return nil, err
		}
	}

	number, err := s.repos.Batch.GenerateBatchNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate batch number: %w", err)
	}

	now := time.Now()
	batch := &entity.Batch{
		ID:                newID(),
		BatchNumber:       number,
		ItemID:            req.ItemID,
		Quantity:          req.Quantity,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		ReceivedDate:      now,
		Status:            entity.BatchStatusActive,
		SupplierID:        req.SupplierID,
		CostPerUnit:       req.CostPerUnit,
		ReceivedBy:        userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return fmt.Errorf("create batch: %w", err)
		}
		note := &entity.BatchNote{
			ID:         newID(),
			BatchID:    batch.ID,
			Action:     entity.BatchNoteStatusChange,
			ToStatus:   entity.BatchStatusActive,
			Content:    firstNonEmpty(req.Notes, "batch received"),
			OperatorID: userID,
			CreatedAt:  now,
		}
		return tx.Create(note).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch received",
		zap.String("batch_id", batch.ID),
		zap.String("batch_number", number),
		zap.String("item_id", req.ItemID))
	batch.Item = item
	v := s.view(*batch, now)
	return &v, nil
}

func (s *BatchService) Get(ctx context.Context, id string) (*BatchView, error) {
	batch, err := s.repos.Batch.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*batch, time.Now())
	return &v, nil
}

// BatchListParams filters the batch listing. A classification filter becomes
// expiry date windows on the query itself, so pagination and totals cover the
// whole matching set even though the classification is never stored.
type BatchListParams struct {
	repository.BatchListParams
	ExpiryStatus string
}

func (s *BatchService) List(ctx context.Context, p BatchListParams) ([]BatchView, int64, error) {
	now := time.Now()
	rp := p.BatchListParams
	if p.ExpiryStatus != "" {
		switch p.ExpiryStatus {
		case expiry.Expired, expiry.ExpiringSoon, expiry.Valid:
		default:
			return nil, 0, validationErr("expiry_status", fmt.Sprintf("unknown classification %q", p.ExpiryStatus))
		}
		rp.ExpiryStatus = p.ExpiryStatus
		// The same ref classifies the returned views, so the window and the
		// displayed status cannot disagree.
		rp.ExpiryRef = now
		rp.HorizonDays = s.horizonDays
	}
	batches, total, err := s.repos.Batch.FindAll(ctx, rp)
	if err != nil {
		return nil, 0, err
	}
	views := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, s.view(b, now))
	}
	return views, total, nil
}

// SetStatus moves a batch to another status and appends the change to its
// history. Re-applying the current status appends a note without changing
// anything else.
func (s *BatchService) SetStatus(ctx context.Context, id, toStatus, note, userID string) (*BatchView, error) {
	if !entity.ValidBatchStatus(toStatus) {
		return nil, validationErr("status", fmt.Sprintf("unknown status %q", toStatus))
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		batch, err := s.repos.Batch.LockByID(tx, id)
		if err != nil {
			return err
		}

		if batch.Status != toStatus {
			if err := tx.Model(&entity.Batch{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{"status": toStatus, "updated_at": time.Now()}).Error; err != nil {
				return fmt.Errorf("update batch status: %w", err)
			}
		}

		historyNote := &entity.BatchNote{
			ID:         newID(),
			BatchID:    id,
			Action:     entity.BatchNoteStatusChange,
			FromStatus: batch.Status,
			ToStatus:   toStatus,
			Content:    note,
			OperatorID: userID,
			CreatedAt:  time.Now(),
		}
		return tx.Create(historyNote).Error
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrBusy
		}
		return nil, err
	}

	s.logger.Info("batch status set",
		zap.String("batch_id", id),
		zap.String("to", toStatus))
	return s.Get(ctx, id)
}

// UploadAttachment stores a file against a batch and appends an attachment
// note pointing at the stored object.
func (s *BatchService) UploadAttachment(ctx context.Context, id, fileName string, reader io.Reader, size int64, contentType, userID string) (*entity.BatchNote, error) {
	if s.minioClient == nil {
		return nil, errors.New("object storage is not configured")
	}
	batch, err := s.repos.Batch.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("batches/%s/%d%s", batch.ID, time.Now().UnixNano(), filepath.Ext(fileName))
	_, err = s.minioClient.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	note := &entity.BatchNote{
		ID:            newID(),
		BatchID:       batch.ID,
		Action:        entity.BatchNoteAttachment,
		Content:       fileName,
		AttachmentURL: objectName,
		OperatorID:    userID,
		CreatedAt:     time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("record attachment: %w", err)
	}

	s.logger.Info("batch attachment stored",
		zap.String("batch_id", batch.ID),
		zap.String("object", objectName))
	return note, nil
}

// History returns a batch's notes, oldest first.
func (s *BatchService) History(ctx context.Context, id string) ([]entity.BatchNote, error) {
	if _, err := s.repos.Batch.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Batch.ListNotes(ctx, id)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
