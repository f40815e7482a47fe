package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestService drives the stock request workflow. Every transition re-reads
// the request under FOR UPDATE inside its transaction, so two admins racing on
// the same request cannot both win.
type RequestService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	ledger  *LedgerService
	rdb     *redis.Client
	logger  *zap.Logger
	timeout time.Duration
}

func NewRequestService(db *gorm.DB, repos *repository.Repositories, ledger *LedgerService, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *RequestService {
	timeout := cfg.Inventory.OperationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RequestService{db: db, repos: repos, ledger: ledger, rdb: rdb, logger: logger, timeout: timeout}
}

type CreateRequestReq struct {
	ItemID            string  `json:"item_id" binding:"required"`
	RequestedQuantity float64 `json:"requested_quantity" binding:"required"`
	Priority          string  `json:"priority"`
	Notes             string  `json:"notes"`
}

// Create opens a pending request for an item.
func (s *RequestService) Create(ctx context.Context, req CreateRequestReq, userID string) (*entity.StockRequest, error) {
	if req.RequestedQuantity <= 0 {
		return nil, validationErr("requested_quantity", "must be greater than zero")
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.RequestPriorityMedium
	}
	if !entity.ValidRequestPriority(priority) {
		return nil, validationErr("priority", fmt.Sprintf("unknown priority %q", priority))
	}

	item, err := s.repos.Item.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != entity.ItemStatusActive {
		return nil, validationErr("item_id", "item is inactive")
	}

	code, err := s.repos.Request.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate request code: %w", err)
	}

	now := time.Now()
	request := &entity.StockRequest{
		ID:                newID(),
		Code:              code,
		ItemID:            req.ItemID,
		RequestedQuantity: req.RequestedQuantity,
		Priority:          priority,
		Status:            entity.RequestStatusPending,
		RequestedBy:       userID,
		RequestedDate:     now,
	}
	if req.Notes != "" {
		request.AdminNotes = noteLine(now, userID, req.Notes)
	}

	if err := s.repos.Request.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("stock request created",
		zap.String("request_id", request.ID),
		zap.String("code", code),
		zap.String("item_id", req.ItemID),
		zap.Float64("quantity", req.RequestedQuantity))
	request.Item = item
	return request, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (*entity.StockRequest, error) {
	return s.repos.Request.FindByID(ctx, id)
}

func (s *RequestService) List(ctx context.Context, p repository.RequestListParams) ([]entity.StockRequest, int64, error) {
	return s.repos.Request.FindAll(ctx, p)
}

// Approve moves a pending request to approved.
func (s *RequestService) Approve(ctx context.Context, id, adminID, note string) (*entity.StockRequest, error) {
	return s.transition(ctx, id, entity.RequestStatusApproved, adminID, note, nil)
}

// Reject closes a pending or approved request.
func (s *RequestService) Reject(ctx context.Context, id, adminID, note string) (*entity.StockRequest, error) {
	return s.transition(ctx, id, entity.RequestStatusRejected, adminID, note, nil)
}

// Fulfill moves an approved request to fulfilled and credits the item's stock
// in the same transaction. A caller-supplied idempotency key makes retries of
// the same fulfillment a no-op that returns the already-fulfilled request.
func (s *RequestService) Fulfill(ctx context.Context, id, adminID, note, idempotencyKey string) (*entity.StockRequest, error) {
	var key string
	if idempotencyKey != "" && s.rdb != nil {
		key = "farmops:fulfill:" + idempotencyKey
		acquired, err := s.rdb.SetNX(ctx, key, id, 24*time.Hour).Result()
		if err != nil {
			// Redis being down degrades to non-idempotent fulfillment; the
			// status check below still blocks double application.
			key = ""
		} else if !acquired {
			// Seen this key before; return current state without reapplying.
			return s.repos.Request.FindByID(ctx, id)
		}
	}

	credit := func(tx *gorm.DB, req *entity.StockRequest) error {
		item, err := s.repos.Item.LockByID(tx, req.ItemID)
		if err != nil {
			return err
		}
		if item.Status != entity.ItemStatusActive {
			return validationErr("item_id", "item is inactive")
		}
		_, err = s.ledger.applyDeltaTx(tx, req.ItemID, entity.ActionRequestFulfillment,
			req.RequestedQuantity, adminID, "fulfillment of "+req.Code)
		return err
	}
	request, err := s.transition(ctx, id, entity.RequestStatusFulfilled, adminID, note, credit)
	if err != nil && key != "" {
		// Nothing committed, so the key must not consume the client's retry.
		// The parent context may already be past its deadline here.
		if delErr := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			s.logger.Warn("failed to release fulfillment idempotency key",
				zap.String("key", key),
				zap.Error(delErr))
		}
	}
	return request, err
}

// transition is the shared locked state change. extra, when set, runs inside
// the same transaction after the status check passes.
func (s *RequestService) transition(ctx context.Context, id, to, adminID, note string, extra func(*gorm.DB, *entity.StockRequest) error) (*entity.StockRequest, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(opCtx).Transaction(func(tx *gorm.DB) error {
		request, err := s.repos.Request.LockByID(tx, id)
		if err != nil {
			return err
		}
		if !entity.RequestTransitionAllowed(request.Status, to) {
			return &InvalidTransitionError{Entity: "stock request", Current: request.Status, Requested: to}
		}

		if extra != nil {
			if err := extra(tx, request); err != nil {
				return err
			}
		}

		now := time.Now()
		fields := map[string]interface{}{"status": to, "updated_at": now}
		switch to {
		case entity.RequestStatusApproved:
			fields["approved_by"] = adminID
			fields["approved_date"] = now
		case entity.RequestStatusFulfilled:
			fields["fulfilled_date"] = now
		}

		line := noteLine(now, adminID, fmt.Sprintf("%s: %s", to, note))
		if note == "" {
			line = noteLine(now, adminID, to)
		}
		if request.AdminNotes != "" {
			fields["admin_notes"] = request.AdminNotes + "\n" + line
		} else {
			fields["admin_notes"] = line
		}

		return tx.Model(&entity.StockRequest{}).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrBusy
		}
		return nil, err
	}

	s.logger.Info("stock request transitioned",
		zap.String("request_id", id),
		zap.String("to", to),
		zap.String("admin_id", adminID))
	return s.repos.Request.FindByID(ctx, id)
}

func noteLine(at time.Time, userID, text string) string {
	return fmt.Sprintf("[%s] %s: %s", at.Format("2006-01-02 15:04"), userID, text)
}
