package service

import (
	"context"
	"fmt"

	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"go.uber.org/zap"
)

type SupplierService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewSupplierService(repos *repository.Repositories, logger *zap.Logger) *SupplierService {
	return &SupplierService{repos: repos, logger: logger}
}

type CreateSupplierReq struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

func (s *SupplierService) Create(ctx context.Context, req CreateSupplierReq) (*entity.Supplier, error) {
	code, err := s.repos.Supplier.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate supplier code: %w", err)
	}

	supplier := &entity.Supplier{
		ID:          newID(),
		Code:        code,
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		Status:      entity.SupplierStatusActive,
	}
	if err := s.repos.Supplier.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}

	s.logger.Info("supplier created",
		zap.String("supplier_id", supplier.ID),
		zap.String("code", code))
	return supplier, nil
}

func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.repos.Supplier.FindByID(ctx, id)
}

func (s *SupplierService) List(ctx context.Context, p repository.SupplierListParams) ([]entity.Supplier, int64, error) {
	return s.repos.Supplier.FindAll(ctx, p)
}

type UpdateSupplierReq struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Status      *string `json:"status"`
}

func (s *SupplierService) Update(ctx context.Context, id string, req UpdateSupplierReq) (*entity.Supplier, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ContactName != nil {
		fields["contact_name"] = *req.ContactName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Status != nil {
		if *req.Status != entity.SupplierStatusActive && *req.Status != entity.SupplierStatusInactive {
			return nil, validationErr("status", fmt.Sprintf("unknown status %q", *req.Status))
		}
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.repos.Supplier.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repos.Supplier.FindByID(ctx, id)
}
