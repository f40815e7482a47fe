package service

import (
	"strings"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles the inventory services for wiring into handlers.
type Services struct {
	Ledger    *LedgerService
	Item      *ItemService
	Request   *RequestService
	Batch     *BatchService
	Supplier  *SupplierService
	Dashboard *DashboardService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, mc *minio.Client, cfg *config.Config, logger *zap.Logger) *Services {
	ledger := NewLedgerService(db, repos, cfg, logger)
	return &Services{
		Ledger:    ledger,
		Item:      NewItemService(db, repos, ledger, logger),
		Request:   NewRequestService(db, repos, ledger, rdb, cfg, logger),
		Batch:     NewBatchService(db, repos, mc, cfg, logger),
		Supplier:  NewSupplierService(repos, logger),
		Dashboard: NewDashboardService(repos, rdb, cfg, logger),
	}
}

// newID returns a 32-char hex identifier.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// exportPageSize bounds one repository read during an xlsx export. Exports
// keep paging until the repository is exhausted.
var exportPageSize = 10000
