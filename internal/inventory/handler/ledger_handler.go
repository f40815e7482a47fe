package handler

import (
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	svc *service.LedgerService
}

func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// ApplyDelta POST /ledger/movements
func (h *LedgerHandler) ApplyDelta(c *gin.Context) {
	var req service.ApplyDeltaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	entry, err := h.svc.ApplyDelta(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, entry)
}

// List GET /ledger/movements
func (h *LedgerHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.LogListParams{
		ItemID:     c.Query("item_id"),
		ActionType: c.Query("action_type"),
		UserID:     c.Query("user_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	entries, total, err := h.svc.ListEntries(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: entries, Pagination: NewPagination(page, pageSize, total)})
}

// Reconcile GET /ledger/reconcile/:itemId
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	result, err := h.svc.Reconcile(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// Export GET /ledger/export
func (h *LedgerHandler) Export(c *gin.Context) {
	params := repository.LogListParams{
		ItemID:     c.Query("item_id"),
		ActionType: c.Query("action_type"),
		UserID:     c.Query("user_id"),
	}

	f, err := h.svc.ExportLedger(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("inventory_ledger_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
