package handler

import (
	"time"

	"github.com/croftlabs/farmops/internal/inventory/expiry"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	svc *service.BatchService
}

func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// List GET /batches
func (h *BatchHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := service.BatchListParams{
		BatchListParams: repository.BatchListParams{
			ItemID:     c.Query("item_id"),
			SupplierID: c.Query("supplier_id"),
			Status:     c.Query("status"),
			Page:       page,
			PageSize:   pageSize,
		},
		ExpiryStatus: c.Query("expiry_status"),
	}
	if before := c.Query("expiring_before"); before != "" {
		if t, err := time.Parse("2006-01-02", before); err == nil {
			params.ExpiringBefore = &t
		} else {
			BadRequest(c, "expiring_before must be YYYY-MM-DD")
			return
		}
	}

	batches, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: batches, Pagination: NewPagination(page, pageSize, total)})
}

// Expiring GET /batches/expiring
// Alert list of batches classified expiring_soon or expired.
func (h *BatchHandler) Expiring(c *gin.Context) {
	page, pageSize := GetPagination(c)
	status := c.DefaultQuery("expiry_status", expiry.ExpiringSoon)
	if status != expiry.ExpiringSoon && status != expiry.Expired {
		BadRequest(c, "expiry_status must be expiring_soon or expired")
		return
	}
	params := service.BatchListParams{
		BatchListParams: repository.BatchListParams{
			ItemID:   c.Query("item_id"),
			Page:     page,
			PageSize: pageSize,
		},
		ExpiryStatus: status,
	}

	batches, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: batches, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, batch)
}

// Receive POST /batches
func (h *BatchHandler) Receive(c *gin.Context) {
	var req service.ReceiveBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	batch, err := h.svc.Receive(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, batch)
}

// SetStatus PUT /batches/:id/status
func (h *BatchHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	batch, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, batch)
}

// History GET /batches/:id/history
func (h *BatchHandler) History(c *gin.Context) {
	notes, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, notes)
}

// UploadAttachment POST /batches/:id/attachments
func (h *BatchHandler) UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "file field is required")
		return
	}
	defer file.Close()

	note, err := h.svc.UploadAttachment(
		c.Request.Context(),
		c.Param("id"),
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
		GetUserID(c),
	)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, note)
}
