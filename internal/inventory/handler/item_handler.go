package handler

import (
	"fmt"
	"time"

	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	svc         *service.ItemService
	horizonDays int
}

func NewItemHandler(svc *service.ItemService, horizonDays int) *ItemHandler {
	return &ItemHandler{svc: svc, horizonDays: horizonDays}
}

// List GET /items
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ItemListParams{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
		Page:     page,
		PageSize: pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Create POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req service.CreateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// Update PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	var req service.UpdateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// SetStatus PUT /items/:id/status
func (h *ItemHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Export GET /items/export
func (h *ItemHandler) Export(c *gin.Context) {
	params := repository.ItemListParams{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
	}

	f, err := h.svc.Export(c.Request.Context(), params, h.horizonDays)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("inventory_items_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
