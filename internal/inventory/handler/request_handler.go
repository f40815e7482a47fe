package handler

import (
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// List GET /requests
func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.RequestListParams{
		Status:      c.Query("status"),
		Priority:    c.Query("priority"),
		ItemID:      c.Query("item_id"),
		RequestedBy: c.Query("requested_by"),
		Page:        page,
		PageSize:    pageSize,
	}

	requests, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: requests, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, request)
}

// Create POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	request, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, request)
}

type decisionReq struct {
	Note string `json:"note"`
}

// Approve PUT /requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, err.Error())
		return
	}

	request, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c), req.Note)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, request)
}

// Reject PUT /requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, err.Error())
		return
	}

	request, err := h.svc.Reject(c.Request.Context(), c.Param("id"), GetUserID(c), req.Note)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, request)
}

// Fulfill PUT /requests/:id/fulfill
func (h *RequestHandler) Fulfill(c *gin.Context) {
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, err.Error())
		return
	}

	request, err := h.svc.Fulfill(c.Request.Context(), c.Param("id"), GetUserID(c), req.Note, c.GetHeader("Idempotency-Key"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, request)
}
