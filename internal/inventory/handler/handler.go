package handler

import (
	"errors"
	"strconv"

	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/croftlabs/farmops/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the inventory HTTP handlers.
type Handlers struct {
	Item      *ItemHandler
	Ledger    *LedgerHandler
	Request   *RequestHandler
	Batch     *BatchHandler
	Supplier  *SupplierHandler
	Dashboard *DashboardHandler
}

func NewHandlers(svcs *service.Services, expiryHorizonDays int) *Handlers {
	return &Handlers{
		Item:      NewItemHandler(svcs.Item, expiryHorizonDays),
		Ledger:    NewLedgerHandler(svcs.Ledger),
		Request:   NewRequestHandler(svcs.Request),
		Batch:     NewBatchHandler(svcs.Batch),
		Supplier:  NewSupplierHandler(svcs.Supplier),
		Dashboard: NewDashboardHandler(svcs.Dashboard),
	}
}

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: int(total), TotalPages: totalPages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func Unavailable(c *gin.Context, message string) {
	Error(c, 50300, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps service errors onto the response envelope.
func HandleError(c *gin.Context, err error) {
	var transitionErr *service.InvalidTransitionError
	var quantityErr *service.InvalidQuantityError
	var validation *service.ValidationError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "record not found")
	case errors.Is(err, service.ErrBusy):
		Unavailable(c, err.Error())
	case errors.As(err, &transitionErr):
		Conflict(c, transitionErr.Error())
	case errors.As(err, &quantityErr):
		Conflict(c, quantityErr.Error())
	case errors.As(err, &validation):
		BadRequest(c, validation.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
