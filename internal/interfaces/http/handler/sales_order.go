package handler

import (
	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/gin-gonic/gin"
)

// SalesOrderHandler handles the sales order routes
type SalesOrderHandler struct {
	BaseHandler
	orders SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orders SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orders: orders}
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req commissionapp.CreateSalesOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Replace handles PUT /sales-orders/:id
func (h *SalesOrderHandler) Replace(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req commissionapp.ReplaceSalesOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Replace(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Get handles GET /sales-orders/:id
func (h *SalesOrderHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /sales-orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	page, err := h.orders.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Delete handles DELETE /sales-orders/:id
func (h *SalesOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
