package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionHandler handles the payment, allocation and ledger report routes
type CommissionHandler struct {
	BaseHandler
	payments    PaymentService
	allocations AllocationService
	reports     ReportService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(payments PaymentService, allocations AllocationService, reports ReportService) *CommissionHandler {
	return &CommissionHandler{
		payments:    payments,
		allocations: allocations,
		reports:     reports,
	}
}

// RecordPayment handles POST /commission/payments
func (h *CommissionHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req commissionapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// ReplacePaymentItems handles PUT /commission/payments/:id/items
func (h *CommissionHandler) ReplacePaymentItems(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req commissionapp.ReplacePaymentItemsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.ReplacePaymentLineItems(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// AddPaymentItem handles POST /commission/payments/:id/items
func (h *CommissionHandler) AddPaymentItem(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req commissionapp.PaymentItemInput
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.AddPaymentItem(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// UpdatePaymentItem handles PUT /commission/payments/:id/items/:itemId
func (h *CommissionHandler) UpdatePaymentItem(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req commissionapp.PaymentItemInput
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.UpdatePaymentItem(c.Request.Context(), tenantID, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// DeletePaymentItem handles DELETE /commission/payments/:id/items/:itemId
func (h *CommissionHandler) DeletePaymentItem(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	if err := h.payments.DeletePaymentItem(c.Request.Context(), tenantID, id, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPayments handles GET /commission/payments
func (h *CommissionHandler) ListPayments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	page, err := h.payments.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetPayment handles GET /commission/payments/:id
func (h *CommissionHandler) GetPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// DeletePayment handles DELETE /commission/payments/:id
func (h *CommissionHandler) DeletePayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.payments.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Allocate handles POST /commission/allocations
func (h *CommissionHandler) Allocate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req commissionapp.AllocateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	allocation, err := h.allocations.Allocate(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, allocation)
}

// AutoAllocate handles POST /commission/payment-items/:id/auto-allocate.
// An empty body applies the item's whole remaining amount.
func (h *CommissionHandler) AutoAllocate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req commissionapp.AutoAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.allocations.AutoAllocate(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetOutstandingForSupplier handles GET /commission/suppliers/:id/outstanding
func (h *CommissionHandler) GetOutstandingForSupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	items, err := h.reports.GetOutstandingForSupplier(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetOutstandingBySupplier handles GET /commission/outstanding
func (h *CommissionHandler) GetOutstandingBySupplier(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	suppliers, err := h.reports.GetCommissionOutstandingBySupplier(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suppliers)
}

// GetSupplierSummary handles GET /commission/suppliers/:id/summary
func (h *CommissionHandler) GetSupplierSummary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	summary, err := h.reports.GetSupplierCommissionSummary(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListSupplierPayments handles GET /commission/suppliers/:id/payments
func (h *CommissionHandler) ListSupplierPayments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	payments, err := h.reports.ListSupplierPayments(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// GetPaymentAllocations handles GET /commission/payments/:id/allocations
func (h *CommissionHandler) GetPaymentAllocations(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	details, err := h.reports.GetAllocationsForPayment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// GetPaymentItemAllocations handles GET /commission/payment-items/:id/allocations
func (h *CommissionHandler) GetPaymentItemAllocations(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	details, err := h.reports.GetAllocationsForPaymentItem(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// ExportHandler serves report workbooks
type ExportHandler struct {
	BaseHandler
	exports ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exports ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ArchiveLocationHeader reports where an archived copy of an export was stored
const ArchiveLocationHeader = "X-Archive-Location"

// OutstandingWorkbook handles GET /commission/outstanding/export. The
// optional supplier_id query narrows the workbook to one supplier and
// archive=true also stores a copy in the report archive.
func (h *ExportHandler) OutstandingWorkbook(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var supplierID *uuid.UUID
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid supplier_id")
			return
		}
		supplierID = &id
	}
	archive := false
	if raw := c.Query("archive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid archive flag")
			return
		}
		archive = v
	}

	ctx := c.Request.Context()
	export, err := h.exports.OutstandingWorkbook(ctx, tenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if archive {
		location, err := h.exports.Archive(ctx, tenantID, export)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Header(ArchiveLocationHeader, location)
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
