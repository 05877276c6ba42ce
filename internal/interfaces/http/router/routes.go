package router

import (
	"github.com/ceemowww/comtrack2/internal/interfaces/http/handler"
)

// CommissionRoutes builds the /commission group
func CommissionRoutes(h *handler.CommissionHandler, exports *handler.ExportHandler) *DomainGroup {
	g := NewDomainGroup("commission", "/commission")

	g.GET("/payments", h.ListPayments)
	g.POST("/payments", h.RecordPayment)
	g.GET("/payments/:id", h.GetPayment)
	g.DELETE("/payments/:id", h.DeletePayment)
	g.PUT("/payments/:id/items", h.ReplacePaymentItems)
	g.POST("/payments/:id/items", h.AddPaymentItem)
	g.PUT("/payments/:id/items/:itemId", h.UpdatePaymentItem)
	g.DELETE("/payments/:id/items/:itemId", h.DeletePaymentItem)
	g.GET("/payments/:id/allocations", h.GetPaymentAllocations)

	g.POST("/allocations", h.Allocate)
	g.POST("/payment-items/:id/auto-allocate", h.AutoAllocate)
	g.GET("/payment-items/:id/allocations", h.GetPaymentItemAllocations)

	g.GET("/outstanding", h.GetOutstandingBySupplier)
	g.GET("/outstanding/export", exports.OutstandingWorkbook)
	g.GET("/suppliers/:id/outstanding", h.GetOutstandingForSupplier)
	g.GET("/suppliers/:id/summary", h.GetSupplierSummary)
	g.GET("/suppliers/:id/payments", h.ListSupplierPayments)
	return g
}

// SalesOrderRoutes builds the /sales-orders group
func SalesOrderRoutes(h *handler.SalesOrderHandler) *DomainGroup {
	g := NewDomainGroup("sales-orders", "/sales-orders")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Replace)
	g.DELETE("/:id", h.Delete)
	return g
}
