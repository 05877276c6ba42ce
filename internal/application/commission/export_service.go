package commission

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXContentType is the MIME type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names of the outstanding workbook
const (
	SheetBySupplier = "By supplier"
	SheetOpenItems  = "Open items"
)

// ReportArchive keeps exported reports. Put returns where the object was stored.
type ReportArchive interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Export is a rendered report ready to be streamed or archived
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the outstanding reports as XLSX workbooks
type ExportService struct {
	reports commission.ReportRepository
	archive ReportArchive
	now     func() time.Time
}

// NewExportService creates a new ExportService. archive may be nil when
// exports are only streamed.
func NewExportService(reports commission.ReportRepository, archive ReportArchive) *ExportService {
	return &ExportService{
		reports: reports,
		archive: archive,
		now:     time.Now,
	}
}

// OutstandingWorkbook renders outstanding commission per supplier plus the
// open items behind it. supplierID narrows both sheets to one supplier.
func (s *ExportService) OutstandingWorkbook(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) (*Export, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "outstanding_workbook",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer span.End()

	rows, err := s.reports.LiabilityRows(ctx, tenantID, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	body, err := renderOutstandingWorkbook(rows)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	name := "commission-outstanding"
	if supplierID != nil {
		name += "-" + supplierID.String()
	}
	return &Export{
		Filename:    fmt.Sprintf("%s-%s.xlsx", name, s.now().UTC().Format("20060102-150405")),
		ContentType: XLSXContentType,
		Body:        body,
	}, nil
}

// renderOutstandingWorkbook builds the two-sheet workbook from liability rows
func renderOutstandingWorkbook(rows []commission.LiabilityRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSupplierSheet(f, commission.SummarizeBySupplier(rows)); err != nil {
		return nil, fmt.Errorf("render supplier sheet: %w", err)
	}
	if err := writeOpenItemsSheet(f, rows); err != nil {
		return nil, fmt.Errorf("render open items sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetBySupplier); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Archive stores export under the tenant's prefix and returns its location
func (s *ExportService) Archive(ctx context.Context, tenantID uuid.UUID, export *Export) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "archive",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer span.End()

	if s.archive == nil {
		return "", fmt.Errorf("no report archive configured")
	}
	key := path.Join(tenantID.String(), export.Filename)
	location, err := s.archive.Put(ctx, key, export.ContentType, export.Body)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	logger.L(ctx).Info("report archived",
		zap.String("location", location),
		zap.Int("bytes", len(export.Body)))
	return location, nil
}

func writeSupplierSheet(f *excelize.File, suppliers []commission.SupplierOutstanding) error {
	if _, err := f.NewSheet(SheetBySupplier); err != nil {
		return err
	}
	header := []any{"Supplier", "Orders", "Total commission", "Total paid", "Outstanding"}
	if err := f.SetSheetRow(SheetBySupplier, "A1", &header); err != nil {
		return err
	}
	for i, so := range suppliers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			so.SupplierName,
			so.OrderCount,
			so.TotalCommission.InexactFloat64(),
			so.TotalPaid.InexactFloat64(),
			so.OutstandingAmount.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetBySupplier, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeOpenItemsSheet(f *excelize.File, rows []commission.LiabilityRow) error {
	if _, err := f.NewSheet(SheetOpenItems); err != nil {
		return err
	}
	header := []any{"Supplier", "PO number", "Order date", "Customer", "SKU", "Part", "Quantity",
		"Unit price", "Commission %", "Commission", "Paid", "Outstanding"}
	if err := f.SetSheetRow(SheetOpenItems, "A1", &header); err != nil {
		return err
	}

	supplierOf := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		supplierOf[r.SalesOrderItemID] = r.SupplierName
	}
	for i, it := range commission.OutstandingItems(rows) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			supplierOf[it.SalesOrderItemID],
			it.OrderNumber,
			it.OrderDate.Format("2006-01-02"),
			it.CustomerName,
			it.SKU,
			it.PartName,
			it.Quantity,
			it.UnitPrice.InexactFloat64(),
			it.CommissionPercentage.InexactFloat64(),
			it.CommissionAmount.InexactFloat64(),
			it.PaidAmount.InexactFloat64(),
			it.OutstandingAmount.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetOpenItems, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
