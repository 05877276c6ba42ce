// Package bootstrap wires the ledger services from configuration. The API
// server and the ledgerctl CLI share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/event"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/persistence"
	"github.com/ceemowww/comtrack2/internal/infrastructure/storage"
	"github.com/ceemowww/comtrack2/internal/infrastructure/strategy"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Ledger holds the database handle, the event bus and every commission service
type Ledger struct {
	DB         *persistence.Database
	Bus        *event.InMemoryEventBus
	Strategies *strategy.StrategyRegistry
	Archive    commissionapp.ReportArchive

	SalesOrders *commissionapp.SalesOrderService
	Payments    *commissionapp.PaymentService
	Allocations *commissionapp.AllocationService
	Reports     *commissionapp.ReportService
	Exports     *commissionapp.ExportService
}

// NewLedger connects to the database and builds the services. A nil meter
// records nothing.
func NewLedger(ctx context.Context, cfg *config.Config, log *zap.Logger, meter metric.Meter) (*Ledger, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("comtrack")
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry); err != nil {
		_ = db.Close()
		return nil, err
	}

	l, err := newLedger(ctx, cfg, log, meter, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func newLedger(ctx context.Context, cfg *config.Config, log *zap.Logger, meter metric.Meter, db *persistence.Database) (*Ledger, error) {
	metrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("ledger metrics: %w", err)
	}

	strategies, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		return nil, fmt.Errorf("allocation strategies: %w", err)
	}
	if cfg.Commission.DefaultStrategy != "" {
		if err := strategies.SetDefaultAllocation(cfg.Commission.DefaultStrategy); err != nil {
			return nil, fmt.Errorf("commission.default_strategy: %w", err)
		}
	}

	archive, err := storage.NewReportArchive(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(commissionapp.NewMetricsHandler(metrics))
	bus.Subscribe(commissionapp.NewAuditLogHandler(log))

	opts := []commissionapp.Option{
		commissionapp.WithCommissionConfig(cfg.Commission),
		commissionapp.WithEventPublisher(bus),
		commissionapp.WithLedgerMetrics(metrics),
		commissionapp.WithStrategies(strategies),
	}

	directory := persistence.NewGormDirectory(db.DB)
	orders := persistence.NewGormSalesOrderRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	ledger := persistence.NewGormLedgerRepository(db.DB)
	reports := persistence.NewGormReportRepository(db.DB)

	return &Ledger{
		DB:          db,
		Bus:         bus,
		Strategies:  strategies,
		Archive:     archive,
		SalesOrders: commissionapp.NewSalesOrderService(orders, directory, opts...),
		Payments:    commissionapp.NewPaymentService(payments, directory, opts...),
		Allocations: commissionapp.NewAllocationService(ledger, opts...),
		Reports:     commissionapp.NewReportService(reports, payments, directory),
		Exports:     commissionapp.NewExportService(reports, archive),
	}, nil
}

// Close stops the event bus and closes the database
func (l *Ledger) Close(ctx context.Context) error {
	return errors.Join(l.Bus.Stop(ctx), l.DB.Close())
}
