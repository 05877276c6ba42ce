package main

import (
	"context"
	"strconv"

	"github.com/ceemowww/comtrack2/internal/bootstrap"
	"github.com/ceemowww/comtrack2/internal/domain/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/strategy"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var outstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "Show commission still owed",
	Long: `Without --supplier, lists every supplier with commission outstanding,
largest balance first. With --supplier, lists that supplier's open sales
order items, newest order first.`,
	Example: `  ledgerctl outstanding --tenant 6f1c...
  ledgerctl outstanding --tenant 6f1c... --supplier 9a2e... -o json`,
	RunE: runOutstanding,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a supplier's generated, paid and allocated commission totals",
	RunE:  runSummary,
}

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "List a supplier's payments with their allocation progress",
	RunE:  runPayments,
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered auto-allocation strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPrinter(cmd.OutOrStdout(), state.output)
		if err != nil {
			return err
		}
		return withLedger(cmd.Context(), func(_ context.Context, l *bootstrap.Ledger) error {
			return printStrategies(p, l.Strategies)
		})
	},
}

type strategyInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

func printStrategies(p *printer, reg *strategy.StrategyRegistry) error {
	var infos []strategyInfo
	for _, name := range reg.ListAllocationStrategies() {
		s, err := reg.GetAllocationStrategy(name)
		if err != nil {
			return err
		}
		infos = append(infos, strategyInfo{
			Name:        s.Name(),
			Type:        string(s.Type()),
			Description: s.Description(),
			Default:     name == reg.DefaultAllocation(),
		})
	}

	return p.print(infos, []string{"NAME", "TYPE", "DEFAULT", "DESCRIPTION"}, func() [][]string {
		rows := make([][]string, len(infos))
		for i, s := range infos {
			def := ""
			if s.Default {
				def = "*"
			}
			rows[i] = []string{s.Name, s.Type, def, s.Description}
		}
		return rows
	})
}

func init() {
	outstandingCmd.Flags().String("supplier", "", "Limit to one supplier ID")
	summaryCmd.Flags().String("supplier", "", "Supplier ID")
	_ = summaryCmd.MarkFlagRequired("supplier")
	paymentsCmd.Flags().String("supplier", "", "Supplier ID")
	_ = paymentsCmd.MarkFlagRequired("supplier")

	rootCmd.AddCommand(outstandingCmd, summaryCmd, paymentsCmd, strategiesCmd)
}

func runOutstanding(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("supplier")
	supplierID, err := parseOptionalID("supplier", raw)
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd.OutOrStdout(), state.output)
	if err != nil {
		return err
	}

	return withLedger(cmd.Context(), func(ctx context.Context, l *bootstrap.Ledger) error {
		if supplierID == nil {
			suppliers, err := l.Reports.GetCommissionOutstandingBySupplier(ctx, tenant)
			if err != nil {
				return err
			}
			return p.print(suppliers,
				[]string{"SUPPLIER", "NAME", "COMMISSION", "PAID", "OUTSTANDING", "ORDERS"},
				func() [][]string {
					rows := make([][]string, len(suppliers))
					for i, s := range suppliers {
						rows[i] = []string{
							s.SupplierID.String(), s.SupplierName,
							s.TotalCommission.StringFixed(2), s.TotalPaid.StringFixed(2),
							s.OutstandingAmount.StringFixed(2), strconv.Itoa(s.OrderCount),
						}
					}
					return rows
				})
		}

		items, err := l.Reports.GetOutstandingForSupplier(ctx, tenant, *supplierID)
		if err != nil {
			return err
		}
		return p.print(items,
			[]string{"ORDER", "DATE", "CUSTOMER", "PART", "COMMISSION", "PAID", "OUTSTANDING", "ITEM"},
			func() [][]string { return outstandingRows(items) })
	})
}

func outstandingRows(items []commission.OutstandingItem) [][]string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			it.OrderNumber, it.OrderDate.Format(dateLayout), it.CustomerName, it.PartName,
			it.CommissionAmount.StringFixed(2), it.PaidAmount.StringFixed(2),
			it.OutstandingAmount.StringFixed(2), it.SalesOrderItemID.String(),
		}
	}
	return rows
}

func runSummary(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	supplierID, err := requiredID(cmd, "supplier")
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd.OutOrStdout(), state.output)
	if err != nil {
		return err
	}

	return withLedger(cmd.Context(), func(ctx context.Context, l *bootstrap.Ledger) error {
		s, err := l.Reports.GetSupplierCommissionSummary(ctx, tenant, supplierID)
		if err != nil {
			return err
		}
		return p.print(s, []string{"FIGURE", "AMOUNT"}, func() [][]string {
			return [][]string{
				{"generated", s.TotalGenerated.StringFixed(2)},
				{"paid", s.TotalPaid.StringFixed(2)},
				{"allocated", s.TotalAllocated.StringFixed(2)},
				{"outstanding", s.Outstanding.StringFixed(2)},
				{"unallocated payments", s.UnallocatedPayments.StringFixed(2)},
			}
		})
	})
}

func runPayments(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	supplierID, err := requiredID(cmd, "supplier")
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd.OutOrStdout(), state.output)
	if err != nil {
		return err
	}

	return withLedger(cmd.Context(), func(ctx context.Context, l *bootstrap.Ledger) error {
		payments, err := l.Reports.ListSupplierPayments(ctx, tenant, supplierID)
		if err != nil {
			return err
		}
		return p.print(payments,
			[]string{"PAYMENT", "DATE", "TOTAL", "ALLOCATED", "UNALLOCATED", "STATUS"},
			func() [][]string {
				rows := make([][]string, len(payments))
				for i, pay := range payments {
					rows[i] = []string{
						pay.PaymentID.String(), pay.PaymentDate.Format(dateLayout),
						pay.TotalAmount.StringFixed(2), pay.AllocatedAmount.StringFixed(2),
						pay.UnallocatedAmount.StringFixed(2), string(pay.Status),
					}
				}
				return rows
			})
	})
}
