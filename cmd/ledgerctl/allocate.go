package main

import (
	"context"

	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/bootstrap"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var autoAllocateCmd = &cobra.Command{
	Use:   "auto-allocate",
	Short: "Distribute a payment item's remaining amount over open liabilities",
	Example: `  ledgerctl auto-allocate --tenant 6f1c... --item 41d0...
  ledgerctl auto-allocate --tenant 6f1c... --item 41d0... --strategy largest_first --amount 150.00`,
	RunE: runAutoAllocate,
}

func init() {
	autoAllocateCmd.Flags().String("item", "", "Payment item ID")
	autoAllocateCmd.Flags().String("strategy", "", "Strategy name (default: commission.default_strategy)")
	autoAllocateCmd.Flags().String("amount", "", "Cap on the amount distributed (default: the whole remainder)")
	autoAllocateCmd.Flags().String("notes", "", "Notes stored on every allocation")
	_ = autoAllocateCmd.MarkFlagRequired("item")
	rootCmd.AddCommand(autoAllocateCmd)
}

func runAutoAllocate(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	itemID, err := requiredID(cmd, "item")
	if err != nil {
		return err
	}

	req := commissionapp.AutoAllocateRequest{}
	req.Strategy, _ = cmd.Flags().GetString("strategy")
	req.Notes, _ = cmd.Flags().GetString("notes")
	if raw, _ := cmd.Flags().GetString("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return err
		}
		req.Amount = &amount
	}
	p, err := newPrinter(cmd.OutOrStdout(), state.output)
	if err != nil {
		return err
	}

	return withLedger(cmd.Context(), func(ctx context.Context, l *bootstrap.Ledger) error {
		result, err := l.Allocations.AutoAllocate(ctx, tenant, itemID, req)
		if err != nil {
			return err
		}
		return p.print(result,
			[]string{"ALLOCATION", "SALES ORDER ITEM", "AMOUNT"},
			func() [][]string {
				rows := make([][]string, 0, len(result.Allocations)+1)
				for _, a := range result.Allocations {
					rows = append(rows, []string{a.ID.String(), a.SalesOrderItemID.String(), a.Amount.StringFixed(2)})
				}
				rows = append(rows, []string{"total (" + result.Strategy + ")", "", result.TotalAllocated.StringFixed(2)})
				return rows
			})
	})
}
