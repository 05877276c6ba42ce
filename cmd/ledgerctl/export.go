package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ceemowww/comtrack2/internal/bootstrap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the outstanding commission workbook",
	Long: `Renders outstanding commission as an XLSX workbook with a sheet per
supplier and a sheet of open sales order items. --upload also stores the
workbook in the report archive (S3 when storage.bucket is set, otherwise
storage.local_dir).`,
	Example: `  ledgerctl export --tenant 6f1c... --out outstanding.xlsx
  ledgerctl export --tenant 6f1c... --supplier 9a2e... --upload`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("supplier", "", "Limit to one supplier ID")
	exportCmd.Flags().String("out", "", "File to write (default: the workbook's own file name)")
	exportCmd.Flags().Bool("upload", false, "Also store the workbook in the report archive")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetString("supplier")
	supplierID, err := parseOptionalID("supplier", raw)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	upload, _ := cmd.Flags().GetBool("upload")

	return withLedger(cmd.Context(), func(ctx context.Context, l *bootstrap.Ledger) error {
		export, err := l.Exports.OutstandingWorkbook(ctx, tenant, supplierID)
		if err != nil {
			return err
		}

		if out == "" {
			out = export.Filename
		}
		if err := os.WriteFile(filepath.Clean(out), export.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		state.log.Info("Workbook written", zap.String("path", out), zap.Int("bytes", len(export.Body)))
		fmt.Fprintln(cmd.OutOrStdout(), out)

		if upload {
			location, err := l.Exports.Archive(ctx, tenant, export)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
		}
		return nil
	})
}
