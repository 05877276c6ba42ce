package main

import (
	"fmt"
	"time"

	"github.com/ceemowww/comtrack2/internal/infrastructure/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the API",
	Long: `Signs an HS256 token carrying the tenant_id claim with jwt.secret. Use it
for service accounts and local testing when jwt.enabled is on.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("subject", "ledgerctl", "Token subject")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	tenant, err := tenantID()
	if err != nil {
		return err
	}
	if state.cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not configured")
	}
	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := auth.NewJWTService(state.cfg.JWT).IssueToken(tenant, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
