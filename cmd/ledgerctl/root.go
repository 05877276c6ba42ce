package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ceemowww/comtrack2/internal/bootstrap"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// cliState is filled by the root command before any subcommand runs
type cliState struct {
	cfg    *config.Config
	log    *zap.Logger
	tenant string
	output string
}

var state cliState

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the commission ledger from the command line",
	Long: `ledgerctl reads and maintains the commission ledger directly against
its database. It uses the same configuration as the API server: config.toml,
.env and COMTRACK_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = cfg.Log.Level
		}
		state.cfg = cfg
		state.log = logger.New(config.LogConfig{Level: level, Format: "console", Output: "stderr"})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state.log != nil {
			_ = state.log.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&state.tenant, "tenant", os.Getenv("COMTRACK_TENANT"), "Tenant (company) ID to act for")
	rootCmd.PersistentFlags().StringVarP(&state.output, "output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}

// tenantID parses the --tenant flag
func tenantID() (uuid.UUID, error) {
	if state.tenant == "" {
		return uuid.Nil, fmt.Errorf("--tenant is required")
	}
	id, err := uuid.Parse(state.tenant)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant %q: %w", state.tenant, err)
	}
	return id, nil
}

// parseOptionalID parses a UUID flag value, returning nil when it is empty
func parseOptionalID(flag, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", flag, raw, err)
	}
	return &id, nil
}

// requiredID reads a UUID flag that must be set
func requiredID(cmd *cobra.Command, flag string) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(flag)
	id, err := parseOptionalID(flag, raw)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("--%s is required", flag)
	}
	return *id, nil
}

// withLedger opens the ledger for one command and closes it afterwards
func withLedger(ctx context.Context, fn func(ctx context.Context, l *bootstrap.Ledger) error) error {
	l, err := bootstrap.NewLedger(ctx, state.cfg, state.log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(ctx); err != nil {
			state.log.Warn("Failed to close ledger", zap.Error(err))
		}
	}()
	return fn(ctx, l)
}
