// Package cli implements the nanobridge command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootCmd creates the root nanobridge command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nanobridge",
		Short: "Session-relay bridge for browser-grade AI capabilities",
		Long: `nanobridge connects HTTP callers to an AI capability executor over a
single persistent WebSocket, correlating request/response pairs and managing
multi-turn session lifetime.

Available subcommands:
  serve     Run the bridge server
  executor  Run a headless capability executor
  call      Invoke a capability on a running bridge
  version   Print the version

Examples:
  nanobridge serve --config config.yaml
  nanobridge executor --config config.yaml
  nanobridge call translate --text "Hello" --target-language es`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewExecutorCmd())
	cmd.AddCommand(NewCallCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command with signal-driven cancellation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds a production logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
