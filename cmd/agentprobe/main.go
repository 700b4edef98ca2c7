// Package main is the entry point for agentprobe, a smoke-test harness for
// the Agent Mode HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentmode/agentprobe/internal/common/logger"
	"github.com/agentmode/agentprobe/internal/probe"
	"github.com/agentmode/agentprobe/internal/tracing"
)

func main() {
	var exitCode int

	if err := newRootCmd(&exitCode).Execute(); err != nil {
		// Driver errors: bad flags, invalid endpoint. Probes never ran.
		fmt.Fprintf(os.Stderr, "agentprobe: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCmd(exitCode *int) *cobra.Command {
	var (
		host      string
		port      int
		timeoutMS int
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "agentprobe",
		Short: "Smoke-test harness for the Agent Mode HTTP service",
		Long: `agentprobe runs a fixed sequence of liveness probes against a local
Agent Mode service: adapter health, session listing, and unknown-session
rejection. Every probe runs regardless of earlier failures; the exit code
is non-zero when any probe fails.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := probe.Config{
				Host:    host,
				Port:    port,
				Timeout: time.Duration(timeoutMS) * time.Millisecond,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := "error"
			if verbose {
				level = "debug"
			}
			// Diagnostics go to stderr; stdout carries only the report.
			log, err := logger.NewLogger(logger.LoggingConfig{
				Level:      level,
				Format:     "console",
				OutputPath: "stderr",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()
			defer func() { _ = tracing.Shutdown(context.Background()) }()

			log.Debug("starting probe run",
				zap.String("target", cfg.BaseURL()),
				zap.Duration("timeout", cfg.Timeout),
			)

			client := probe.NewClient(cfg, log)
			runner := probe.NewRunner(client, cmd.OutOrStdout(), log)
			if runner.Run(cmd.Context()).Failed() {
				*exitCode = 1
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", probe.DefaultHost, "Agent Mode host to probe")
	cmd.Flags().IntVar(&port, "port", probe.DefaultPort, "Agent Mode port to probe")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 0, "per-request timeout in milliseconds (0 disables)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "debug diagnostics on stderr")

	return cmd
}
