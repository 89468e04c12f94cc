package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	csvAdapter "github.com/iho/txledger/internal/adapter/csv"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/config"
	"github.com/iho/txledger/internal/infrastructure/idgen"
	"github.com/iho/txledger/internal/infrastructure/logger"
	"github.com/iho/txledger/internal/infrastructure/metrics"
	"github.com/iho/txledger/internal/usecase"
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		logLevel    string
		logFormat   string
		metricsFile string
	)

	rootCmd := &cobra.Command{
		Use:   "txledger <transactions.csv>",
		Short: "Replay a transaction log into client account balances",
		Long: `Reads deposits, withdrawals, disputes, resolves and chargebacks from a CSV file
and writes the final client account balances to stdout as CSV.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("metrics-file") {
				cfg.MetricsFile = metricsFile
			}

			a.cfg = cfg
			a.logger = logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.logError(a.replay(cmd.Context(), args[0], cmd.OutOrStdout()))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics to this file after the replay")

	rootCmd.AddCommand(a.validateCmd())

	return rootCmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <transactions.csv>",
		Short: "Check that a transaction log parses without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.logError(a.validate(args[0], cmd.OutOrStdout()))
		},
	}
}

func (a *app) replay(ctx context.Context, path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	source, err := csvAdapter.NewReader(file)
	if err != nil {
		return err
	}

	m := metrics.New()
	uc := usecase.NewReplayUseCase(idgen.NewULIDGenerator(), m, a.logger.With().Str("input", path).Logger())

	_, err = uc.Replay(ctx, source, csvAdapter.NewWriter(out))
	a.writeMetrics(m)
	return err
}

func (a *app) validate(path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	source, err := csvAdapter.NewReader(file)
	if err != nil {
		return err
	}

	result, err := usecase.NewValidateUseCase(a.logger.With().Str("input", path).Logger()).Validate(source)
	if err != nil {
		return err
	}

	kinds := make([]string, 0, len(result.ByKind))
	for kind := range result.ByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	fmt.Fprintf(out, "records: %d\n", result.Records)
	for _, kind := range kinds {
		fmt.Fprintf(out, "%s: %d\n", kind, result.ByKind[domain.TransactionKind(kind)])
	}
	return nil
}

func (a *app) writeMetrics(m *metrics.Metrics) {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteFile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn().Err(err).Str("path", a.cfg.MetricsFile).Msg("failed to write metrics")
	}
}

func (a *app) logError(err error) error {
	if err != nil {
		a.logger.Error().Err(err).Msg("txledger failed")
	}
	return err
}
