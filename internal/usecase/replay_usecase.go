package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/metrics"
)

// ReplayResult summarizes a finished replay.
type ReplayResult struct {
	RunID          string
	Records        int
	Ignored        int
	Accounts       []domain.AccountSnapshot
	Reconciliation *ReconciliationReport
}

type ReplayUseCase struct {
	idGen          IDGenerator
	reconciliation *ReconciliationUseCase
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

func NewReplayUseCase(idGen IDGenerator, metrics *metrics.Metrics, logger zerolog.Logger) *ReplayUseCase {
	return &ReplayUseCase{
		idGen:          idGen,
		reconciliation: NewReconciliationUseCase(),
		metrics:        metrics,
		logger:         logger,
	}
}

// Replay feeds every transaction from source into a fresh ledger and writes the
// resulting accounts to writer. A source error aborts the run before anything is written.
func (uc *ReplayUseCase) Replay(ctx context.Context, source TransactionSource, writer AccountWriter) (*ReplayResult, error) {
	start := time.Now()
	result := &ReplayResult{RunID: uc.idGen.Generate()}
	log := uc.logger.With().Str("run_id", result.RunID).Logger()

	flows := NewFlowTracker()
	opts := []domain.LedgerOption{
		domain.WithObserver(flows),
		domain.WithObserver(domain.ObserverFunc(func(tx domain.Transaction, outcome domain.Outcome) {
			if outcome.Ignored() {
				result.Ignored++
				log.Debug().
					Str("kind", string(tx.Kind)).
					Uint16("client", uint16(tx.Client)).
					Uint32("tx", uint32(tx.Tx)).
					Str("outcome", string(outcome)).
					Msg("transaction ignored")
			}
		})),
	}
	if uc.metrics != nil {
		opts = append(opts, domain.WithObserver(uc.metrics))
	}
	ledger := domain.NewLedger(opts...)

	log.Info().Msg("replay started")

	for {
		if err := ctx.Err(); err != nil {
			return nil, uc.abort(log, result, err)
		}

		tx, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, uc.abort(log, result, err)
		}

		ledger.Apply(tx)
		result.Records++
	}

	result.Accounts = ledger.Accounts()
	result.Reconciliation = uc.reconciliation.GenerateReconciliationReport(result.Accounts, flows)
	for _, d := range result.Reconciliation.Discrepancies {
		log.Warn().
			Uint16("client", uint16(d.Client)).
			Str("recorded_total", d.RecordedTotal.String()).
			Str("calculated_total", d.CalculatedTotal.String()).
			Msg("account does not reconcile")
	}

	if err := writer.WriteAccounts(result.Accounts); err != nil {
		return nil, fmt.Errorf("write accounts: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.RecordLedger(result.Accounts, ledger.OpenDisputes())
		uc.metrics.ReplayDuration.Observe(time.Since(start).Seconds())
	}

	log.Info().
		Int("records", result.Records).
		Int("ignored", result.Ignored).
		Int("accounts", len(result.Accounts)).
		Int("open_disputes", ledger.OpenDisputes()).
		Dur("duration", time.Since(start)).
		Msg("replay finished")

	return result, nil
}

func (uc *ReplayUseCase) abort(log zerolog.Logger, result *ReplayResult, err error) error {
	if uc.metrics != nil {
		uc.metrics.StreamErrors.Inc()
	}
	log.Error().Err(err).Int("records", result.Records).Msg("replay aborted")
	return fmt.Errorf("read transactions: %w", err)
}
