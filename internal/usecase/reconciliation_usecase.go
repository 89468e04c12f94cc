package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// FlowTracker independently accumulates the funds each client should own:
// applied deposits minus applied withdrawals and chargebacks.
type FlowTracker struct {
	deposits map[domain.TxID]decimal.Decimal
	net      map[domain.ClientID]decimal.Decimal
}

func NewFlowTracker() *FlowTracker {
	return &FlowTracker{
		deposits: make(map[domain.TxID]decimal.Decimal),
		net:      make(map[domain.ClientID]decimal.Decimal),
	}
}

// Observe satisfies domain.Observer.
func (f *FlowTracker) Observe(tx domain.Transaction, outcome domain.Outcome) {
	if outcome != domain.OutcomeApplied {
		return
	}

	switch tx.Kind {
	case domain.KindDeposit:
		f.deposits[tx.Tx] = tx.Amount
		f.net[tx.Client] = f.net[tx.Client].Add(tx.Amount)
	case domain.KindWithdrawal:
		f.net[tx.Client] = f.net[tx.Client].Sub(tx.Amount)
	case domain.KindChargeback:
		f.net[tx.Client] = f.net[tx.Client].Sub(f.deposits[tx.Tx])
	}
}

// Expected returns the tracked net funds of a client.
func (f *FlowTracker) Expected(client domain.ClientID) decimal.Decimal {
	return f.net[client]
}

// ReconciliationResult compares one account against its tracked flows.
type ReconciliationResult struct {
	Client          domain.ClientID
	RecordedTotal   decimal.Decimal
	CalculatedTotal decimal.Decimal
	Difference      decimal.Decimal
	IsReconciled    bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconciliationUseCase checks final account totals against tracked flows.
type ReconciliationUseCase struct{}

func NewReconciliationUseCase() *ReconciliationUseCase {
	return &ReconciliationUseCase{}
}

// ReconcileAccount compares one account snapshot with the tracker.
func (uc *ReconciliationUseCase) ReconcileAccount(account domain.AccountSnapshot, flows *FlowTracker) *ReconciliationResult {
	calculated := flows.Expected(account.Client)
	difference := account.Total.Sub(calculated)

	return &ReconciliationResult{
		Client:          account.Client,
		RecordedTotal:   account.Total,
		CalculatedTotal: calculated,
		Difference:      difference,
		IsReconciled:    difference.IsZero(),
	}
}

// GenerateReconciliationReport reconciles every account.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(accounts []domain.AccountSnapshot, flows *FlowTracker) *ReconciliationReport {
	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, account := range accounts {
		result := uc.ReconcileAccount(account, flows)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report
}
