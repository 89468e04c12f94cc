package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireBalances(t *testing.T, l *Ledger, client ClientID, available, held string, locked bool) {
	t.Helper()

	account, ok := l.Account(client)
	require.True(t, ok, "account %d not found", client)
	assert.True(t, account.Available.Equal(dec(available)), "available: want %s, got %s", available, account.Available)
	assert.True(t, account.Held.Equal(dec(held)), "held: want %s, got %s", held, account.Held)
	assert.Equal(t, locked, account.Locked)
}

type recordingObserver struct {
	outcomes []Outcome
}

func (r *recordingObserver) Observe(_ Transaction, outcome Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingObserver) last() Outcome {
	return r.outcomes[len(r.outcomes)-1]
}

func TestLedger_Deposit(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 1, dec("1.5")))
	l.Apply(Deposit(1, 2, dec("2.25")))

	requireBalances(t, l, 1, "3.75", "0", false)

	d, ok := l.Deposit(2)
	require.True(t, ok)
	assert.Equal(t, ClientID(1), d.Client)
	assert.True(t, d.Amount.Equal(dec("2.25")))
}

func TestLedger_DuplicateDepositLastWriteWins(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 7, dec("10")))
	l.Apply(Deposit(1, 7, dec("3")))
	requireBalances(t, l, 1, "13", "0", false)

	l.Apply(Dispute(1, 7))
	requireBalances(t, l, 1, "10", "3", false)
}

func TestLedger_Withdrawal(t *testing.T) {
	tests := []struct {
		name      string
		deposit   string
		withdraw  string
		available string
		outcome   Outcome
	}{
		{name: "less than available", deposit: "10", withdraw: "4.5", available: "5.5", outcome: OutcomeApplied},
		{name: "exactly available", deposit: "10", withdraw: "10", available: "0", outcome: OutcomeApplied},
		{name: "more than available", deposit: "10", withdraw: "10.0001", available: "10", outcome: OutcomeInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingObserver{}
			l := NewLedger(WithObserver(rec))

			l.Apply(Deposit(1, 1, dec(tt.deposit)))
			l.Apply(Withdrawal(1, 2, dec(tt.withdraw)))

			requireBalances(t, l, 1, tt.available, "0", false)
			assert.Equal(t, tt.outcome, rec.last())
		})
	}
}

func TestLedger_WithdrawalFromUnknownClientCreatesAccount(t *testing.T) {
	l := NewLedger()

	l.Apply(Withdrawal(9, 1, dec("1")))

	requireBalances(t, l, 9, "0", "0", false)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_DisputeResolveRoundTrip(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 1, dec("5")))
	l.Apply(Deposit(1, 2, dec("7.5")))

	l.Apply(Dispute(1, 2))
	requireBalances(t, l, 1, "5", "7.5", false)
	assert.True(t, l.IsDisputed(2))

	l.Apply(Resolve(1, 2))
	requireBalances(t, l, 1, "12.5", "0", false)
	assert.False(t, l.IsDisputed(2))
	assert.Equal(t, 0, l.OpenDisputes())
}

func TestLedger_ChargebackLocksAccount(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 1, dec("5")))
	l.Apply(Deposit(1, 2, dec("7.5")))
	l.Apply(Dispute(1, 2))
	l.Apply(Chargeback(1, 2))

	requireBalances(t, l, 1, "5", "0", true)
	assert.False(t, l.IsDisputed(2))

	rec := &recordingObserver{}
	locked := NewLedger(WithObserver(rec))
	locked.Apply(Deposit(1, 1, dec("5")))
	locked.Apply(Dispute(1, 1))
	locked.Apply(Chargeback(1, 1))

	for _, tx := range []Transaction{
		Deposit(1, 3, dec("1")),
		Withdrawal(1, 4, dec("1")),
		Dispute(1, 1),
		Resolve(1, 1),
		Chargeback(1, 1),
	} {
		locked.Apply(tx)
		assert.Equal(t, OutcomeAccountLocked, rec.last(), "kind %s", tx.Kind)
	}
	requireBalances(t, locked, 1, "0", "0", true)
}

func TestLedger_DisputeIgnored(t *testing.T) {
	tests := []struct {
		name    string
		setup   []Transaction
		dispute Transaction
		outcome Outcome
	}{
		{
			name:    "unknown tx",
			setup:   []Transaction{Deposit(1, 1, dec("5"))},
			dispute: Dispute(1, 99),
			outcome: OutcomeUnknownDeposit,
		},
		{
			name:    "withdrawal tx",
			setup:   []Transaction{Deposit(1, 1, dec("5")), Withdrawal(1, 2, dec("1"))},
			dispute: Dispute(1, 2),
			outcome: OutcomeUnknownDeposit,
		},
		{
			name:    "other client",
			setup:   []Transaction{Deposit(1, 1, dec("5")), Deposit(2, 2, dec("1"))},
			dispute: Dispute(2, 1),
			outcome: OutcomeClientMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingObserver{}
			l := NewLedger(WithObserver(rec))
			for _, tx := range tt.setup {
				l.Apply(tx)
			}
			before := l.Accounts()

			l.Apply(tt.dispute)

			assert.Equal(t, tt.outcome, rec.last())
			assert.Equal(t, before, l.Accounts())
			assert.False(t, l.IsDisputed(tt.dispute.Tx))
		})
	}
}

func TestLedger_ResolveAndChargebackRequireOpenDispute(t *testing.T) {
	for _, settle := range []func(ClientID, TxID) Transaction{Resolve, Chargeback} {
		rec := &recordingObserver{}
		l := NewLedger(WithObserver(rec))
		l.Apply(Deposit(1, 1, dec("5")))

		l.Apply(settle(1, 1))
		assert.Equal(t, OutcomeNotDisputed, rec.last())
		requireBalances(t, l, 1, "5", "0", false)

		l.Apply(Dispute(1, 1))
		l.Apply(Resolve(1, 1))
		l.Apply(settle(1, 1))
		assert.Equal(t, OutcomeNotDisputed, rec.last())
		requireBalances(t, l, 1, "5", "0", false)
	}
}

func TestLedger_ReentrantDisputeHoldsTwice(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 1, dec("5")))
	l.Apply(Dispute(1, 1))
	l.Apply(Dispute(1, 1))
	requireBalances(t, l, 1, "-5", "10", false)

	l.Apply(Resolve(1, 1))
	requireBalances(t, l, 1, "0", "5", false)
	assert.False(t, l.IsDisputed(1))
}

func TestLedger_SettleWithMismatchedClientStrandsHeldFunds(t *testing.T) {
	for _, settle := range []func(ClientID, TxID) Transaction{Resolve, Chargeback} {
		rec := &recordingObserver{}
		l := NewLedger(WithObserver(rec))

		l.Apply(Deposit(1, 1, dec("5")))
		l.Apply(Dispute(1, 1))
		l.Apply(settle(2, 1))

		assert.Equal(t, OutcomeClientMismatch, rec.last())
		assert.False(t, l.IsDisputed(1))
		requireBalances(t, l, 1, "0", "5", false)
		requireBalances(t, l, 2, "0", "0", false)

		// The dispute is gone, so the owner can no longer settle it.
		l.Apply(Resolve(1, 1))
		assert.Equal(t, OutcomeNotDisputed, rec.last())
		requireBalances(t, l, 1, "0", "5", false)
	}
}

func TestLedger_Scenario(t *testing.T) {
	l := NewLedger()

	l.Apply(Deposit(1, 1, dec("10.0")))
	l.Apply(Deposit(1, 2, dec("10.0")))
	requireBalances(t, l, 1, "20", "0", false)

	l.Apply(Dispute(1, 2))
	requireBalances(t, l, 1, "10", "10", false)

	l.Apply(Resolve(1, 2))
	requireBalances(t, l, 1, "20", "0", false)

	l.Apply(Dispute(1, 2))
	l.Apply(Chargeback(1, 2))
	requireBalances(t, l, 1, "10", "0", true)

	l.Apply(Deposit(1, 3, dec("5.0")))
	requireBalances(t, l, 1, "10", "0", true)

	accounts := l.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "10.0000", accounts[0].Available.StringFixed(AmountPrecision))
	assert.Equal(t, "0.0000", accounts[0].Held.StringFixed(AmountPrecision))
	assert.Equal(t, "10.0000", accounts[0].Total.StringFixed(AmountPrecision))
}

func TestLedger_TotalsMatchNetFlows(t *testing.T) {
	l := NewLedger()
	txs := []Transaction{
		Deposit(1, 1, dec("100")),
		Deposit(2, 2, dec("50.1234")),
		Withdrawal(1, 3, dec("30")),
		Deposit(1, 4, dec("20")),
		Dispute(1, 4),
		Withdrawal(2, 5, dec("60")), // declined
		Dispute(2, 2),
		Resolve(2, 2),
		Chargeback(1, 4),
		Withdrawal(2, 6, dec("0.1234")),
	}
	for _, tx := range txs {
		l.Apply(tx)
	}

	// client 1: 100 + 20 - 30 - 20 (charged back)
	// client 2: 50.1234 - 0.1234
	want := map[ClientID]string{1: "70", 2: "50"}
	for _, snap := range l.Accounts() {
		assert.True(t, snap.Total.Equal(dec(want[snap.Client])), "client %d total %s", snap.Client, snap.Total)
	}
}

func TestLedger_AccountsOrderedByClient(t *testing.T) {
	l := NewLedger()
	for _, client := range []ClientID{42, 7, 65535, 0, 13} {
		l.Apply(Deposit(client, TxID(client), dec("1")))
	}

	accounts := l.Accounts()
	require.Len(t, accounts, 5)
	for i := 1; i < len(accounts); i++ {
		assert.Less(t, accounts[i-1].Client, accounts[i].Client)
	}
}

func TestLedger_UnknownKindIsIgnored(t *testing.T) {
	rec := &recordingObserver{}
	l := NewLedger(WithObserver(rec))
	l.Apply(Deposit(1, 1, dec("5")))

	l.Apply(Transaction{Client: 1, Tx: 2, Amount: dec("3")})
	l.Apply(Transaction{Kind: "refund", Client: 1, Tx: 1})

	assert.Equal(t, []Outcome{OutcomeApplied, OutcomeUnknownKind, OutcomeUnknownKind}, rec.outcomes)
	assert.True(t, rec.last().Ignored())
	requireBalances(t, l, 1, "5", "0", false)
}

func TestLedger_ObserversRunInOrder(t *testing.T) {
	var calls []string
	l := NewLedger(
		WithObserver(ObserverFunc(func(Transaction, Outcome) { calls = append(calls, "first") })),
		WithObserver(ObserverFunc(func(Transaction, Outcome) { calls = append(calls, "second") })),
	)

	l.Apply(Deposit(1, 1, dec("1")))

	assert.Equal(t, []string{"first", "second"}, calls)
}
