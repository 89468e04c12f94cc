package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Observer is notified after every Apply.
type Observer interface {
	Observe(tx Transaction, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(tx Transaction, outcome Outcome)

func (f ObserverFunc) Observe(tx Transaction, outcome Outcome) { f(tx, outcome) }

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithObserver registers an observer. Multiple observers run in registration order.
func WithObserver(o Observer) LedgerOption {
	return func(l *Ledger) {
		l.observers = append(l.observers, o)
	}
}

// Ledger owns every account, the deposit index and the disputed set.
// It is not safe for concurrent use.
type Ledger struct {
	accounts  map[ClientID]*Account
	deposits  map[TxID]DepositRecord
	disputed  map[TxID]struct{}
	observers []Observer
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		accounts: make(map[ClientID]*Account),
		deposits: make(map[TxID]DepositRecord),
		disputed: make(map[TxID]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply applies one transaction. Invalid transactions are ignored; the outcome
// is only reported to observers.
func (l *Ledger) Apply(tx Transaction) {
	outcome := l.apply(tx)
	for _, o := range l.observers {
		o.Observe(tx, outcome)
	}
}

func (l *Ledger) apply(tx Transaction) Outcome {
	account := l.account(tx.Client)
	if account.Locked {
		return OutcomeAccountLocked
	}

	switch tx.Kind {
	case KindDeposit:
		account.Available = account.Available.Add(tx.Amount)
		// Duplicate tx ids overwrite the previous record.
		l.deposits[tx.Tx] = DepositRecord{Client: tx.Client, Amount: tx.Amount}
		return OutcomeApplied

	case KindWithdrawal:
		if !account.CanWithdraw(tx.Amount) {
			return OutcomeInsufficientFunds
		}
		account.Available = account.Available.Sub(tx.Amount)
		return OutcomeApplied

	case KindDispute:
		deposit, ok := l.deposits[tx.Tx]
		if !ok {
			return OutcomeUnknownDeposit
		}
		if deposit.Client != tx.Client {
			return OutcomeClientMismatch
		}
		// An already disputed tx is held a second time.
		// TODO: reject re-entrant disputes once fixtures relying on double holds are retired.
		account.Hold(deposit.Amount)
		l.disputed[tx.Tx] = struct{}{}
		return OutcomeApplied

	case KindResolve, KindChargeback:
		if _, ok := l.disputed[tx.Tx]; !ok {
			return OutcomeNotDisputed
		}
		delete(l.disputed, tx.Tx)

		deposit, ok := l.deposits[tx.Tx]
		if !ok {
			return OutcomeUnknownDeposit
		}
		// The dispute stays cleared and the held funds stay where they are.
		if deposit.Client != tx.Client {
			return OutcomeClientMismatch
		}

		if tx.Kind == KindResolve {
			account.Release(deposit.Amount)
		} else {
			account.Reverse(deposit.Amount)
		}
		return OutcomeApplied
	}

	return OutcomeUnknownKind
}

func (l *Ledger) account(client ClientID) *Account {
	account, ok := l.accounts[client]
	if !ok {
		account = &Account{Available: decimal.Zero, Held: decimal.Zero}
		l.accounts[client] = account
	}
	return account
}

// Account returns a copy of the client's account.
func (l *Ledger) Account(client ClientID) (Account, bool) {
	account, ok := l.accounts[client]
	if !ok {
		return Account{}, false
	}
	return *account, true
}

// Deposit returns the retained deposit record for tx.
func (l *Ledger) Deposit(tx TxID) (DepositRecord, bool) {
	d, ok := l.deposits[tx]
	return d, ok
}

// IsDisputed reports whether tx is under an open dispute.
func (l *Ledger) IsDisputed(tx TxID) bool {
	_, ok := l.disputed[tx]
	return ok
}

// OpenDisputes returns the number of open disputes.
func (l *Ledger) OpenDisputes() int {
	return len(l.disputed)
}

// Len returns the number of accounts.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Accounts returns every account ordered by client id.
func (l *Ledger) Accounts() []AccountSnapshot {
	snapshots := make([]AccountSnapshot, 0, len(l.accounts))
	for client, account := range l.accounts {
		snapshots = append(snapshots, AccountSnapshot{
			Client:    client,
			Available: account.Available,
			Held:      account.Held,
			Total:     account.Total(),
			Locked:    account.Locked,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Client < snapshots[j].Client
	})

	return snapshots
}
