package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction. IDs are global across every kind.
type TxID uint32

// AmountPrecision is the number of fractional digits kept for amounts.
const AmountPrecision int32 = 4

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
	KindDispute    TransactionKind = "dispute"
	KindResolve    TransactionKind = "resolve"
	KindChargeback TransactionKind = "chargeback"
)

// Kinds lists every transaction kind in declaration order.
var Kinds = []TransactionKind{KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback}

// ParseTransactionKind maps a type token to its kind. Surrounding whitespace is
// ignored; the token itself is case sensitive.
func ParseTransactionKind(s string) (TransactionKind, error) {
	kind := TransactionKind(strings.TrimSpace(s))
	switch kind {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
}

// HasAmount reports whether transactions of this kind carry an amount.
func (k TransactionKind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is one validated input record.
type Transaction struct {
	Kind   TransactionKind
	Client ClientID
	Tx     TxID
	// Amount is zero for dispute, resolve and chargeback.
	Amount decimal.Decimal
}

// NewTransaction builds a validated transaction, truncating the amount toward zero
// to AmountPrecision places. Amount is ignored for kinds that do not carry one.
func NewTransaction(kind TransactionKind, client ClientID, tx TxID, amount *decimal.Decimal) (Transaction, error) {
	t := Transaction{Kind: kind, Client: client, Tx: tx}
	if !kind.HasAmount() {
		return t, nil
	}

	if amount == nil {
		return Transaction{}, fmt.Errorf("%w: %s tx %d", ErrMissingAmount, kind, tx)
	}

	t.Amount = amount.Truncate(AmountPrecision)
	return t, nil
}

func Deposit(client ClientID, tx TxID, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindDeposit, Client: client, Tx: tx, Amount: amount.Truncate(AmountPrecision)}
}

func Withdrawal(client ClientID, tx TxID, amount decimal.Decimal) Transaction {
	return Transaction{Kind: KindWithdrawal, Client: client, Tx: tx, Amount: amount.Truncate(AmountPrecision)}
}

func Dispute(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindDispute, Client: client, Tx: tx}
}

func Resolve(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindResolve, Client: client, Tx: tx}
}

func Chargeback(client ClientID, tx TxID) Transaction {
	return Transaction{Kind: KindChargeback, Client: client, Tx: tx}
}
