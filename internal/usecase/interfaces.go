package usecase

import (
	"github.com/iho/txledger/internal/domain"
)

// TransactionSource yields validated transactions in input order.
// Next returns io.EOF once the stream is exhausted; any other error aborts the run.
type TransactionSource interface {
	Next() (domain.Transaction, error)
}

// AccountWriter serializes the final account table.
type AccountWriter interface {
	WriteAccounts(accounts []domain.AccountSnapshot) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
