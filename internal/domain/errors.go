package domain

import "errors"

var (
	// Stream errors. Any of these aborts a replay.
	ErrInvalidHeader          = errors.New("invalid csv header")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrMissingAmount          = errors.New("missing amount")
	ErrMalformedRecord        = errors.New("malformed record")
)
