package domain

// Outcome classifies what an applied transaction did to the ledger.
type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeAccountLocked     Outcome = "account_locked"
	OutcomeUnknownDeposit    Outcome = "unknown_deposit"
	OutcomeClientMismatch    Outcome = "client_mismatch"
	OutcomeInsufficientFunds Outcome = "insufficient_funds"
	OutcomeNotDisputed       Outcome = "not_disputed"
	OutcomeUnknownKind       Outcome = "unknown_kind"
)

// Outcomes lists every outcome.
var Outcomes = []Outcome{
	OutcomeApplied,
	OutcomeAccountLocked,
	OutcomeUnknownDeposit,
	OutcomeClientMismatch,
	OutcomeInsufficientFunds,
	OutcomeNotDisputed,
	OutcomeUnknownKind,
}

// Ignored reports whether the transaction left the ledger unchanged.
// A client_mismatch on resolve or chargeback still clears the dispute.
func (o Outcome) Ignored() bool {
	return o != OutcomeApplied
}
