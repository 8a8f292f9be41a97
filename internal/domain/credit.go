package domain

import "time"

// ─── Credit Types ───────────────────────────────────────────────────────────
// The engine treats fungible balances as an external service; these types
// are the rows that service reports back through the CreditLedger
// interface.

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// TransactionType represents the business reason for a credit operation.
type TransactionType string

const (
	TxSeed    TransactionType = "SEED"    // operator grant
	TxDeposit TransactionType = "DEPOSIT" // proposal deposit or submission bond
	TxStake   TransactionType = "STAKE"   // vote-stake escrow
	TxRefund  TransactionType = "REFUND"  // escrow or deposit returned
	TxAward   TransactionType = "AWARD"   // verified-item contributor award
	TxForfeit TransactionType = "FORFEIT" // deposit kept after an upheld challenge
)

// CreditEntry is a single row in the running-balance credit journal.
type CreditEntry struct {
	ID        string          `json:"id"`
	At        time.Time       `json:"at"`
	Type      TransactionType `json:"type"`
	EntryType EntryType       `json:"entry_type"`
	Account   string          `json:"account"`
	Amount    uint64          `json:"amount"`
	Note      string          `json:"note,omitempty"`
	Balance   uint64          `json:"balance"`
}
