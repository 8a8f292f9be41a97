// Package credits implements the fungible credit ledger the engine
// escrows deposits, vote stakes, and submission bonds against.
//
// The engine treats this as an external collaborator behind the
// domain.CreditLedger interface: Debit can refuse, Credit cannot, and
// every operation appends one row to an account's running-balance
// journal. Rows are timestamped by the ledger's own clock, not the
// engine's, the way a remote balance service would stamp them.
package credits

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/dsa"
)

// Ledger is an in-process credit ledger. Thread-safe.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]uint64
	entries  map[string][]domain.CreditEntry

	// now is swappable for tests.
	now func() time.Time
}

var _ domain.CreditLedger = (*Ledger)(nil)

// NewLedger creates an empty credit ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[string]uint64),
		entries:  make(map[string][]domain.CreditEntry),
		now:      time.Now,
	}
}

// Debit removes amount from the account. Refuses with
// ErrInsufficientCredits, leaving the account untouched, when the
// balance cannot cover it.
func (l *Ledger) Debit(account string, amount uint64, tx domain.TransactionType, note string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[account]
	if balance < amount {
		return fmt.Errorf("debit %d from %s (balance %d): %w", amount, account, balance, domain.ErrInsufficientCredits)
	}
	l.balances[account] = balance - amount
	l.append(account, amount, tx, domain.EntryDebit, note)
	return nil
}

// Credit adds amount to the account. Never fails; the balance saturates
// rather than wraps.
func (l *Ledger) Credit(account string, amount uint64, tx domain.TransactionType, note string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[account] = dsa.SatAdd(l.balances[account], amount)
	l.append(account, amount, tx, domain.EntryCredit, note)
}

// Seed is the operator path for granting fresh credits.
func (l *Ledger) Seed(account string, amount uint64) {
	l.Credit(account, amount, domain.TxSeed, "operator seed")
}

// Balance returns the account's current balance.
func (l *Ledger) Balance(account string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Entries returns the account's journal rows, oldest first.
func (l *Ledger) Entries(account string) []domain.CreditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows := l.entries[account]
	out := make([]domain.CreditEntry, len(rows))
	copy(out, rows)
	return out
}

// Accounts returns every account ever touched, sorted.
func (l *Ledger) Accounts() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.balances))
	for account := range l.balances {
		out = append(out, account)
	}
	sort.Strings(out)
	return out
}

// append must run under l.mu, after the balance change.
func (l *Ledger) append(account string, amount uint64, tx domain.TransactionType, side domain.EntryType, note string) {
	l.entries[account] = append(l.entries[account], domain.CreditEntry{
		ID:        uuid.NewString(),
		At:        l.now(),
		Type:      tx,
		EntryType: side,
		Account:   account,
		Amount:    amount,
		Note:      note,
		Balance:   l.balances[account],
	})
}
