package credits

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/curia-network/curia/internal/domain"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	l.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestSeedAndBalance(t *testing.T) {
	l := newTestLedger(t)

	l.Seed("alice", 1000)
	if got := l.Balance("alice"); got != 1000 {
		t.Errorf("Balance() = %d, want 1000", got)
	}
	if got := l.Balance("ghost"); got != 0 {
		t.Errorf("Balance(unknown) = %d, want 0", got)
	}
}

func TestDebit_MovesBalance(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("alice", 1000)

	if err := l.Debit("alice", 300, domain.TxDeposit, "proposal deposit"); err != nil {
		t.Fatalf("Debit() error = %v", err)
	}
	if got := l.Balance("alice"); got != 700 {
		t.Errorf("Balance() = %d, want 700", got)
	}
}

func TestDebit_RefusesOverdraft(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("alice", 100)

	err := l.Debit("alice", 101, domain.TxStake, "stake")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("Debit() error = %v, want ErrInsufficientCredits", err)
	}
	// A refused debit must leave no trace.
	if got := l.Balance("alice"); got != 100 {
		t.Errorf("Balance() = %d, want 100 untouched", got)
	}
	if got := len(l.Entries("alice")); got != 1 {
		t.Errorf("len(Entries()) = %d, want 1 (the seed only)", got)
	}
}

func TestCredit_SaturatesInsteadOfWrapping(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("alice", math.MaxUint64)

	l.Credit("alice", 10, domain.TxRefund, "refund")
	if got := l.Balance("alice"); got != math.MaxUint64 {
		t.Errorf("Balance() = %d, want saturation at MaxUint64", got)
	}
}

func TestEntries_RunningBalanceJournal(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("alice", 500)
	l.Debit("alice", 200, domain.TxDeposit, "proposal deposit")
	l.Credit("alice", 50, domain.TxAward, "item verified")

	rows := l.Entries("alice")
	if len(rows) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(rows))
	}
	wants := []struct {
		tx      domain.TransactionType
		side    domain.EntryType
		amount  uint64
		balance uint64
	}{
		{domain.TxSeed, domain.EntryCredit, 500, 500},
		{domain.TxDeposit, domain.EntryDebit, 200, 300},
		{domain.TxAward, domain.EntryCredit, 50, 350},
	}
	for i, want := range wants {
		row := rows[i]
		if row.Type != want.tx || row.EntryType != want.side || row.Amount != want.amount || row.Balance != want.balance {
			t.Errorf("row %d = %+v, want %+v", i, row, want)
		}
		if row.ID == "" {
			t.Errorf("row %d missing ID", i)
		}
	}
}

func TestEntries_IDsAreUnique(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("alice", 10)
	l.Seed("alice", 10)

	rows := l.Entries("alice")
	if rows[0].ID == rows[1].ID {
		t.Errorf("duplicate entry IDs: %s", rows[0].ID)
	}
}

func TestAccounts_Sorted(t *testing.T) {
	l := newTestLedger(t)
	l.Seed("carol", 1)
	l.Seed("alice", 1)
	l.Seed("bob", 1)

	got := l.Accounts()
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("len(Accounts()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Accounts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
