package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/curia-network/curia/internal/domain"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.RecordEvent(domain.Event{Kind: "SCORE_ADJUSTED", At: base}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	count, err := second.EventCount()
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d events after reopen, want 1", count)
	}
}

func TestRecordEvent_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	err := db.RecordEvent(domain.Event{
		ID:         "evt-1",
		Kind:       "ITEM_VERIFIED",
		Subject:    "alice",
		ItemID:     7,
		ProposalID: 3,
		Detail:     "quorum reached",
		At:         base,
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	events, err := db.Events(EventFilter{}, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.ID != "evt-1" || e.Kind != "ITEM_VERIFIED" || e.Subject != "alice" {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.ItemID != 7 || e.ProposalID != 3 || e.Detail != "quorum reached" {
		t.Fatalf("unexpected event %+v", e)
	}
	if !e.At.Equal(base) {
		t.Fatalf("got time %v, want %v", e.At, base)
	}
}

func TestRecordEvent_AssignsID(t *testing.T) {
	db := newTestDB(t)

	if err := db.RecordEvent(domain.Event{Kind: "SCORE_ADJUSTED", At: base}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	events, err := db.Events(EventFilter{}, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].ID == "" {
		t.Fatalf("expected one event with an assigned ID, got %+v", events)
	}
}

func TestEvents_FilterAndOrder(t *testing.T) {
	db := newTestDB(t)

	seed := []domain.Event{
		{ID: "evt-1", Kind: "SCORE_ADJUSTED", Subject: "alice", At: base},
		{ID: "evt-2", Kind: "ITEM_VERIFIED", Subject: "alice", ItemID: 7, At: base.Add(time.Second)},
		{ID: "evt-3", Kind: "SCORE_ADJUSTED", Subject: "bob", At: base.Add(2 * time.Second)},
		{ID: "evt-4", Kind: "PROPOSAL_PASSED", ProposalID: 3, At: base.Add(3 * time.Second)},
	}
	for _, e := range seed {
		if err := db.RecordEvent(e); err != nil {
			t.Fatalf("RecordEvent %s: %v", e.ID, err)
		}
	}

	all, err := db.Events(EventFilter{}, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d events, want 4", len(all))
	}
	if all[0].ID != "evt-4" || all[3].ID != "evt-1" {
		t.Fatalf("events not newest-first: %s ... %s", all[0].ID, all[3].ID)
	}

	byKind, err := db.Events(EventFilter{Kind: "SCORE_ADJUSTED"}, 10)
	if err != nil {
		t.Fatalf("Events by kind: %v", err)
	}
	if len(byKind) != 2 {
		t.Fatalf("got %d SCORE_ADJUSTED events, want 2", len(byKind))
	}

	bySubject, err := db.Events(EventFilter{Subject: "alice"}, 10)
	if err != nil {
		t.Fatalf("Events by subject: %v", err)
	}
	if len(bySubject) != 2 {
		t.Fatalf("got %d alice events, want 2", len(bySubject))
	}

	byItem, err := db.Events(EventFilter{ItemID: 7}, 10)
	if err != nil {
		t.Fatalf("Events by item: %v", err)
	}
	if len(byItem) != 1 || byItem[0].ID != "evt-2" {
		t.Fatalf("got %+v, want evt-2", byItem)
	}

	byProposal, err := db.Events(EventFilter{ProposalID: 3}, 10)
	if err != nil {
		t.Fatalf("Events by proposal: %v", err)
	}
	if len(byProposal) != 1 || byProposal[0].ID != "evt-4" {
		t.Fatalf("got %+v, want evt-4", byProposal)
	}

	limited, err := db.Events(EventFilter{}, 2)
	if err != nil {
		t.Fatalf("Events limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d events with limit 2, want 2", len(limited))
	}
}

func TestParamHistory(t *testing.T) {
	db := newTestDB(t)

	if err := db.RecordParamChange(domain.ParamQuorumWeight, 30, 3, base); err != nil {
		t.Fatalf("RecordParamChange: %v", err)
	}
	if err := db.RecordParamChange(domain.ParamMinimumDeposit, 150, 5, base.Add(time.Hour)); err != nil {
		t.Fatalf("RecordParamChange: %v", err)
	}

	history, err := db.ParamHistory()
	if err != nil {
		t.Fatalf("ParamHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d records, want 2", len(history))
	}
	first := history[0]
	if first.Param != domain.ParamQuorumWeight || first.Value != 30 || first.ProposalID != 3 {
		t.Fatalf("unexpected record %+v", first)
	}
	if !first.ChangedAt.Equal(base) {
		t.Fatalf("got time %v, want %v", first.ChangedAt, base)
	}
	if history[1].Param != domain.ParamMinimumDeposit {
		t.Fatalf("records out of order: %+v", history)
	}
}

func TestSnapshots(t *testing.T) {
	db := newTestDB(t)

	empty, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if empty.ID != 0 {
		t.Fatalf("got snapshot %d before any save", empty.ID)
	}

	if _, err := db.SaveSnapshot([]byte(`{"subjects":1}`), base); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	id, err := db.SaveSnapshot([]byte(`{"subjects":2}`), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	latest, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.ID != id {
		t.Fatalf("got snapshot %d, want %d", latest.ID, id)
	}
	if string(latest.State) != `{"subjects":2}` {
		t.Fatalf("got state %s", latest.State)
	}
	if !latest.TakenAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("got taken at %v, want %v", latest.TakenAt, base.Add(time.Hour))
	}
}
