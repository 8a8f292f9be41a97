package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/assets"
	"github.com/curia-network/curia/internal/infra/badge"
	"github.com/curia-network/curia/internal/infra/bonding"
	"github.com/curia-network/curia/internal/infra/community"
	"github.com/curia-network/curia/internal/infra/credits"
	"github.com/curia-network/curia/internal/infra/governance"
	"github.com/curia-network/curia/internal/infra/score"
	"github.com/curia-network/curia/internal/infra/sqlite"
	"github.com/curia-network/curia/internal/infra/verify"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineJournal(t, nil)
}

func newTestEngineJournal(t *testing.T, journal domain.Journal) *Engine {
	t.Helper()
	scores := score.NewLedger(score.DefaultConfig())
	creditLedger := credits.NewLedger()
	bonds := bonding.NewLedger(bonding.DefaultConfig(), scores)
	return New(DefaultConfig(), Deps{
		Scores:      scores,
		Verifier:    verify.NewVerifier(verify.DefaultConfig()),
		Bonds:       bonds,
		Governance:  governance.NewEngine(governance.DefaultConfig(), creditLedger),
		Badges:      badge.NewEvaluator(scores, bonds),
		Communities: community.NewRegistry(),
		Credits:     creditLedger,
		Assets:      assets.NewRegistry(),
		Journal:     journal,
	})
}

func newTestJournal(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCommunity(t *testing.T, e *Engine, name string) domain.Community {
	t.Helper()
	c, err := e.CreateCommunity(name, "", base)
	if err != nil {
		t.Fatalf("CreateCommunity(%q) error = %v", name, err)
	}
	return c
}

// mustVerify walks an item through submission and a two-positive reveal
// round. The contributor is seeded exactly the submission bond.
func mustVerify(t *testing.T, e *Engine, contributor, contentRef string) domain.Item {
	t.Helper()
	e.SeedCredits(contributor, e.config.SubmissionBond, base)
	item, err := e.SubmitItem(contributor, contentRef, base)
	if err != nil {
		t.Fatalf("SubmitItem() error = %v", err)
	}
	for _, p := range []string{"ver-1", "ver-2"} {
		if err := e.Commit(item.ID, p, domain.CommitDigest(true, []byte(p+"-secret")), base); err != nil {
			t.Fatalf("Commit(%s) error = %v", p, err)
		}
	}
	var res domain.RevealResult
	for _, p := range []string{"ver-1", "ver-2"} {
		res, err = e.Reveal(item.ID, p, true, []byte(p+"-secret"), base)
		if err != nil {
			t.Fatalf("Reveal(%s) error = %v", p, err)
		}
	}
	if !res.Verified {
		t.Fatalf("item %d did not verify, state %v", item.ID, res.Item.State)
	}
	return res.Item
}

// ─── End-to-End Scenarios ───────────────────────────────────────────────────

func TestZeroDecayRateScoreIsConstant(t *testing.T) {
	e := newTestEngine(t)

	e.Adjust("ann", 100, domain.CauseVerifiedInteraction, base)
	if got := e.Scores().GetScore("ann", base.Add(1000*24*time.Hour)); got != 100 {
		t.Errorf("GetScore() = %d, want 100 after 1000 days at rate 0", got)
	}
}

func TestBondThenPenaltyClampsToScore(t *testing.T) {
	e := newTestEngine(t)
	c := mustCommunity(t, e, "rust guild")

	e.Adjust("bea", 100, domain.CauseVerifiedInteraction, base)
	if err := e.Bond("bea", c.ID, 60, base); err != nil {
		t.Fatalf("Bond() error = %v", err)
	}
	if got := e.Bonds().Free("bea", base); got != 40 {
		t.Errorf("Free() = %d, want 40", got)
	}

	e.Adjust("bea", -50, domain.CauseChallengeOutcome, base)

	if got := e.Bonds().Free("bea", base); got != 0 {
		t.Errorf("Free() = %d, want 0 after clamp", got)
	}
	if got := e.Bonds().BondedTo("bea", c.ID, base); got != 50 {
		t.Errorf("BondedTo() = %d, want 50 after clamp", got)
	}
}

func TestRevealQuorumVerifiesAndSettles(t *testing.T) {
	e := newTestEngine(t)

	e.SeedCredits("carol", 50, base)
	item, err := e.SubmitItem("carol", "ipfs://doc-1", base)
	if err != nil {
		t.Fatalf("SubmitItem() error = %v", err)
	}
	if got := e.Credits().Balance("carol"); got != 0 {
		t.Fatalf("Balance(carol) = %d, want 0 after submission bond", got)
	}

	secrets := map[string][]byte{"v1": []byte("s1"), "v2": []byte("s2"), "v3": []byte("s3")}
	outcomes := map[string]bool{"v1": true, "v2": false, "v3": true}
	for _, p := range []string{"v1", "v2", "v3"} {
		if err := e.Commit(item.ID, p, domain.CommitDigest(outcomes[p], secrets[p]), base); err != nil {
			t.Fatalf("Commit(%s) error = %v", p, err)
		}
	}

	res, err := e.Reveal(item.ID, "v1", true, secrets["v1"], base)
	if err != nil {
		t.Fatalf("Reveal(v1) error = %v", err)
	}
	if res.Verified {
		t.Error("Reveal(v1) verified at one positive, want quorum 2")
	}
	if _, err := e.Reveal(item.ID, "v2", false, secrets["v2"], base); err != nil {
		t.Fatalf("Reveal(v2) error = %v", err)
	}
	res, err = e.Reveal(item.ID, "v3", true, secrets["v3"], base)
	if err != nil {
		t.Fatalf("Reveal(v3) error = %v", err)
	}
	if !res.Verified {
		t.Fatal("Reveal(v3) did not verify at two positives over one negative")
	}

	if got := e.Scores().GetScore("carol", base); got != 25 {
		t.Errorf("contributor score = %d, want 25", got)
	}
	if got := e.Credits().Balance("carol"); got != 50 {
		t.Errorf("Balance(carol) = %d, want 50 after bond refund", got)
	}
	if got := e.Credits().Balance("v1"); got != 5 {
		t.Errorf("Balance(v1) = %d, want 5 verifier award", got)
	}
	minted := e.Assets().Assets("carol")
	if len(minted) != 1 {
		t.Fatalf("Assets(carol) = %d assets, want 1", len(minted))
	}
	if minted[0].Kind != domain.AssetVerifiedItem || minted[0].Ref != "ipfs://doc-1" {
		t.Errorf("minted asset = %+v, want VERIFIED_ITEM for ipfs://doc-1", minted[0])
	}
}

func TestQuadraticVotePassesAtQuorum(t *testing.T) {
	e := newTestEngine(t)

	e.SeedCredits("pat", 100, base)
	e.SeedCredits("alice", 100, base)
	e.SeedCredits("bob", 400, base)

	change := domain.ParamChange{Param: domain.ParamQuorumWeight, Value: 30}
	p, err := e.Propose("pat", change, "raise quorum", 100, base)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}

	va, err := e.Vote(p.ID, "alice", 100, true, base)
	if err != nil {
		t.Fatalf("Vote(alice) error = %v", err)
	}
	if va.Weight != 10 {
		t.Errorf("Vote(alice).Weight = %d, want 10", va.Weight)
	}
	vb, err := e.Vote(p.ID, "bob", 400, true, base)
	if err != nil {
		t.Fatalf("Vote(bob) error = %v", err)
	}
	if vb.Weight != 20 {
		t.Errorf("Vote(bob).Weight = %d, want 20", vb.Weight)
	}

	deadline := base.Add(72 * time.Hour)
	tallied, err := e.Tally(p.ID, deadline)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if tallied.State != domain.ProposalPassed {
		t.Fatalf("Tally() state = %v, want Passed at weight 30 over quorum 25", tallied.State)
	}
	if got := e.Credits().Balance("alice"); got != 0 {
		t.Errorf("Balance(alice) = %d, want 0 while passed proposal holds escrow", got)
	}

	if _, err := e.Execute(p.ID, deadline); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := e.Governance().QuorumWeight(); got != 30 {
		t.Errorf("QuorumWeight() = %d, want 30 after execution", got)
	}
	for account, want := range map[string]uint64{"pat": 100, "alice": 100, "bob": 400} {
		if got := e.Credits().Balance(account); got != want {
			t.Errorf("Balance(%s) = %d, want %d after refunds", account, got, want)
		}
	}
}

func TestUnbondLockWindow(t *testing.T) {
	t0 := time.Unix(1000, 0).UTC()
	e := newTestEngine(t)

	c, err := e.CreateCommunity("go forum", "", t0)
	if err != nil {
		t.Fatalf("CreateCommunity() error = %v", err)
	}
	e.Adjust("dana", 100, domain.CauseVerifiedInteraction, t0)
	if err := e.Bond("dana", c.ID, 80, t0); err != nil {
		t.Fatalf("Bond() error = %v", err)
	}

	req, err := e.RequestUnbond("dana", c.ID, 80, t0)
	if err != nil {
		t.Fatalf("RequestUnbond() error = %v", err)
	}
	if want := time.Unix(605800, 0).UTC(); !req.UnlockTime.Equal(want) {
		t.Errorf("UnlockTime = %v, want %v", req.UnlockTime, want)
	}

	if _, err := e.ClaimUnbonded("dana", c.ID, time.Unix(600000, 0).UTC()); !errors.Is(err, domain.ErrLockNotExpired) {
		t.Errorf("ClaimUnbonded() early error = %v, want ErrLockNotExpired", err)
	}
	got, err := e.ClaimUnbonded("dana", c.ID, time.Unix(605801, 0).UTC())
	if err != nil {
		t.Fatalf("ClaimUnbonded() error = %v", err)
	}
	if got != 80 {
		t.Errorf("ClaimUnbonded() = %d, want 80", got)
	}
	if free := e.Bonds().Free("dana", time.Unix(605801, 0).UTC()); free != 100 {
		t.Errorf("Free() = %d, want 100 after claim", free)
	}
}

// ─── Item Orchestration ─────────────────────────────────────────────────────

func TestSubmitItem_DebitPrecedesCreation(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.SubmitItem("pauper", "ipfs://doc", base); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Errorf("SubmitItem() error = %v, want ErrInsufficientCredits", err)
	}
	if got := len(e.Verifier().Items()); got != 0 {
		t.Errorf("Items() = %d items after refused bond, want 0", got)
	}
}

func TestSubmitItem_RejectsEmptyArgs(t *testing.T) {
	e := newTestEngine(t)
	e.SeedCredits("carol", 50, base)

	if _, err := e.SubmitItem("carol", "", base); !errors.Is(err, domain.ErrInvalidParam) {
		t.Errorf("SubmitItem() error = %v, want ErrInvalidParam", err)
	}
	if got := e.Credits().Balance("carol"); got != 50 {
		t.Errorf("Balance(carol) = %d, want 50 untouched", got)
	}
}

func TestChallenge_RefusedEscrowLeavesItemPending(t *testing.T) {
	e := newTestEngine(t)
	e.SeedCredits("carol", 50, base)
	item, _ := e.SubmitItem("carol", "ipfs://doc", base)

	if _, err := e.Challenge(item.ID, "eve", "spam", 100, base); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("Challenge() error = %v, want ErrInsufficientCredits", err)
	}
	got, _ := e.Verifier().Item(item.ID)
	if got.State != domain.ItemPending {
		t.Errorf("item state = %v after refused escrow, want Pending", got.State)
	}
}

func TestChallenge_FreezesItemAndOpensDispute(t *testing.T) {
	e := newTestEngine(t)
	e.SeedCredits("carol", 50, base)
	e.SeedCredits("eve", 100, base)
	item, _ := e.SubmitItem("carol", "ipfs://doc", base)

	p, err := e.Challenge(item.ID, "eve", "plagiarized", 100, base)
	if err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}
	if p.Kind != domain.ProposalDispute || p.ItemID != item.ID {
		t.Errorf("dispute = kind %v item %d, want Dispute over item %d", p.Kind, p.ItemID, item.ID)
	}
	got, _ := e.Verifier().Item(item.ID)
	if got.State != domain.ItemDisputed {
		t.Errorf("item state = %v, want Disputed", got.State)
	}
	err = e.Commit(item.ID, "v1", domain.CommitDigest(true, []byte("s")), base)
	if !errors.Is(err, domain.ErrItemDisputed) {
		t.Errorf("Commit() on disputed item error = %v, want ErrItemDisputed", err)
	}
}

func TestDisputeRejectedDismissesChallenge(t *testing.T) {
	e := newTestEngine(t)
	e.SeedCredits("carol", 50, base)
	e.SeedCredits("eve", 100, base)
	item, _ := e.SubmitItem("carol", "ipfs://doc", base)
	p, err := e.Challenge(item.ID, "eve", "spam", 100, base)
	if err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}

	// No votes: quorum misses and the dispute fails.
	resolved := e.TallyDue(base.Add(72 * time.Hour))
	if len(resolved) != 1 || resolved[0].ID != p.ID {
		t.Fatalf("TallyDue() = %v, want just proposal %d", resolved, p.ID)
	}
	if resolved[0].State != domain.ProposalRejected {
		t.Fatalf("TallyDue() state = %v, want Rejected", resolved[0].State)
	}

	got, _ := e.Verifier().Item(item.ID)
	if got.State != domain.ItemPending {
		t.Errorf("item state = %v after dismissal, want Pending", got.State)
	}
	if got.Challenger != "" {
		t.Errorf("item challenger = %q after dismissal, want cleared", got.Challenger)
	}
	if balance := e.Credits().Balance("eve"); balance != 100 {
		t.Errorf("Balance(eve) = %d, want 100 refunded", balance)
	}
}

func TestDisputeUpheldResolvesAgainstContributor(t *testing.T) {
	e := newTestEngine(t)
	e.Adjust("carol", 100, domain.CauseVerifiedInteraction, base)
	e.SeedCredits("carol", 50, base)
	e.SeedCredits("eve", 725, base)
	item, _ := e.SubmitItem("carol", "ipfs://doc", base)

	p, err := e.Challenge(item.ID, "eve", "fabricated", 100, base)
	if err != nil {
		t.Fatalf("Challenge() error = %v", err)
	}
	if _, err := e.Vote(p.ID, "eve", 625, true, base); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}

	deadline := base.Add(72 * time.Hour)
	tallied, err := e.Tally(p.ID, deadline)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if tallied.State != domain.ProposalPassed {
		t.Fatalf("Tally() state = %v, want Passed at weight 25", tallied.State)
	}
	frozen, _ := e.Verifier().Item(item.ID)
	if frozen.State != domain.ItemDisputed {
		t.Fatalf("item state = %v before execution, want still Disputed", frozen.State)
	}

	if _, err := e.Execute(p.ID, deadline); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got, _ := e.Verifier().Item(item.ID)
	if got.State != domain.ItemResolved {
		t.Errorf("item state = %v, want Resolved", got.State)
	}
	if score := e.Scores().GetScore("carol", deadline); score != 75 {
		t.Errorf("contributor score = %d, want 75 after penalty", score)
	}
	// Deposit and stake came back on execution; the forfeited 50-credit
	// submission bond rides on top.
	if balance := e.Credits().Balance("eve"); balance != 775 {
		t.Errorf("Balance(eve) = %d, want 775", balance)
	}
	if balance := e.Credits().Balance("carol"); balance != 0 {
		t.Errorf("Balance(carol) = %d, want 0 with bond forfeited", balance)
	}
}

func TestMutationRoundPaysProposer(t *testing.T) {
	e := newTestEngine(t)
	item := mustVerify(t, e, "carol", "ipfs://doc-1")

	round, err := e.ProposeMutation(item.ID, "mal", "ipfs://doc-2", base)
	if err != nil {
		t.Fatalf("ProposeMutation() error = %v", err)
	}
	if round != 2 {
		t.Errorf("ProposeMutation() round = %d, want 2", round)
	}

	var res domain.RevealResult
	for _, p := range []string{"v1", "v2"} {
		secret := []byte(p + "-round2")
		if err := e.Commit(item.ID, p, domain.CommitDigest(true, secret), base); err != nil {
			t.Fatalf("Commit(%s) error = %v", p, err)
		}
		if res, err = e.Reveal(item.ID, p, true, secret, base); err != nil {
			t.Fatalf("Reveal(%s) error = %v", p, err)
		}
	}
	if !res.MutationApplied {
		t.Fatal("mutation round did not close positive")
	}
	if res.Item.ContentRef != "ipfs://doc-2" {
		t.Errorf("ContentRef = %q, want ipfs://doc-2", res.Item.ContentRef)
	}
	if got := e.Scores().GetScore("mal", base); got != 25 {
		t.Errorf("proposer score = %d, want 25", got)
	}
}

// ─── Governance Routing ─────────────────────────────────────────────────────

func TestExecuteRoutesParamAndRecordsHistory(t *testing.T) {
	db := newTestJournal(t)
	e := newTestEngineJournal(t, db)
	e.SeedCredits("pat", 100, base)
	e.SeedCredits("whale", 625, base)

	change := domain.ParamChange{Param: domain.ParamUnbondLockSeconds, Value: 60}
	p, err := e.Propose("pat", change, "shorter lock", 100, base)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := e.Vote(p.ID, "whale", 625, true, base); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	deadline := base.Add(72 * time.Hour)
	if _, err := e.Tally(p.ID, deadline); err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if _, err := e.Execute(p.ID, deadline); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := e.Bonds().LockDuration(); got != time.Minute {
		t.Errorf("LockDuration() = %v, want 1m after execution", got)
	}
	history, err := db.ParamHistory()
	if err != nil {
		t.Fatalf("ParamHistory() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("ParamHistory() = %d rows, want 1", len(history))
	}
	if history[0].Param != domain.ParamUnbondLockSeconds || history[0].Value != 60 || history[0].ProposalID != p.ID {
		t.Errorf("history row = %+v, want unbond_lock_seconds=60 by proposal %d", history[0], p.ID)
	}

	events, err := db.Events(sqlite.EventFilter{Kind: EventParamChanged}, 10)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Events(PARAM_CHANGED) = %d, want 1", len(events))
	}
}

func TestParamsReflectExecutedChanges(t *testing.T) {
	e := newTestEngine(t)
	e.SeedCredits("pat", 100, base)
	e.SeedCredits("whale", 625, base)

	change := domain.ParamChange{Param: domain.ParamRequiredRevealQuorum, Value: 3}
	p, _ := e.Propose("pat", change, "", 100, base)
	e.Vote(p.ID, "whale", 625, true, base)
	deadline := base.Add(72 * time.Hour)
	e.Tally(p.ID, deadline)
	if _, err := e.Execute(p.ID, deadline); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	params := e.Params()
	if params.RequiredRevealQuorum != 3 {
		t.Errorf("Params().RequiredRevealQuorum = %d, want 3", params.RequiredRevealQuorum)
	}
	if params.QuorumWeight != 25 || params.MinimumDeposit != 100 {
		t.Errorf("Params() = %+v, want untouched governance defaults", params)
	}
}

// ─── Ledger Orchestration ───────────────────────────────────────────────────

func TestBond_RequiresActiveCommunity(t *testing.T) {
	e := newTestEngine(t)
	e.Adjust("bea", 100, domain.CauseVerifiedInteraction, base)

	if err := e.Bond("bea", "com-ghost-1", 10, base); !errors.Is(err, domain.ErrUnknownCommunity) {
		t.Errorf("Bond() to unknown target error = %v, want ErrUnknownCommunity", err)
	}

	c := mustCommunity(t, e, "rust guild")
	if err := e.Bond("bea", c.ID, 10, base); err != nil {
		t.Fatalf("Bond() error = %v", err)
	}
	if err := e.SuspendCommunity(c.ID, base); err != nil {
		t.Fatalf("SuspendCommunity() error = %v", err)
	}
	if err := e.Bond("bea", c.ID, 10, base); !errors.Is(err, domain.ErrCommunityNotActive) {
		t.Errorf("Bond() to suspended target error = %v, want ErrCommunityNotActive", err)
	}
	// Positions exit regardless of the gate.
	if _, err := e.RequestUnbond("bea", c.ID, 10, base); err != nil {
		t.Errorf("RequestUnbond() on suspended target error = %v", err)
	}
}

func TestClaimBadgeThroughEngine(t *testing.T) {
	e := newTestEngine(t)
	e.Adjust("sam", 600, domain.CauseVerifiedInteraction, base)

	claim, err := e.ClaimBadge("sam", "seasoned-contributor", base)
	if err != nil {
		t.Fatalf("ClaimBadge() error = %v", err)
	}
	if claim.BadgeID != "seasoned-contributor" || claim.Subject != "sam" {
		t.Errorf("claim = %+v, want seasoned-contributor for sam", claim)
	}
	if _, err := e.ClaimBadge("sam", "seasoned-contributor", base); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Errorf("second ClaimBadge() error = %v, want ErrAlreadyClaimed", err)
	}
}

func TestSeedCreditsReturnsBalance(t *testing.T) {
	e := newTestEngine(t)

	if got := e.SeedCredits("ops", 40, base); got != 40 {
		t.Errorf("SeedCredits() = %d, want 40", got)
	}
	if got := e.SeedCredits("ops", 10, base); got != 50 {
		t.Errorf("SeedCredits() = %d, want 50", got)
	}
}

// ─── Journal & Snapshot ─────────────────────────────────────────────────────

func TestJournalRecordsLifecycleEvents(t *testing.T) {
	db := newTestJournal(t)
	e := newTestEngineJournal(t, db)

	mustVerify(t, e, "carol", "ipfs://doc-1")

	for kind, want := range map[string]int{
		EventItemSubmitted:  1,
		EventCommitRecorded: 2,
		EventRevealAccepted: 2,
		EventItemVerified:   1,
	} {
		events, err := db.Events(sqlite.EventFilter{Kind: kind}, 10)
		if err != nil {
			t.Fatalf("Events(%s) error = %v", kind, err)
		}
		if len(events) != want {
			t.Errorf("Events(%s) = %d, want %d", kind, len(events), want)
		}
	}
}

func TestSnapshotPersistsState(t *testing.T) {
	db := newTestJournal(t)
	e := newTestEngineJournal(t, db)
	e.Adjust("ann", 100, domain.CauseVerifiedInteraction, base)
	mustCommunity(t, e, "rust guild")

	id, err := e.Snapshot(base)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if id != 1 {
		t.Errorf("Snapshot() id = %d, want 1", id)
	}

	snap, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if snap.ID != id {
		t.Errorf("LatestSnapshot().ID = %d, want %d", snap.ID, id)
	}
	for _, field := range []string{`"params"`, `"standings"`, `"communities"`} {
		if !strings.Contains(string(snap.State), field) {
			t.Errorf("snapshot state missing %s", field)
		}
	}
}

func TestSnapshotWithoutJournal(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Snapshot(base); !errors.Is(err, domain.ErrJournalDisabled) {
		t.Errorf("Snapshot() error = %v, want ErrJournalDisabled", err)
	}
}
