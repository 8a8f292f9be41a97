package domain

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"testing"
)

// ─── State Enum Tests ───────────────────────────────────────────────────────

func TestItemState_String(t *testing.T) {
	tests := []struct {
		state ItemState
		want  string
	}{
		{ItemPending, "pending"},
		{ItemVerified, "verified"},
		{ItemDisputed, "disputed"},
		{ItemResolved, "resolved"},
		{ItemState(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProposalState_String(t *testing.T) {
	tests := []struct {
		state ProposalState
		want  string
	}{
		{ProposalActive, "active"},
		{ProposalPassed, "passed"},
		{ProposalRejected, "rejected"},
		{ProposalExecuted, "executed"},
		{ProposalState(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommunityState_String(t *testing.T) {
	tests := []struct {
		state CommunityState
		want  string
	}{
		{CommunityActive, "active"},
		{CommunitySuspended, "suspended"},
		{CommunityDissolved, "dissolved"},
		{CommunityState(7), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ─── Commit Digest Tests ────────────────────────────────────────────────────

func TestCommitDigest(t *testing.T) {
	secret := []byte("winter-moth-7")

	want := sha256.Sum256(append([]byte{0x01}, secret...))
	if got := CommitDigest(true, secret); got != want {
		t.Errorf("CommitDigest(true) = %x, want %x", got, want)
	}

	want = sha256.Sum256(append([]byte{0x00}, secret...))
	if got := CommitDigest(false, secret); got != want {
		t.Errorf("CommitDigest(false) = %x, want %x", got, want)
	}

	if CommitDigest(true, secret) == CommitDigest(false, secret) {
		t.Error("digests for opposite outcomes must differ")
	}
	if CommitDigest(true, secret) == CommitDigest(true, []byte("other")) {
		t.Error("digests for different secrets must differ")
	}
}

func TestParseDigest_RoundTrip(t *testing.T) {
	d := CommitDigest(true, []byte("round-trip"))
	parsed, err := ParseDigest(DigestHex(d))
	if err != nil {
		t.Fatalf("ParseDigest() error = %v", err)
	}
	if parsed != d {
		t.Errorf("ParseDigest(DigestHex(d)) = %x, want %x", parsed, d)
	}
}

func TestParseDigest_Malformed(t *testing.T) {
	for _, s := range []string{"", "zz", "abcd", "not hex at all"} {
		if _, err := ParseDigest(s); !errors.Is(err, ErrBadDigest) {
			t.Errorf("ParseDigest(%q) error = %v, want ErrBadDigest", s, err)
		}
	}
}

// ─── Param Tests ────────────────────────────────────────────────────────────

func TestParamChange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		change  ParamChange
		wantErr error
	}{
		{"decay rate ok", ParamChange{ParamDecayRatePerSecond, RateScale / 2}, nil},
		{"decay rate zero ok", ParamChange{ParamDecayRatePerSecond, 0}, nil},
		{"decay rate over full", ParamChange{ParamDecayRatePerSecond, RateScale + 1}, ErrInvalidParam},
		{"voting period ok", ParamChange{ParamVotingPeriodSeconds, 3600}, nil},
		{"voting period zero", ParamChange{ParamVotingPeriodSeconds, 0}, ErrInvalidParam},
		{"quorum any value", ParamChange{ParamQuorumWeight, 0}, nil},
		{"deposit any value", ParamChange{ParamMinimumDeposit, 0}, nil},
		{"reveal quorum ok", ParamChange{ParamRequiredRevealQuorum, 3}, nil},
		{"reveal quorum zero", ParamChange{ParamRequiredRevealQuorum, 0}, ErrInvalidParam},
		{"reveal quorum too big", ParamChange{ParamRequiredRevealQuorum, 1 << 40}, ErrInvalidParam},
		{"lock any value", ParamChange{ParamUnbondLockSeconds, 0}, nil},
		{"unknown param", ParamChange{"burn_rate", 1}, ErrUnknownParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.change.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParams_Apply(t *testing.T) {
	p := DefaultParams()
	p = p.Apply(ParamChange{ParamDecayRatePerSecond, 123})
	p = p.Apply(ParamChange{ParamVotingPeriodSeconds, 60})
	p = p.Apply(ParamChange{ParamQuorumWeight, 9})
	p = p.Apply(ParamChange{ParamMinimumDeposit, 7})
	p = p.Apply(ParamChange{ParamRequiredRevealQuorum, 5})
	p = p.Apply(ParamChange{ParamUnbondLockSeconds, 3600})

	if p.DecayRatePerSecond != 123 || p.VotingPeriodSeconds != 60 ||
		p.QuorumWeight != 9 || p.MinimumDeposit != 7 ||
		p.RequiredRevealQuorum != 5 || p.UnbondLockSeconds != 3600 {
		t.Errorf("Apply() produced %+v", p)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.DecayRatePerSecond != 0 {
		t.Errorf("default decay rate = %d, want 0 (disabled)", p.DecayRatePerSecond)
	}
	if p.RequiredRevealQuorum != 2 {
		t.Errorf("default reveal quorum = %d, want 2", p.RequiredRevealQuorum)
	}
	if p.UnbondLockSeconds != 604800 {
		t.Errorf("default unbond lock = %d, want 604800", p.UnbondLockSeconds)
	}
	if p.VotingPeriod().Hours() != 72 {
		t.Errorf("voting period = %v, want 72h", p.VotingPeriod())
	}
}

// ─── Fault Classification Tests ─────────────────────────────────────────────

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FaultKind
	}{
		{"nil", nil, FaultNone},
		{"duplicate commit", ErrDuplicateCommit, FaultPrecondition},
		{"vote after deadline", ErrVotingClosed, FaultPrecondition},
		{"hash mismatch", ErrHashMismatch, FaultIntegrity},
		{"credits", ErrInsufficientCredits, FaultResource},
		{"lock not expired", ErrLockNotExpired, FaultTemporal},
		{"tally too early", ErrVotingOpen, FaultTemporal},
		{"unknown item", ErrUnknownItem, FaultNotFound},
		{"no unbond request", ErrNoRequest, FaultNotFound},
		{"unclassified", errors.New("disk on fire"), FaultInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("claim target-a: %w", ErrLockNotExpired)
	if got := Classify(wrapped); got != FaultTemporal {
		t.Errorf("Classify(wrapped) = %v, want FaultTemporal", got)
	}
}

func TestFaultKind_String(t *testing.T) {
	tests := []struct {
		kind FaultKind
		want string
	}{
		{FaultNone, "none"},
		{FaultPrecondition, "precondition_violation"},
		{FaultIntegrity, "integrity_violation"},
		{FaultResource, "resource_exhaustion"},
		{FaultTemporal, "temporal_violation"},
		{FaultNotFound, "not_found"},
		{FaultInternal, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ─── Sentinel Tests ─────────────────────────────────────────────────────────

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrDuplicateCommit", ErrDuplicateCommit},
		{"ErrHashMismatch", ErrHashMismatch},
		{"ErrRequestAlreadyPending", ErrRequestAlreadyPending},
		{"ErrLockNotExpired", ErrLockNotExpired},
		{"ErrAlreadyClaimed", ErrAlreadyClaimed},
		{"ErrInsufficientCredits", ErrInsufficientCredits},
	}
	for _, tt := range sentinels {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s.Error() is empty", tt.name)
			}
		})
	}
}

func TestTransactionTypes_Distinct(t *testing.T) {
	types := []TransactionType{TxSeed, TxDeposit, TxStake, TxRefund, TxAward, TxForfeit}
	seen := make(map[TransactionType]bool)
	for _, tt := range types {
		if seen[tt] {
			t.Errorf("duplicate TransactionType: %s", tt)
		}
		seen[tt] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 unique TransactionTypes, got %d", len(seen))
	}
}
