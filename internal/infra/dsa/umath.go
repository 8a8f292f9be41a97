// Package dsa implements the data structures and numeric kernels under the
// curation engine.
//
// This package provides three groups:
//  1. Checked/saturating uint64 arithmetic and the consensus Isqrt
//  2. BloomFilter — O(1) probabilistic lookup for reveal-secret reuse
//  3. DeadlineHeap — O(log n) min-heap over time-keyed handles
package dsa

import (
	"errors"
	"math"

	"github.com/holiman/uint256"
)

// ─── Checked Arithmetic ─────────────────────────────────────────────────────
// Score and stake arithmetic must never wrap. Checked forms return an
// error; saturating forms pin at the uint64 bounds.

var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
)

// AddU64 returns a+b or ErrOverflow.
func AddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// SubU64 returns a-b or ErrUnderflow.
func SubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// MulU64 returns a*b or ErrOverflow.
func MulU64(a, b uint64) (uint64, error) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// SatAdd returns a+b pinned at MaxUint64.
func SatAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SatSub returns a-b floored at zero.
func SatSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// ApplyDelta adds a signed delta to a balance, saturating at both ends.
// The floor at zero is the rule for every score mutation: balances are
// never negative and never wrap.
func ApplyDelta(balance uint64, delta int64) uint64 {
	if delta >= 0 {
		return SatAdd(balance, uint64(delta))
	}
	mag := uint64(-(delta + 1)) + 1 // two's-complement safe for MinInt64
	return SatSub(balance, mag)
}

// ─── Integer Square Root ────────────────────────────────────────────────────

// Isqrt returns floor(sqrt(x)) by Newton's method. The iteration sequence
// is pinned and must stay bit-for-bit identical across implementations —
// vote weights derived from it are consensus-relevant:
//
//	isqrt(0) = 0
//	z, y = (x+1)/2, x
//	while z < y: y, z = z, (x/z + z)/2
//	return y
func Isqrt(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	z := (x >> 1) + (x & 1) // (x+1)/2 without overflow
	y := x
	for z < y {
		y = z
		z = (x/z + z) / 2
	}
	return y
}

// ─── Wide Multiply-Divide ───────────────────────────────────────────────────

// MulDiv3 returns a*b*c/den with 256-bit intermediates (the product can
// reach 2^192), saturating the quotient to MaxUint64. den must be nonzero.
func MulDiv3(a, b, c, den uint64) uint64 {
	if a == 0 || b == 0 || c == 0 {
		return 0
	}
	prod := new(uint256.Int).Mul(
		new(uint256.Int).SetUint64(a),
		new(uint256.Int).SetUint64(b),
	)
	prod.Mul(prod, new(uint256.Int).SetUint64(c))
	prod.Div(prod, new(uint256.Int).SetUint64(den))
	if !prod.IsUint64() {
		return math.MaxUint64
	}
	return prod.Uint64()
}
