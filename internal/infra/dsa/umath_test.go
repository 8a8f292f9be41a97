package dsa

import (
	"errors"
	"math"
	"testing"
)

// ─── Checked Arithmetic Tests ───────────────────────────────────────────────

func TestAddU64(t *testing.T) {
	got, err := AddU64(40, 2)
	if err != nil || got != 42 {
		t.Errorf("AddU64(40, 2) = %d, %v, want 42, nil", got, err)
	}
	if _, err := AddU64(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("AddU64(max, 1) error = %v, want ErrOverflow", err)
	}
	if got, err := AddU64(math.MaxUint64, 0); err != nil || got != math.MaxUint64 {
		t.Errorf("AddU64(max, 0) = %d, %v", got, err)
	}
}

func TestSubU64(t *testing.T) {
	got, err := SubU64(42, 2)
	if err != nil || got != 40 {
		t.Errorf("SubU64(42, 2) = %d, %v, want 40, nil", got, err)
	}
	if _, err := SubU64(1, 2); !errors.Is(err, ErrUnderflow) {
		t.Errorf("SubU64(1, 2) error = %v, want ErrUnderflow", err)
	}
}

func TestMulU64(t *testing.T) {
	got, err := MulU64(6, 7)
	if err != nil || got != 42 {
		t.Errorf("MulU64(6, 7) = %d, %v, want 42, nil", got, err)
	}
	if _, err := MulU64(math.MaxUint64, 2); !errors.Is(err, ErrOverflow) {
		t.Errorf("MulU64(max, 2) error = %v, want ErrOverflow", err)
	}
	if got, err := MulU64(math.MaxUint64, 0); err != nil || got != 0 {
		t.Errorf("MulU64(max, 0) = %d, %v, want 0, nil", got, err)
	}
}

func TestSaturating(t *testing.T) {
	if got := SatAdd(math.MaxUint64, 5); got != math.MaxUint64 {
		t.Errorf("SatAdd(max, 5) = %d, want max", got)
	}
	if got := SatSub(3, 5); got != 0 {
		t.Errorf("SatSub(3, 5) = %d, want 0", got)
	}
	if got := SatSub(5, 3); got != 2 {
		t.Errorf("SatSub(5, 3) = %d, want 2", got)
	}
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name    string
		balance uint64
		delta   int64
		want    uint64
	}{
		{"plain add", 100, 50, 150},
		{"plain sub", 100, -60, 40},
		{"floor at zero", 100, -200, 0},
		{"exact zero", 100, -100, 0},
		{"saturate high", math.MaxUint64 - 1, 10, math.MaxUint64},
		{"min int64 magnitude", 5, math.MinInt64, 0},
		{"zero delta", 77, 0, 77},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyDelta(tt.balance, tt.delta); got != tt.want {
				t.Errorf("ApplyDelta(%d, %d) = %d, want %d", tt.balance, tt.delta, got, tt.want)
			}
		})
	}
}

// ─── Isqrt Tests ────────────────────────────────────────────────────────────

func TestIsqrt_Exact(t *testing.T) {
	tests := []struct {
		x    uint64
		want uint64
	}{
		{0, 0}, {1, 1}, {2, 1}, {3, 1}, {4, 2}, {5, 2}, {8, 2}, {9, 3},
		{15, 3}, {16, 4}, {99, 9}, {100, 10}, {101, 10},
		{400, 20}, {10_000, 100},
		{math.MaxUint32, 65535},
		{1 << 62, 1 << 31},
		{math.MaxUint64, math.MaxUint32},
	}
	for _, tt := range tests {
		if got := Isqrt(tt.x); got != tt.want {
			t.Errorf("Isqrt(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestIsqrt_Bracket(t *testing.T) {
	// isqrt(x)^2 <= x < (isqrt(x)+1)^2 across the range, with samples
	// chosen around perfect squares and word boundaries.
	samples := []uint64{
		0, 1, 2, 3, 4, 5, 24, 25, 26, 9999, 10000, 10001,
		1<<32 - 1, 1 << 32, 1<<32 + 1,
		1<<40 + 12345, 1<<52 + 987654321, 1 << 63, math.MaxUint64,
	}
	for x := uint64(0); x < 2000; x++ {
		samples = append(samples, x)
	}
	for _, x := range samples {
		r := Isqrt(x)
		if r != 0 && r > x/r { // r*r > x without overflow
			t.Fatalf("Isqrt(%d) = %d: square exceeds input", x, r)
		}
		// (r+1)^2 > x, guarded against overflow at the top of the range.
		if r1 := r + 1; r1 != 0 && r1 <= math.MaxUint64/r1 && r1*r1 <= x {
			t.Fatalf("Isqrt(%d) = %d: not the floor", x, r)
		}
	}
}

func TestIsqrt_Monotone(t *testing.T) {
	prev := uint64(0)
	for x := uint64(0); x < 5000; x++ {
		r := Isqrt(x)
		if r < prev {
			t.Fatalf("Isqrt(%d) = %d < Isqrt(%d) = %d", x, r, x-1, prev)
		}
		prev = r
	}
}

func FuzzIsqrt(f *testing.F) {
	for _, seed := range []uint64{0, 1, 2, 100, 1 << 31, 1 << 32, 1 << 63, math.MaxUint64} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, x uint64) {
		r := Isqrt(x)
		if r != 0 && r > x/r {
			t.Fatalf("Isqrt(%d) = %d: square exceeds input", x, r)
		}
		if r1 := r + 1; r1 != 0 && r1 <= math.MaxUint64/r1 && r1*r1 <= x {
			t.Fatalf("Isqrt(%d) = %d: not the floor", x, r)
		}
	})
}

// ─── MulDiv3 Tests ──────────────────────────────────────────────────────────

func TestMulDiv3(t *testing.T) {
	const scale = 1_000_000_000_000_000_000

	tests := []struct {
		name         string
		a, b, c, den uint64
		want         uint64
	}{
		{"zero factor", 0, 5, 5, 10, 0},
		{"simple", 10, 10, 10, 10, 100},
		{"one percent per second for one second", 1000, scale / 100, 1, scale, 10},
		{"full decay in one second", 1000, scale, 1, scale, 1000},
		{"tiny rate rounds down", 1000, 1, 1, scale, 0},
		{"huge elapsed saturates", math.MaxUint64, scale, math.MaxUint64, scale, math.MaxUint64},
		{"wide product no overflow", math.MaxUint64, math.MaxUint64, 1, math.MaxUint64, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MulDiv3(tt.a, tt.b, tt.c, tt.den); got != tt.want {
				t.Errorf("MulDiv3(%d, %d, %d, %d) = %d, want %d",
					tt.a, tt.b, tt.c, tt.den, got, tt.want)
			}
		})
	}
}
