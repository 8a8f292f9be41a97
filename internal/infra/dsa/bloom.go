package dsa

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// ─── Bloom Filter ───────────────────────────────────────────────────────────
// Probabilistic set membership for revealed secrets. A participant who
// reuses a reveal secret lets observers brute-force the one-bit outcome of
// any later commitment made with it, so the verifier flags probable reuse:
//   - Contains → probably reused (false positive rate ≤ configured FPR)
//   - not Contains → definitely fresh (zero false negatives)
//
// The flag is advisory only; it never blocks a reveal. Space: ~9.6 bits
// per element at 1% FP → ~60 KB for 50k secrets, vs several MB to retain
// every digest.

// BloomConfig configures a Bloom filter.
type BloomConfig struct {
	ExpectedItems int     // Expected number of elements
	FPRate        float64 // Desired false positive rate (e.g. 0.01 = 1%)
}

// DefaultBloomConfig sizes for 50k revealed secrets at a 1% FP rate.
func DefaultBloomConfig() BloomConfig {
	return BloomConfig{
		ExpectedItems: 50_000,
		FPRate:        0.01,
	}
}

// BloomFilter is a space-efficient probabilistic set.
type BloomFilter struct {
	mu      sync.RWMutex
	bits    []uint64 // bit array stored as uint64 words
	numBits uint     // total bits
	numHash uint     // number of hash functions
	count   int      // elements added
}

// NewBloomFilter creates a Bloom filter sized to achieve the target FP rate.
// Optimal sizing formulas:
//
//	m = -(n * ln(p)) / (ln(2)^2)   — total bits
//	k = (m/n) * ln(2)              — hash functions
func NewBloomFilter(cfg BloomConfig) *BloomFilter {
	if cfg.ExpectedItems <= 0 {
		cfg.ExpectedItems = 50_000
	}
	if cfg.FPRate <= 0 || cfg.FPRate >= 1 {
		cfg.FPRate = 0.01
	}

	n := float64(cfg.ExpectedItems)
	p := cfg.FPRate

	m := uint(math.Ceil(-(n * math.Log(p)) / (math.Log(2) * math.Log(2))))
	k := uint(math.Ceil(float64(m) / n * math.Log(2)))

	if m == 0 {
		m = 64
	}
	if k == 0 {
		k = 1
	}

	return &BloomFilter{
		bits:    make([]uint64, (m+63)/64),
		numBits: m,
		numHash: k,
	}
}

// Add inserts an item into the filter.
func (bf *BloomFilter) Add(item []byte) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	h1, h2 := baseHashes(item)
	for i := uint(0); i < bf.numHash; i++ {
		pos := bf.nthHash(h1, h2, i)
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
	bf.count++
}

// Contains tests whether an item might be in the filter.
// False means definitely not present. True means probably present.
func (bf *BloomFilter) Contains(item []byte) bool {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	h1, h2 := baseHashes(item)
	for i := uint(0); i < bf.numHash; i++ {
		pos := bf.nthHash(h1, h2, i)
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of items added.
func (bf *BloomFilter) Count() int {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return bf.count
}

// EstimatedFPRate returns the estimated current false positive rate
// based on the number of items added: ≈ (1 - e^(-kn/m))^k.
func (bf *BloomFilter) EstimatedFPRate() float64 {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	m := float64(bf.numBits)
	k := float64(bf.numHash)
	n := float64(bf.count)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// baseHashes computes two independent 32-bit hashes using SHA-256.
// Double hashing (Kirsch-Mitzenmacker) derives k positions from the two:
// h_i(x) = h1(x) + i*h2(x).
func baseHashes(item []byte) (uint32, uint32) {
	sum := sha256.Sum256(item)
	return binary.BigEndian.Uint32(sum[0:4]), binary.BigEndian.Uint32(sum[4:8])
}

// nthHash derives the i-th bit position.
func (bf *BloomFilter) nthHash(h1, h2 uint32, i uint) uint {
	return uint((uint64(h1) + uint64(i)*uint64(h2)) % uint64(bf.numBits))
}
