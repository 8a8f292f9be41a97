package dsa

import (
	"sync"
	"time"
)

// ─── Deadline Heap ──────────────────────────────────────────────────────────
// Binary min-heap ordering opaque uint64 handles by a time key.
//
// Operations:
//   Push:   O(log n) — sift up
//   PopDue: O(log n) per due entry — extract-min while due
//   Peek:   O(1)
//
// Entries are immutable once pushed. The heap does not know whether a
// handle is still live; callers skip stale handles after popping (lazy
// deletion). Time never advances inside the heap — "due" is judged only
// against the now the caller passes in.

// DeadlineEntry is one time-keyed handle.
type DeadlineEntry struct {
	ID uint64
	At time.Time
}

// DeadlineHeap is a thread-safe min-heap of deadline entries.
type DeadlineHeap struct {
	mu   sync.Mutex
	heap []DeadlineEntry
}

// NewDeadlineHeap creates an empty heap.
func NewDeadlineHeap() *DeadlineHeap {
	return &DeadlineHeap{}
}

// Push adds a handle with its deadline. O(log n).
func (dh *DeadlineHeap) Push(id uint64, at time.Time) {
	dh.mu.Lock()
	defer dh.mu.Unlock()

	dh.heap = append(dh.heap, DeadlineEntry{ID: id, At: at})
	dh.siftUp(len(dh.heap) - 1)
}

// PopDue removes and returns every entry whose deadline is at or before
// now, earliest first. Returns nil when nothing is due.
func (dh *DeadlineHeap) PopDue(now time.Time) []DeadlineEntry {
	dh.mu.Lock()
	defer dh.mu.Unlock()

	var due []DeadlineEntry
	for len(dh.heap) > 0 && !dh.heap[0].At.After(now) {
		due = append(due, dh.heap[0])
		last := len(dh.heap) - 1
		dh.heap[0] = dh.heap[last]
		dh.heap = dh.heap[:last]
		if len(dh.heap) > 0 {
			dh.siftDown(0)
		}
	}
	return due
}

// Peek returns the earliest entry without removing it. O(1).
func (dh *DeadlineHeap) Peek() (DeadlineEntry, bool) {
	dh.mu.Lock()
	defer dh.mu.Unlock()

	if len(dh.heap) == 0 {
		return DeadlineEntry{}, false
	}
	return dh.heap[0], true
}

// Len returns the number of entries held.
func (dh *DeadlineHeap) Len() int {
	dh.mu.Lock()
	defer dh.mu.Unlock()
	return len(dh.heap)
}

// less returns true if entry i comes due before entry j.
func (dh *DeadlineHeap) less(i, j int) bool {
	if !dh.heap[i].At.Equal(dh.heap[j].At) {
		return dh.heap[i].At.Before(dh.heap[j].At)
	}
	// Tie-break: lower handle first, so ordering is total and stable.
	return dh.heap[i].ID < dh.heap[j].ID
}

// siftUp restores the heap property after insertion.
func (dh *DeadlineHeap) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if dh.less(idx, parent) {
			dh.heap[idx], dh.heap[parent] = dh.heap[parent], dh.heap[idx]
			idx = parent
		} else {
			break
		}
	}
}

// siftDown restores the heap property after extraction.
func (dh *DeadlineHeap) siftDown(idx int) {
	n := len(dh.heap)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2

		if left < n && dh.less(left, smallest) {
			smallest = left
		}
		if right < n && dh.less(right, smallest) {
			smallest = right
		}
		if smallest == idx {
			break
		}
		dh.heap[idx], dh.heap[smallest] = dh.heap[smallest], dh.heap[idx]
		idx = smallest
	}
}
