// Package entry defines the ranked record stored in a leaderboard tree.
package entry

import (
	"math"
	"time"
)

// Clock returns the current time as seconds since epoch. Tests substitute a
// deterministic clock; production code uses Now.
type Clock func() float64

// Now is the default Clock, wired to the wall clock.
func Now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Entry is an immutable (key, score, timestamp) triple — the unit of ranking.
// Zero value is a valid, if meaningless, Entry.
type Entry struct {
	Key       int64
	Score     float64
	Timestamp float64
}

// New stamps a fresh Entry with the given clock.
func New(key int64, score float64, clock Clock) Entry {
	if clock == nil {
		clock = Now
	}
	return Entry{Key: key, Score: score, Timestamp: clock()}
}

// Less reports whether a should sort strictly before b in ascending tree
// order, i.e. whether b outranks a (ascending tree order runs from the
// lowest rank to the highest: rank 1 is the right-most node). Order:
//  1. higher score outranks lower score
//  2. equal score: earlier timestamp outranks later
//  3. equal score and timestamp: larger key outranks smaller
//
// "Outranks" means comes later in ascending order (closer to the right-most
// / rank-1 position), so Less is the reverse of "outranks": a sorts before
// b exactly when b outranks a.
func Less(a, b Entry) bool {
	sa, sb := totalOrderFloat(a.Score), totalOrderFloat(b.Score)
	if sa != sb {
		return sa < sb
	}
	if a.Timestamp != b.Timestamp {
		// earlier timestamp outranks later => earlier sorts AFTER later in
		// ascending order => earlier timestamp is NOT Less.
		return a.Timestamp > b.Timestamp
	}
	if a.Key != b.Key {
		// larger key outranks smaller => larger sorts after smaller.
		return a.Key < b.Key
	}
	return false
}

// Equal reports whether a and b occupy the same position in the total order
// (not necessarily bit-identical — NaN handling folds distinct NaN payloads
// together, matching the tree's use of this as its equality relation).
func Equal(a, b Entry) bool {
	return !Less(a, b) && !Less(b, a)
}

// Compare returns -1, 0, or 1 per the ascending total order, for callers that
// want a single three-way comparison (binary search style tree descent).
func Compare(a, b Entry) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// totalOrderFloat maps a float64 onto an IEEE total-order-comparable uint64
// (converted to int64 for ordinary signed comparison) so NaN never breaks
// the tree's transitivity: negative-signed floats (including -NaN) sort
// below positive-signed floats (including +NaN), with ordinary magnitude
// order preserved within each sign. This keeps the comparator a genuine
// total order — required for the BST invariants — while still admitting
// NaN scores, per the "float ordering" design note.
func totalOrderFloat(f float64) int64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	// Flip the top bit so signed int64 comparison matches the unsigned
	// order of bits.
	return int64(bits ^ (1 << 63))
}
