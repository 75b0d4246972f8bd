// Package board composes the ranking tree, the key→entry index, and an
// optional size cap into the unit that the rest of the service operates on:
// a single named leaderboard.
package board

import (
	"sync"

	"github.com/edirooss/leaderboard/internal/apperr"
	"github.com/edirooss/leaderboard/internal/entry"
	"github.com/edirooss/leaderboard/internal/overlay"
	"github.com/edirooss/leaderboard/internal/tree"
)

// Board is a single ranked leaderboard: a balanced tree ordering entries by
// score (ties broken by earlier timestamp, then larger key), plus a
// key→entry overlay map for O(1) point lookups and a saver-friendly
// snapshot view.
//
// Zero value is not usable; construct with New.
type Board struct {
	mu sync.RWMutex

	tree  *tree.Tree
	byKey *overlay.Map[int64, entry.Entry]

	// cap, when non-nil, is the maximum number of entries the board keeps.
	// A new key on a full board evicts the current worst entry if it
	// outranks it, and is rejected otherwise.
	cap *int
}

// New returns an empty, uncapped Board.
func New() *Board {
	return &Board{
		tree:  tree.New(),
		byKey: overlay.New[int64, entry.Entry](),
	}
}

// FromTree returns a Board backed by a tree decoded from a save file,
// rebuilding the key→entry index from its contents. t is taken by
// reference; the caller must not touch it afterward.
func FromTree(t *tree.Tree) *Board {
	b := &Board{tree: t, byKey: overlay.New[int64, entry.Entry]()}
	for _, e := range t.Entries() {
		b.byKey.Insert(e.Key, e)
	}
	return b
}

// Clock lets callers (tests, replay tooling) control the timestamp stamped
// on updates. Production code leaves it nil, which defaults to the wall
// clock inside entry.New.
type Clock = entry.Clock

// Update inserts key at score if absent, or moves it to score if present.
// Per-key timestamps only advance when the score goes up — a score
// decrease keeps the entry's existing timestamp, so a player who drops in
// score doesn't jump the tie-break queue against players who held steady.
//
// Reports whether key already existed. If the board is at its cap and key
// is new and would rank no better than the current worst entry, the
// insert is rejected outright — board left unchanged — with
// apperr.ErrCapReject; an insert that would outrank the worst entry still
// succeeds, evicting that worst entry in its place.
func (b *Board) Update(key int64, score float64, clock Clock) (existed bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, existed := b.byKey.Get(key)
	if !existed {
		e := entry.New(key, score, clock)
		if b.cap != nil && b.tree.Len() >= *b.cap {
			worst, ok := b.tree.AtIndex(b.tree.Len() - 1)
			if ok && !entry.Less(worst, e) {
				return false, apperr.ErrCapReject
			}
		}
		b.tree.Insert(e)
		b.byKey.Insert(key, e)
		b.evictOverCapLocked()
		return false, nil
	}

	if old.Score == score {
		return true, nil
	}

	ts := old.Timestamp
	if score > old.Score {
		if clock == nil {
			ts = entry.Now()
		} else {
			ts = clock()
		}
	}
	updated := entry.Entry{Key: key, Score: score, Timestamp: ts}

	b.tree.Remove(old)
	b.tree.Insert(updated)
	b.byKey.Insert(key, updated)
	return true, nil
}

// Remove deletes key, returning its entry if it existed.
func (b *Board) Remove(key int64) (entry.Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.byKey.Remove(key)
	if !ok {
		return entry.Entry{}, false
	}
	b.tree.Remove(e)
	return e, true
}

// Get returns key's entry, if present.
func (b *Board) Get(key int64) (entry.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.byKey.Get(key)
}

// RankOf returns key's 1-based rank (1 = best), if present.
func (b *Board) RankOf(key int64) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.byKey.Get(key)
	if !ok {
		return 0, false
	}
	idx, ok := b.tree.IndexOf(e)
	if !ok {
		return 0, false
	}
	return idx + 1, true
}

// EntryAndRank returns key's entry together with its 1-based rank.
func (b *Board) EntryAndRank(key int64) (entry.Entry, int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.byKey.Get(key)
	if !ok {
		return entry.Entry{}, 0, false
	}
	idx, ok := b.tree.IndexOf(e)
	if !ok {
		return entry.Entry{}, 0, false
	}
	return e, idx + 1, true
}

// AtRank returns the entry at 1-based rank.
func (b *Board) AtRank(rank int) (entry.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.AtIndex(rank - 1)
}

// Len returns the number of entries on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree.Len()
}

// Top returns up to count entries starting at rank 1, best-first.
func (b *Board) Top(count int) []entry.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.tree.Len()
	if count > n {
		count = n
	}
	out := make([]entry.Entry, 0, max0(count))
	for i := 0; i < count; i++ {
		v, _ := b.tree.AtIndex(i)
		out = append(out, v)
	}
	return out
}

// Bottom returns up to count entries starting at the worst rank,
// worst-first.
func (b *Board) Bottom(count int) []entry.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.tree.Len()
	if count > n {
		count = n
	}
	out := make([]entry.Entry, 0, max0(count))
	for i := 0; i < count; i++ {
		v, _ := b.tree.AtIndex(n - 1 - i)
		out = append(out, v)
	}
	return out
}

// After returns up to count entries immediately below key in rank
// (worse-ranked neighbors), ordered from nearest to farthest.
func (b *Board) After(key int64, count int) ([]entry.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.byKey.Get(key)
	if !ok {
		return nil, false
	}
	c := b.tree.CursorAt(e)
	out := make([]entry.Entry, 0, max0(count))
	for i := 0; i < count; i++ {
		c.MovePrev()
		v, ok := c.GetValue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, true
}

// Before returns up to count entries immediately above key in rank
// (better-ranked neighbors), ordered from nearest to farthest.
func (b *Board) Before(key int64, count int) ([]entry.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.byKey.Get(key)
	if !ok {
		return nil, false
	}
	c := b.tree.CursorAt(e)
	out := make([]entry.Entry, 0, max0(count))
	for i := 0; i < count; i++ {
		c.MoveNext()
		v, ok := c.GetValue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, true
}

// Around returns up to before entries better-ranked than key, key itself,
// and up to after entries worse-ranked than key — all in ascending rank
// order (best first).
func (b *Board) Around(key int64, before, after int) ([]entry.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.byKey.Get(key)
	if !ok {
		return nil, false
	}

	head := make([]entry.Entry, 0, max0(before))
	c := b.tree.CursorAt(e)
	for i := 0; i < before; i++ {
		c.MoveNext()
		v, ok := c.GetValue()
		if !ok {
			break
		}
		head = append(head, v)
	}
	// head was collected nearest-to-key outward (better ranks first in
	// walk order but closest-to-key first); reverse so the result reads
	// best-rank-first overall.
	for i, j := 0, len(head)-1; i < j; i, j = i+1, j-1 {
		head[i], head[j] = head[j], head[i]
	}

	out := make([]entry.Entry, 0, len(head)+1+max0(after))
	out = append(out, head...)
	out = append(out, e)

	c2 := b.tree.CursorAt(e)
	for i := 0; i < after; i++ {
		c2.MovePrev()
		v, ok := c2.GetValue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, true
}

// Range returns the entries whose 1-based rank falls in [fromRank, toRank]
// inclusive, in ascending rank order. Out-of-range bounds are clamped.
func (b *Board) Range(fromRank, toRank int) []entry.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.tree.Len()
	if fromRank < 1 {
		fromRank = 1
	}
	if toRank > n {
		toRank = n
	}
	if fromRank > toRank {
		return nil
	}
	out := make([]entry.Entry, 0, toRank-fromRank+1)
	for r := fromRank; r <= toRank; r++ {
		v, ok := b.tree.AtIndex(r - 1)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Clear removes every entry.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Clear()
	b.byKey.Clear()
}

// SetCap sets the maximum number of entries the board retains, evicting the
// current worst entries if it is already over the new limit.
func (b *Board) SetCap(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cap = &n
	b.evictOverCapLocked()
}

// RemoveCap lifts any size cap previously set by SetCap.
func (b *Board) RemoveCap() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cap = nil
}

// GetCap returns the current cap, if any.
func (b *Board) GetCap() (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.cap == nil {
		return 0, false
	}
	return *b.cap, true
}

// TrimToCap re-applies the current cap, evicting worst entries until the
// board is at or under it. A no-op if no cap is set.
func (b *Board) TrimToCap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evictOverCapLocked()
}

func (b *Board) evictOverCapLocked() int {
	if b.cap == nil {
		return 0
	}
	evicted := 0
	for b.tree.Len() > *b.cap {
		worst, ok := b.tree.AtIndex(b.tree.Len() - 1)
		if !ok {
			break
		}
		b.tree.Remove(worst)
		b.byKey.Remove(worst.Key)
		evicted++
	}
	return evicted
}

// SnapshotForSave freezes the board's entries for a consistent read (used
// by the saver so a concurrent save doesn't block live updates, and never
// observes a half-written tree). The returned snapshot is an independent
// copy of the entries and holds nothing that needs releasing.
func (b *Board) SnapshotForSave() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{entries: b.tree.Entries()}
}

// Snapshot is a frozen, ordered view of a board's entries at the moment
// SnapshotForSave was called.
type Snapshot struct {
	entries []entry.Entry
}

// Entries returns the snapshot's entries in ascending rank order (best
// first).
func (s *Snapshot) Entries() []entry.Entry {
	return s.entries
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
