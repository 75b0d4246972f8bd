package tree

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/edirooss/leaderboard/internal/entry"
	"github.com/stretchr/testify/require"
)

// dumpOnFailure prints the tree's full entry list via spew if t has already
// failed — a randomized test's assertion message alone doesn't show which
// other entries were in the tree at the time.
func dumpOnFailure(t *testing.T, tr *Tree) {
	t.Helper()
	if t.Failed() {
		t.Logf("tree entries at failure:\n%s", spew.Sdump(tr.Entries()))
	}
}

func e(key int64, score, ts float64) entry.Entry {
	return entry.Entry{Key: key, Score: score, Timestamp: ts}
}

func TestInsertContainsRemove(t *testing.T) {
	tr := New()
	require.True(t, tr.Insert(e(1, 10, 1)))
	require.True(t, tr.Insert(e(2, 20, 1)))
	require.False(t, tr.Insert(e(1, 10, 1))) // duplicate
	require.Equal(t, 2, tr.Len())
	require.True(t, tr.Contains(e(1, 10, 1)))

	removed, ok := tr.Remove(e(1, 10, 1))
	require.True(t, ok)
	require.Equal(t, int64(1), removed.Key)
	require.False(t, tr.Contains(e(1, 10, 1)))
	require.Equal(t, 1, tr.Len())
}

func TestRankOrdering(t *testing.T) {
	tr := New()
	tr.Insert(e(1, 100, 1))
	tr.Insert(e(2, 200, 2))
	tr.Insert(e(3, 50, 3))

	// Rank 0 (best) must be the highest score.
	v, ok := tr.AtIndex(0)
	require.True(t, ok)
	require.Equal(t, int64(2), v.Key)

	idx, ok := tr.IndexOf(e(2, 200, 2))
	require.True(t, ok)
	require.Equal(t, 0, idx)

	idx, ok = tr.IndexOf(e(3, 50, 3))
	require.True(t, ok)
	require.Equal(t, 2, idx)
}

func TestTieBreakEarlierTimestampWins(t *testing.T) {
	tr := New()
	tr.Insert(e(1, 100, 5)) // later timestamp
	tr.Insert(e(2, 100, 1)) // earlier timestamp, same score

	best, ok := tr.AtIndex(0)
	require.True(t, ok)
	require.Equal(t, int64(2), best.Key)
}

func TestTieBreakLargerKeyWins(t *testing.T) {
	tr := New()
	tr.Insert(e(5, 100, 1))
	tr.Insert(e(9, 100, 1))

	best, ok := tr.AtIndex(0)
	require.True(t, ok)
	require.Equal(t, int64(9), best.Key)
}

func TestNaNScoreAdmissible(t *testing.T) {
	tr := New()
	require.True(t, tr.Insert(e(1, math.NaN(), 1)))
	require.True(t, tr.Insert(e(2, 10, 1)))
	require.Equal(t, 2, tr.Len())
}

func TestCursorMoveNextPrevAndWrap(t *testing.T) {
	tr := New()
	tr.Insert(e(1, 10, 1))
	tr.Insert(e(2, 20, 1))
	tr.Insert(e(3, 30, 1))

	c := tr.NewCursor()
	require.True(t, c.IsAtEnd())

	c.MoveNext() // from sentinel -> last rank (worst entry)
	v, ok := c.GetValue()
	require.True(t, ok)
	require.Equal(t, int64(1), v.Key)

	c2 := tr.NewCursor()
	c2.MovePrev() // from sentinel -> rank 1 (best entry)
	v2, ok := c2.GetValue()
	require.True(t, ok)
	require.Equal(t, int64(3), v2.Key)

	c2.MovePrev()
	v2, ok = c2.GetValue()
	require.True(t, ok)
	require.Equal(t, int64(2), v2.Key)
}

func TestCursorStalePanics(t *testing.T) {
	tr := New()
	tr.Insert(e(1, 10, 1))
	c := tr.NewCursor()
	tr.Insert(e(2, 20, 1))

	require.Panics(t, func() {
		c.MoveNext()
	})
}

func TestReplaceSmallAndLargeDistance(t *testing.T) {
	tr := New()
	for i := int64(0); i < 50; i++ {
		tr.Insert(e(i, float64(i), 1))
	}

	old, ok := tr.Replace(e(25, 25, 1), e(25, 26, 2))
	require.True(t, ok)
	require.Equal(t, int64(25), old.Key)
	require.True(t, tr.Contains(e(25, 26, 2)))

	old, ok = tr.Replace(e(1, 1, 1), e(1, 1000, 2))
	require.True(t, ok)
	require.Equal(t, int64(1), old.Key)
	require.True(t, tr.Contains(e(1, 1000, 2)))

	idx, _ := tr.IndexOf(e(1, 1000, 2))
	require.Equal(t, 0, idx)
}

func TestClear(t *testing.T) {
	tr := New()
	for i := int64(0); i < 20; i++ {
		tr.Insert(e(i, float64(i), 1))
	}
	tr.Clear()
	require.Equal(t, 0, tr.Len())
	require.Equal(t, 0, tr.Height())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tr := New()
	for i := int64(0); i < 100; i++ {
		tr.Insert(e(i, float64(i*7%97), float64(i)))
	}

	var buf bytes.Buffer
	require.NoError(t, tr.EncodeTo(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, tr.Len(), decoded.Len())

	for i := 0; i < tr.Len(); i++ {
		want, _ := tr.AtIndex(i)
		got, _ := decoded.AtIndex(i)
		require.Equal(t, want, got)
	}
}

func TestEncodeDecodeEmpty(t *testing.T) {
	tr := New()
	var buf bytes.Buffer
	require.NoError(t, tr.EncodeTo(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.Len())
}

func TestRandomizedInsertRemoveMaintainsOrder(t *testing.T) {
	tr := New()
	r := rand.New(rand.NewSource(1))
	stored := make(map[int64]entry.Entry)

	for i := 0; i < 500; i++ {
		k := int64(r.Intn(300))
		if _, ok := stored[k]; ok {
			continue
		}
		v := e(k, float64(r.Intn(1000)), float64(i))
		stored[k] = v
		tr.Insert(v)
	}

	// Ascending rank order: AtIndex(i+1) must never outrank AtIndex(i)
	// (rank 0 is best, ranks get worse as the index grows).
	for i := 0; i+1 < tr.Len(); i++ {
		a, _ := tr.AtIndex(i)
		b, _ := tr.AtIndex(i + 1)
		require.False(t, entry.Less(a, b), "entry at rank %d must not outrank rank %d", i+1, i)
	}
	dumpOnFailure(t, tr)

	for k, v := range stored {
		if r.Intn(2) == 0 {
			_, removed := tr.Remove(v)
			require.True(t, removed)
			delete(stored, k)
		}
	}
	require.Equal(t, len(stored), tr.Len())

	for i := 0; i+1 < tr.Len(); i++ {
		a, _ := tr.AtIndex(i)
		b, _ := tr.AtIndex(i + 1)
		require.False(t, entry.Less(a, b))
	}
	dumpOnFailure(t, tr)
}
