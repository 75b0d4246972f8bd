package tree

import "github.com/edirooss/leaderboard/internal/entry"

// Entries returns every entry in ascending rank order (rank 1 first). O(n).
func (t *Tree) Entries() []entry.Entry {
	out := make([]entry.Entry, 0, t.Len())
	c := t.NewCursor()
	for {
		c.MoveNext()
		v, ok := c.GetValue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	// MoveNext walks toward better rank starting from past-the-end (worst
	// first); reverse so the result reads best-first like everything else.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
