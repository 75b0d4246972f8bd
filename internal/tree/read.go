package tree

import "github.com/edirooss/leaderboard/internal/entry"

// rankOf returns the 0-based rank of n: the number of entries that outrank
// it (i.e. compare Greater). The maximum entry (best, rank 1 externally) has
// rankOf == 0.
func (t *Tree) rankOf(n *node) int {
	rank := size(n.right)
	cur := n
	for cur.parent != t.sentinel {
		p := cur.parent
		if cur.isLeftChild {
			rank += 1 + size(p.right)
		}
		cur = p
	}
	return rank
}

// IndexOf returns the 0-based rank of val — the number of entries that
// outrank it — and whether an equal entry is present. For an absent val this
// is the rank it would occupy if inserted. O(log n).
func (t *Tree) IndexOf(val entry.Entry) (int, bool) {
	rank := 0
	cur := t.sentinel.right
	for cur != nil {
		switch entry.Compare(val, cur.value) {
		case 0:
			return rank + size(cur.right), true
		case -1:
			rank += 1 + size(cur.right)
			cur = cur.left
		case 1:
			cur = cur.right
		}
	}
	return rank, false
}

// AtIndex returns the entry at 0-based rank idx (0 is the best entry), and
// whether idx is in range. O(log n).
func (t *Tree) AtIndex(idx int) (entry.Entry, bool) {
	if idx < 0 || idx >= t.Len() {
		return entry.Entry{}, false
	}
	cur := t.sentinel.right
	for cur != nil {
		r := size(cur.right)
		switch {
		case idx == r:
			return cur.value, true
		case idx < r:
			cur = cur.right
		default:
			idx -= r + 1
			cur = cur.left
		}
	}
	return entry.Entry{}, false
}
