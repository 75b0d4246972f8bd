package tree

import "github.com/edirooss/leaderboard/internal/entry"

// Cursor is a position within a Tree that can walk forward/backward in
// ascending order, or step through the raw tree shape. A Cursor becomes
// stale the moment the owning Tree is mutated through any path other than
// the cursor's own Delete*/Replace methods; using a stale cursor panics
// rather than silently reading rewired nodes, since Go has no borrow
// checker to forbid the aliasing at compile time.
type Cursor struct {
	t   *Tree
	n   *node
	gen uint64
}

// NewCursor returns a cursor positioned past-the-end (neither before the
// first nor after the last entry).
func (t *Tree) NewCursor() *Cursor {
	return &Cursor{t: t, n: t.sentinel, gen: t.gen}
}

// CursorAt returns a cursor positioned at the entry equal to val, or a
// past-the-end cursor if no such entry exists.
func (t *Tree) CursorAt(val entry.Entry) *Cursor {
	n := t.find(val)
	if n == nil {
		n = t.sentinel
	}
	return &Cursor{t: t, n: n, gen: t.gen}
}

func (c *Cursor) checkStale() {
	if c.gen != c.t.gen {
		panic("tree: cursor used after the tree was structurally modified")
	}
}

// IsAtEnd reports whether the cursor is at the past-the-end position.
func (c *Cursor) IsAtEnd() bool {
	c.checkStale()
	return c.n == c.t.sentinel
}

// MoveNext advances toward better rank (in-order successor). From
// past-the-end, lands on the worst-ranked entry.
func (c *Cursor) MoveNext() {
	c.checkStale()
	if c.n == c.t.sentinel {
		c.n = nextFromSentinel(c.t.sentinel)
	} else {
		c.n = succ(c.t.sentinel, c.n)
	}
}

// MovePrev advances toward worse rank (in-order predecessor). From
// past-the-end, lands on the best-ranked entry (rank 1).
func (c *Cursor) MovePrev() {
	c.checkStale()
	if c.n == c.t.sentinel {
		c.n = prevFromSentinel(c.t.sentinel)
	} else {
		c.n = pred(c.t.sentinel, c.n)
	}
}

// MoveLeft/MoveRight/MoveParent walk the raw tree shape rather than ascending
// order. They report whether the move was possible.
func (c *Cursor) MoveLeft() bool {
	c.checkStale()
	if c.n == c.t.sentinel || c.n.left == nil {
		return false
	}
	c.n = c.n.left
	return true
}

func (c *Cursor) MoveRight() bool {
	c.checkStale()
	if c.n == c.t.sentinel || c.n.right == nil {
		return false
	}
	c.n = c.n.right
	return true
}

func (c *Cursor) MoveParent() bool {
	c.checkStale()
	if c.n == c.t.sentinel || c.n.parent == nil {
		return false
	}
	c.n = c.n.parent
	return true
}

// GetValue returns the entry at the cursor, or false if past-the-end.
func (c *Cursor) GetValue() (entry.Entry, bool) {
	c.checkStale()
	if c.n == c.t.sentinel {
		return entry.Entry{}, false
	}
	return c.n.value, true
}

// GetIndex returns the 0-based rank at the cursor, or false if past-the-end.
func (c *Cursor) GetIndex() (int, bool) {
	c.checkStale()
	if c.n == c.t.sentinel {
		return 0, false
	}
	return c.t.rankOf(c.n), true
}

// GetHeight returns the height of the subtree rooted at the cursor, or false
// if past-the-end.
func (c *Cursor) GetHeight() (int, bool) {
	c.checkStale()
	if c.n == c.t.sentinel {
		return 0, false
	}
	return height(c.n), true
}

// DeleteNext removes the entry immediately after the cursor in ascending
// order (its successor) without moving the cursor, returning the removed
// entry. Reports false if there is no such entry.
func (c *Cursor) DeleteNext() (entry.Entry, bool) {
	c.checkStale()
	var target *node
	if c.n == c.t.sentinel {
		target = nextFromSentinel(c.t.sentinel)
	} else {
		target = succ(c.t.sentinel, c.n)
	}
	if target == c.t.sentinel {
		return entry.Entry{}, false
	}
	val := target.value
	c.t.removeNode(target)
	c.t.gen++
	c.gen = c.t.gen
	return val, true
}

// DeletePrev removes the entry immediately before the cursor in ascending
// order (its predecessor) without moving the cursor, returning the removed
// entry. Reports false if there is no such entry.
func (c *Cursor) DeletePrev() (entry.Entry, bool) {
	c.checkStale()
	var target *node
	if c.n == c.t.sentinel {
		target = prevFromSentinel(c.t.sentinel)
	} else {
		target = pred(c.t.sentinel, c.n)
	}
	if target == c.t.sentinel {
		return entry.Entry{}, false
	}
	val := target.value
	c.t.removeNode(target)
	c.t.gen++
	c.gen = c.t.gen
	return val, true
}

// Replace swaps the entry at the cursor for newVal and re-seeks the cursor
// onto its new position, returning the displaced entry. Reports false if the
// cursor is past-the-end or newVal collides with a different existing entry.
func (c *Cursor) Replace(newVal entry.Entry) (entry.Entry, bool) {
	c.checkStale()
	if c.n == c.t.sentinel {
		return entry.Entry{}, false
	}
	old, ok := c.t.Replace(c.n.value, newVal)
	if !ok {
		return entry.Entry{}, false
	}
	c.n = c.t.find(newVal)
	c.gen = c.t.gen
	return old, true
}
