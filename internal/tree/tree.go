// Package tree implements an order-statistics balanced binary search tree
// (height-balanced AVL with subtree-size augmentation) over leaderboard
// entries: O(log n) insert/delete/replace, rank<->value lookup, and
// bidirectional cursor traversal with a running index.
//
// The tree keeps a permanent sentinel node whose right child is the real
// root. The sentinel gives cursors a well-defined past-the-end position in
// both directions and removes a class of nil-root special cases from every
// operation below.
package tree

import (
	"fmt"

	"github.com/edirooss/leaderboard/internal/entry"
)

// node is one tree vertex. left/right/parent are plain pointers: the tree
// itself owns every node it allocates and walks the structure iteratively
// to tear it down, so there is no reference-counting or GC-cycle concern in
// keeping parent back-pointers alongside child pointers.
type node struct {
	left, right, parent *node
	isLeftChild         bool

	size   int // 1 + size(left) + size(right)
	height int // 1 + max(height(left), height(right)); 0 for a nil child

	value entry.Entry
}

// Tree is an order-statistics AVL tree of entry.Entry, total-ordered by
// entry.Less in ascending order (rank 1 is the right-most / highest node).
type Tree struct {
	sentinel *node
	// gen increments on every structural mutation; cursors capture it at
	// creation/seek time and refuse to report position info if it has since
	// changed, since Go has no borrow checker to stop a stale cursor from
	// reading freed or rewired state.
	gen uint64
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{sentinel: &node{}}
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func size(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	n.height = 1 + max(height(n.left), height(n.right))
	n.size = 1 + size(n.left) + size(n.right)
}

// Len returns the number of entries in the tree. O(1).
func (t *Tree) Len() int {
	return size(t.sentinel.right)
}

// Height returns the height of the tree (0 if empty). O(1).
func (t *Tree) Height() int {
	return height(t.sentinel.right)
}

func (t *Tree) isEmpty() bool {
	return t.sentinel.right == nil
}

// root returns the real root, or nil if the tree is empty.
func (t *Tree) root() *node {
	return t.sentinel.right
}

// setChild attaches child as n's left or right child (n may be the
// sentinel), fixing up the child's parent/isLeftChild bookkeeping.
func setChild(parent *node, child *node, left bool) {
	if left {
		parent.left = child
	} else {
		parent.right = child
	}
	if child != nil {
		child.parent = parent
		child.isLeftChild = left
	}
}

// rotate promotes n above its parent, preserving in-order order. n must not
// be the root or the sentinel.
func rotate(n *node) {
	p := n.parent
	if p == nil {
		panic("tree: attempt to rotate about sentinel")
	}
	gp := p.parent
	if gp == nil {
		panic("tree: attempt to rotate about root")
	}

	wasLeft := n.isLeftChild
	setChild(gp, n, p.isLeftChild)

	if wasLeft {
		setChild(p, n.right, true)
		n.right = p
		p.parent = n
		p.isLeftChild = false
	} else {
		setChild(p, n.left, false)
		n.left = p
		p.parent = n
		p.isLeftChild = true
	}

	fix(p)
	fix(n)
}

// fixImbalance restores the AVL invariant at n, which must have
// |height(left)-height(right)| > 1, by rotating the taller side up. The
// "zig-zag" (inner-child-taller) case is handled as two single rotations.
func fixImbalance(n *node) {
	var target *node
	zigzag := false

	if height(n.left) > height(n.right) {
		left := n.left
		if height(left.left) >= height(left.right) {
			target = left
		} else {
			zigzag = true
			target = left.right
		}
	} else {
		right := n.right
		if height(right.right) >= height(right.left) {
			target = right
		} else {
			zigzag = true
			target = right.left
		}
	}

	rotate(target)
	if zigzag {
		rotate(target)
	}
}

// fixupToRoot walks from n up to (but not including) the sentinel, fixing
// size/height and rebalancing any node left imbalanced by a structural
// change below it.
func fixupToRoot(n *node) {
	for n.parent != nil {
		if abs(height(n.left)-height(n.right)) > 1 {
			fixImbalance(n)
		} else {
			fix(n)
		}
		n = n.parent
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree{len=%d, height=%d}", t.Len(), t.Height())
}
