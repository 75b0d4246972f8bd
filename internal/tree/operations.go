package tree

import "github.com/edirooss/leaderboard/internal/entry"

// Insert adds val if no equal entry is already present. Returns whether it
// was inserted. O(log n).
func (t *Tree) Insert(val entry.Entry) bool {
	_, ok := t.insertNode(val)
	return ok
}

// insertNode performs the actual insert, returning the new node and true, or
// (nil, false) if an equal entry already exists.
func (t *Tree) insertNode(val entry.Entry) (*node, bool) {
	if t.isEmpty() {
		n := &node{value: val, size: 1, height: 1, parent: t.sentinel, isLeftChild: false}
		t.sentinel.right = n
		t.gen++
		return n, true
	}

	cur := t.sentinel.right
	var left bool
	for {
		switch entry.Compare(val, cur.value) {
		case 0:
			return nil, false
		case -1:
			left = true
			if cur.left == nil {
				goto attach
			}
			cur = cur.left
		case 1:
			left = false
			if cur.right == nil {
				goto attach
			}
			cur = cur.right
		}
	}

attach:
	n := &node{value: val, size: 1, height: 1}
	setChild(cur, n, left)
	fixupToRoot(cur)
	t.gen++
	return n, true
}

// Remove deletes the entry equal to val, if present, returning it. O(log n).
func (t *Tree) Remove(val entry.Entry) (entry.Entry, bool) {
	n := t.find(val)
	if n == nil {
		return entry.Entry{}, false
	}
	removed := n.value
	t.removeNode(n)
	t.gen++
	return removed, true
}

func (t *Tree) find(val entry.Entry) *node {
	cur := t.sentinel.right
	for cur != nil {
		switch entry.Compare(val, cur.value) {
		case 0:
			return cur
		case -1:
			cur = cur.left
		case 1:
			cur = cur.right
		}
	}
	return nil
}

// removeNode detaches n from the tree, rewiring children/parent and
// rebalancing from the removal point to the root. n itself is discarded
// after this call (its fields are no longer meaningful).
func (t *Tree) removeNode(n *node) {
	parent := n.parent

	switch {
	case n.left == nil:
		setChild(parent, n.right, n.isLeftChild)
		fixupToRoot(parent)
	case n.right == nil:
		setChild(parent, n.left, n.isLeftChild)
		fixupToRoot(parent)
	default:
		// Two children: splice in the in-order predecessor (max of left
		// subtree), which has no right child, then remove it recursively
		// from its original spot.
		repl := subtreeMax(n.left)
		t.removeNode(repl)

		// removeNode(repl) may have rebalanced ancestors of repl, including
		// possibly rotating at n itself; n's parent/children pointers are
		// read only now, so repl takes n's place wherever n ended up.
		setChild(n.parent, repl, n.isLeftChild)
		repl.left = n.left
		if repl.left != nil {
			repl.left.parent = repl
			repl.left.isLeftChild = true
		}
		repl.right = n.right
		if repl.right != nil {
			repl.right.parent = repl
			repl.right.isLeftChild = false
		}
		repl.size = n.size
		repl.height = n.height
	}
}

// Clear removes every entry from the tree. O(n), iterative (no recursion,
// so tall trees don't blow the call stack).
func (t *Tree) Clear() {
	if t.isEmpty() {
		return
	}
	stack := []*node{t.sentinel.right}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
	}
	t.sentinel.right = nil
	t.gen++
}

// Replace performs a logical "move": removes the entry equal to oldVal and
// inserts newVal in its place, returning the displaced old entry. Fails
// (returns ok=false) if newVal collides with a distinct existing entry, or
// if no entry equal to oldVal exists.
//
// When the new rank is within height()/5 of the old rank, this shifts
// values along the path between the two positions rather than performing a
// full remove+insert, avoiding a second O(log n) tree descent — see
// shiftReplace. Any distance beyond that threshold falls back to
// remove+insert, which is always correct on its own.
func (t *Tree) Replace(oldVal, newVal entry.Entry) (entry.Entry, bool) {
	oldNode := t.find(oldVal)
	if oldNode == nil {
		return entry.Entry{}, false
	}
	oldRank := t.rankOf(oldNode)

	newRank, exists := t.IndexOf(newVal)
	if exists && !entry.Equal(newVal, oldNode.value) {
		return entry.Entry{}, false
	}
	// IndexOf counts entries that outrank newVal; since oldNode (which
	// ranks differently from newVal, as newVal is not present) may sit
	// anywhere relative to newVal's prospective position, normalize so
	// newRank reflects newVal's rank as if oldNode were already absent.
	if newRank > oldRank {
		newRank--
	}

	distance := newRank - oldRank
	if distance < 0 {
		distance = -distance
	}

	if distance == 0 {
		old := oldNode.value
		oldNode.value = newVal
		return old, true
	}

	if distance <= t.Height()/5 {
		return t.shiftReplace(oldNode, newRank, oldRank, newVal), true
	}

	old := oldNode.value
	t.removeNode(oldNode)
	t.insertNode(newVal)
	t.gen++
	return old, true
}

// shiftReplace walks from oldNode toward newRank, shifting each
// intermediate node's value one step and placing newVal at the far end.
// This re-stamps every node along the path but touches no tree structure,
// which is why it's cheaper than remove+insert for small rank deltas.
func (t *Tree) shiftReplace(oldNode *node, newRank, oldRank int, newVal entry.Entry) entry.Entry {
	nodes := []*node{oldNode}
	cur := oldNode
	if newRank > oldRank {
		for i := oldRank; i < newRank; i++ {
			cur = predOrPanic(t.sentinel, cur)
			nodes = append(nodes, cur)
		}
	} else {
		for i := oldRank; i > newRank; i-- {
			cur = succOrPanic(t.sentinel, cur)
			nodes = append(nodes, cur)
		}
	}

	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].value, nodes[i+1].value = nodes[i+1].value, nodes[i].value
	}
	old := nodes[len(nodes)-1].value
	nodes[len(nodes)-1].value = newVal
	t.gen++
	return old
}

func succOrPanic(sentinel, n *node) *node {
	s := succ(sentinel, n)
	if s == sentinel {
		panic("tree: shift walked past the end")
	}
	return s
}

func predOrPanic(sentinel, n *node) *node {
	p := pred(sentinel, n)
	if p == sentinel {
		panic("tree: shift walked past the start")
	}
	return p
}

// Contains reports whether an entry equal to val is present. O(log n).
func (t *Tree) Contains(val entry.Entry) bool {
	return t.find(val) != nil
}
