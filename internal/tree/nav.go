package tree

// subtreeMin/subtreeMax walk to the left/right-most descendant of n.
func subtreeMin(n *node) *node {
	for n.left != nil {
		n = n.left
	}
	return n
}

func subtreeMax(n *node) *node {
	for n.right != nil {
		n = n.right
	}
	return n
}

// succ returns the in-order successor of n within the ascending order (the
// entry immediately above n in that order, i.e. one step toward rank 1).
// Returns the sentinel if n is the last node (rank 1).
func succ(sentinel, n *node) *node {
	if n.right != nil {
		return subtreeMin(n.right)
	}
	cur := n
	for cur.parent != nil && !cur.isLeftChild {
		cur = cur.parent
	}
	if cur.parent == nil {
		return sentinel
	}
	return cur.parent
}

// pred returns the in-order predecessor of n (the entry immediately below n
// in ascending order, i.e. one step away from rank 1). Returns the sentinel
// if n is the first node.
func pred(sentinel, n *node) *node {
	if n.left != nil {
		return subtreeMax(n.left)
	}
	cur := n
	for cur.parent != nil && cur.isLeftChild {
		cur = cur.parent
	}
	if cur.parent == nil {
		return sentinel
	}
	return cur.parent
}

// nextFromSentinel/prevFromSentinel define where a past-the-end cursor lands
// when advanced: "next" (toward lower rank, ascending order) wraps to the
// first node (rank = Len, lowest-ordered); "prev" (toward higher rank) wraps
// to the last node (rank 1, highest-ordered).
func nextFromSentinel(sentinel *node) *node {
	if sentinel.right == nil {
		return sentinel
	}
	return subtreeMin(sentinel.right)
}

func prevFromSentinel(sentinel *node) *node {
	if sentinel.right == nil {
		return sentinel
	}
	return subtreeMax(sentinel.right)
}
