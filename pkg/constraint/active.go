package constraint

import "cmp"

// activeSet holds the cells crossed by the sweep line as a treap keyed by
// (left edge, cell index). Every node carries the largest right edge of its
// subtree, so a stabbing query only descends into subtrees that can still
// overlap and runs in O(log n + k) for k reported cells.
type activeSet struct {
	root *activeNode
	size int
}

type activeNode struct {
	cell        int
	left, right int64
	maxRight    int64
	prio        uint64
	l, r        *activeNode
}

// priority derives a deterministic treap priority from the cell index.
func priority(cell int) uint64 {
	z := uint64(cell) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (n *activeNode) compare(left int64, cell int) int {
	return cmp.Or(cmp.Compare(left, n.left), cmp.Compare(cell, n.cell))
}

func (n *activeNode) update() {
	n.maxRight = n.right
	if n.l != nil && n.l.maxRight > n.maxRight {
		n.maxRight = n.l.maxRight
	}
	if n.r != nil && n.r.maxRight > n.maxRight {
		n.maxRight = n.r.maxRight
	}
}

func rotateRight(n *activeNode) *activeNode {
	l := n.l
	n.l, l.r = l.r, n
	n.update()
	l.update()
	return l
}

func rotateLeft(n *activeNode) *activeNode {
	r := n.r
	n.r, r.l = r.l, n
	n.update()
	r.update()
	return r
}

// insert adds cell with horizontal extent [left, right].
func (s *activeSet) insert(cell int, left, right int64) {
	s.root = insertNode(s.root, &activeNode{
		cell:     cell,
		left:     left,
		right:    right,
		maxRight: right,
		prio:     priority(cell),
	})
	s.size++
}

func insertNode(n, x *activeNode) *activeNode {
	if n == nil {
		return x
	}
	if n.compare(x.left, x.cell) < 0 {
		n.l = insertNode(n.l, x)
		if n.l.prio > n.prio {
			return rotateRight(n)
		}
	} else {
		n.r = insertNode(n.r, x)
		if n.r.prio > n.prio {
			return rotateLeft(n)
		}
	}
	n.update()
	return n
}

// remove deletes cell, inserted with the given left edge. Unknown cells are
// ignored.
func (s *activeSet) remove(cell int, left int64) {
	var found bool
	s.root, found = removeNode(s.root, left, cell)
	if found {
		s.size--
	}
}

func removeNode(n *activeNode, left int64, cell int) (*activeNode, bool) {
	if n == nil {
		return nil, false
	}
	var found bool
	switch c := n.compare(left, cell); {
	case c < 0:
		n.l, found = removeNode(n.l, left, cell)
	case c > 0:
		n.r, found = removeNode(n.r, left, cell)
	default:
		return merge(n.l, n.r), true
	}
	n.update()
	return n, found
}

// merge joins two treaps where every key of a precedes every key of b.
func merge(a, b *activeNode) *activeNode {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.prio > b.prio:
		a.r = merge(a.r, b)
		a.update()
		return a
	default:
		b.l = merge(a, b.l)
		b.update()
		return b
	}
}

// overlapping calls visit, in left-edge order, for every active cell whose
// closed horizontal extent intersects [lo, hi]. It stops at the first error.
func (s *activeSet) overlapping(lo, hi int64, visit func(cell int) error) error {
	return overlapNode(s.root, lo, hi, visit)
}

func overlapNode(n *activeNode, lo, hi int64, visit func(int) error) error {
	if n == nil || n.maxRight < lo {
		return nil
	}
	if err := overlapNode(n.l, lo, hi, visit); err != nil {
		return err
	}
	if n.left > hi {
		return nil
	}
	if n.right >= lo {
		if err := visit(n.cell); err != nil {
			return err
		}
	}
	return overlapNode(n.r, lo, hi, visit)
}
