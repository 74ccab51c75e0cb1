package engine

// This file is the ordered-tree mixin of §4.4: a self-balancing AVL tree of
// price-level handles, keyed by price. It is used twice — once for the bid
// side, once for the ask side — by passing in whichever root the caller is
// maintaining. The tree never owns the level data; it only links slots
// already present in the book's level arena via avlNode metadata embedded
// in PriceLevel.
//
// One observed source variant (original_source/rust/src/orderbook.rs)
// implements insert/remove without rebalancing, which degrades to O(n)
// worst case. This implementation balances on every insert and remove, the
// way original_source/rust/src/avl_tree.rs does, because §1 and §4.4
// require the O(log M) complexity bound.

func (b *OrderBook) levelNode(h levelHandle) *avlNode {
	return &b.levels[h].level.node
}

func (b *OrderBook) nodeHeight(h levelHandle) int32 {
	if h == noHandle {
		return 0
	}
	return b.levelNode(h).height
}

func (b *OrderBook) updateHeight(h levelHandle) {
	node := b.levelNode(h)
	lh := b.nodeHeight(node.left)
	rh := b.nodeHeight(node.right)
	if lh > rh {
		node.height = 1 + lh
	} else {
		node.height = 1 + rh
	}
}

func (b *OrderBook) balanceFactor(h levelHandle) int32 {
	node := b.levelNode(h)
	return b.nodeHeight(node.right) - b.nodeHeight(node.left)
}

// rotateLeft and rotateRight mirror original_source/rust/src/avl_tree.rs's
// rotate_left/rotate_right, translated from index-returning mutation to
// handle-returning mutation.
func (b *OrderBook) rotateLeft(x levelHandle) levelHandle {
	y := b.levelNode(x).right
	xParent := b.levelNode(x).parent
	yLeft := b.levelNode(y).left

	b.levelNode(x).right = yLeft
	b.levelNode(y).left = x

	if yLeft != noHandle {
		b.levelNode(yLeft).parent = x
	}
	b.levelNode(x).parent = y
	b.levelNode(y).parent = xParent

	if xParent != noHandle {
		parent := b.levelNode(xParent)
		if parent.left == x {
			parent.left = y
		} else {
			parent.right = y
		}
	}

	b.updateHeight(x)
	b.updateHeight(y)
	return y
}

func (b *OrderBook) rotateRight(y levelHandle) levelHandle {
	x := b.levelNode(y).left
	yParent := b.levelNode(y).parent
	xRight := b.levelNode(x).right

	b.levelNode(y).left = xRight
	b.levelNode(x).right = y

	if xRight != noHandle {
		b.levelNode(xRight).parent = y
	}
	b.levelNode(y).parent = x
	b.levelNode(x).parent = yParent

	if yParent != noHandle {
		parent := b.levelNode(yParent)
		if parent.left == y {
			parent.left = x
		} else {
			parent.right = x
		}
	}

	b.updateHeight(y)
	b.updateHeight(x)
	return x
}

// balance re-balances the subtree rooted at h after an insert or delete,
// returning the (possibly new) root of that subtree.
func (b *OrderBook) balance(h levelHandle) levelHandle {
	b.updateHeight(h)
	bf := b.balanceFactor(h)

	if bf > 1 {
		right := b.levelNode(h).right
		if b.balanceFactor(right) < 0 {
			b.rotateRight(right)
		}
		return b.rotateLeft(h)
	}
	if bf < -1 {
		left := b.levelNode(h).left
		if b.balanceFactor(left) > 0 {
			b.rotateLeft(left)
		}
		return b.rotateRight(h)
	}
	return h
}

// treeInsert inserts h into the tree rooted at root, keyed by price, and
// returns the new root. Insertion at an equal price is a no-op — the book's
// price->level map has already routed callers to the existing level before
// treeInsert is ever called for a price already present.
func (b *OrderBook) treeInsert(root levelHandle, h levelHandle) levelHandle {
	if root == noHandle {
		return h
	}

	price := b.levels[h].level.Price
	rootPrice := b.levels[root].level.Price

	switch {
	case price < rootPrice:
		newLeft := b.treeInsert(b.levelNode(root).left, h)
		b.levelNode(root).left = newLeft
		b.levelNode(newLeft).parent = root
	case price > rootPrice:
		newRight := b.treeInsert(b.levelNode(root).right, h)
		b.levelNode(root).right = newRight
		b.levelNode(newRight).parent = root
	default:
		return root
	}

	return b.balance(root)
}

// treeRemove removes h from the tree rooted at root and returns the new
// root, rebalancing the path back to the root.
func (b *OrderBook) treeRemove(root levelHandle, h levelHandle) levelHandle {
	if root == noHandle {
		return noHandle
	}

	if root != h {
		price := b.levels[h].level.Price
		rootPrice := b.levels[root].level.Price
		if price < rootPrice {
			newLeft := b.treeRemove(b.levelNode(root).left, h)
			b.levelNode(root).left = newLeft
			if newLeft != noHandle {
				b.levelNode(newLeft).parent = root
			}
		} else {
			newRight := b.treeRemove(b.levelNode(root).right, h)
			b.levelNode(root).right = newRight
			if newRight != noHandle {
				b.levelNode(newRight).parent = root
			}
		}
		return b.balance(root)
	}

	node := b.levelNode(root)
	left, right := node.left, node.right

	switch {
	case left == noHandle && right == noHandle:
		return noHandle
	case right == noHandle:
		b.levelNode(left).parent = node.parent
		return left
	case left == noHandle:
		b.levelNode(right).parent = node.parent
		return right
	default:
		// Two children: promote the in-order successor (leftmost of the
		// right subtree) into root's structural position, rather than
		// copying its price/payload into root's slot. priceIndex and every
		// resting order's .level field address levels by arena handle, not
		// by tree position, so a slot's payload must never move out from
		// under the handle that names it — only its position within the
		// tree may change. root's own slot (the level actually being
		// removed, always empty — see removeEmptyLevel) is left with no
		// tree role and is freed by the caller once this returns.
		successor := b.findMin(right)
		newRight := b.treeRemove(right, successor)

		successorNode := b.levelNode(successor)
		successorNode.left = left
		if left != noHandle {
			b.levelNode(left).parent = successor
		}
		successorNode.right = newRight
		if newRight != noHandle {
			b.levelNode(newRight).parent = successor
		}
		successorNode.parent = node.parent

		b.updateHeight(successor)
		return b.balance(successor)
	}
}

// findMin and findMax walk to the leftmost/rightmost node of a subtree,
// without regard to whether intermediate levels carry orders (in practice
// every level in the tree is non-empty, since emptied levels are removed
// immediately).
func (b *OrderBook) findMin(h levelHandle) levelHandle {
	for b.levelNode(h).left != noHandle {
		h = b.levelNode(h).left
	}
	return h
}

func (b *OrderBook) findMax(h levelHandle) levelHandle {
	for b.levelNode(h).right != noHandle {
		h = b.levelNode(h).right
	}
	return h
}

// minWithOrders and maxWithOrders are the spec's "skip levels flagged
// empty" variants of find-min/find-max. Since an emptied level is always
// removed from the tree immediately (§3 invariant 3), every node reachable
// here already has orders; these degenerate to findMin/findMax, kept as
// separate entry points so that a break in that invariant surfaces loudly
// (a TreeError panic) rather than silently.
func (b *OrderBook) minWithOrders(root levelHandle) levelHandle {
	if root == noHandle {
		return noHandle
	}
	h := b.findMin(root)
	if b.levels[h].level.IsEmpty() {
		panic(treeErrorf("level %d reachable from tree is empty", h))
	}
	return h
}

func (b *OrderBook) maxWithOrders(root levelHandle) levelHandle {
	if root == noHandle {
		return noHandle
	}
	h := b.findMax(root)
	if b.levels[h].level.IsEmpty() {
		panic(treeErrorf("level %d reachable from tree is empty", h))
	}
	return h
}
