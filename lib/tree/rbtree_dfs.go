package tree

// dfsFrame is an explicit stack entry. A node is pushed twice: once to be
// discovered and once, below its children, to be finished.
type dfsFrame struct {
	idx    uint32
	finish bool
}

// DFS resets the timer to 1 and stamps the tree in pre-order, left subtree
// before right. Every node gets discovery = timer++ on entry and
// finish = timer++ on exit, so a node's [discovery, finish] interval strictly
// contains the intervals of all its descendants.
//
// The stamps are valid only until the next structural mutation. Insert and
// Remove never refresh them.
func (tree *rbTree) DFS() []RBNode {
	tree.stats.IncreaseDFSCount()
	if tree.root == nilIdx {
		return []RBNode{}
	}

	order := make([]uint32, 0, tree.count)
	stack := make([]dfsFrame, 0, tree.count>>1+2)
	defer func() {
		clear(stack)
	}()

	timer := int64(1)
	stack = append(stack, dfsFrame{idx: tree.root})
	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		node := tree.n(frame.idx)
		if frame.finish {
			node.finish = timer
			timer++
			continue
		}

		node.discovery = timer
		timer++
		order = append(order, frame.idx)
		stack = append(stack, dfsFrame{idx: frame.idx, finish: true})
		if node.right != nilIdx {
			stack = append(stack, dfsFrame{idx: node.right})
		}
		if node.left != nilIdx {
			stack = append(stack, dfsFrame{idx: node.left})
		}
	}

	// Detach after every finish time is written.
	visits := make([]RBNode, 0, len(order))
	for _, idx := range order {
		visits = append(visits, tree.arena.snapshot(idx))
	}
	return visits
}

// Query scans the whole tree in pre-order for the node stamped exactly
// (discovery, finish) by the latest DFS. Zero means never stamped and never
// matches.
func (tree *rbTree) Query(discovery, finish int64) (RBNode, error) {
	if tree.root == nilIdx || discovery <= 0 || finish <= 0 {
		return nil, ErrRBTreeTimestampNotFound
	}

	stack := make([]uint32, 0, tree.count>>1+1)
	defer func() {
		clear(stack)
	}()

	stack = append(stack, tree.root)
	for size := len(stack); size > 0; size = len(stack) {
		idx := stack[size-1]
		stack = stack[:size-1]
		node := tree.n(idx)
		if node.discovery == discovery && node.finish == finish {
			return tree.arena.snapshot(idx), nil
		}
		if node.right != nilIdx {
			stack = append(stack, node.right)
		}
		if node.left != nilIdx {
			stack = append(stack, node.left)
		}
	}
	return nil, ErrRBTreeTimestampNotFound
}
