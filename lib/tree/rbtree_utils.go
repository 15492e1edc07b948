package tree

import (
	"errors"
	"fmt"
)

// rbtree rule validation utilities.

var (
	errRBTreeUnsupported       = errors.New("rbtree validation unsupported tree implementation")
	errRBTreeRedViolation      = errors.New("rbtree red violation")
	errRBTreeBlackViolation    = errors.New("rbtree black violation")
	errRBTreeOrderViolation    = errors.New("rbtree order violation")
	errRBTreeSentinelViolation = errors.New("rbtree sentinel violation")
	errRBTreeIntervalViolation = errors.New("rbtree dfs interval violation")
)

func asRBTree(tree RBTree) (*rbTree, error) {
	t, ok := tree.(*rbTree)
	if !ok || t == nil {
		return nil, errRBTreeUnsupported
	}
	return t, nil
}

// RedViolationValidate checks that the sentinel and the root are black and
// no red node has a red child.
func RedViolationValidate(tree RBTree) error {
	t, err := asRBTree(tree)
	if err != nil {
		return err
	}
	if t.arena.nodes[nilIdx].color != Black {
		return errRBTreeSentinelViolation
	}
	if t.root == nilIdx {
		return nil
	}
	if t.n(t.root).parent != nilIdx || t.isRed(t.root) {
		return errRBTreeSentinelViolation
	}
	return t.preorder(func(idx uint32, _ int) error {
		node := t.n(idx)
		if node.color == Red && (t.isRed(node.left) || t.isRed(node.right)) {
			return fmt.Errorf("%w: key %q", errRBTreeRedViolation, node.key)
		}
		return nil
	})
}

// blackHeight returns the black height of the subtree rooted at idx counting
// the sentinel, or -1 when two paths disagree.
func (tree *rbTree) blackHeight(idx uint32) int {
	if idx == nilIdx {
		return 1
	}
	node := tree.n(idx)
	l, r := tree.blackHeight(node.left), tree.blackHeight(node.right)
	if l < 0 || r < 0 || l != r {
		return -1
	}
	if node.color == Black {
		return l + 1
	}
	return l
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

Every path from a node to its descendant sentinels has the same black depth.
*/
func BlackViolationValidate(tree RBTree) error {
	t, err := asRBTree(tree)
	if err != nil {
		return err
	}
	if t.blackHeight(t.root) < 0 {
		return errRBTreeBlackViolation
	}
	return nil
}

// OrderViolationValidate checks strictly increasing in-order keys and the
// parent back references.
func OrderViolationValidate(tree RBTree) error {
	t, err := asRBTree(tree)
	if err != nil {
		return err
	}
	err = t.preorder(func(idx uint32, _ int) error {
		node := t.n(idx)
		for _, child := range []uint32{node.left, node.right} {
			if child != nilIdx && t.n(child).parent != idx {
				return fmt.Errorf("%w: broken parent link under %q", errRBTreeOrderViolation, node.key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var prev string
	count := int64(0)
	t.Foreach(func(idx int64, color RBColor, key string) bool {
		if idx > 0 && key <= prev {
			err = fmt.Errorf("%w: %q after %q", errRBTreeOrderViolation, key, prev)
			return false
		}
		prev = key
		count++
		return true
	})
	if err == nil && count != t.count {
		err = fmt.Errorf("%w: %d nodes reachable, %d counted", errRBTreeOrderViolation, count, t.count)
	}
	return err
}

// IntervalNestingValidate checks the latest DFS stamps: discovery < finish on
// every node and every child interval strictly inside its parent's.
func IntervalNestingValidate(tree RBTree) error {
	t, err := asRBTree(tree)
	if err != nil {
		return err
	}
	return t.preorder(func(idx uint32, _ int) error {
		node := t.n(idx)
		if node.discovery >= node.finish {
			return fmt.Errorf("%w: key %q d=%d f=%d", errRBTreeIntervalViolation, node.key, node.discovery, node.finish)
		}
		if p := node.parent; p != nilIdx {
			parent := t.n(p)
			if !(parent.discovery < node.discovery && node.finish < parent.finish) {
				return fmt.Errorf("%w: key %q escapes %q", errRBTreeIntervalViolation, node.key, parent.key)
			}
		}
		if node.left != nilIdx && node.right != nilIdx && t.n(node.left).finish >= t.n(node.right).discovery {
			return fmt.Errorf("%w: siblings under %q overlap", errRBTreeIntervalViolation, node.key)
		}
		return nil
	})
}
