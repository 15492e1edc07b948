package tree

import (
	"fmt"
	"strings"
)

// References:
// Introduction to Algorithms (CLRS), 3rd edition, chapter 13.
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The sentinel is black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   sentinels goes through the same number of black nodes. (black-violation)
// p5. The root is black.

type rbTree struct {
	arena *rbArena
	stats *rbTreeStats
	root  uint32
	count int64
}

var _ RBTree = (*rbTree)(nil)

func (tree *rbTree) n(idx uint32) *rbNode {
	return &tree.arena.nodes[idx]
}

func (tree *rbTree) isRed(idx uint32) bool {
	return idx != nilIdx && tree.arena.nodes[idx].color == Red
}

func (tree *rbTree) isBlack(idx uint32) bool {
	return !tree.isRed(idx)
}

func (tree *rbTree) Len() int64 {
	return tree.count
}

func (tree *rbTree) Root() RBNode {
	return tree.arena.snapshot(tree.root)
}

func (tree *rbTree) minimum(idx uint32) uint32 {
	for tree.n(idx).left != nilIdx {
		idx = tree.n(idx).left
	}
	return idx
}

func (tree *rbTree) search(key string) uint32 {
	for aux := tree.root; aux != nilIdx; {
		switch res := strings.Compare(key, tree.n(aux).key); {
		case res == 0:
			return aux
		case res < 0:
			aux = tree.n(aux).left
		default:
			aux = tree.n(aux).right
		}
	}
	return nilIdx
}

func (tree *rbTree) Search(key string) (RBNode, error) {
	idx := tree.search(key)
	if idx == nilIdx {
		return nil, ErrRBTreeKeyNotFound
	}
	return tree.arena.snapshot(idx), nil
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yr
		  / \                   / \
		Yl   Yr                L   Yl
*/
func (tree *rbTree) leftRotate(x uint32) {
	if x == nilIdx || tree.n(x).right == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := tree.n(x).right
	tree.n(x).right = tree.n(y).left
	if yl := tree.n(y).left; yl != nilIdx {
		tree.n(yl).parent = x
	}
	p := tree.n(x).parent
	tree.n(y).parent = p
	switch {
	case p == nilIdx:
		tree.root = y
	case x == tree.n(p).left:
		tree.n(p).left = y
	default:
		tree.n(p).right = y
	}
	tree.n(y).left = x
	tree.n(x).parent = y
	tree.stats.IncreaseRotationCount(Left)
}

/*
		 |                         |
		 X                         Y
		/ \     rightRotate(X)    / \
	   Y   R    ============>    Yl  X
	  / \                           / \
	Yl   Yr                       Yr   R
*/
func (tree *rbTree) rightRotate(x uint32) {
	if x == nilIdx || tree.n(x).left == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := tree.n(x).left
	tree.n(x).left = tree.n(y).right
	if yr := tree.n(y).right; yr != nilIdx {
		tree.n(yr).parent = x
	}
	p := tree.n(x).parent
	tree.n(y).parent = p
	switch {
	case p == nilIdx:
		tree.root = y
	case x == tree.n(p).right:
		tree.n(p).right = y
	default:
		tree.n(p).left = y
	}
	tree.n(y).right = x
	tree.n(x).parent = y
	tree.stats.IncreaseRotationCount(Right)
}

func (tree *rbTree) Insert(key string) {
	z := tree.arena.allocate(key)

	y, x := nilIdx, tree.root
	for x != nilIdx {
		y = x
		if key < tree.n(x).key {
			x = tree.n(x).left
		} else /* ties go right */ {
			x = tree.n(x).right
		}
	}

	tree.n(z).parent = y
	switch {
	case y == nilIdx:
		tree.root = z
	case key < tree.n(y).key:
		tree.n(y).left = z
	default:
		tree.n(y).right = z
	}

	tree.count++
	tree.insertRebalance(z)
	tree.stats.IncreaseInsertCount()
}

func (tree *rbTree) InsertUnique(key string) error {
	if tree.search(key) != nilIdx {
		tree.stats.IncreaseRejectedCount("insert")
		return ErrRBTreeDuplicateKey
	}
	tree.Insert(key)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or sentinel).

im1: Both the parent P and the uncle U are red, grandpa G is black.
Repaint P and U into black and G into red. G may be red-violation now,
continue to fix from G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The parent P is red but the uncle U is black, X is the inner grandchild.
Rotate P toward X's side then X and P swap roles. Enter im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: X is the outer grandchild. Repaint P black and G red, rotate G away
from P's side.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree) insertRebalance(z uint32) {
	for tree.isRed(tree.n(z).parent) {
		p := tree.n(z).parent
		g := tree.n(p).parent
		if p == tree.n(g).left {
			u := tree.n(g).right
			if /* im1 */ tree.isRed(u) {
				tree.n(p).color = Black
				tree.n(u).color = Black
				tree.n(g).color = Red
				z = g
				continue
			}
			if /* im2 */ z == tree.n(p).right {
				z = p
				tree.leftRotate(z)
				p = tree.n(z).parent
			}
			/* im3 */
			tree.n(p).color = Black
			tree.n(g).color = Red
			tree.rightRotate(g)
		} else {
			u := tree.n(g).left
			if /* im1 */ tree.isRed(u) {
				tree.n(p).color = Black
				tree.n(u).color = Black
				tree.n(g).color = Red
				z = g
				continue
			}
			if /* im2 */ z == tree.n(p).left {
				z = p
				tree.rightRotate(z)
				p = tree.n(z).parent
			}
			/* im3 */
			tree.n(p).color = Black
			tree.n(g).color = Red
			tree.leftRotate(g)
		}
	}
	tree.n(tree.root).color = Black
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
// The sentinel's parent link is left untouched.
func (tree *rbTree) transplant(u, v uint32) {
	p := tree.n(u).parent
	switch {
	case p == nilIdx:
		tree.root = v
	case u == tree.n(p).left:
		tree.n(p).left = v
	default:
		tree.n(p).right = v
	}
	if v != nilIdx {
		tree.n(v).parent = p
	}
}

/*
r1: Z has at most one child. Splice Z out, its child C (maybe the sentinel)
takes its place. The removed color is Z's color.

r2: Z has two children. Its successor Y (minimum of the right subtree, no
left child) takes Z's place and color. The removed color is Y's color and
Y's right child X moves into Y's old place.

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   =========>   L  ..
		|                    |
		P                    P
	   / \                  / \
	  Y  ..                X  ..
	   \
	    X

If the removed color is black, X (or its parent when X is the sentinel) is
one black short. Rebalance from X.
*/
func (tree *rbTree) removeNode(z uint32) RBNode {
	res := tree.arena.snapshot(z)

	y, removedColor := z, tree.n(z).color
	var x, xp uint32
	switch {
	case /* r1 */ tree.n(z).left == nilIdx:
		x, xp = tree.n(z).right, tree.n(z).parent
		tree.transplant(z, x)
	case /* r1 */ tree.n(z).right == nilIdx:
		x, xp = tree.n(z).left, tree.n(z).parent
		tree.transplant(z, x)
	default: /* r2 */
		y = tree.minimum(tree.n(z).right)
		removedColor = tree.n(y).color
		x = tree.n(y).right
		if tree.n(y).parent == z {
			xp = y
		} else {
			xp = tree.n(y).parent
			tree.transplant(y, x)
			tree.n(y).right = tree.n(z).right
			tree.n(tree.n(y).right).parent = y
		}
		tree.transplant(z, y)
		tree.n(y).left = tree.n(z).left
		tree.n(tree.n(y).left).parent = y
		tree.n(y).color = tree.n(z).color
	}

	tree.arena.recycle(z)
	tree.count--
	if removedColor == Black {
		tree.removeRebalance(x, xp)
	}
	return res
}

func (tree *rbTree) Remove(key string) (RBNode, error) {
	if tree.count <= 0 {
		tree.stats.IncreaseRejectedCount("remove")
		return nil, fmt.Errorf("%w: %w", ErrRBTreeKeyNotFound, ErrRBTreeEmpty)
	}
	z := tree.search(key)
	if z == nilIdx {
		tree.stats.IncreaseRejectedCount("remove")
		return nil, ErrRBTreeKeyNotFound
	}
	res := tree.removeNode(z)
	tree.stats.IncreaseRemoveCount()
	return res, nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).
{X} is either a RED node or a BLACK node.

X carries one extra black. S is X's sibling, Sc is the nephew on X's side
and Sd is the nephew on the opposite side.

rm1: S is red, so P, Sc and Sd are black. Repaint S black and P red, rotate P
toward X. X gets a black sibling, enter rm2-rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are black. Repaint S red and move the extra black up to P.

	  {P}             {P} <- X
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black. Repaint Sc black and S red,
rotate S away from X. Enter rm4.

	  {P}                   {P}
	  / \    r-rotate(S)    / \
	[X] [S]  ==========>  [X] [Sc]
	    / \                     \
	  <Sc> [Sd]                 <S>
	                              \
	                              [Sd]

rm4: S is black and Sd is red. S takes P's color, P and Sd become black,
rotate P toward X. The extra black is absorbed, stop.

	  {P}                   {S}
	  / \    l-rotate(P)    / \
	[X] [S]  ==========>  [P] [Sd]
	    / \               / \
	 [Sc] <Sd>          [X] [Sc]

xp tracks X's parent because X may be the sentinel.
*/
func (tree *rbTree) removeRebalance(x, xp uint32) {
	for x != tree.root && tree.isBlack(x) {
		if x == tree.n(xp).left {
			w := tree.n(xp).right
			if /* rm1 */ tree.isRed(w) {
				tree.n(w).color = Black
				tree.n(xp).color = Red
				tree.leftRotate(xp)
				w = tree.n(xp).right
			}
			if /* rm2 */ tree.isBlack(tree.n(w).left) && tree.isBlack(tree.n(w).right) {
				tree.n(w).color = Red
				x, xp = xp, tree.n(xp).parent
				continue
			}
			if /* rm3 */ tree.isBlack(tree.n(w).right) {
				tree.n(tree.n(w).left).color = Black
				tree.n(w).color = Red
				tree.rightRotate(w)
				w = tree.n(xp).right
			}
			/* rm4 */
			tree.n(w).color = tree.n(xp).color
			tree.n(xp).color = Black
			tree.n(tree.n(w).right).color = Black
			tree.leftRotate(xp)
		} else {
			w := tree.n(xp).left
			if /* rm1 */ tree.isRed(w) {
				tree.n(w).color = Black
				tree.n(xp).color = Red
				tree.rightRotate(xp)
				w = tree.n(xp).left
			}
			if /* rm2 */ tree.isBlack(tree.n(w).right) && tree.isBlack(tree.n(w).left) {
				tree.n(w).color = Red
				x, xp = xp, tree.n(xp).parent
				continue
			}
			if /* rm3 */ tree.isBlack(tree.n(w).left) {
				tree.n(tree.n(w).right).color = Black
				tree.n(w).color = Red
				tree.leftRotate(w)
				w = tree.n(xp).left
			}
			/* rm4 */
			tree.n(w).color = tree.n(xp).color
			tree.n(xp).color = Black
			tree.n(tree.n(w).left).color = Black
			tree.rightRotate(xp)
		}
		x, xp = tree.root, nilIdx
	}
	if x != nilIdx {
		tree.n(x).color = Black
	}
}

// Inorder traversal.
func (tree *rbTree) Foreach(action func(idx int64, color RBColor, key string) bool) {
	if tree.root == nilIdx {
		return
	}

	stack := make([]uint32, 0, tree.count>>1+1)
	defer func() {
		clear(stack)
	}()

	for aux := tree.root; aux != nilIdx; aux = tree.n(aux).left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		if node := tree.n(aux); !action(idx, node.color, node.key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = tree.n(aux).right; aux != nilIdx; aux = tree.n(aux).left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree) Release() {
	tree.stats.RecordNodeCount(-tree.count)
	tree.arena.reset()
	tree.root = nilIdx
	tree.count = 0
}

type RBTreeOpt func(*rbTree)

// WithRBTreeInitCap pre-sizes the node arena.
func WithRBTreeInitCap(capacity int) RBTreeOpt {
	return func(tree *rbTree) {
		tree.arena = newRBArena(capacity)
	}
}

func WithRBTreeStats(name string) RBTreeOpt {
	return func(tree *rbTree) {
		tree.stats = newRBTreeStats(name)
	}
}

func NewRBTree(opts ...RBTreeOpt) RBTree {
	tree := &rbTree{
		root:  nilIdx,
		count: 0,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.arena == nil {
		tree.arena = newRBArena(64)
	}
	return tree
}
