package tree

// nilIdx is the shared sentinel. It is always black and is never written.
const nilIdx uint32 = 0

var _ RBNode = (*rbNode)(nil)

type rbNode struct {
	key       string
	discovery int64
	finish    int64
	parent    uint32
	left      uint32
	right     uint32
	color     RBColor
}

func (node *rbNode) Key() string          { return node.key }
func (node *rbNode) Color() RBColor       { return node.color }
func (node *rbNode) DiscoveryTime() int64 { return node.discovery }
func (node *rbNode) FinishTime() int64    { return node.finish }

// rbArena owns every node of a tree. Index 0 is the sentinel; real nodes
// live at indices >= 1 and freed slots are recycled.
type rbArena struct {
	nodes    []rbNode
	recycled []uint32
}

func newRBArena(capacity int) *rbArena {
	if capacity < 1 {
		capacity = 1
	}
	arena := &rbArena{
		nodes:    make([]rbNode, 1, capacity+1),
		recycled: make([]uint32, 0, 8),
	}
	arena.nodes[nilIdx].color = Black
	return arena
}

func (arena *rbArena) allocate(key string) uint32 {
	node := rbNode{
		key:    key,
		color:  Red,
		parent: nilIdx,
		left:   nilIdx,
		right:  nilIdx,
	}
	if l := len(arena.recycled); l > 0 {
		idx := arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
		arena.nodes[idx] = node
		return idx
	}
	arena.nodes = append(arena.nodes, node)
	return uint32(len(arena.nodes) - 1)
}

func (arena *rbArena) recycle(idx uint32) {
	if idx == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] recycle the sentinel")
	}
	arena.nodes[idx] = rbNode{}
	arena.recycled = append(arena.recycled, idx)
}

func (arena *rbArena) reset() {
	clear(arena.nodes[1:])
	arena.nodes = arena.nodes[:1]
	arena.recycled = arena.recycled[:0]
}

// snapshot detaches the node from the arena.
func (arena *rbArena) snapshot(idx uint32) RBNode {
	if idx == nilIdx {
		return nil
	}
	node := arena.nodes[idx]
	node.parent, node.left, node.right = nilIdx, nilIdx, nilIdx
	return &node
}
