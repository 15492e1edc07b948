package tree

import (
	"bytes"
	"fmt"
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/openacid/testkeys"
	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   string
}

func requireInorder(t *testing.T, tree RBTree, expected []checkData) {
	actual := make([]checkData, 0, len(expected))
	tree.Foreach(func(idx int64, color RBColor, key string) bool {
		actual = append(actual, checkData{color: color, key: key})
		return true
	})
	require.Equal(t, expected, actual)
	require.Equal(t, int64(len(expected)), tree.Len())
}

func requireValid(t *testing.T, tree RBTree) {
	require.NoError(t, RedViolationValidate(tree))
	require.NoError(t, BlackViolationValidate(tree))
	require.NoError(t, OrderViolationValidate(tree))
}

func bytesOfDump(t *testing.T, tree RBTree) string {
	buf := &bytes.Buffer{}
	require.NoError(t, tree.Dump(buf))
	return buf.String()
}

func TestRBColorString(t *testing.T) {
	require.Equal(t, "BLACK", Black.String())
	require.Equal(t, "RED", Red.String())
	require.Equal(t, "UNKNOWN", RBColor(7).String())
}

func TestRbtreeInsertAndRemove_Fixups(t *testing.T) {
	tree := NewRBTree()
	require.Nil(t, tree.Root())

	require.NoError(t, tree.InsertUnique("52"))
	requireInorder(t, tree, []checkData{{Black, "52"}})
	requireValid(t, tree)

	require.NoError(t, tree.InsertUnique("47"))
	requireInorder(t, tree, []checkData{{Red, "47"}, {Black, "52"}})
	requireValid(t, tree)

	// outer grandchild, single right rotation
	require.NoError(t, tree.InsertUnique("03"))
	requireInorder(t, tree, []checkData{{Red, "03"}, {Black, "47"}, {Red, "52"}})
	require.Equal(t, "47", tree.Root().Key())
	requireValid(t, tree)

	// red uncle, recolor only
	require.NoError(t, tree.InsertUnique("35"))
	requireInorder(t, tree, []checkData{{Black, "03"}, {Red, "35"}, {Black, "47"}, {Black, "52"}})
	requireValid(t, tree)

	// inner grandchild, double rotation
	require.NoError(t, tree.InsertUnique("24"))
	requireInorder(t, tree, []checkData{{Red, "03"}, {Black, "24"}, {Red, "35"}, {Black, "47"}, {Black, "52"}})
	requireValid(t, tree)

	// two children, successor is the direct right child
	x, err := tree.Remove("24")
	require.NoError(t, err)
	require.Equal(t, "24", x.Key())
	requireInorder(t, tree, []checkData{{Red, "03"}, {Black, "35"}, {Black, "47"}, {Black, "52"}})
	requireValid(t, tree)

	// root removal, black successor, far nephew red
	x, err = tree.Remove("47")
	require.NoError(t, err)
	require.Equal(t, "47", x.Key())
	requireInorder(t, tree, []checkData{{Black, "03"}, {Black, "35"}, {Black, "52"}})
	require.Equal(t, "35", tree.Root().Key())
	requireValid(t, tree)

	// black leaf, black sibling with black children
	x, err = tree.Remove("52")
	require.NoError(t, err)
	require.Equal(t, "52", x.Key())
	requireInorder(t, tree, []checkData{{Red, "03"}, {Black, "35"}})
	requireValid(t, tree)

	x, err = tree.Remove("03")
	require.NoError(t, err)
	require.Equal(t, "03", x.Key())
	requireInorder(t, tree, []checkData{{Black, "35"}})
	requireValid(t, tree)

	x, err = tree.Remove("35")
	require.NoError(t, err)
	require.Equal(t, "35", x.Key())
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())

	_, err = tree.Remove("35")
	require.ErrorIs(t, err, ErrRBTreeEmpty)
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
}

func TestRbtreeRejections(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []string{"m", "c", "x", "a", "e"} {
		require.NoError(t, tree.InsertUnique(key))
	}
	before := bytesOfDump(t, tree)

	err := tree.InsertUnique("c")
	require.ErrorIs(t, err, ErrRBTreeDuplicateKey)
	require.Equal(t, before, bytesOfDump(t, tree))
	require.Equal(t, int64(5), tree.Len())

	_, err = tree.Remove("zz")
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
	require.Equal(t, before, bytesOfDump(t, tree))
	require.Equal(t, int64(5), tree.Len())

	_, err = tree.Search("zz")
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
	node, err := tree.Search("e")
	require.NoError(t, err)
	require.Equal(t, "e", node.Key())
}

func TestRbtreeInsertDuplicatesGoRight(t *testing.T) {
	tree := NewRBTree()
	tree.Insert("k")
	tree.Insert("k")
	keys := make([]string, 0, 2)
	tree.Foreach(func(idx int64, color RBColor, key string) bool {
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []string{"k", "k"}, keys)
	require.Equal(t, int64(2), tree.Len())
	require.NoError(t, RedViolationValidate(tree))
	require.NoError(t, BlackViolationValidate(tree))
	// The unguarded path breaks strict ordering, which is the caller's problem.
	require.Error(t, OrderViolationValidate(tree))
}

func TestRbtreeInsertRemoveRoundTrip(t *testing.T) {
	tree := NewRBTree()
	for i := 0; i < 64; i++ {
		require.NoError(t, tree.InsertUnique(fmt.Sprintf("key-%03d", i*3)))
	}
	keysOf := func() []string {
		keys := make([]string, 0, tree.Len())
		tree.Foreach(func(idx int64, color RBColor, key string) bool {
			keys = append(keys, key)
			return true
		})
		return keys
	}
	before := keysOf()

	for i := 0; i < 64; i++ {
		key := fmt.Sprintf("key-%03d", i*3+1)
		require.NoError(t, tree.InsertUnique(key))
		requireValid(t, tree)
		x, err := tree.Remove(key)
		require.NoError(t, err)
		require.Equal(t, key, x.Key())
		requireValid(t, tree)
		require.Equal(t, before, keysOf())
	}
}

func TestRbtreeForeachStops(t *testing.T) {
	tree := NewRBTree()
	for _, key := range []string{"d", "b", "f", "a", "c", "e", "g"} {
		tree.Insert(key)
	}
	visited := make([]string, 0, 3)
	tree.Foreach(func(idx int64, color RBColor, key string) bool {
		visited = append(visited, key)
		return idx < 2
	})
	require.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestRbtreeRelease(t *testing.T) {
	tree := NewRBTree(WithRBTreeInitCap(4))
	for i := 0; i < 1000; i++ {
		tree.Insert(fmt.Sprintf("%06d", i))
	}
	requireValid(t, tree)
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Empty(t, tree.DFS())

	require.NoError(t, tree.InsertUnique("again"))
	requireInorder(t, tree, []checkData{{Black, "again"}})
}

func TestRbtreeArenaRecycle(t *testing.T) {
	tree := NewRBTree().(*rbTree)
	for _, key := range []string{"b", "a", "c"} {
		tree.Insert(key)
	}
	require.Len(t, tree.arena.nodes, 4)
	_, err := tree.Remove("a")
	require.NoError(t, err)
	require.Len(t, tree.arena.recycled, 1)
	require.Equal(t, rbNode{}, tree.arena.nodes[tree.arena.recycled[0]])

	tree.Insert("d")
	require.Len(t, tree.arena.nodes, 4)
	require.Empty(t, tree.arena.recycled)
	require.Equal(t, rbNode{color: Black}, tree.arena.nodes[nilIdx])
	requireValid(t, tree)
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, violationCheck bool) {
	insertTotal := total * 8 / 10

	perm := randv2.Perm(total)
	keys := make([]string, 0, total)
	for _, n := range perm {
		keys = append(keys, fmt.Sprintf("%08d", n))
	}
	insertElements, removeElements := keys[:insertTotal], keys[insertTotal:]

	tree := NewRBTree()
	for _, key := range insertElements {
		require.NoError(t, tree.InsertUnique(key))
		if violationCheck {
			requireValid(t, tree)
		}
	}
	for _, key := range removeElements {
		require.NoError(t, tree.InsertUnique(key))
		if violationCheck {
			requireValid(t, tree)
		}
	}
	requireValid(t, tree)

	for _, key := range removeElements {
		x, err := tree.Remove(key)
		require.NoError(t, err)
		require.Equal(t, key, x.Key())
		if violationCheck {
			requireValid(t, tree)
		}
	}
	requireValid(t, tree)

	sorted := append([]string(nil), insertElements...)
	sort.Strings(sorted)
	tree.Foreach(func(idx int64, color RBColor, key string) bool {
		require.Equal(t, sorted[idx], key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRbtreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name           string
		total          int
		violationCheck bool
	}{
		{
			name:  "100000",
			total: 100000,
		},
		{
			name:           "violation check 2000",
			total:          2000,
			violationCheck: true,
		},
		{
			name:           "violation check 5000",
			total:          5000,
			violationCheck: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.violationCheck)
		})
	}
}

func TestRbtreeTestKeys(t *testing.T) {
	const maxKeys = 20000
	for _, fn := range testkeys.AssetNames() {
		keys := testkeys.Load(fn)
		if len(keys) > maxKeys {
			keys = keys[:maxKeys]
		}
		t.Run(fn, func(tt *testing.T) {
			tree := NewRBTree(WithRBTreeInitCap(len(keys)))
			uniq := make(map[string]struct{}, len(keys))
			for _, key := range keys {
				err := tree.InsertUnique(key)
				if _, ok := uniq[key]; ok {
					require.ErrorIs(tt, err, ErrRBTreeDuplicateKey)
					continue
				}
				require.NoError(tt, err)
				uniq[key] = struct{}{}
			}
			requireValid(tt, tree)
			require.Equal(tt, int64(len(uniq)), tree.Len())

			tree.DFS()
			require.NoError(tt, IntervalNestingValidate(tree))

			for i, key := range keys {
				if i%2 == 1 {
					continue
				}
				if _, ok := uniq[key]; !ok {
					continue
				}
				_, err := tree.Remove(key)
				require.NoError(tt, err)
				delete(uniq, key)
			}
			requireValid(tt, tree)
			require.Equal(tt, int64(len(uniq)), tree.Len())
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree()
	keys := make([]string, 0, b.N)
	for i := 0; i < b.N; i++ {
		keys = append(keys, fmt.Sprintf("%016x", randv2.Uint64()))
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.InsertUnique(keys[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree()
	keys := make([]string, 0, b.N)
	for i := 0; i < b.N; i++ {
		keys = append(keys, fmt.Sprintf("%016d", i))
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(keys[i])
	}
}
