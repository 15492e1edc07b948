package tree

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type stampData struct {
	key       string
	color     RBColor
	discovery int64
	finish    int64
}

func stampsOf(nodes []RBNode) []stampData {
	res := make([]stampData, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, stampData{n.Key(), n.Color(), n.DiscoveryTime(), n.FinishTime()})
	}
	return res
}

func fruitTree(t *testing.T) RBTree {
	tree := NewRBTree()
	for _, key := range []string{"banana", "apple", "cherry"} {
		require.NoError(t, tree.InsertUnique(key))
	}
	return tree
}

func TestRbtreeDFS_Fruits(t *testing.T) {
	tree := fruitTree(t)

	_, err := tree.Query(0, 0)
	require.ErrorIs(t, err, ErrRBTreeTimestampNotFound)

	visits := tree.DFS()
	require.Equal(t, []stampData{
		{"banana", Black, 1, 6},
		{"apple", Red, 2, 3},
		{"cherry", Red, 4, 5},
	}, stampsOf(visits))
	require.NoError(t, IntervalNestingValidate(tree))

	node, err := tree.Query(2, 3)
	require.NoError(t, err)
	require.Equal(t, "apple", node.Key())
	require.Equal(t, Red, node.Color())

	node, err = tree.Query(1, 6)
	require.NoError(t, err)
	require.Equal(t, "banana", node.Key())

	for _, pair := range [][2]int64{{1, 2}, {0, 0}, {3, 2}, {6, 1}, {-1, 6}} {
		_, err = tree.Query(pair[0], pair[1])
		require.ErrorIsf(t, err, ErrRBTreeTimestampNotFound, "d=%d f=%d", pair[0], pair[1])
	}

	_, err = tree.Remove("banana")
	require.NoError(t, err)

	// Stale stamps are served until the next DFS.
	node, err = tree.Query(4, 5)
	require.NoError(t, err)
	require.Equal(t, "cherry", node.Key())
	_, err = tree.Query(1, 6)
	require.ErrorIs(t, err, ErrRBTreeTimestampNotFound)

	visits = tree.DFS()
	require.Equal(t, []stampData{
		{"cherry", Black, 1, 4},
		{"apple", Red, 2, 3},
	}, stampsOf(visits))
	_, err = tree.Query(1, 6)
	require.ErrorIs(t, err, ErrRBTreeTimestampNotFound)
	_, err = tree.Query(4, 5)
	require.ErrorIs(t, err, ErrRBTreeTimestampNotFound)
}

func TestRbtreeDFS_NewNodeIsUnstamped(t *testing.T) {
	tree := fruitTree(t)
	tree.DFS()
	require.NoError(t, tree.InsertUnique("date"))
	node, err := tree.Search("date")
	require.NoError(t, err)
	require.Equal(t, int64(0), node.DiscoveryTime())
	require.Equal(t, int64(0), node.FinishTime())
	_, err = tree.Query(0, 0)
	require.ErrorIs(t, err, ErrRBTreeTimestampNotFound)
}

func TestRbtreeDFS_IntervalNesting(t *testing.T) {
	tree := NewRBTree()
	for i := 0; i < 3000; i++ {
		tree.Insert(fmt.Sprintf("%05d", (i*7919)%3001))
	}
	for i := 0; i < 3000; i += 3 {
		_, err := tree.Remove(fmt.Sprintf("%05d", (i*7919)%3001))
		require.NoError(t, err)
	}
	requireValid(t, tree)

	visits := tree.DFS()
	require.Len(t, visits, int(tree.Len()))
	require.NoError(t, IntervalNestingValidate(tree))

	// Every stamp is used exactly once and every pair resolves to its node.
	seen := make(map[int64]struct{}, 2*len(visits))
	for i, v := range visits {
		require.Less(t, v.DiscoveryTime(), v.FinishTime())
		if i > 0 {
			require.Greater(t, v.DiscoveryTime(), visits[i-1].DiscoveryTime())
		}
		seen[v.DiscoveryTime()] = struct{}{}
		seen[v.FinishTime()] = struct{}{}
		node, err := tree.Query(v.DiscoveryTime(), v.FinishTime())
		require.NoError(t, err)
		require.Equal(t, v.Key(), node.Key())
	}
	require.Len(t, seen, 2*len(visits))
	require.Equal(t, int64(1), visits[0].DiscoveryTime())
	require.Equal(t, int64(2*len(visits)), visits[0].FinishTime())
}

func TestRbtreeDump(t *testing.T) {
	tree := fruitTree(t)

	buf := &bytes.Buffer{}
	require.NoError(t, tree.Dump(buf))
	require.Equal(t, "banana (BLACK)\n. apple (RED)\n. cherry (RED)\n", buf.String())

	require.NoError(t, tree.InsertUnique("date"))
	require.NoError(t, tree.InsertUnique("elderberry"))
	buf.Reset()
	require.NoError(t, tree.Dump(buf))
	require.Equal(t, strings.Join([]string{
		"banana (BLACK)",
		". apple (BLACK)",
		". date (BLACK)",
		". . cherry (RED)",
		". . elderberry (RED)",
		"",
	}, "\n"), buf.String())

	buf.Reset()
	require.NoError(t, NewRBTree().Dump(buf))
	require.Empty(t, buf.String())
}

func TestRbtreePrettyDump(t *testing.T) {
	tree := fruitTree(t)
	buf := &bytes.Buffer{}
	require.NoError(t, tree.PrettyDump(buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "banana (BLACK)\n"))
	require.Contains(t, out, "[L]")
	require.Contains(t, out, "apple (RED)")
	require.Contains(t, out, "[R]")
	require.Contains(t, out, "cherry (RED)")
	require.Less(t, strings.Index(out, "apple"), strings.Index(out, "cherry"))

	buf.Reset()
	require.NoError(t, NewRBTree().PrettyDump(buf))
	require.Empty(t, buf.String())
}

func TestRbtreeDotdump(t *testing.T) {
	tree := fruitTree(t)
	buf := &bytes.Buffer{}
	require.NoError(t, tree.Dotdump(buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph rbtree {\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Contains(t, out, `"banana" [fillcolor=black];`)
	require.Contains(t, out, `"apple" [fillcolor=red];`)
	require.Contains(t, out, `"banana" -> "apple";`)
	require.Contains(t, out, `"banana" -> "cherry";`)
}

func TestRbtreeStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()

	tree := NewRBTree(WithRBTreeStats("test"))
	for _, key := range []string{"52", "47", "03", "35", "24"} {
		require.NoError(t, tree.InsertUnique(key))
	}
	require.ErrorIs(t, tree.InsertUnique("35"), ErrRBTreeDuplicateKey)
	_, err := tree.Remove("99")
	require.ErrorIs(t, err, ErrRBTreeKeyNotFound)
	_, err = tree.Remove("24")
	require.NoError(t, err)
	_, err = tree.Remove("47")
	require.NoError(t, err)
	tree.DFS()

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		require.Equal(t, RBTreeStatsName+"/test", sm.Scope.Name)
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(3), sums["rbtree.node.count"])
	require.Equal(t, int64(5), sums["rbtree.insert.count"])
	require.Equal(t, int64(2), sums["rbtree.remove.count"])
	require.Equal(t, int64(2), sums["rbtree.rejected.count"])
	require.Equal(t, int64(1), sums["rbtree.dfs.count"])
	require.Equal(t, int64(4), sums["rbtree.rotation.count"])

	tree.Release()
	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "rbtree.node.count" {
				continue
			}
			total := int64(0)
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
			require.Equal(t, int64(0), total)
		}
	}
}
