package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xrbt/rbtree"
)

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotation.dir", "left")))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotation.dir", "right")))
)

// rbTreeStats methods are safe on a nil receiver, a tree built without
// WithRBTreeStats records nothing.
type rbTreeStats struct {
	nodeCount     metric.Int64UpDownCounter
	insertCount   metric.Int64Counter
	removeCount   metric.Int64Counter
	rejectedCount metric.Int64Counter
	rotationCount metric.Int64Counter
	dfsCount      metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseRemoveCount() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), -1)
}

func (stats *rbTreeStats) IncreaseRejectedCount(op string) {
	if stats == nil {
		return
	}
	stats.rejectedCount.Add(context.Background(), 1,
		metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.op", op))),
	)
}

func (stats *rbTreeStats) IncreaseRotationCount(dir RBDirection) {
	if stats == nil {
		return
	}
	switch dir {
	case Left:
		stats.rotationCount.Add(context.Background(), 1, rotateLeftAttrs)
	case Right:
		stats.rotationCount.Add(context.Background(), 1, rotateRightAttrs)
	default:
	}
}

func (stats *rbTreeStats) IncreaseDFSCount() {
	if stats == nil {
		return
	}
	stats.dfsCount.Add(context.Background(), 1)
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.node.count",
			metric.WithDescription("The number of nodes in the red-black tree."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of keys inserted into the red-black tree."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.remove.count",
			metric.WithDescription("The number of keys removed from the red-black tree."),
		)),
		rejectedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rejected.count",
			metric.WithDescription("The number of rejected inserts (duplicate) and removes (absent)."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotation.count",
			metric.WithDescription("The number of rotations done by the rebalance passes."),
		)),
		dfsCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.dfs.count",
			metric.WithDescription("The number of DFS timestamping runs."),
		)),
	}
}
