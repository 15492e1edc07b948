package tree

import (
	"errors"
	"io"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "BLACK"
	case Red:
		return "RED"
	default:
	}
	return "UNKNOWN"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrRBTreeDuplicateKey      = errors.New("[rbtree] key already exists")
	ErrRBTreeKeyNotFound       = errors.New("[rbtree] key not found")
	ErrRBTreeTimestampNotFound = errors.New("[rbtree] no node matches the timestamp pair")
	ErrRBTreeEmpty             = errors.New("[rbtree] there is no element")
)

// RBNode is a detached snapshot of a tree node. Timestamps are the values
// written by the most recent DFS and are stale after any later mutation.
type RBNode interface {
	Key() string
	Color() RBColor
	DiscoveryTime() int64
	FinishTime() int64
}

type RBTree interface {
	Len() int64
	Root() RBNode
	// Insert does not guard against duplicates. Equal keys descend to the
	// right. Only use it when the key is known to be absent.
	Insert(key string)
	InsertUnique(key string) error
	Remove(key string) (RBNode, error)
	Search(key string) (RBNode, error)
	// DFS restamps every node and returns them in discovery order.
	DFS() []RBNode
	Query(discovery, finish int64) (RBNode, error)
	Foreach(action func(idx int64, color RBColor, key string) bool)
	Dump(w io.Writer) error
	PrettyDump(w io.Writer) error
	Dotdump(w io.Writer) error
	Release()
}
