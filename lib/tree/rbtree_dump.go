package tree

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/xlab/treeprint"
)

const dumpIndentUnit = ". "

type dumpFrame struct {
	idx   uint32
	depth int
}

// preorder walks the tree root first, left subtree before right.
func (tree *rbTree) preorder(action func(idx uint32, depth int) error) error {
	if tree.root == nilIdx {
		return nil
	}

	stack := make([]dumpFrame, 0, tree.count>>1+1)
	defer func() {
		clear(stack)
	}()

	stack = append(stack, dumpFrame{idx: tree.root})
	for size := len(stack); size > 0; size = len(stack) {
		frame := stack[size-1]
		stack = stack[:size-1]
		if err := action(frame.idx, frame.depth); err != nil {
			return err
		}
		node := tree.n(frame.idx)
		if node.right != nilIdx {
			stack = append(stack, dumpFrame{idx: node.right, depth: frame.depth + 1})
		}
		if node.left != nilIdx {
			stack = append(stack, dumpFrame{idx: node.left, depth: frame.depth + 1})
		}
	}
	return nil
}

// Dump writes one line per node, "<key> (<COLOR>)", indented by one
// ". " per depth level.
//
//	banana (BLACK)
//	. apple (RED)
//	. cherry (RED)
func (tree *rbTree) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	err := tree.preorder(func(idx uint32, depth int) error {
		node := tree.n(idx)
		_, _ = bw.WriteString(strings.Repeat(dumpIndentUnit, depth))
		_, _ = bw.WriteString(node.key)
		_, _ = bw.WriteString(" (")
		_, _ = bw.WriteString(node.color.String())
		_, err := bw.WriteString(")\n")
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (tree *rbTree) label(idx uint32) string {
	node := tree.n(idx)
	return node.key + " (" + node.color.String() + ")"
}

// PrettyDump renders the tree with box-drawing branches. Children are tagged
// [L] or [R] because a lone child would be ambiguous otherwise.
func (tree *rbTree) PrettyDump(w io.Writer) error {
	if tree.root == nilIdx {
		return nil
	}

	printer := treeprint.NewWithRoot(tree.label(tree.root))
	branches := map[uint32]treeprint.Tree{tree.root: printer}
	err := tree.preorder(func(idx uint32, _ int) error {
		branch := branches[idx]
		delete(branches, idx)
		node := tree.n(idx)
		if node.left != nilIdx {
			branches[node.left] = branch.AddMetaBranch("L", tree.label(node.left))
		}
		if node.right != nilIdx {
			branches[node.right] = branch.AddMetaBranch("R", tree.label(node.right))
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, printer.String())
	return err
}

// Dotdump writes the tree as a graphviz digraph.
func (tree *rbTree) Dotdump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("digraph rbtree {\n")
	_, _ = bw.WriteString("  node[shape=record, style=filled, fontcolor=white];\n")
	err := tree.preorder(func(idx uint32, _ int) error {
		node := tree.n(idx)
		name := strconv.Quote(node.key)
		_, _ = bw.WriteString("  " + name + " [fillcolor=" + strings.ToLower(node.color.String()) + "];\n")
		for _, child := range []uint32{node.left, node.right} {
			if child != nilIdx {
				_, _ = bw.WriteString("  " + name + " -> " + strconv.Quote(tree.n(child).key) + ";\n")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, _ = bw.WriteString("}\n")
	return bw.Flush()
}
