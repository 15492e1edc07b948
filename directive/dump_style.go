package directive

import (
	"fmt"
	"io"

	"github.com/benz9527/xrbt/lib/tree"
)

type DumpStyle string

const (
	DumpDots DumpStyle = "dots"
	DumpTree DumpStyle = "tree"
	DumpDot  DumpStyle = "dot"
)

func DumpStyles() []string {
	return []string{string(DumpDots), string(DumpTree), string(DumpDot)}
}

func ParseDumpStyle(name string) (DumpStyle, error) {
	switch style := DumpStyle(name); style {
	case DumpDots, DumpTree, DumpDot:
		return style, nil
	case "":
		return DumpDots, nil
	default:
	}
	return "", fmt.Errorf("[directive] unknown dump style %q", name)
}

func (style DumpStyle) dump(t tree.RBTree, w io.Writer) error {
	switch style {
	case DumpTree:
		return t.PrettyDump(w)
	case DumpDot:
		return t.Dotdump(w)
	case DumpDots:
		fallthrough
	default:
	}
	return t.Dump(w)
}
