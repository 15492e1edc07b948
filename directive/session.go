package directive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/observability"
	"github.com/benz9527/xrbt/xlog"
)

const echoPrefix = "Directive-----------------> "

// Session executes directives against one tree and renders the results.
// It is not safe for concurrent use.
type Session struct {
	tree       tree.RBTree
	out        *bufio.Writer
	logger     xlog.XLogger
	stats      *observability.DirectiveStats
	dumpStyle  DumpStyle
	directives int64
	invalid    int64
}

type SessionOpt func(*Session)

func WithSessionOutput(w io.Writer) SessionOpt {
	return func(s *Session) {
		if w != nil {
			s.out = bufio.NewWriter(w)
		}
	}
}

func WithSessionLogger(logger xlog.XLogger) SessionOpt {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger.Named("directive")
		}
	}
}

func WithSessionStats(stats *observability.DirectiveStats) SessionOpt {
	return func(s *Session) {
		s.stats = stats
	}
}

func WithSessionDumpStyle(style DumpStyle) SessionOpt {
	return func(s *Session) {
		s.dumpStyle = style
	}
}

func NewSession(t tree.RBTree, opts ...SessionOpt) *Session {
	s := &Session{
		tree:      t,
		dumpStyle: DumpDots,
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	if s.tree == nil {
		s.tree = tree.NewRBTree()
	}
	if s.out == nil {
		s.out = bufio.NewWriter(os.Stdout)
	}
	if s.logger == nil {
		s.logger = xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError)).Named("directive")
	}
	return s
}

func (s *Session) Tree() tree.RBTree {
	return s.tree
}

// Run reads directives until quit, end of input or ctx cancellation.
// Cancellation is observed between lines only.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	lines := newLineReader(in)
	defer func() {
		s.logger.InfoContext(ctx, "directive session finished",
			zap.Int64("directives", s.directives),
			zap.Int64("invalid", s.invalid),
			zap.Int64("nodes", s.tree.Len()),
		)
	}()

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := lines.Text()
		if len(line) == 0 {
			continue
		}

		d, err := Parse(line)
		s.echo(line)
		s.stats.RecordDirective(string(d.Verb))
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		} else if d.Verb == VerbQuit {
			return s.out.Flush()
		} else {
			err = s.Execute(d)
		}
		if errors.Is(err, ErrInvalidOperation) {
			s.reject(ctx, d, err)
		} else if err != nil {
			return err
		}
		if err = s.out.Flush(); err != nil {
			return err
		}
	}
	return lines.Err()
}

func (s *Session) echo(line string) {
	s.directives++
	_, _ = s.out.WriteString("\n")
	_, _ = s.out.WriteString(echoPrefix)
	_, _ = s.out.WriteString(line)
	_, _ = s.out.WriteString("\n")
}

func (s *Session) reject(ctx context.Context, d Directive, err error) {
	s.invalid++
	s.stats.RecordInvalid(string(d.Verb))
	s.logger.DebugContext(ctx, "directive rejected",
		zap.String("directive", d.Raw),
		zap.Error(err),
	)
	_, _ = s.out.WriteString(InvalidOperation)
	_, _ = s.out.WriteString("\n")
}

// Execute runs one parsed directive. Rejections wrap ErrInvalidOperation
// and leave the tree untouched, any other error comes from the output.
func (s *Session) Execute(d Directive) error {
	switch d.Verb {
	case VerbInsert:
		if err := s.tree.InsertUnique(d.Key); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
	case VerbDelete:
		if _, err := s.tree.Remove(d.Key); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
	case VerbDFS:
		for _, node := range s.tree.DFS() {
			_, _ = fmt.Fprintf(s.out, "%s (%s): d=%d, f=%d\n",
				node.Key(), node.Color(), node.DiscoveryTime(), node.FinishTime())
		}
	case VerbQuery:
		node, err := s.tree.Query(d.Discovery, d.Finish)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		_, _ = fmt.Fprintf(s.out, "Output: Node %s (%s)\n", node.Key(), node.Color())
	case VerbPrintRBT:
		if err := s.dumpStyle.dump(s.tree, s.out); err != nil {
			return err
		}
	case VerbQuit:
	default:
		return fmt.Errorf("%w: %w", ErrInvalidOperation, ErrUnknownVerb)
	}
	return nil
}

// Close flushes the pending output and releases the tree.
func (s *Session) Close() error {
	var err error
	err = multierr.Append(err, s.out.Flush())
	err = multierr.Append(err, s.logger.Sync())
	s.tree.Release()
	return err
}
