package directive

import (
	"errors"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xrbt/lib/infra"
	"github.com/benz9527/xrbt/lib/tree"
)

type KeyLoadSummary struct {
	Loaded     int
	Duplicates int
	Blank      int
	Bytes      uint64
}

// LoadKeys inserts every non-empty line of r as a key. The line is the key,
// surrounding spaces included. Duplicates are skipped.
func (s *Session) LoadKeys(r io.Reader) (KeyLoadSummary, error) {
	summary := KeyLoadSummary{}
	reader := newLineReader(r)
	lines := make([]string, 0, 1024)
	for reader.Next() {
		line := reader.Text()
		summary.Bytes += uint64(len(line)) + 1
		lines = append(lines, line)
	}
	if err := reader.Err(); err != nil {
		return summary, infra.WrapErrorStackWithMessage(err, "read key file")
	}

	keys := lo.Filter(lines, func(line string, _ int) bool {
		return len(line) > 0
	})
	summary.Blank = len(lines) - len(keys)
	for _, key := range keys {
		err := s.tree.InsertUnique(key)
		if errors.Is(err, tree.ErrRBTreeDuplicateKey) {
			summary.Duplicates++
			s.logger.Debug("duplicate key ignored", zap.String("key", key))
			continue
		} else if err != nil {
			return summary, infra.WrapErrorStackWithMessage(err, "load key")
		}
		summary.Loaded++
	}

	s.logger.Info("keys loaded",
		zap.String("loaded", humanize.Comma(int64(summary.Loaded))),
		zap.String("duplicates", humanize.Comma(int64(summary.Duplicates))),
		zap.String("blank", humanize.Comma(int64(summary.Blank))),
		zap.String("size", humanize.Bytes(summary.Bytes)),
	)
	return summary, nil
}
