package directive

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// lineReader yields the lines of a stream without their "\n" or "\r\n"
// terminator. Unlike bufio.Scanner it has no line length limit.
type lineReader struct {
	r    *bufio.Reader
	line string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 4096)}
}

func (lr *lineReader) Next() bool {
	if lr.err != nil {
		return false
	}
	line, err := lr.r.ReadString('\n')
	if err != nil {
		lr.err = err
		// An unterminated last line is still a line.
		if !errors.Is(err, io.EOF) || len(line) == 0 {
			return false
		}
	}
	line = strings.TrimSuffix(line, "\n")
	lr.line = strings.TrimSuffix(line, "\r")
	return true
}

func (lr *lineReader) Text() string {
	return lr.line
}

// Err returns the first read error, end of input excluded.
func (lr *lineReader) Err() error {
	if errors.Is(lr.err, io.EOF) {
		return nil
	}
	return lr.err
}
