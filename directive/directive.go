package directive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Verb string

const (
	VerbInsert   Verb = "insert"
	VerbDelete   Verb = "delete"
	VerbDFS      Verb = "dfs"
	VerbQuery    Verb = "query"
	VerbPrintRBT Verb = "print-rbt"
	VerbQuit     Verb = "quit"
	VerbUnknown  Verb = "unknown"
)

// InvalidOperation is the only failure text the directive stream ever sees.
const InvalidOperation = "Invalid Operation"

var (
	ErrInvalidOperation  = errors.New("[directive] invalid operation")
	ErrUnknownVerb       = errors.New("[directive] unknown verb")
	ErrMissingArgument   = errors.New("[directive] missing argument")
	ErrMalformedArgument = errors.New("[directive] malformed argument")
)

// Directive is one parsed input line. Tokens after the ones a verb needs
// are ignored.
type Directive struct {
	Verb      Verb
	Key       string
	Discovery int64
	Finish    int64
	Raw       string
}

func (d Directive) String() string {
	return d.Raw
}

func Parse(line string) (Directive, error) {
	d := Directive{Verb: VerbUnknown, Raw: line}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return d, ErrUnknownVerb
	}

	switch verb := Verb(fields[0]); verb {
	case VerbInsert, VerbDelete:
		d.Verb = verb
		if len(fields) < 2 {
			return d, fmt.Errorf("%w: %s expects a key", ErrMissingArgument, verb)
		}
		d.Key = fields[1]
	case VerbQuery:
		d.Verb = verb
		if len(fields) < 3 {
			return d, fmt.Errorf("%w: %s expects a discovery and a finish time", ErrMissingArgument, verb)
		}
		var err error
		if d.Discovery, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
			return d, fmt.Errorf("%w: discovery time %q", ErrMalformedArgument, fields[1])
		}
		if d.Finish, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return d, fmt.Errorf("%w: finish time %q", ErrMalformedArgument, fields[2])
		}
	case VerbDFS, VerbPrintRBT, VerbQuit:
		d.Verb = verb
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownVerb, fields[0])
	}
	return d, nil
}
