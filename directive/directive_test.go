package directive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testcases := []struct {
		name     string
		line     string
		expected Directive
		err      error
	}{
		{
			name:     "insert",
			line:     "insert banana",
			expected: Directive{Verb: VerbInsert, Key: "banana"},
		},
		{
			name:     "insert ignores trailing tokens",
			line:     "insert  banana split",
			expected: Directive{Verb: VerbInsert, Key: "banana"},
		},
		{
			name:     "insert without key",
			line:     "insert",
			expected: Directive{Verb: VerbInsert},
			err:      ErrMissingArgument,
		},
		{
			name:     "delete",
			line:     "\tdelete apple ",
			expected: Directive{Verb: VerbDelete, Key: "apple"},
		},
		{
			name:     "delete without key",
			line:     "delete ",
			expected: Directive{Verb: VerbDelete},
			err:      ErrMissingArgument,
		},
		{
			name:     "dfs",
			line:     "dfs",
			expected: Directive{Verb: VerbDFS},
		},
		{
			name:     "query",
			line:     "query 2 3",
			expected: Directive{Verb: VerbQuery, Discovery: 2, Finish: 3},
		},
		{
			name:     "query negative",
			line:     "query -1 6",
			expected: Directive{Verb: VerbQuery, Discovery: -1, Finish: 6},
		},
		{
			name:     "query one argument",
			line:     "query 2",
			expected: Directive{Verb: VerbQuery},
			err:      ErrMissingArgument,
		},
		{
			name:     "query not a number",
			line:     "query two 3",
			expected: Directive{Verb: VerbQuery},
			err:      ErrMalformedArgument,
		},
		{
			name:     "query trailing garbage",
			line:     "query 2 3abc",
			expected: Directive{Verb: VerbQuery, Discovery: 2},
			err:      ErrMalformedArgument,
		},
		{
			name:     "print",
			line:     "print-rbt",
			expected: Directive{Verb: VerbPrintRBT},
		},
		{
			name:     "quit",
			line:     "quit now",
			expected: Directive{Verb: VerbQuit},
		},
		{
			name:     "verbs are case sensitive",
			line:     "INSERT x",
			expected: Directive{Verb: VerbUnknown},
			err:      ErrUnknownVerb,
		},
		{
			name:     "blank",
			line:     "   ",
			expected: Directive{Verb: VerbUnknown},
			err:      ErrUnknownVerb,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			d, err := Parse(tc.line)
			if tc.err != nil {
				require.ErrorIs(tt, err, tc.err)
			} else {
				require.NoError(tt, err)
			}
			tc.expected.Raw = tc.line
			require.Equal(tt, tc.expected, d)
			require.Equal(tt, tc.line, d.String())
		})
	}
}

func TestParseDumpStyle(t *testing.T) {
	for _, name := range DumpStyles() {
		style, err := ParseDumpStyle(name)
		require.NoError(t, err)
		require.Equal(t, DumpStyle(name), style)
	}
	style, err := ParseDumpStyle("")
	require.NoError(t, err)
	require.Equal(t, DumpDots, style)
	_, err = ParseDumpStyle("svg")
	require.Error(t, err)
}
