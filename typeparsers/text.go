package typeparsers

import "github.com/npillmayer/logpar/combinator"

// Text builds the P_TEXT builder: the captured text verbatim, with no
// further conversion. An empty capture is legal - a text field bounded by
// two adjacent literals may legitimately match nothing.
func Text(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCapture(name, endTokens, false, func(s string) (any, error) {
		return s, nil
	})
}

// Literal builds the P_LITERAL builder used for ir.Literal nodes: args[0]
// holds the exact text the literal must match. It consumes precisely that
// text and contributes no value, so composing a literal into the output
// document is a no-op.
func Literal(name string, endTokens []string, args []string) combinator.Parser[any] {
	want := name
	if len(args) > 0 {
		want = args[0]
	}
	return combinator.Replace[string, any](stringLit(want), nil)
}
