/*
Package pattern implements the fixed grammar that parses pattern source text
into an ir.Pattern, built entirely from package combinator's primitives - no
parser generator, no grammar tables, just a handful of composed Parser
values, the same way the teacher composes term-rewriting rules out of plain
function values in terex/termr rather than a virtual machine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package pattern

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/cursor"
	"github.com/npillmayer/logpar/ir"
	"github.com/npillmayer/logpar/trace"
)

// tracer traces with key 'logpar.pattern'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.pattern")
}

// Reserved bytes. Once chosen these are part of the external contract (§6)
// and must stay stable.
const (
	ExprBegin       = '<'
	ExprEnd         = '>'
	ExprArgSep      = '/'
	ExprOpt         = '?'
	ExprEscape      = '\\'
	ExprCustomField = '~'
	ExprGroupBegin  = '('
	ExprGroupEnd    = ')'
	// ExprFieldSep separates path components within a schema field name,
	// e.g. "client.ip". It is an extended-name character, not a reserved
	// pattern byte.
	ExprFieldSep = '.'
)

// ExtendedCharsFirst are additional (non-alphanumeric) bytes a field name's
// first character may be.
const ExtendedCharsFirst = "_"

// ExtendedChars are additional bytes allowed in a field name after the
// first character, including the path separator.
const ExtendedChars = "_-" + string(rune(ExprFieldSep))

var reservedLiteralChars = string([]byte{ExprBegin, ExprOpt, ExprGroupBegin, ExprGroupEnd})

// GrammarError reports that a pattern did not conform to the grammar. The
// message is the sorted trace accumulated while trying to parse it.
type GrammarError struct {
	Records []trace.Record
}

func (e *GrammarError) Error() string {
	return trace.Report(e.Records)
}

func ch(b byte) string { return string(rune(b)) }

func escapedChar(reserved string) combinator.Parser[byte] {
	esc := combinator.Char(ch(ExprEscape))
	escaped := combinator.Char(reserved + ch(ExprEscape))
	return combinator.Right(esc, escaped)
}

func bytesToString(bs []byte) string { return string(bs) }

func rawLiteral(reserved string, atLeastOne bool) combinator.Parser[string] {
	notReserved := combinator.NotChar(reserved + ch(ExprEscape))
	piece := combinator.Alt(notReserved, escapedChar(reserved))
	if atLeastOne {
		return combinator.Map(combinator.Many1(piece), bytesToString)
	}
	return combinator.Map(combinator.Many(piece), bytesToString)
}

// pLiteral parses the Literal production: one or more bytes that are not
// reserved, with escape support.
func pLiteral() combinator.Parser[ir.Literal] {
	return combinator.Map(rawLiteral(reservedLiteralChars, true), func(s string) ir.Literal {
		return ir.Literal{Value: s}
	})
}

// pArgs parses the Args production: zero or more "/<raw>" groups.
func pArgs() combinator.Parser[[]string] {
	sep := combinator.Char(ch(ExprArgSep))
	arg := rawLiteral(ch(ExprArgSep)+ch(ExprEnd), false)
	oneArg := combinator.Right(sep, arg)
	return combinator.Many(oneArg)
}

func identifier() combinator.Parser[string] {
	return combinator.Map(
		combinator.Seq(
			combinator.Alnum(ExtendedCharsFirst),
			combinator.Many(combinator.Alnum(ExtendedChars)),
		),
		func(p combinator.Pair[byte, []byte]) string {
			return string(p.First) + string(p.Second)
		},
	)
}

// pFieldName parses the FieldName production: an optional leading custom
// marker, then an identifier (optional when the marker was present, since a
// bare marker is the legal discard sentinel; required otherwise).
//
// Whether the trailing name is required depends on whether the marker was
// just consumed, so this needs a dependent (monadic) composition -
// combinator.Bind - rather than a fixed Seq/Map pipeline.
func pFieldName() combinator.Parser[ir.FieldName] {
	marker := combinator.Opt(combinator.Char(ch(ExprCustomField)))
	id := identifier()
	return combinator.Bind(marker, func(m byte) combinator.Parser[ir.FieldName] {
		if m == ExprCustomField {
			return combinator.Map(combinator.Opt(id), func(name string) ir.FieldName {
				return ir.FieldName{Text: name, Custom: true}
			})
		}
		return combinator.Map(id, func(name string) ir.FieldName {
			return ir.FieldName{Text: name, Custom: false}
		})
	})
}

// pField parses the Field production:
// EXPR_BEGIN [EXPR_OPT] FieldName Args EXPR_END.
func pField() combinator.Parser[ir.Field] {
	begin := combinator.Char(ch(ExprBegin))
	end := combinator.Char(ch(ExprEnd))
	opt := combinator.Opt(combinator.Char(ch(ExprOpt)))
	body := combinator.Map(
		combinator.Seq(combinator.Seq(opt, pFieldName()), pArgs()),
		func(p combinator.Pair[combinator.Pair[byte, ir.FieldName], []string]) ir.Field {
			return ir.Field{
				Name:     p.First.Second,
				Args:     p.Second,
				Optional: p.First.First == ExprOpt,
			}
		},
	)
	return combinator.Left(combinator.Right(begin, body), end)
}

// pChoice parses the Choice production: Field EXPR_OPT Field. The whole
// Choice fails (not the surrounding file) if either branch parsed as
// optional - a hand-written check after the Seq, since optionality isn't
// something Seq/Map alone can reject without inspecting both values at once.
func pChoice() combinator.Parser[ir.Choice] {
	sep := combinator.Char(ch(ExprOpt))
	pair := combinator.Seq(combinator.Left(pField(), sep), pField())
	return func(c cursor.State) combinator.Result[ir.Choice] {
		r := pair(c)
		if !r.OK {
			return combinator.Result[ir.Choice]{Cursor: r.Cursor, Traces: r.Traces}
		}
		left, right := r.Value.First, r.Value.Second
		if left.Optional || right.Optional {
			rec := trace.New(c.Offset(), "[failure] pChoice(%s, %s) -> expected both fields to be non-optional", left.Name, right.Name)
			traces := r.Traces
			if c.TraceOn() {
				traces = append(traces, rec)
			}
			return combinator.Result[ir.Choice]{Cursor: r.Cursor, Traces: traces}
		}
		return combinator.Result[ir.Choice]{OK: true, Cursor: r.Cursor, Value: ir.Choice{Left: left, Right: right}, Traces: r.Traces}
	}
}

func asNode[T ir.Node](p combinator.Parser[T]) combinator.Parser[ir.Node] {
	return combinator.Map(p, func(v T) ir.Node { return v })
}

// pExpr parses the Expr production: many1(Choice | Field | Literal), tried
// in that order.
func pExpr() combinator.Parser[[]ir.Node] {
	alt := combinator.Alt(asNode(pChoice()), combinator.Alt(asNode(pField()), asNode(pLiteral())))
	return combinator.Many1(alt)
}

// pGroup parses the Group production:
// EXPR_GROUP_BEGIN EXPR_OPT <body> EXPR_GROUP_END, where <body> is one or
// more of Expr | Group. Groups recurse directly into themselves, which is
// why this is a hand-written function rather than a value built once from
// combinators: the recursive call must happen lazily, at parse time, not
// while constructing the parser.
func pGroup() combinator.Parser[ir.Group] {
	return parseGroup
}

func parseGroup(c cursor.State) combinator.Result[ir.Group] {
	start := combinator.Seq(combinator.Char(ch(ExprGroupBegin)), combinator.Char(ch(ExprOpt)))
	resStart := start(c)
	if !resStart.OK {
		return combinator.Result[ir.Group]{Cursor: resStart.Cursor, Traces: resStart.Traces}
	}

	bodyPiece := combinator.Alt(pExpr(), combinator.Map(pGroup(), func(g ir.Group) []ir.Node { return []ir.Node{g} }))
	resBody := combinator.Many1(bodyPiece)(resStart.Cursor)
	traces := append(append([]trace.Record{}, resStart.Traces...), resBody.Traces...)
	if !resBody.OK {
		return combinator.Result[ir.Group]{Cursor: resBody.Cursor, Traces: traces}
	}

	var children []ir.Node
	for _, piece := range resBody.Value {
		children = append(children, piece...)
	}

	resEnd := combinator.Char(ch(ExprGroupEnd))(resBody.Cursor)
	traces = append(traces, resEnd.Traces...)
	if !resEnd.OK {
		return combinator.Result[ir.Group]{Cursor: resEnd.Cursor, Traces: traces}
	}

	return combinator.Result[ir.Group]{OK: true, Cursor: resEnd.Cursor, Value: ir.Group{Children: children}, Traces: traces}
}

func exprOrGroup() combinator.Parser[[]ir.Node] {
	return combinator.Alt(pExpr(), combinator.Map(pGroup(), func(g ir.Group) []ir.Node { return []ir.Node{g} }))
}

// pPattern parses the Pattern production: many1(Expr | Group) followed by
// eof.
func pPattern() combinator.Parser[ir.Pattern] {
	body := combinator.Many1(exprOrGroup())
	flattened := combinator.Map(body, func(groups [][]ir.Node) ir.Pattern {
		var nodes ir.Pattern
		for _, g := range groups {
			nodes = append(nodes, g...)
		}
		return nodes
	})
	return combinator.Left(flattened, combinator.EOF(ir.Pattern(nil)))
}

// Parse parses pattern source text into an ir.Pattern. Parsing always
// collects trace records (compiling a pattern is not a hot path), returned
// alongside a successful result so a debug-mode caller can still inspect
// them; on failure the records are wrapped in the returned *GrammarError.
func Parse(src string) (ir.Pattern, []trace.Record, error) {
	tracer().Debugf("parsing pattern %q", src)
	r := combinator.Run(pPattern(), []byte(src), true)
	if !r.OK {
		return nil, r.Traces, &GrammarError{Records: r.Traces}
	}
	if !r.Value.Valid() {
		rec := trace.New(0, "pattern must contain at least one node")
		return nil, append(r.Traces, rec), &GrammarError{Records: append(r.Traces, rec)}
	}
	return r.Value, r.Traces, nil
}
