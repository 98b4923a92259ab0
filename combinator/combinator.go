/*
Package combinator implements the primitive parser values and combinators
the pattern grammar and the compiled payload parser are built from.

Every combinator is parameterized over its output type T and is just a plain
Go function value: Parser[T] = func(cursor.State) Result[T]. There is no
parser object graph to maintain, no parser generator step — a pattern
grammar or a compiled field parser is simply a Go closure built up out of
these primitives, composed the way the teacher's term-rewriting rules
(terex/termr) are composed out of plain function values rather than a
virtual machine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package combinator

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/cursor"
	"github.com/npillmayer/logpar/trace"
)

// tracer traces with key 'logpar.combinator'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.combinator")
}

// Result is the outcome of running a Parser: either success, carrying the
// residual cursor and a produced value, or failure, carrying the cursor at
// which the failure occurred. Both variants may carry trace records.
type Result[T any] struct {
	OK     bool
	Cursor cursor.State
	Value  T
	Traces []trace.Record
}

// Parser is a primitive or combined parsing function producing values of
// type T.
type Parser[T any] func(cursor.State) Result[T]

func ok[T any](c cursor.State, v T, traces ...trace.Record) Result[T] {
	return Result[T]{OK: true, Cursor: c, Value: v, Traces: traces}
}

func fail[T any](c cursor.State, traces ...trace.Record) Result[T] {
	var zero T
	return Result[T]{OK: false, Cursor: c, Value: zero, Traces: traces}
}

func withTrace[T any](c cursor.State, r Result[T], name, outcome string, arg string) Result[T] {
	if !c.TraceOn() {
		return r
	}
	examined := "EOF"
	if b, present := c.Peek(); present {
		examined = string(b)
	}
	rec := trace.New(c.Offset(), "[%s] %s(%s) -> %s", outcome, name, arg, examined)
	r.Traces = append([]trace.Record{rec}, r.Traces...)
	return r
}

func outcomeOf[T any](r Result[T]) string {
	if r.OK {
		return "success"
	}
	return "failure"
}

// Char consumes one byte if it is in set, else fails without consuming.
func Char(set string) Parser[byte] {
	return func(c cursor.State) Result[byte] {
		b, present := c.Peek()
		var r Result[byte]
		if present && strings.IndexByte(set, b) >= 0 {
			r = ok(c.Advance(1), b)
		} else {
			r = fail[byte](c)
		}
		return withTrace(c, r, "char", outcomeOf(r), set)
	}
}

// NotChar consumes one byte if it is NOT in set, else fails without
// consuming.
func NotChar(set string) Parser[byte] {
	return func(c cursor.State) Result[byte] {
		b, present := c.Peek()
		var r Result[byte]
		if present && strings.IndexByte(set, b) < 0 {
			r = ok(c.Advance(1), b)
		} else {
			r = fail[byte](c)
		}
		return withTrace(c, r, "notChar", outcomeOf(r), set)
	}
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Alnum consumes one byte if it is alphanumeric (ASCII) or appears in
// extended, else fails.
func Alnum(extended string) Parser[byte] {
	return func(c cursor.State) Result[byte] {
		b, present := c.Peek()
		var r Result[byte]
		if present && (isAlnum(b) || strings.IndexByte(extended, b) >= 0) {
			r = ok(c.Advance(1), b)
		} else {
			r = fail[byte](c)
		}
		return withTrace(c, r, "alnum", outcomeOf(r), extended)
	}
}

// Pair is the paired result of Seq.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Seq runs a, then b on a's residual cursor; the result is the pair of both
// values. Fails (without running b) if a fails.
func Seq[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(c cursor.State) Result[Pair[A, B]] {
		ra := a(c)
		if !ra.OK {
			return fail[Pair[A, B]](ra.Cursor, ra.Traces...)
		}
		rb := b(ra.Cursor)
		traces := append(append([]trace.Record{}, ra.Traces...), rb.Traces...)
		if !rb.OK {
			return fail[Pair[A, B]](rb.Cursor, traces...)
		}
		return ok(rb.Cursor, Pair[A, B]{First: ra.Value, Second: rb.Value}, traces...)
	}
}

// Left runs a then b, keeping only a's value.
func Left[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return Map(Seq(a, b), func(p Pair[A, B]) A { return p.First })
}

// Right runs a then b, keeping only b's value.
func Right[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return Map(Seq(a, b), func(p Pair[A, B]) B { return p.Second })
}

// Alt tries a; if it fails, retries b at the original cursor -
// unconditionally, regardless of how much a consumed before failing. This is
// the commit policy the compiler's field-followed-by-group special case
// depends on: no PEG-style cut is implemented or required.
func Alt[T any](a, b Parser[T]) Parser[T] {
	return func(c cursor.State) Result[T] {
		ra := a(c)
		if ra.OK {
			return ra
		}
		rb := b(c)
		traces := append(append([]trace.Record{}, ra.Traces...), rb.Traces...)
		rb.Traces = traces
		return rb
	}
}

// Many matches zero or more occurrences of a; always succeeds.
func Many[T any](a Parser[T]) Parser[[]T] {
	return func(c cursor.State) Result[[]T] {
		var values []T
		var traces []trace.Record
		cur := c
		for {
			r := a(cur)
			traces = append(traces, r.Traces...)
			if !r.OK {
				break
			}
			if r.Cursor.Offset() == cur.Offset() {
				// a matched empty input: stop to avoid an infinite loop.
				break
			}
			values = append(values, r.Value)
			cur = r.Cursor
		}
		return ok(cur, values, traces...)
	}
}

// Many1 matches one or more occurrences of a; fails if none matched.
func Many1[T any](a Parser[T]) Parser[[]T] {
	return func(c cursor.State) Result[[]T] {
		r := Many(a)(c)
		if len(r.Value) == 0 {
			return fail[[]T](c, r.Traces...)
		}
		return r
	}
}

// Opt wraps a; on failure it succeeds at the original cursor with the zero
// value of T. Opt never fails: opt(p) is total for any p.
func Opt[T any](a Parser[T]) Parser[T] {
	return func(c cursor.State) Result[T] {
		r := a(c)
		if r.OK {
			return r
		}
		var zero T
		return ok(c, zero, r.Traces...)
	}
}

// Map applies a pure function to a successful result's value.
func Map[A, B any](a Parser[A], f func(A) B) Parser[B] {
	return func(c cursor.State) Result[B] {
		r := a(c)
		if !r.OK {
			return fail[B](r.Cursor, r.Traces...)
		}
		return ok(r.Cursor, f(r.Value), r.Traces...)
	}
}

// Replace discards a's value on success and substitutes v.
func Replace[A, B any](a Parser[A], v B) Parser[B] {
	return Map(a, func(A) B { return v })
}

// EOF succeeds only when the cursor has consumed the entire input.
func EOF[T any](zero T) Parser[T] {
	return func(c cursor.State) Result[T] {
		var r Result[T]
		if c.AtEOF() {
			r = ok(c, zero)
		} else {
			r = fail[T](c)
		}
		return withTrace(c, r, "eof", outcomeOf(r), "")
	}
}

// Bind sequences a with a parser chosen from a's result. This is not part
// of the required primitive set in the design, but the pattern grammar's
// field names need it: whether a name is required or may be empty depends
// on whether a custom-field marker was just consumed, which plain Seq/Map
// cannot express since the second parser isn't known until the first one
// has run.
func Bind[A, B any](a Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(c cursor.State) Result[B] {
		ra := a(c)
		if !ra.OK {
			return fail[B](ra.Cursor, ra.Traces...)
		}
		rb := f(ra.Value)(ra.Cursor)
		rb.Traces = append(append([]trace.Record{}, ra.Traces...), rb.Traces...)
		return rb
	}
}

// Run executes p against the full input, with tracing enabled when
// traceOn is set.
func Run[T any](p Parser[T], input []byte, traceOn bool) Result[T] {
	tracer().Debugf("running parser against %d bytes (trace=%v)", len(input), traceOn)
	return p(cursor.New(input, traceOn))
}
