/*
Package typeparsers implements the builders registered for each
registry.ParserKind: capture the bytes up to the field's resolved end-token,
then convert the captured text to a typed value (or fail with a trace
record if conversion fails).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package typeparsers

import (
	"bytes"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/cursor"
	"github.com/npillmayer/logpar/trace"
)

// tracer traces with key 'logpar.typeparsers'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.typeparsers")
}

// findEnd returns the offset of the earliest occurrence of any non-empty
// token in endTokens within buf, or len(buf) if none occurs. An empty
// token in endTokens denotes "or end of input" and contributes nothing
// beyond that default - it is not matched as a literal prefix everywhere.
func findEnd(buf []byte, endTokens []string) int {
	best := len(buf)
	for _, tok := range endTokens {
		if tok == "" {
			continue
		}
		if idx := bytes.Index(buf, []byte(tok)); idx >= 0 && idx < best {
			best = idx
		}
	}
	return best
}

// captureUntil consumes bytes up to (not including) the nearest end token,
// or to end of input if none is found. It fails without consuming if
// atLeastOne is set and the capture would be empty.
func captureUntil(endTokens []string, atLeastOne bool) combinator.Parser[string] {
	return func(c cursor.State) combinator.Result[string] {
		buf := c.Remaining()
		end := findEnd(buf, endTokens)
		if atLeastOne && end == 0 {
			rec := trace.New(c.Offset(), "[failure] capture(%v) -> empty", endTokens)
			var traces []trace.Record
			if c.TraceOn() {
				traces = []trace.Record{rec}
			}
			return combinator.Result[string]{Cursor: c, Traces: traces}
		}
		return combinator.Result[string]{OK: true, Cursor: c.Advance(end), Value: string(buf[:end])}
	}
}

// captureWhile consumes up to the nearest end token when one actually
// occurs in the remaining input - the same boundary captureUntil would
// use. When no end token occurs (either because endTokens itself is empty,
// or because none of its tokens appear before end of input), it instead
// consumes the longest run of bytes satisfying valid. Fixed-width types
// (P_LONG, P_BYTE, P_DOUBLE, P_FLOAT, P_SCALED_FLOAT, P_IP, P_DATE,
// P_BOOL) use this instead of captureUntil: per §4.5, a field immediately
// followed by another field or choice resolves to an empty end-token list,
// and "the field's own parser is responsible for knowing when to stop" -
// an unbounded captureUntil would otherwise swallow the rest of the input.
// valid is consulted byte-by-byte with the position within the run so far,
// letting a charset allow a leading sign without allowing one mid-run.
func captureWhile(endTokens []string, atLeastOne bool, valid func(pos int, b byte) bool) combinator.Parser[string] {
	return func(c cursor.State) combinator.Result[string] {
		buf := c.Remaining()
		limit := findEnd(buf, endTokens)
		end := limit
		if limit == len(buf) {
			end = 0
			for end < limit && valid(end, buf[end]) {
				end++
			}
		}
		if atLeastOne && end == 0 {
			rec := trace.New(c.Offset(), "[failure] capture(%v) -> empty", endTokens)
			var traces []trace.Record
			if c.TraceOn() {
				traces = []trace.Record{rec}
			}
			return combinator.Result[string]{Cursor: c, Traces: traces}
		}
		return combinator.Result[string]{OK: true, Cursor: c.Advance(end), Value: string(buf[:end])}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// integerCharset bounds P_LONG/P_BYTE: digits, with an optional leading
// sign.
func integerCharset(pos int, b byte) bool {
	if pos == 0 && (b == '-' || b == '+') {
		return true
	}
	return isDigit(b)
}

// floatCharset bounds P_DOUBLE/P_FLOAT/P_SCALED_FLOAT: digits, a decimal
// point, and a scientific-notation exponent with its own optional sign.
func floatCharset(pos int, b byte) bool {
	if pos == 0 && (b == '-' || b == '+') {
		return true
	}
	switch b {
	case '.', 'e', 'E', '+', '-':
		return true
	}
	return isDigit(b)
}

// ipCharset bounds P_IP: hex digits for IPv6, decimal digits, '.' and ':'
// cover both address families without pulling in a dedicated char class
// per family.
func ipCharset(pos int, b byte) bool {
	switch {
	case isDigit(b), b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
		return true
	case b == '.' || b == ':':
		return true
	}
	return false
}

// dateCharset bounds P_DATE: digits and the separators/letters that appear
// in the common compact layouts (RFC 3339, month abbreviations, zone
// offsets). It excludes spaces, so a layout using "Jan _2 15:04:05"-style
// spacing still needs a following literal or group to anchor it; a bare
// self-delimited date is necessarily one of the no-space forms.
func dateCharset(pos int, b byte) bool {
	switch {
	case isDigit(b):
		return true
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b == '-' || b == ':' || b == '.' || b == '+' || b == 'T' || b == 'Z':
		return true
	}
	return false
}

// boolCharset bounds P_BOOL: any ASCII letter or digit, which covers
// strconv.ParseBool's accepted spellings (true/false/t/f/1/0 and their case
// variants).
func boolCharset(pos int, b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// stringLit matches want exactly, consuming it on success and failing
// without consuming otherwise.
func stringLit(want string) combinator.Parser[string] {
	wb := []byte(want)
	return func(c cursor.State) combinator.Result[string] {
		buf := c.Remaining()
		if bytes.HasPrefix(buf, wb) {
			return combinator.Result[string]{OK: true, Cursor: c.Advance(len(wb)), Value: want}
		}
		var traces []trace.Record
		if c.TraceOn() {
			traces = []trace.Record{trace.New(c.Offset(), "[failure] literal(%q)", want)}
		}
		return combinator.Result[string]{Cursor: c, Traces: traces}
	}
}

// fromCapture builds a Parser[any] that captures up to endTokens, then
// converts the captured text with parse. A conversion error fails the
// parser at the original cursor (no bytes consumed) with a trace record
// naming the field and the rejected text.
func fromCapture(name string, endTokens []string, atLeastOne bool, parse func(string) (any, error)) combinator.Parser[any] {
	return fromCaptureParser(captureUntil(endTokens, atLeastOne), name, parse)
}

// fromCaptureWhile is fromCapture for a fixed-width type: it bounds its own
// capture with valid rather than relying solely on endTokens, so it
// terminates correctly even when the compiler resolves an empty end-token
// list (field immediately followed by another field or choice, §4.5).
func fromCaptureWhile(name string, endTokens []string, atLeastOne bool, valid func(pos int, b byte) bool, parse func(string) (any, error)) combinator.Parser[any] {
	return fromCaptureParser(captureWhile(endTokens, atLeastOne, valid), name, parse)
}

func fromCaptureParser(cap combinator.Parser[string], name string, parse func(string) (any, error)) combinator.Parser[any] {
	return func(c cursor.State) combinator.Result[any] {
		r := cap(c)
		if !r.OK {
			return combinator.Result[any]{Cursor: r.Cursor, Traces: r.Traces}
		}
		v, err := parse(r.Value)
		if err != nil {
			traces := r.Traces
			if c.TraceOn() {
				rec := trace.New(c.Offset(), "[failure] %s(%q) -> %v", name, r.Value, err)
				traces = append(traces, rec)
			}
			return combinator.Result[any]{Cursor: c, Traces: traces}
		}
		return combinator.Result[any]{OK: true, Cursor: r.Cursor, Value: v, Traces: r.Traces}
	}
}
