package typeparsers

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/npillmayer/logpar/combinator"
)

// Date builds the P_DATE builder: a timestamp, formatted per RFC 3339 in
// the output document. When the field names an explicit Go reference
// layout as its first remaining argument (e.g. "<~ts/date/Jan _2 15:04:05>")
// that layout is used; otherwise the text is parsed with
// github.com/araddon/dateparse, which infers the layout from the text
// itself - the same trick the original engine's date parser relies on
// (libfaketime-style "guess the format" dispatch) rather than requiring a
// format string for every occurrence. It bounds its own capture to
// dateCharset so it self-terminates when the compiler resolves an empty
// end-token list for a field immediately followed by another field or
// choice (§4.5); a layout with embedded spaces still needs a following
// literal or group to anchor it.
func Date(name string, endTokens []string, args []string) combinator.Parser[any] {
	layout := ""
	if len(args) > 0 {
		layout = args[0]
	}
	return fromCaptureWhile(name, endTokens, true, dateCharset, func(s string) (any, error) {
		var t time.Time
		var err error
		if layout != "" {
			t, err = time.Parse(layout, s)
		} else {
			t, err = dateparse.ParseAny(s)
		}
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(time.RFC3339Nano), nil
	})
}
