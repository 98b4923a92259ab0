package typeparsers

import (
	"strconv"

	"github.com/npillmayer/logpar/combinator"
)

// Long builds the P_LONG builder: a signed 64-bit integer. It bounds its
// own capture to integerCharset rather than relying solely on endTokens, so
// it self-terminates when the compiler resolves an empty end-token list for
// a field immediately followed by another field or choice (§4.5).
func Long(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, integerCharset, func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Double builds the P_DOUBLE builder: a 64-bit float, self-delimited by
// floatCharset.
func Double(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, floatCharset, func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// Float builds the P_FLOAT builder: a 32-bit float, self-delimited by
// floatCharset.
func Float(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, floatCharset, func(s string) (any, error) {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	})
}

// ScaledFloat builds the P_SCALED_FLOAT builder. A scaling factor may be
// given as the field's first remaining argument (default 1); it is applied
// to the parsed value the way Elasticsearch's scaled_float stores a scaled
// integer internally but exposes a float to callers.
func ScaledFloat(name string, endTokens []string, args []string) combinator.Parser[any] {
	factor := 1.0
	if len(args) > 0 {
		if f, err := strconv.ParseFloat(args[0], 64); err == nil {
			factor = f
		}
	}
	return fromCaptureWhile(name, endTokens, true, floatCharset, func(s string) (any, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return v * factor, nil
	})
}

// Byte builds the P_BYTE builder: a signed 8-bit integer, self-delimited
// by integerCharset.
func Byte(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, integerCharset, func(s string) (any, error) {
		v, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return nil, err
		}
		return int8(v), nil
	})
}

// Bool builds the P_BOOL builder: "true"/"false" (and strconv's other
// accepted spellings), self-delimited by boolCharset.
func Bool(name string, endTokens []string, args []string) combinator.Parser[any] {
	return fromCaptureWhile(name, endTokens, true, boolCharset, func(s string) (any, error) {
		return strconv.ParseBool(s)
	})
}
