/*
Package document implements the nested output structure a payload parser
assembles: a mapping keyed by strings with leaf values of the usual JSON
value kinds, JSON-pointer-style path assembly, and the non-recursive merge
rule the compiler relies on when composing adjacent field parsers.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package document

import "strings"

// Doc is a nested key-value output document.
type Doc map[string]any

// Empty returns the empty document, the value produced by a discarded
// field.
func Empty() Doc { return Doc{} }

// FormatPath splits a dotted field name ("client.ip") into its path
// segments, mirroring the original engine's json::Json::formatJsonPath: a
// schema field's dots denote nesting, not a literal key.
func FormatPath(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}

// Set writes v at the nested location named by path (dot-separated),
// creating intermediate objects as needed.
func (d Doc) Set(path string, v any) {
	segs := FormatPath(path)
	if len(segs) == 0 {
		return
	}
	cur := d
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(Doc)
		if !ok {
			next = Doc{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

// FromPath builds a single-field document at the given dotted path.
func FromPath(path string, v any) Doc {
	d := Doc{}
	d.Set(path, v)
	return d
}

// Merge combines a and b non-recursively: for keys present in both, b's
// value replaces a's; nested objects are not deep-merged. Merge
// returns a new Doc and leaves both operands untouched.
func Merge(a, b Doc) Doc {
	out := Doc{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// MergeValues implements the compiler's "Output assembly" rule for two
// adjacent parser results that may or may not be objects: if both are
// Doc, they merge non-recursively; if only one is a Doc, it is kept as-is;
// if neither is, the result is the empty document.
func MergeValues(a, b any) any {
	da, aIsDoc := a.(Doc)
	db, bIsDoc := b.(Doc)
	switch {
	case aIsDoc && bIsDoc:
		return Merge(da, db)
	case aIsDoc:
		return da
	case bIsDoc:
		return db
	default:
		return Empty()
	}
}
