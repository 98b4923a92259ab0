/*
Package event implements the minimal event contract a stage mutates:
existence checks, string field access, and a non-recursive merge of a
parsed document into an event - the same contract the original engine's
opBuilderLogParser exposes to a parse stage as a base::Event.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package event

import (
	"fmt"

	"github.com/npillmayer/logpar/document"
)

// Event is the narrow interface a stage needs from a pipeline event: read
// a source field, then merge a parsed document's fields back in. A real
// integration's own event type satisfies this without modification as
// long as it exposes dotted-path field access.
type Event interface {
	// Exists reports whether path names a present field.
	Exists(path string) bool
	// IsString reports whether path names a present string field.
	IsString(path string) bool
	// GetString returns the string value at path, or "" if absent or not
	// a string.
	GetString(path string) string
	// Set writes v at path, creating intermediate objects as needed.
	Set(path string, v any)
	// Merge merges d into the event at the given base path ("" for root).
	Merge(base string, d document.Doc)
}

// IntegrationError reports that an Event implementation did not satisfy
// the contract a stage needed - e.g. the source field was missing, or
// present but not a string.
type IntegrationError struct {
	Path   string
	Reason string
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("event integration error at %q: %s", e.Path, e.Reason)
}

// Map is a minimal in-memory Event backed by a document.Doc, useful for
// tests and for standalone use of package stage outside of a larger
// pipeline.
type Map struct {
	doc document.Doc
}

// NewMap returns an empty Map event.
func NewMap() *Map {
	return &Map{doc: document.Empty()}
}

// NewMapFrom wraps an existing document as a Map event.
func NewMapFrom(d document.Doc) *Map {
	if d == nil {
		d = document.Empty()
	}
	return &Map{doc: d}
}

// Doc returns the event's underlying document.
func (m *Map) Doc() document.Doc {
	return m.doc
}

func (m *Map) lookup(path string) (any, bool) {
	segs := document.FormatPath(path)
	var cur any = m.doc
	for _, seg := range segs {
		d, ok := cur.(document.Doc)
		if !ok {
			return nil, false
		}
		v, found := d[seg]
		if !found {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Exists reports whether path names a present field.
func (m *Map) Exists(path string) bool {
	_, ok := m.lookup(path)
	return ok
}

// IsString reports whether path names a present string field.
func (m *Map) IsString(path string) bool {
	v, ok := m.lookup(path)
	if !ok {
		return false
	}
	_, isString := v.(string)
	return isString
}

// GetString returns the string value at path, or "" if absent or not a
// string.
func (m *Map) GetString(path string) string {
	v, ok := m.lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set writes v at path, creating intermediate objects as needed.
func (m *Map) Set(path string, v any) {
	m.doc.Set(path, v)
}

// Merge merges d into the event at base ("" for root), non-recursively at
// the merge point per document.Merge's rule.
func (m *Map) Merge(base string, d document.Doc) {
	if base == "" {
		m.doc = document.Merge(m.doc, d)
		return
	}
	existing, ok := m.lookup(base)
	existingDoc, _ := existing.(document.Doc)
	if !ok || existingDoc == nil {
		existingDoc = document.Empty()
	}
	m.doc.Set(base, document.Merge(existingDoc, d))
}
