/*
Package trace implements diagnostic accumulation, stable ordering and
reporting for both compile-time and run-time failures of a compiled pattern.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package trace

import (
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'logpar.trace'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.trace")
}

// Record is a single diagnostic emitted by a combinator. Order provides a
// stable total order for diagnostics across recursive calls, independent of
// which goroutine produced the record.
type Record struct {
	Order   uint64
	Offset  int
	Message string
}

var nextOrder atomic.Uint64

// NextOrder returns the next value of the process-wide trace-order counter.
// It is safe to call concurrently from multiple compiling or parsing
// goroutines; the teacher's equivalent counter (runtime.serialID, a plain
// int) is not, which is why this one is an atomic.Uint64 instead.
func NextOrder() uint64 {
	return nextOrder.Add(1)
}

// New builds a Record at the given offset with the current order.
func New(offset int, format string, args ...interface{}) Record {
	return Record{Order: NextOrder(), Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// Sort orders records by Order ascending, in place.
func Sort(records []Record) {
	slices.SortFunc(records, func(a, b Record) bool { return a.Order < b.Order })
}

// Report sorts records and formats them as the diagnostic text surfaced to
// callers: one line per record, "{order}: | offset: {offset} | {message}".
func Report(records []Record) string {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	Sort(sorted)
	var b strings.Builder
	for _, r := range sorted {
		fmt.Fprintf(&b, "%d: | offset: %d | %s\n", r.Order, r.Offset, r.Message)
	}
	return b.String()
}

// Mode selects how a successful parse with non-empty traces is handled.
type Mode int

const (
	// ModeQuiet discards traces on success; only failures are reported.
	ModeQuiet Mode = iota
	// ModeDebug surfaces a non-empty trace list on success as an error too,
	// so pattern authors see exactly which alternatives were tried.
	ModeDebug
)

// ParseError is returned when a compiled payload parser fails against a
// concrete input. The event that was being parsed is left unmodified.
type ParseError struct {
	Records []Record
}

func (e *ParseError) Error() string {
	return Report(e.Records)
}

// NewParseError builds a ParseError from accumulated records, logging at
// debug level before returning it.
func NewParseError(records []Record) *ParseError {
	err := &ParseError{Records: records}
	tracer().Debugf("parse error: %s", err.Error())
	return err
}
