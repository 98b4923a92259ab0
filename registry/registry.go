/*
Package registry implements registration and dispatch of per-type parser
builders, and compiles pattern strings into payload parsers by delegating to
package compiler.

The kind->builder table is backed by a github.com/emirpasic/gods ordered
container rather than a bare Go map, continuing the teacher's own use of
gods in lr/tables.go to back compiler-facing lookup tables. The compile
cache is a plain map keyed by a structhash fingerprint.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package registry

import (
	"fmt"
	"sync"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/document"
	"github.com/npillmayer/logpar/schema"
	"github.com/npillmayer/logpar/trace"
)

// tracer traces with key 'logpar.registry'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.registry")
}

// ParserKind names one of the small enumeration of parser kinds a type
// builder is registered under.
type ParserKind string

// The fixed parser kinds named in the type-to-kind table, plus P_LITERAL
// which the compiler uses for literal IR nodes.
const (
	PLong        ParserKind = "P_LONG"
	PDouble      ParserKind = "P_DOUBLE"
	PFloat       ParserKind = "P_FLOAT"
	PScaledFloat ParserKind = "P_SCALED_FLOAT"
	PByte        ParserKind = "P_BYTE"
	PText        ParserKind = "P_TEXT"
	PBool        ParserKind = "P_BOOL"
	PIP          ParserKind = "P_IP"
	PDate        ParserKind = "P_DATE"
	PUserAgent   ParserKind = "P_USER_AGENT"
	PURI         ParserKind = "P_URI"
	PLiteral     ParserKind = "P_LITERAL"
)

// typeToKind is the fixed schema.Type -> ParserKind table required by the
// external contract; it never changes at runtime.
var typeToKind = map[schema.Type]ParserKind{
	schema.Long:        PLong,
	schema.Double:      PDouble,
	schema.Float:       PFloat,
	schema.ScaledFloat: PScaledFloat,
	schema.Byte:        PByte,
	schema.Keyword:     PText,
	schema.Text:        PText,
	schema.Object:      PText,
	schema.GeoPoint:    PText,
	schema.Nested:      PText,
	schema.Boolean:     PBool,
	schema.IP:          PIP,
	schema.Date:        PDate,
	schema.UserAgent:   PUserAgent,
	schema.URL:         PURI,
}

// KindForType returns the parser kind registered for a schema semantic
// type, per the fixed table in §4.4.
func KindForType(t schema.Type) (ParserKind, bool) {
	k, ok := typeToKind[t]
	return k, ok
}

// nameToKind maps the lowercase type names a custom field's first argument
// may spell out (e.g. "<~count/long>") to a parser kind.
var nameToKind = map[string]ParserKind{
	"long":         PLong,
	"double":       PDouble,
	"float":        PFloat,
	"scaled_float": PScaledFloat,
	"byte":         PByte,
	"text":         PText,
	"keyword":      PText,
	"bool":         PBool,
	"boolean":      PBool,
	"ip":           PIP,
	"date":         PDate,
	"user_agent":   PUserAgent,
	"url":          PURI,
	"uri":          PURI,
}

// KindForName returns the parser kind named by a custom field's first
// argument.
func KindForName(name string) (ParserKind, bool) {
	k, ok := nameToKind[name]
	return k, ok
}

// Builder builds a parser of document-value for one field occurrence. name
// is the field's display name (used in trace messages), endTokens is the end-token list the compiler resolved for this field, and
// args are the field's remaining pattern arguments.
type Builder func(name string, endTokens []string, args []string) combinator.Parser[any]

// ErrDuplicate is returned by RegisterBuilder when kind is already
// registered.
type ErrDuplicate struct{ Kind ParserKind }

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("registry: parser kind %q already registered", e.Kind)
}

// ErrNotRegistered is returned when a kind has no registered builder.
type ErrNotRegistered struct{ Kind ParserKind }

func (e *ErrNotRegistered) Error() string {
	return fmt.Sprintf("registry: parser kind %q not found", e.Kind)
}

// Registry holds the immutable schema and the kind->builder table, plus a
// cache of compiled patterns keyed by a structhash fingerprint of the
// pattern text and the registry's current contents.
type Registry struct {
	mu       sync.RWMutex
	schema   schema.Schema
	builders *treemap.Map // ParserKind -> Builder
	mode     trace.Mode
	maxGroup int

	cacheMu sync.Mutex
	cache   map[string]combinator.Parser[document.Doc]
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithTraceMode sets the diagnostic mode (ModeQuiet by default).
func WithTraceMode(m trace.Mode) Option {
	return func(r *Registry) { r.mode = m }
}

// WithMaxGroupRecursion sets the group-nesting recursion bound (defaults to
// 3, matching the original engine's conservative default).
func WithMaxGroupRecursion(n int) Option {
	return func(r *Registry) { r.maxGroup = n }
}

// New builds a Registry over the given schema. Concurrent RegisterBuilder
// calls are not supported once Build has started running concurrently; see
// §5 of the design.
func New(s schema.Schema, opts ...Option) *Registry {
	r := &Registry{
		schema:   s,
		builders: treemap.NewWith(stringComparator),
		maxGroup: 3,
		cache:    make(map[string]combinator.Parser[document.Doc]),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func stringComparator(a, b interface{}) int {
	sa, sb := a.(ParserKind), b.(ParserKind)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// RegisterBuilder registers fn for kind. Re-registering an already
// registered kind is a fatal ErrDuplicate.
func (r *Registry) RegisterBuilder(kind ParserKind, fn Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.builders.Get(kind); found {
		return &ErrDuplicate{Kind: kind}
	}
	r.builders.Put(kind, fn)
	tracer().Infof("registered builder for kind %s", kind)
	return nil
}

// Lookup returns the builder registered for kind.
func (r *Registry) Lookup(kind ParserKind) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, found := r.builders.Get(kind)
	if !found {
		return nil, false
	}
	return v.(Builder), true
}

// Schema returns the registry's schema.
func (r *Registry) Schema() schema.Schema {
	return r.schema
}

// TraceMode returns the configured diagnostic mode.
func (r *Registry) TraceMode() trace.Mode {
	return r.mode
}

// MaxGroupRecursion returns the configured group-nesting recursion bound.
func (r *Registry) MaxGroupRecursion() int {
	return r.maxGroup
}

// Kinds returns the registered parser kinds in stable sorted order, for
// diagnostics and for the CLI's :kinds command.
func (r *Registry) Kinds() []ParserKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := r.builders.Keys()
	out := make([]ParserKind, len(keys))
	for i, k := range keys {
		out[i] = k.(ParserKind)
	}
	return out
}

type cacheKey struct {
	Pattern  string
	Kinds    []ParserKind
	MaxGroup int
}

func (r *Registry) fingerprint(pattern string) string {
	r.mu.RLock()
	kinds := r.Kinds()
	maxGroup := r.maxGroup
	r.mu.RUnlock()
	h, err := structhash.Hash(cacheKey{Pattern: pattern, Kinds: kinds, MaxGroup: maxGroup}, 1)
	if err != nil {
		// structhash only fails on unhashable types; cacheKey is plain data,
		// so this is unreachable in practice. Fall back to the raw pattern
		// so Build still works, just without a cache hit.
		return pattern
	}
	return h
}

// compileFn is set by package compiler's init-time registration to avoid an
// import cycle (compiler imports registry for ParserKind/Builder lookup;
// registry must not import compiler directly).
var compileFn func(r *Registry, pattern string) (combinator.Parser[document.Doc], error)

// SetCompiler installs the compile function. Called once from package
// compiler's init().
func SetCompiler(fn func(r *Registry, pattern string) (combinator.Parser[document.Doc], error)) {
	compileFn = fn
}

// Build compiles a pattern string into a payload parser, fatal on grammar
// or compile errors. Results are cached per (pattern, registered kinds,
// recursion bound) fingerprint, so recompiling an unchanged pattern against
// an unchanged registry is a cache hit.
func (r *Registry) Build(pattern string) (combinator.Parser[document.Doc], error) {
	if compileFn == nil {
		return nil, fmt.Errorf("registry: no compiler installed")
	}
	key := r.fingerprint(pattern)
	r.cacheMu.Lock()
	if p, found := r.cache[key]; found {
		r.cacheMu.Unlock()
		tracer().Debugf("build cache hit for pattern %q", pattern)
		return p, nil
	}
	r.cacheMu.Unlock()

	p, err := compileFn(r, pattern)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[key] = p
	r.cacheMu.Unlock()
	return p, nil
}

// Run executes a compiled payload parser against input, honoring the
// registry's configured trace.Mode (§4.6): trace collection is always on,
// so a failure's diagnostic is always available. On failure, the
// accumulated trace is sorted and returned as a *trace.ParseError. On
// success, ModeQuiet discards a non-empty trace and returns the document;
// ModeDebug instead surfaces it as a *trace.ParseError too - "in the
// supported diagnostic mode non-empty traces are treated as a problem to
// surface, not a log to discard" - while still returning the document the
// parser produced, so a caller that chooses to ignore the warning can.
func (r *Registry) Run(p combinator.Parser[document.Doc], input []byte) (document.Doc, error) {
	res := combinator.Run(p, input, true)
	if !res.OK {
		return nil, trace.NewParseError(res.Traces)
	}
	if r.TraceMode() == trace.ModeDebug && len(res.Traces) > 0 {
		return res.Value, trace.NewParseError(res.Traces)
	}
	return res.Value, nil
}
