package registry

import (
	"strings"
	"testing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/cursor"
	"github.com/npillmayer/logpar/document"
	"github.com/npillmayer/logpar/schema"
	"github.com/npillmayer/logpar/trace"
)

func testSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.Load(strings.NewReader(`{"fields": {"status": "long"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func echoBuilder(byteVal byte) Builder {
	return func(name string, endTokens []string, args []string) combinator.Parser[any] {
		return func(c cursor.State) combinator.Result[any] {
			b, ok := c.Peek()
			if !ok || b != byteVal {
				return combinator.Result[any]{Cursor: c}
			}
			return combinator.Result[any]{OK: true, Cursor: c.Advance(1), Value: any(b)}
		}
	}
}

func TestKindForType(t *testing.T) {
	k, ok := KindForType(schema.IP)
	if !ok || k != PIP {
		t.Fatalf("got %v, %v", k, ok)
	}
	if _, ok := KindForType(schema.Type("bogus")); ok {
		t.Fatal("expected unknown type to be absent")
	}
}

func TestKindForName(t *testing.T) {
	k, ok := KindForName("long")
	if !ok || k != PLong {
		t.Fatalf("got %v, %v", k, ok)
	}
	if _, ok := KindForName("bogus"); ok {
		t.Fatal("expected unknown name to be absent")
	}
}

func TestRegisterBuilderDuplicateFails(t *testing.T) {
	r := New(testSchema(t))
	if err := r.RegisterBuilder(PText, echoBuilder('a')); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.RegisterBuilder(PText, echoBuilder('b'))
	if _, ok := err.(*ErrDuplicate); !ok {
		t.Fatalf("expected *ErrDuplicate, got %v", err)
	}
}

func TestLookupNotRegistered(t *testing.T) {
	r := New(testSchema(t))
	if _, ok := r.Lookup(PText); ok {
		t.Fatal("expected PText to be unregistered on a fresh registry")
	}
}

func TestMaxGroupRecursionDefaultAndOption(t *testing.T) {
	r := New(testSchema(t))
	if r.MaxGroupRecursion() != 3 {
		t.Fatalf("expected default of 3, got %d", r.MaxGroupRecursion())
	}
	r2 := New(testSchema(t), WithMaxGroupRecursion(5))
	if r2.MaxGroupRecursion() != 5 {
		t.Fatalf("expected 5, got %d", r2.MaxGroupRecursion())
	}
}

func TestBuildWithoutCompilerInstalledFails(t *testing.T) {
	saved := compileFn
	compileFn = nil
	defer func() { compileFn = saved }()

	r := New(testSchema(t))
	if _, err := r.Build("x"); err == nil {
		t.Fatal("expected error when no compiler is installed")
	}
}

// tracingDocParser emits a trace record whenever tracing is on, then
// succeeds or fails as directed - a stand-in for a real compiled parser
// that tried (and recorded) an alternative along the way.
func tracingDocParser(succeed bool) combinator.Parser[document.Doc] {
	return func(c cursor.State) combinator.Result[document.Doc] {
		var traces []trace.Record
		if c.TraceOn() {
			traces = []trace.Record{trace.New(c.Offset(), "probe")}
		}
		if !succeed {
			return combinator.Result[document.Doc]{Cursor: c, Traces: traces}
		}
		return combinator.Result[document.Doc]{OK: true, Cursor: c, Value: document.Empty(), Traces: traces}
	}
}

func TestRunFailureAlwaysReportsTrace(t *testing.T) {
	r := New(testSchema(t))
	_, err := r.Run(tracingDocParser(false), []byte("x"))
	if err == nil {
		t.Fatal("expected failure to surface the accumulated trace as an error")
	}
	if _, ok := err.(*trace.ParseError); !ok {
		t.Fatalf("expected *trace.ParseError, got %T", err)
	}
}

func TestRunQuietModeDiscardsSuccessTraces(t *testing.T) {
	r := New(testSchema(t)) // ModeQuiet is the default.
	doc, err := r.Run(tracingDocParser(true), []byte("x"))
	if err != nil {
		t.Fatalf("expected ModeQuiet to discard a non-empty success trace, got %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document on success")
	}
}

func TestRunDebugModeSurfacesSuccessTraces(t *testing.T) {
	r := New(testSchema(t), WithTraceMode(trace.ModeDebug))
	doc, err := r.Run(tracingDocParser(true), []byte("x"))
	if doc == nil {
		t.Fatal("expected ModeDebug to still return the produced document")
	}
	if err == nil {
		t.Fatal("expected ModeDebug to surface a non-empty success trace as an error")
	}
	if _, ok := err.(*trace.ParseError); !ok {
		t.Fatalf("expected *trace.ParseError, got %T", err)
	}
}

func TestBuildCachesByFingerprint(t *testing.T) {
	saved := compileFn
	defer func() { compileFn = saved }()

	calls := 0
	compileFn = func(r *Registry, pattern string) (combinator.Parser[document.Doc], error) {
		calls++
		return func(c cursor.State) combinator.Result[document.Doc] {
			return combinator.Result[document.Doc]{OK: true, Cursor: c, Value: document.Empty()}
		}, nil
	}

	r := New(testSchema(t))
	if _, err := r.Build("same"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Build("same"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 compile call for a repeated pattern, got %d", calls)
	}

	if _, err := r.Build("different"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a fresh compile for a different pattern, got %d calls", calls)
	}
}
