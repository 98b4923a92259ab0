package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/logpar/combinator"
	_ "github.com/npillmayer/logpar/compiler"
	"github.com/npillmayer/logpar/document"
	"github.com/npillmayer/logpar/registry"
	"github.com/npillmayer/logpar/schema"
	"github.com/npillmayer/logpar/trace"
	"github.com/npillmayer/logpar/typeparsers"
)

func newRegistry(t *testing.T, fields string) *registry.Registry {
	t.Helper()
	s, err := schema.Load(strings.NewReader(fields))
	require.NoError(t, err)
	r := registry.New(s)
	require.NoError(t, typeparsers.Register(r))
	return r
}

func run(t *testing.T, r *registry.Registry, pattern, input string) (document.Doc, bool) {
	t.Helper()
	p, err := r.Build(pattern)
	require.NoError(t, err)
	res := combinator.Run(p, []byte(input), false)
	return res.Value, res.OK
}

func TestCompileLiteralOnly(t *testing.T) {
	r := newRegistry(t, `{"fields": {"status": "long"}}`)
	doc, ok := run(t, r, "connected", "connected")
	require.True(t, ok)
	assert.Empty(t, doc)
}

func TestCompileSingleSchemaField(t *testing.T) {
	r := newRegistry(t, `{"fields": {"status": "long"}}`)
	doc, ok := run(t, r, "status=<status>", "status=200")
	require.True(t, ok)
	assert.Equal(t, int64(200), doc["status"])
}

func TestBuildUnderModeDebugSurfacesGrammarTrace(t *testing.T) {
	// Parsing the pattern text always accumulates a trace record per
	// combinator step it runs (§4.1's trace policy), so under ModeDebug
	// that non-empty trace must be surfaced as an error even for a
	// pattern that parses and compiles without issue (§4.6).
	s, err := schema.Load(strings.NewReader(`{"fields": {"status": "long"}}`))
	require.NoError(t, err)
	r := registry.New(s, registry.WithTraceMode(trace.ModeDebug))
	require.NoError(t, typeparsers.Register(r))

	_, err = r.Build("status=<status>")
	assert.Error(t, err)
}

func TestCompileFailsOnTypeMismatch(t *testing.T) {
	r := newRegistry(t, `{"fields": {"status": "long"}}`)
	_, ok := run(t, r, "status=<status>", "status=notanumber")
	assert.False(t, ok)
}

func TestCompileChoice(t *testing.T) {
	r := newRegistry(t, `{"fields": {"a": "long", "b": "keyword"}}`)
	doc, ok := run(t, r, "<a>?<b>", "42")
	require.True(t, ok)
	assert.Equal(t, int64(42), doc["a"])

	doc, ok = run(t, r, "<a>?<b>", "hello")
	require.True(t, ok)
	assert.Equal(t, "hello", doc["b"])
}

func TestCompileOptionalGroup(t *testing.T) {
	r := newRegistry(t, `{"fields": {"user": "keyword"}}`)
	doc, ok := run(t, r, "login(? as <user>)!", "login as bob!")
	require.True(t, ok)
	assert.Equal(t, "bob", doc["user"])

	doc, ok = run(t, r, "login(? as <user>)!", "login!")
	require.True(t, ok)
	assert.NotContains(t, doc, "user")
}

func TestCompileCustomFieldWithKind(t *testing.T) {
	r := newRegistry(t, `{"fields": {}}`)
	doc, ok := run(t, r, "count=<~n/long> items", "count=7 items")
	require.True(t, ok)
	assert.Equal(t, int64(7), doc["n"])
}

func TestCompileDiscardField(t *testing.T) {
	r := newRegistry(t, `{"fields": {}}`)
	doc, ok := run(t, r, "[<~>] msg", "[ignored] msg")
	require.True(t, ok)
	assert.Empty(t, doc)
}

func TestCompileUnknownSchemaFieldIsCompileError(t *testing.T) {
	r := newRegistry(t, `{"fields": {}}`)
	_, err := r.Build("<notinschema>")
	assert.Error(t, err)
}

func TestCompileNestedGroupRecursionLimit(t *testing.T) {
	r := newRegistry(t, `{"fields": {}}`)
	_, err := r.Build("a(?b(?c(?d(?e)))) end")
	assert.Error(t, err, "expected recursion limit error for 4 nested groups against the default max of 3")
}

func TestCompileFieldFollowedByFieldSelfTerminates(t *testing.T) {
	// No literal separates the two fields, so the compiler resolves an
	// empty end-token list for <n> (§4.5): the P_LONG builder must bound
	// its own consumption instead of swallowing the rest of the input.
	r := newRegistry(t, `{"fields": {"n": "long", "word": "keyword"}}`)
	doc, ok := run(t, r, "<n><word>", "42hello")
	require.True(t, ok)
	assert.Equal(t, int64(42), doc["n"])
	assert.Equal(t, "hello", doc["word"])
}

func TestCompileFieldFollowedByGroupSpecialCase(t *testing.T) {
	r := newRegistry(t, `{"fields": {"user": "keyword"}}`)

	// group taken: the field stops at the group's anchor literal.
	doc, ok := run(t, r, "<user>(? admin)", "bob admin")
	require.True(t, ok)
	assert.Equal(t, "bob", doc["user"])

	// group skipped: the field consumes the rest of the input.
	doc, ok = run(t, r, "<user>(? admin)", "bob")
	require.True(t, ok)
	assert.Equal(t, "bob", doc["user"])
}
