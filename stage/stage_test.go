package stage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/npillmayer/logpar/compiler"
	"github.com/npillmayer/logpar/event"
	"github.com/npillmayer/logpar/registry"
	"github.com/npillmayer/logpar/schema"
	"github.com/npillmayer/logpar/stage"
	"github.com/npillmayer/logpar/typeparsers"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	s, err := schema.Load(strings.NewReader(`{"fields": {"status": "long", "user": "keyword"}}`))
	require.NoError(t, err)
	r := registry.New(s)
	require.NoError(t, typeparsers.Register(r))
	return r
}

func TestStageSinglePattern(t *testing.T) {
	r := newRegistry(t)
	s, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse", Pattern: "status=<status>"},
	})
	require.NoError(t, err)

	ev := event.NewMap()
	ev.Set("message", "status=200")
	ok, err := s.Run(ev)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(200), ev.Doc()["status"])
}

func TestStageFirstMatchWins(t *testing.T) {
	r := newRegistry(t)
	s, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse", Pattern: "status=<status>"},
		{Key: "parse|message", Pattern: "user=<user>"},
	})
	require.NoError(t, err)

	ev := event.NewMap()
	ev.Set("message", "user=bob")
	ok, err := s.Run(ev)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", ev.Doc()["user"])
}

func TestStageQualifiedFieldKey(t *testing.T) {
	r := newRegistry(t)
	s, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse|raw", Pattern: "status=<status>"},
	})
	require.NoError(t, err)

	ev := event.NewMap()
	ev.Set("raw", "status=404")
	ok, err := s.Run(ev)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(404), ev.Doc()["status"])
}

func TestStageNoMatchReturnsFalse(t *testing.T) {
	r := newRegistry(t)
	s, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse", Pattern: "status=<status>"},
	})
	require.NoError(t, err)

	ev := event.NewMap()
	ev.Set("message", "not a match")
	ok, err := s.Run(ev)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestStageNoMatchDistinguishesFailureKinds(t *testing.T) {
	r := newRegistry(t)
	s, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse|missing", Pattern: "status=<status>"},
		{Key: "parse", Pattern: "status=<status>"},
	})
	require.NoError(t, err)

	ev := event.NewMap()
	ev.Set("message", "not a match")
	// "missing" is never set on ev, so the first definition fails the
	// Event contract (kind 6); the second reads "message" fine but its
	// pattern doesn't match (kind 5). NoMatchError must keep both kinds
	// distinct rather than flattening them into one string.
	ok, err := s.Run(ev)
	assert.False(t, ok)
	require.Error(t, err)
	noMatch, ok := err.(*stage.NoMatchError)
	require.True(t, ok)
	require.Len(t, noMatch.Failures, 2)
	_, isIntegration := noMatch.Failures[0].(*event.IntegrationError)
	assert.True(t, isIntegration, "expected the missing field to surface as an *event.IntegrationError")
	assert.NotEqual(t, "", noMatch.Failures[1].Error())
}

func TestStageChainedBareParseKeysRejected(t *testing.T) {
	r := newRegistry(t)
	_, err := stage.Build(r, "message", []stage.Config{
		{Key: "parse", Pattern: "status=<status>"},
		{Key: "parse", Pattern: "user=<user>"},
	})
	require.Error(t, err)
	_, ok := err.(*stage.ConfigError)
	assert.True(t, ok)
}

func TestStageNoEntriesIsError(t *testing.T) {
	r := newRegistry(t)
	_, err := stage.Build(r, "message", nil)
	assert.Error(t, err)
}
