/*
Package stage implements the multi-pattern "parse|<field>" stage: an
ordered list of (field, pattern) pairs compiled once against a shared
registry, then tried in order against an event until one succeeds - the Go
shape of the original engine's opBuilderLogParser array-of-definitions
stage, generalized from a single pattern to several competing ones.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package stage

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/document"
	"github.com/npillmayer/logpar/event"
	"github.com/npillmayer/logpar/registry"
)

// tracer traces with key 'logpar.stage'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.stage")
}

const parseKeyPrefix = "parse"

// ConfigError reports a malformed stage configuration: no parse entries, or
// more than one unqualified "parse" key (chaining, which this revision
// disallows - see the first Open Question in the design notes).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("stage configuration error: %s", e.Reason)
}

// NoMatchError reports that every definition in a stage failed against its
// field, distinguishing per §7's error kinds: a *event.IntegrationError
// entry names a field that did not satisfy the Event contract (kind 6, the
// field was missing or not a string), while any other entry wraps (with %w,
// prefixed by the field and pattern) the *trace.ParseError a pattern
// produced against text it could read (kind 5).
// Conflating the two into a single flat string, as an earlier revision of
// this package did, lost which kind actually applied.
type NoMatchError struct {
	Failures []error
}

func (e *NoMatchError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return "no pattern matched: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual per-definition failures to errors.As/errors.Is.
func (e *NoMatchError) Unwrap() []error {
	return e.Failures
}

// Config is one raw (config-key, pattern) entry as it would be read out of
// a stage's configuration document, before parsing the key.
type Config struct {
	Key     string // "parse" or "parse|<field>"
	Pattern string
}

// entry is a Config with its key parsed into a target field path.
type entry struct {
	field   string
	pattern string
}

func parseKey(key string) (field string, err error) {
	if key == parseKeyPrefix {
		return "", nil
	}
	prefix := parseKeyPrefix + "|"
	if !strings.HasPrefix(key, prefix) {
		return "", fmt.Errorf("key %q is not a parse stage key", key)
	}
	field := strings.TrimPrefix(key, prefix)
	if field == "" {
		return "", fmt.Errorf("key %q names no target field", key)
	}
	return field, nil
}

// Stage is a compiled multi-pattern parse stage: definitions is tried in
// configuration order, against the field it was defined for, and the
// first successful parse wins.
type Stage struct {
	reg  *registry.Registry
	defs []compiledDef
}

type compiledDef struct {
	field   string
	pattern string
	parser  combinator.Parser[document.Doc]
}

// Build compiles a stage from its raw configuration entries against r.
// Entries are tried in the order given at Run time. At most one entry may
// use the unqualified "parse" key (implicitly targeting the event's
// default "message"-like field supplied by the caller at Run time);
// chaining several unqualified "parse" entries is a ConfigError.
func Build(r *registry.Registry, defaultField string, configs []Config) (*Stage, error) {
	if len(configs) == 0 {
		return nil, &ConfigError{Reason: "at least one parse entry is required"}
	}
	bareCount := 0
	defs := make([]compiledDef, 0, len(configs))
	for _, cfg := range configs {
		field, err := parseKey(cfg.Key)
		if err != nil {
			return nil, &ConfigError{Reason: err.Error()}
		}
		if field == "" {
			bareCount++
			field = defaultField
		}
		if bareCount > 1 {
			return nil, &ConfigError{Reason: "chaining more than one unqualified \"parse\" key is not allowed"}
		}
		p, err := r.Build(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		defs = append(defs, compiledDef{field: field, pattern: cfg.Pattern, parser: p})
	}
	tracer().Infof("built stage with %d pattern(s)", len(defs))
	return &Stage{reg: r, defs: defs}, nil
}

// Run tries each definition in order against the text of its configured
// field, merging the first successful parse's document into ev at the
// event root (schema field paths in a pattern are absolute) and returning
// true. Returns false with a *NoMatchError if every pattern
// failed against its field's current text. Running is delegated to
// s.reg.Run so the registry's configured trace.Mode (§4.6) is honored: a
// document is still produced and merged even when ModeDebug additionally
// surfaces a non-empty trace as a warning, which Run passes back alongside
// true rather than discarding the successful match.
func (s *Stage) Run(ev event.Event) (bool, error) {
	var failures []error
	for _, d := range s.defs {
		if !ev.IsString(d.field) {
			failures = append(failures, &event.IntegrationError{Path: d.field, Reason: "field is missing or not a string"})
			continue
		}
		text := ev.GetString(d.field)
		doc, err := s.reg.Run(d.parser, []byte(text))
		if doc == nil {
			failures = append(failures, fmt.Errorf("%s: pattern %q: %w", d.field, d.pattern, err))
			continue
		}
		ev.Merge("", doc)
		return true, err
	}
	return false, &NoMatchError{Failures: failures}
}
