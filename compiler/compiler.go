/*
Package compiler walks an ir.Pattern, resolving end-tokens and invoking
registered builders to assemble a single payload parser - the heart of
LogPar, mirroring the original engine's Logpar::buildParsers and its
end-token resolution helpers.

Group-nesting depth is tracked with an github.com/emirpasic/gods
stacks/arraystack.Stack, following the teacher's own habit (lr/tables.go) of
backing compiler bookkeeping with gods containers instead of a bare counter.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package compiler

import (
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/logpar/combinator"
	"github.com/npillmayer/logpar/document"
	"github.com/npillmayer/logpar/ir"
	"github.com/npillmayer/logpar/pattern"
	"github.com/npillmayer/logpar/registry"
	"github.com/npillmayer/logpar/trace"
)

// tracer traces with key 'logpar.compiler'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.compiler")
}

func init() {
	registry.SetCompiler(func(r *registry.Registry, pattern string) (combinator.Parser[document.Doc], error) {
		return CompileSource(r, pattern)
	})
}

// CompileError reports a fatal compile-time problem: a schema lookup miss,
// an unknown custom kind, a group without a literal anchor, or the
// recursion limit being exceeded.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string {
	return "compile error: " + e.Reason
}

func compileErrorf(format string, args ...interface{}) error {
	return &CompileError{Reason: fmt.Sprintf(format, args...)}
}

type ctx struct {
	reg   *registry.Registry
	depth *arraystack.Stack
}

func (c *ctx) pushGroup() error {
	c.depth.Push(struct{}{})
	if c.depth.Size() > c.reg.MaxGroupRecursion() {
		return compileErrorf("max group recursion level (%d) exceeded", c.reg.MaxGroupRecursion())
	}
	return nil
}

func (c *ctx) popGroup() {
	c.depth.Pop()
}

// CompileSource parses pattern, via package pattern, then compiles the
// resulting IR. It is a thin convenience used by registry.Registry.Build;
// most callers go through Registry.Build instead of calling this directly.
//
// Parsing the pattern text itself can accumulate trace records even on
// success (e.g. alternatives tried and abandoned by the grammar's own
// Alt/Choice productions); §4.6's mode switch applies at compile time too,
// so a non-empty grammar trace under ModeDebug is surfaced as an error
// rather than silently dropped.
func CompileSource(r *registry.Registry, source string) (combinator.Parser[document.Doc], error) {
	p, traces, err := pattern.Parse(source)
	if err != nil {
		return nil, err
	}
	if r.TraceMode() == trace.ModeDebug && len(traces) > 0 {
		return nil, trace.NewParseError(traces)
	}
	return Compile(r, p)
}

// Compile walks a parsed pattern and assembles a single payload parser.
func Compile(r *registry.Registry, pattern ir.Pattern) (combinator.Parser[document.Doc], error) {
	if !pattern.Valid() {
		return nil, compileErrorf("pattern must contain at least one node")
	}
	c := &ctx{reg: r, depth: arraystack.New()}
	p, err := c.compileSequence(pattern, []string{""})
	if err != nil {
		return nil, err
	}
	top := combinator.Map(combinator.Left(p, combinator.EOF[any](nil)), func(v any) document.Doc {
		if d, ok := v.(document.Doc); ok {
			return d
		}
		return document.Empty()
	})
	return top, nil
}

func mergePair(p combinator.Pair[any, any]) any {
	return document.MergeValues(p.First, p.Second)
}

func (c *ctx) compileLiteral(lit ir.Literal) (combinator.Parser[any], error) {
	builder, ok := c.reg.Lookup(registry.PLiteral)
	if !ok {
		return nil, &registry.ErrNotRegistered{Kind: registry.PLiteral}
	}
	return builder(lit.Value, nil, []string{lit.Value}), nil
}

func (c *ctx) compileField(f ir.Field, endTokens []string) (combinator.Parser[any], error) {
	var kind registry.ParserKind
	args := f.Args
	if f.Name.Custom {
		if len(args) == 0 {
			kind = registry.PText
		} else {
			k, ok := registry.KindForName(args[0])
			if !ok {
				return nil, compileErrorf("parser type %q not found", args[0])
			}
			kind = k
			args = args[1:]
		}
	} else {
		schemaType, ok := c.reg.Schema().Lookup(f.Name.Text)
		if !ok {
			return nil, compileErrorf("field %q not found in schema", f.Name.Text)
		}
		k, ok := registry.KindForType(schemaType)
		if !ok {
			return nil, compileErrorf("parser kind for schema type %q not found", schemaType)
		}
		kind = k
	}

	builder, ok := c.reg.Lookup(kind)
	if !ok {
		return nil, &registry.ErrNotRegistered{Kind: kind}
	}
	p := builder(f.Name.String(), endTokens, args)

	var wrapped combinator.Parser[any]
	if f.Name.IsDiscard() {
		wrapped = combinator.Replace[any, any](p, document.Empty())
	} else {
		path := f.Name.Text
		wrapped = combinator.Map(p, func(v any) any { return document.FromPath(path, v) })
	}
	if f.Optional {
		wrapped = combinator.Opt(wrapped)
	}
	return wrapped, nil
}

func (c *ctx) compileChoice(choice ir.Choice, endTokens []string) (combinator.Parser[any], error) {
	left, err := c.compileField(choice.Left, endTokens)
	if err != nil {
		return nil, err
	}
	right, err := c.compileField(choice.Right, endTokens)
	if err != nil {
		return nil, err
	}
	return combinator.Alt(left, right), nil
}

func (c *ctx) compileGroupOpt(group ir.Group, outerEnd []string) (combinator.Parser[any], error) {
	if err := c.pushGroup(); err != nil {
		return nil, err
	}
	defer c.popGroup()
	p, err := c.compileSequence(group.Children, outerEnd)
	if err != nil {
		return nil, err
	}
	return combinator.Opt(p), nil
}

// groupAnchor resolves a group's end-anchor(s): its first reachable
// literal, descending through any leading nested groups. Fails if no such
// literal exists.
func (c *ctx) groupAnchor(group ir.Group) ([]string, error) {
	if len(group.Children) == 0 {
		return nil, compileErrorf("group must start with a literal or a succession of groups and a literal")
	}
	switch first := group.Children[0].(type) {
	case ir.Literal:
		return []string{first.Value}, nil
	case ir.Group:
		var inside []string
		i := 0
		for i < len(group.Children) {
			nested, ok := group.Children[i].(ir.Group)
			if !ok {
				break
			}
			toks, err := c.groupAnchor(nested)
			if err != nil {
				return nil, err
			}
			inside = append(inside, toks...)
			i++
		}
		if i >= len(group.Children) {
			return nil, compileErrorf("group must be followed by a literal")
		}
		lit, ok := group.Children[i].(ir.Literal)
		if !ok {
			return nil, compileErrorf("group must be followed by a literal")
		}
		inside = append(inside, lit.Value)
		return inside, nil
	default:
		return nil, compileErrorf("group must start with a literal or a succession of groups and a literal")
	}
}

// endTokensAfter resolves the end-token list for the node at index i within
// nodes, derived from whatever follows it. outerEnd is what follows nodes
// itself in its enclosing context (the whole pattern's implicit [""] at the
// top level, or whatever follows an enclosing group), used when i is the
// last element of nodes.
func (c *ctx) endTokensAfter(nodes []ir.Node, i int, outerEnd []string) ([]string, error) {
	next := i + 1
	if next >= len(nodes) {
		return outerEnd, nil
	}
	switch n := nodes[next].(type) {
	case ir.Literal:
		return []string{n.Value}, nil
	case ir.Group:
		after, err := c.endTokensAfter(nodes, next, outerEnd)
		if err != nil {
			return nil, err
		}
		inside, err := c.groupAnchor(n)
		if err != nil {
			return nil, err
		}
		return append(append([]string{}, inside...), after...), nil
	default:
		return []string{}, nil
	}
}

func (c *ctx) compileSequence(nodes []ir.Node, outerEnd []string) (combinator.Parser[any], error) {
	var parsers []combinator.Parser[any]

	for i := 0; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case ir.Field:
			if i+1 < len(nodes) {
				if nextGroup, ok := nodes[i+1].(ir.Group); ok {
					p, err := c.compileFieldBeforeGroup(n, nextGroup, nodes, i, outerEnd)
					if err != nil {
						return nil, err
					}
					parsers = append(parsers, p)
					i++ // the group at i+1 is consumed by the special case
					continue
				}
			}
			endTokens, err := c.endTokensAfter(nodes, i, outerEnd)
			if err != nil {
				return nil, err
			}
			p, err := c.compileField(n, endTokens)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, p)

		case ir.Literal:
			p, err := c.compileLiteral(n)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, p)

		case ir.Choice:
			endTokens, err := c.endTokensAfter(nodes, i, outerEnd)
			if err != nil {
				return nil, err
			}
			p, err := c.compileChoice(n, endTokens)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, p)

		case ir.Group:
			groupCount := 0
			for j := i; j < len(nodes); j++ {
				if _, ok := nodes[j].(ir.Group); !ok {
					break
				}
				groupCount++
			}
			if groupCount > c.reg.MaxGroupRecursion() {
				return nil, compileErrorf("max group recursion level (%d) exceeded", c.reg.MaxGroupRecursion())
			}
			after, err := c.endTokensAfter(nodes, i, outerEnd)
			if err != nil {
				return nil, err
			}
			p, err := c.compileGroupOpt(n, after)
			if err != nil {
				return nil, err
			}
			parsers = append(parsers, p)

		default:
			return nil, compileErrorf("unknown IR node type %T", n)
		}
	}

	if len(parsers) == 0 {
		return nil, compileErrorf("pattern must contain at least one node")
	}

	result := parsers[len(parsers)-1]
	for k := len(parsers) - 2; k >= 0; k-- {
		result = combinator.Map(combinator.Seq(parsers[k], result), mergePair)
	}
	return result, nil
}

// compileFieldBeforeGroup implements §4.5's special case: a Field
// immediately followed by a Group compiles to an ordered alternative of
// (field-with-group-taken) then (field-with-group-skipped).
func (c *ctx) compileFieldBeforeGroup(field ir.Field, group ir.Group, nodes []ir.Node, i int, outerEnd []string) (combinator.Parser[any], error) {
	anchors, err := c.groupAnchor(group)
	if err != nil {
		return nil, err
	}
	skippedEndTokens, err := c.endTokensAfter(nodes, i+1, outerEnd)
	if err != nil {
		return nil, err
	}

	if err := c.pushGroup(); err != nil {
		return nil, err
	}
	fieldTaken, err := c.compileField(field, anchors[:1])
	if err != nil {
		c.popGroup()
		return nil, err
	}
	groupTaken, err := c.compileSequence(group.Children, skippedEndTokens)
	c.popGroup()
	if err != nil {
		return nil, err
	}
	taken := combinator.Map(combinator.Seq(fieldTaken, groupTaken), mergePair)

	skipped, err := c.compileField(field, skippedEndTokens)
	if err != nil {
		return nil, err
	}

	return combinator.Alt[any](taken, skipped), nil
}
