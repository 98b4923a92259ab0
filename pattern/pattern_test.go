package pattern

import (
	"testing"

	"github.com/npillmayer/logpar/ir"
)

func TestParseLiteralOnly(t *testing.T) {
	p, _, err := Parse("connected from ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 1 {
		t.Fatalf("expected 1 node, got %d: %v", len(p), p)
	}
	lit, ok := p[0].(ir.Literal)
	if !ok || lit.Value != "connected from " {
		t.Fatalf("got %#v", p[0])
	}
}

func TestParseSchemaField(t *testing.T) {
	p, _, err := Parse("user <username> logged in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %v", len(p), p)
	}
	f, ok := p[1].(ir.Field)
	if !ok || f.Name.Text != "username" || f.Name.Custom {
		t.Fatalf("got %#v", p[1])
	}
}

func TestParseOptionalField(t *testing.T) {
	p, _, err := Parse("<?user> connected")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := p[0].(ir.Field)
	if !ok || !f.Optional {
		t.Fatalf("expected optional field, got %#v", p[0])
	}
}

func TestParseCustomFieldWithArgsAndKind(t *testing.T) {
	p, _, err := Parse("<~count/long>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := p[0].(ir.Field)
	if !f.Name.Custom || f.Name.Text != "count" {
		t.Fatalf("got %#v", f)
	}
	if len(f.Args) != 1 || f.Args[0] != "long" {
		t.Fatalf("got args %v", f.Args)
	}
}

func TestParseDiscardSentinel(t *testing.T) {
	p, _, err := Parse("a<~>b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := p[1].(ir.Field)
	if !f.Name.IsDiscard() {
		t.Fatalf("expected discard sentinel, got %#v", f.Name)
	}
}

func TestParseChoice(t *testing.T) {
	p, _, err := Parse("<a>?<b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := p[0].(ir.Choice)
	if !ok {
		t.Fatalf("expected Choice, got %#v", p[0])
	}
	if c.Left.Name.Text != "a" || c.Right.Name.Text != "b" {
		t.Fatalf("got %#v", c)
	}
}

func TestParseChoiceRejectsOptionalBranch(t *testing.T) {
	_, _, err := Parse("<?a>?<b>")
	if err == nil {
		t.Fatal("expected error: Choice branches must not be optional")
	}
}

func TestParseGroup(t *testing.T) {
	p, _, err := Parse("a(?<b>c)d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d: %v", len(p), p)
	}
	g, ok := p[1].(ir.Group)
	if !ok {
		t.Fatalf("expected Group, got %#v", p[1])
	}
	if len(g.Children) != 2 {
		t.Fatalf("expected 2 group children, got %v", g.Children)
	}
}

func TestParseNestedGroup(t *testing.T) {
	p, _, err := Parse("a(?b(?<c>d)e)f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer := p[1].(ir.Group)
	if _, ok := outer.Children[1].(ir.Group); !ok {
		t.Fatalf("expected nested group, got %#v", outer.Children)
	}
}

func TestParseEmptyPatternIsError(t *testing.T) {
	_, _, err := Parse("")
	if err == nil {
		t.Fatal("expected error for empty pattern")
	}
}

func TestParseEscapedReservedChar(t *testing.T) {
	p, _, err := Parse(`a\<b`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lit, ok := p[0].(ir.Literal)
	if !ok || lit.Value != "a<b" {
		t.Fatalf("got %#v", p[0])
	}
}

func TestParseMalformedFieldReportsTrace(t *testing.T) {
	_, _, err := Parse("<")
	if err == nil {
		t.Fatal("expected error for unterminated field")
	}
	if err.Error() == "" {
		t.Error("expected non-empty diagnostic report")
	}
}
