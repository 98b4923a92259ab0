package ir

import "testing"

func TestFieldNameIsDiscard(t *testing.T) {
	cases := []struct {
		name FieldName
		want bool
	}{
		{FieldName{Text: "", Custom: true}, true},
		{FieldName{Text: "count", Custom: true}, false},
		{FieldName{Text: "", Custom: false}, false},
		{FieldName{Text: "client.ip", Custom: false}, false},
	}
	for _, c := range cases {
		if got := c.name.IsDiscard(); got != c.want {
			t.Errorf("FieldName(%+v).IsDiscard() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFieldNameString(t *testing.T) {
	if got := (FieldName{Text: "count", Custom: true}).String(); got != "~count" {
		t.Errorf("got %q, want \"~count\"", got)
	}
	if got := (FieldName{Text: "client.ip", Custom: false}).String(); got != "client.ip" {
		t.Errorf("got %q, want \"client.ip\"", got)
	}
}

func TestPatternValid(t *testing.T) {
	if Pattern(nil).Valid() {
		t.Error("nil pattern should be invalid")
	}
	if !(Pattern{Literal{Value: "x"}}).Valid() {
		t.Error("non-empty pattern should be valid")
	}
}

func TestNodeVariantsSatisfyInterface(t *testing.T) {
	var nodes = []Node{
		Literal{Value: "x"},
		Field{Name: FieldName{Text: "f"}},
		Choice{Left: Field{Name: FieldName{Text: "a"}}, Right: Field{Name: FieldName{Text: "b"}}},
		Group{Children: []Node{Literal{Value: "y"}}},
	}
	for _, n := range nodes {
		if n.String() == "" {
			t.Errorf("%T.String() returned empty", n)
		}
	}
}
