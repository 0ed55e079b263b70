package tokenstream

import "testing"

func TestLexTextAndAttribute(t *testing.T) {
	s := Lex(`mark Finished --all --if Started`)
	want := []Token{
		{Kind: Text, Value: "mark", Raw: "mark"},
		{Kind: Text, Value: "Finished", Raw: "Finished"},
		{Kind: Attribute, Value: "all", Raw: "--all"},
		{Kind: Attribute, Value: "if", Raw: "--if"},
		{Kind: Text, Value: "Started", Raw: "Started"},
	}
	for _, w := range want {
		got, ok := s.Take()
		if !ok {
			t.Fatalf("expected token %+v, got EOF", w)
		}
		if got.Kind != w.Kind || got.Value != w.Value {
			t.Fatalf("got %+v, want %+v", got, w)
		}
	}
	if !s.AtEnd() {
		t.Fatalf("expected stream exhausted, remaining: %q", s.Remaining())
	}
}

func TestLexQuotedWithEscape(t *testing.T) {
	s := Lex(`"hello \"there\""`)
	tok, ok := s.Take()
	if !ok {
		t.Fatal("expected a token")
	}
	if tok.Value != `hello "there"` {
		t.Fatalf("got %q", tok.Value)
	}
}

func TestTakeGroupNested(t *testing.T) {
	s := Lex(`(10 20) 30 40`)
	tok, _ := s.Peek()
	if tok.Kind != OpenParen {
		t.Fatalf("expected OpenParen, got %v", tok.Kind)
	}
	inner, err := s.TakeGroup()
	if err != nil {
		t.Fatalf("TakeGroup: %v", err)
	}
	var vals []string
	for !inner.AtEnd() {
		tk, _ := inner.Take()
		vals = append(vals, tk.Value)
	}
	if len(vals) != 2 || vals[0] != "10" || vals[1] != "20" {
		t.Fatalf("got %v", vals)
	}
	if s.Remaining() != "30 40" {
		t.Fatalf("got remaining %q", s.Remaining())
	}
}

func TestTakeGroupUnbalanced(t *testing.T) {
	s := Lex(`(10 20`)
	if _, err := s.TakeGroup(); err != ErrUnbalancedParenthesis {
		t.Fatalf("got %v", err)
	}
}

func TestEmptyGroup(t *testing.T) {
	s := Lex(`()`)
	inner, err := s.TakeGroup()
	if err != nil {
		t.Fatalf("TakeGroup: %v", err)
	}
	if !inner.AtEnd() {
		t.Fatalf("expected empty group")
	}
	if !s.AtEnd() {
		t.Fatalf("expected stream exhausted after group")
	}
}

func TestStrayCloseParen(t *testing.T) {
	s := Lex(`)first`)
	tok, ok := s.Peek()
	if !ok || tok.Kind != CloseParen {
		t.Fatalf("expected leading CloseParen, got %+v ok=%v", tok, ok)
	}
}
