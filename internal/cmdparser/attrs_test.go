package cmdparser

import (
	"testing"

	"github.com/hedgepod-dev/hedgepod/internal/tokenstream"
)

// tupleValue stands in for a two-field type whose second field carries an
// attribute that can be satisfied in more than one way: left alone (zero
// value), flipped by a bare "--two" flag, or overridden by a valued
// "--second-attr N" flag. It exercises AttrSpec/ConsumeAttributes directly,
// independent of any command variant, mirroring the parser's handling of
// attributes that attach to a single field rather than a whole command.
type tupleValue struct {
	First  uint8
	Second uint8
}

func parseTupleValue(s *tokenstream.Stream) (tupleValue, error) {
	first, rest, err := Uint8(s)
	if err != nil {
		return tupleValue{}, err
	}
	tv := tupleValue{First: first}
	rest, err = ConsumeAttributes(rest, []AttrSpec{
		{Name: "two", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) {
			tv.Second = 2
			return s, nil
		}},
		{Name: "second-attr", Apply: func(s *tokenstream.Stream) (*tokenstream.Stream, error) {
			v, rest, err := Uint8(s)
			if err != nil {
				return s, err
			}
			tv.Second = v
			return rest, nil
		}},
	})
	if err != nil {
		return tupleValue{}, err
	}
	if !rest.AtEnd() {
		tok, _ := rest.Peek()
		return tupleValue{}, errUnexpectedToken(tok)
	}
	return tv, nil
}

func TestAttributeIndependence(t *testing.T) {
	cases := []struct {
		line    string
		want    tupleValue
		wantErr bool
	}{
		{line: "5", want: tupleValue{First: 5, Second: 0}},
		{line: "5 --two", want: tupleValue{First: 5, Second: 2}},
		{line: "5 --second-attr 3", want: tupleValue{First: 5, Second: 3}},
		{line: "5 --abc", wantErr: true},
	}
	for _, c := range cases {
		got, err := parseTupleValue(tokenstream.Lex(c.line))
		if c.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", c.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", c.line, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: got %+v, want %+v", c.line, got, c.want)
		}
	}
}
