package cmdparser

import "github.com/hedgepod-dev/hedgepod/internal/tokenstream"

// AttrSpec binds one "--name" spelling to the code that applies it to a
// field being built. Apply receives the stream positioned just after the
// attribute token itself; it consumes whatever extra tokens it needs (zero,
// for a fixed-value attribute like "--two", or one, for a valued attribute
// like "--second-attr 3") and returns the advanced stream.
type AttrSpec struct {
	Name  string
	Apply func(s *tokenstream.Stream) (*tokenstream.Stream, error)
}

// ConsumeAttributes repeatedly matches "--name" tokens against specs until
// the stream runs out of attributes (end of input, or a non-attribute
// token). This is called once all of a variant's required positional
// fields have been consumed, matching spec §4.2's attribute-ordering rule:
// attributes are only recognized after the last required positional.
func ConsumeAttributes(s *tokenstream.Stream, specs []AttrSpec) (*tokenstream.Stream, error) {
	for {
		tok, ok := s.Peek()
		if !ok || tok.Kind != tokenstream.Attribute {
			return s, nil
		}
		s.Take()
		var matched *AttrSpec
		for i := range specs {
			if specs[i].Name == tok.Value {
				matched = &specs[i]
				break
			}
		}
		if matched == nil {
			return s, errUnknownAttribute(tok)
		}
		rest, err := matched.Apply(s)
		if err != nil {
			return s, err
		}
		s = rest
	}
}
