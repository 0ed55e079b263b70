package cmdparser

import (
	"strconv"
	"strings"

	"github.com/hedgepod-dev/hedgepod/internal/tokenstream"
)

// SignedInt parses a token as a signed integer of bit-width bits (8, 16, 32,
// or 64), classifying overflow as "too large" / "too small" per spec §8.
func SignedInt(s *tokenstream.Stream, bits int) (int64, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return 0, s, errTokenRequired("integer")
	}
	if tok.Kind != tokenstream.Text {
		return 0, s, errTokenParse(tok, "integer", "")
	}
	v, err := strconv.ParseInt(tok.Value, 10, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			if strings.HasPrefix(strings.TrimSpace(tok.Value), "-") {
				return 0, s, errTokenParse(tok, "integer", "too small")
			}
			return 0, s, errTokenParse(tok, "integer", "too large")
		}
		return 0, s, errTokenParse(tok, "integer", "")
	}
	return v, s, nil
}

// UnsignedInt parses a token as an unsigned integer of bit-width bits.
func UnsignedInt(s *tokenstream.Stream, bits int) (uint64, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return 0, s, errTokenRequired("integer")
	}
	if tok.Kind != tokenstream.Text {
		return 0, s, errTokenParse(tok, "integer", "")
	}
	v, err := strconv.ParseUint(tok.Value, 10, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, s, errTokenParse(tok, "integer", "too large")
		}
		return 0, s, errTokenParse(tok, "integer", "")
	}
	return v, s, nil
}

// Uint8 is the common case used throughout the command set.
func Uint8(s *tokenstream.Stream) (uint8, *tokenstream.Stream, error) {
	v, rest, err := UnsignedInt(s, 8)
	return uint8(v), rest, err
}

// Int16 parses a token as a signed 16-bit integer.
func Int16(s *tokenstream.Stream) (int16, *tokenstream.Stream, error) {
	v, rest, err := SignedInt(s, 16)
	return int16(v), rest, err
}

// Float64 parses a token as a real number.
func Float64(s *tokenstream.Stream) (float64, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return 0, s, errTokenRequired("real")
	}
	if tok.Kind != tokenstream.Text {
		return 0, s, errTokenParse(tok, "real", "")
	}
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, s, errTokenParse(tok, "real", "")
	}
	return v, s, nil
}

// String parses a single Text token verbatim (quoted or bare).
func String(s *tokenstream.Stream) (string, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return "", s, errTokenRequired("string")
	}
	if tok.Kind != tokenstream.Text {
		return "", s, errTokenParse(tok, "string", "")
	}
	return tok.Value, s, nil
}

// Bool parses the yes/no family of boolean spellings.
func Bool(s *tokenstream.Stream) (bool, *tokenstream.Stream, error) {
	tok, ok := s.Take()
	if !ok {
		return false, s, errTokenRequired("boolean")
	}
	if tok.Kind != tokenstream.Text {
		return false, s, errTokenParse(tok, "boolean", "")
	}
	switch strings.ToLower(tok.Value) {
	case "true", "t", "yes", "y":
		return true, s, nil
	case "false", "f", "no", "n":
		return false, s, nil
	default:
		return false, s, errTokenParse(tok, "boolean", "")
	}
}

// Optional produces nil when the stream is at end or the next token is an
// attribute (so attributes never get consumed as a positional value), else
// delegates to parse.
func Optional[T any](s *tokenstream.Stream, parse func(*tokenstream.Stream) (T, *tokenstream.Stream, error)) (*T, *tokenstream.Stream, error) {
	tok, ok := s.Peek()
	if !ok || tok.Kind == tokenstream.Attribute {
		return nil, s, nil
	}
	v, rest, err := parse(s)
	if err != nil {
		return nil, s, err
	}
	return &v, rest, nil
}

// Uint8Vec parses a Vec<u8>: either a parenthesized group of space-separated
// values, or (when not introduced by '(') a bare space-separated sequence
// running to end of stream. A stray ')' with no matching '(' is reported as
// UnbalancedParenthesis, per spec §8's boundary test.
func Uint8Vec(s *tokenstream.Stream) ([]uint8, *tokenstream.Stream, error) {
	tok, ok := s.Peek()
	if ok && tok.Kind == tokenstream.CloseParen {
		return nil, s, &ParseError{Kind: UnbalancedParenthesis}
	}
	if ok && tok.Kind == tokenstream.OpenParen {
		inner, err := s.TakeGroup()
		if err != nil {
			if err == tokenstream.ErrUnbalancedParenthesis {
				return nil, s, &ParseError{Kind: UnbalancedParenthesis}
			}
			return nil, s, err
		}
		var out []uint8
		for !inner.AtEnd() {
			v, rest, err := Uint8(inner)
			if err != nil {
				return nil, s, err
			}
			inner = rest
			out = append(out, v)
		}
		return out, s, nil
	}
	var out []uint8
	for {
		tok, ok := s.Peek()
		if !ok || tok.Kind == tokenstream.Attribute || tok.Kind == tokenstream.CloseParen {
			break
		}
		v, rest, err := Uint8(s)
		if err != nil {
			return nil, s, err
		}
		s = rest
		out = append(out, v)
	}
	return out, s, nil
}
