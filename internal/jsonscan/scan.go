// Package jsonscan finds the byte spans of JSON values in a buffer without
// decoding them.
//
// It is a span finder, not a validator: arrays and objects are matched by
// bracket depth only and their members are not checked.
package jsonscan

import (
	"fmt"

	"github.com/beiklive/mytoolmodule/internal/errors"
)

// MaxValueSize is the largest span, in bytes, a single value may occupy.
const MaxValueSize = 65535

var (
	// ErrExpectValue is returned when the input ends where a value should start.
	ErrExpectValue = errors.New("expect value")
	// ErrInvalidValue is returned for a malformed or oversized value.
	ErrInvalidValue = errors.New("invalid value")
	// ErrWrongFormat is returned for a byte that cannot start a value.
	ErrWrongFormat = errors.New("wrong format")
)

// Kind is the type of a scanned value.
type Kind int

const (
	Null Kind = iota
	Number
	String
	Bool
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Span locates a value in the scanned buffer. End is exclusive.
type Span struct {
	Kind  Kind
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Text returns the bytes of the span as a string.
func (s Span) Text(src []byte) string { return string(src[s.Start:s.End]) }

// SyntaxError records where scanning failed.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func fail(offset int, err error) error {
	return &SyntaxError{Offset: offset, Err: err}
}

func hasLiteral(src []byte, i int, lit string) bool {
	return i+len(lit) <= len(src) && string(src[i:i+len(lit)]) == lit
}

// ScanNull returns the length of the "null" literal at src[i].
func ScanNull(src []byte, i int) (int, error) {
	if !hasLiteral(src, i, "null") {
		return 0, fail(i, ErrInvalidValue)
	}
	return 4, nil
}

// ScanBool returns the length of the "true" or "false" literal at src[i].
func ScanBool(src []byte, i int) (int, error) {
	switch {
	case hasLiteral(src, i, "true"):
		return 4, nil
	case hasLiteral(src, i, "false"):
		return 5, nil
	}
	return 0, fail(i, ErrInvalidValue)
}

// ScanString returns the length of the quoted string at src[i], quotes
// included. A backslash escapes the byte after it.
func ScanString(src []byte, i int) (int, error) {
	if i >= len(src) || src[i] != '"' {
		return 0, fail(i, ErrInvalidValue)
	}
	for j := i + 1; j < len(src); j++ {
		if j-i >= MaxValueSize {
			return 0, fail(i, ErrInvalidValue)
		}
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j - i + 1, nil
		}
	}
	return 0, fail(i, ErrInvalidValue)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ScanNumber returns the length of the number at src[i]: an optional minus
// sign, an integer part, an optional fraction and an optional exponent.
// An integer part with a leading zero followed by another digit is invalid.
func ScanNumber(src []byte, i int) (int, error) {
	j := i
	if j < len(src) && src[j] == '-' {
		j++
	}
	if j >= len(src) || !isDigit(src[j]) {
		return 0, fail(i, ErrInvalidValue)
	}
	if src[j] == '0' && j+1 < len(src) && isDigit(src[j+1]) {
		return 0, fail(i, ErrInvalidValue)
	}
	j = skipDigits(src, j)

	if j < len(src) && src[j] == '.' {
		j++
		if j >= len(src) || !isDigit(src[j]) {
			return 0, fail(i, ErrInvalidValue)
		}
		j = skipDigits(src, j)
	}
	if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
		j++
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j >= len(src) || !isDigit(src[j]) {
			return 0, fail(i, ErrInvalidValue)
		}
		j = skipDigits(src, j)
	}

	if j-i > MaxValueSize {
		return 0, fail(i, ErrInvalidValue)
	}
	return j - i, nil
}

func skipDigits(src []byte, j int) int {
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	return j
}

// ScanArray returns the length of the array at src[i], brackets included.
func ScanArray(src []byte, i int) (int, error) {
	return scanNested(src, i, '[', ']')
}

// ScanObject returns the length of the object at src[i], braces included.
func ScanObject(src []byte, i int) (int, error) {
	return scanNested(src, i, '{', '}')
}

// scanNested matches open/close by depth. Brackets inside strings do not count.
func scanNested(src []byte, i int, open, closing byte) (int, error) {
	if i >= len(src) || src[i] != open {
		return 0, fail(i, ErrInvalidValue)
	}
	depth := 0
	for j := i; j < len(src); j++ {
		if j-i >= MaxValueSize {
			return 0, fail(i, ErrInvalidValue)
		}
		switch src[j] {
		case '"':
			n, err := ScanString(src, j)
			if err != nil {
				return 0, fail(i, ErrInvalidValue)
			}
			j += n - 1
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return j - i + 1, nil
			}
		}
	}
	return 0, fail(i, ErrInvalidValue)
}

// Scan returns the span of the value starting at src[i].
func Scan(src []byte, i int) (Span, error) {
	if i < 0 || i >= len(src) {
		return Span{}, fail(i, ErrExpectValue)
	}

	var (
		kind Kind
		n    int
		err  error
	)
	switch c := src[i]; {
	case c == 'n':
		kind = Null
		n, err = ScanNull(src, i)
	case c == 't' || c == 'f':
		kind = Bool
		n, err = ScanBool(src, i)
	case c == '"':
		kind = String
		n, err = ScanString(src, i)
	case c == '-' || isDigit(c):
		kind = Number
		n, err = ScanNumber(src, i)
	case c == '[':
		kind = Array
		n, err = ScanArray(src, i)
	case c == '{':
		kind = Object
		n, err = ScanObject(src, i)
	default:
		return Span{}, fail(i, ErrWrongFormat)
	}
	if err != nil {
		return Span{}, err
	}
	return Span{Kind: kind, Start: i, End: i + n}, nil
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ':', ',':
		return true
	}
	return false
}

// Tokenize walks src and returns the spans of the values it contains in
// order, skipping whitespace, colons and commas between them. On error the
// spans found so far are returned with it. Input with no value at all
// returns ErrExpectValue.
func Tokenize(src []byte) ([]Span, error) {
	var spans []Span
	for i := 0; i < len(src); {
		if isSeparator(src[i]) {
			i++
			continue
		}
		span, err := Scan(src, i)
		if err != nil {
			return spans, err
		}
		spans = append(spans, span)
		i = span.End
	}
	if len(spans) == 0 {
		return nil, fail(len(src), ErrExpectValue)
	}
	return spans, nil
}
