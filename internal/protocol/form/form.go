package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNilCodec       = errors.New("form: codec required")
	ErrMultilineTitle = errors.New("form: title must be a single line")
)

// Form is the wire envelope: a single-line title, a newline-organized body,
// and a structured appendix encoded by the codec chosen at construction.
// A Form is immutable once built; collision adjustment happens on the
// transmitter's own body snapshot, never here.
type Form struct {
	title    string
	body     string
	appendix any
	encoded  []byte
	codec    Codec
}

// New builds a Form and encodes the appendix with the given codec.
// Validity is not enforced here; transmitters reject invalid Forms.
func New(title, body string, appendix any, codec Codec) (*Form, error) {
	if codec == nil {
		return nil, ErrNilCodec
	}
	if strings.Contains(title, "\n") {
		return nil, fmt.Errorf("%w: %q", ErrMultilineTitle, title)
	}
	encoded, err := codec.Encode(appendix)
	if err != nil {
		return nil, err
	}
	return &Form{
		title:    title,
		body:     body,
		appendix: appendix,
		encoded:  encoded,
		codec:    codec,
	}, nil
}

// NewFromLines builds a Form whose body is the given values stringified and
// joined with newlines.
func NewFromLines(title string, lines []any, appendix any, codec Codec) (*Form, error) {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprint(line)
	}
	return New(title, strings.Join(parts, "\n"), appendix, codec)
}

// FromEncoded assembles a Form from wire-harvested fields, decoding the
// appendix bytes with the given codec. This is the receiver's path.
func FromEncoded(title, body string, encoded []byte, codec Codec) (*Form, error) {
	if codec == nil {
		return nil, ErrNilCodec
	}
	if strings.Contains(title, "\n") {
		return nil, fmt.Errorf("%w: %q", ErrMultilineTitle, title)
	}
	appendix, err := codec.Decode(encoded)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(encoded))
	copy(buf, encoded)
	return &Form{
		title:    title,
		body:     body,
		appendix: appendix,
		encoded:  buf,
		codec:    codec,
	}, nil
}

func (f *Form) Title() string { return f.title }

func (f *Form) Body() string { return f.body }

func (f *Form) Appendix() any { return f.appendix }

func (f *Form) Codec() Codec { return f.codec }

// AppendixEncoded returns a copy of the appendix wire bytes.
func (f *Form) AppendixEncoded() []byte {
	buf := make([]byte, len(f.encoded))
	copy(buf, f.encoded)
	return buf
}

// BodyLines splits the body on newlines. An empty body still yields one
// empty line, matching how the transmitter frames it.
func (f *Form) BodyLines() []string {
	return strings.Split(f.body, "\n")
}

// Empty reports whether both the body and the appendix carry no content.
// The title does not participate.
func (f *Form) Empty() bool {
	return len(f.body) == 0 && appendixLen(f.appendix) == 0
}

// Valid reports whether the Form qualifies for transmission: the title is
// non-empty after stripping spaces and the Form is not Empty.
func (f *Form) Valid() bool {
	if strings.ReplaceAll(f.title, " ", "") == "" {
		return false
	}
	return !f.Empty()
}

// Equal compares title, body, and decoded appendix.
func (f *Form) Equal(other *Form) bool {
	if other == nil {
		return false
	}
	return f.title == other.title &&
		f.body == other.body &&
		reflect.DeepEqual(f.appendix, other.appendix)
}

// appendixLen measures appendix content: container and string values count
// their elements, nil counts zero, and any scalar counts as content.
func appendixLen(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len()
	default:
		return 1
	}
}
