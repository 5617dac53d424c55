package form

import "errors"

// ErrEncoding marks appendix encode/decode failures regardless of codec.
var ErrEncoding = errors.New("form: appendix encoding failed")

// Codec converts a structured appendix payload to and from wire bytes.
// Encode and Decode must be inverse up to value equality for every payload
// Representable accepts. Decode of zero-length input yields the canonical
// empty sequence rather than failing.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
	Representable(v any) bool
}

// emptyAppendix is the canonical value for a zero-length appendix.
func emptyAppendix() any {
	return []any{}
}
