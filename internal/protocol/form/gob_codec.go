package form

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

func init() {
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// RegisterType makes a concrete type transportable through GobCodec.
// Call it on both ends before any transfer carrying that type.
func RegisterType(v any) {
	gob.Register(v)
}

// GobCodec encodes appendixes with encoding/gob. It carries arbitrary
// registered Go values, including concrete error types, but the bytes are
// opaque and only another Go peer can read them.
type GobCodec struct{}

func (GobCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

func (GobCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return emptyAppendix(), nil
	}
	var v any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return v, nil
}

func (c GobCodec) Representable(v any) bool {
	_, err := c.Encode(v)
	return err == nil
}
