package form

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSONCodec encodes appendixes as JSON text. It handles general structured
// data (numbers, strings, sequences, string-keyed maps, nested mixes) and
// is readable on both ends regardless of implementation language.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) (any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return emptyAppendix(), nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return v, nil
}

func (c JSONCodec) Representable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}
