package form

import (
	"errors"
	"reflect"
	"testing"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	payload := map[string]any{
		"pos_args": []any{"hi", 2.5},
		"kw_args":  map[string]any{"nested": []any{"a", "b"}},
	}
	c := JSONCodec{}
	data, err := c.Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(payload, decoded) {
		t.Fatalf("round-trip mismatch: %v vs %v", payload, decoded)
	}
}

func TestJSONCodecEmptyDecode(t *testing.T) {
	c := JSONCodec{}
	for _, data := range [][]byte{nil, {}, []byte("   ")} {
		decoded, err := c.Decode(data)
		if err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		if !reflect.DeepEqual(decoded, []any{}) {
			t.Fatalf("decode %q = %v, want empty sequence", data, decoded)
		}
	}
}

func TestJSONCodecRepresentable(t *testing.T) {
	c := JSONCodec{}
	if !c.Representable(map[string]any{"n": 1.0}) {
		t.Fatalf("plain map reported unrepresentable")
	}
	if c.Representable(make(chan int)) {
		t.Fatalf("channel reported representable")
	}
}

func TestJSONCodecDecodeGarbage(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("{not json"))
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestGobCodecRoundTrip(t *testing.T) {
	c := GobCodec{}
	payload := map[string]any{"pos_args": []any{"x"}, "kw_args": map[string]any{}}
	data, err := c.Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(payload, decoded) {
		t.Fatalf("round-trip mismatch: %v vs %v", payload, decoded)
	}
}

type customValue struct {
	Label string
	N     int
}

func TestGobCodecCustomType(t *testing.T) {
	RegisterType(customValue{})
	c := GobCodec{}
	data, err := c.Encode(customValue{Label: "x", N: 7})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := decoded.(customValue)
	if !ok || got.Label != "x" || got.N != 7 {
		t.Fatalf("decoded = %#v", decoded)
	}
}

func TestGobCodecEmptyDecode(t *testing.T) {
	decoded, err := GobCodec{}.Decode(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, []any{}) {
		t.Fatalf("decode nil = %v, want empty sequence", decoded)
	}
}

func TestZstdCodecRoundTrip(t *testing.T) {
	c, err := NewZstdCodec(JSONCodec{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	payload := []any{"repeat", "repeat", "repeat", "repeat"}
	data, err := c.Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(payload, decoded) {
		t.Fatalf("round-trip mismatch: %v vs %v", payload, decoded)
	}
}

func TestZstdCodecEmptyDecode(t *testing.T) {
	c, err := NewZstdCodec(JSONCodec{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	decoded, err := c.Decode(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, []any{}) {
		t.Fatalf("decode nil = %v, want empty sequence", decoded)
	}
}
