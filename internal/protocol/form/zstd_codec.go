package form

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec compresses another codec's bytes with zstd. Useful when the
// appendix carries large payloads; the inner codec decides representability.
type ZstdCodec struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func NewZstdCodec(inner Codec) (*ZstdCodec, error) {
	if inner == nil {
		return nil, ErrNilCodec
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return &ZstdCodec{inner: inner, enc: enc, dec: dec}, nil
}

func (c *ZstdCodec) Encode(v any) ([]byte, error) {
	plain, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(plain, nil), nil
}

func (c *ZstdCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return c.inner.Decode(nil)
	}
	plain, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return c.inner.Decode(plain)
}

func (c *ZstdCodec) Representable(v any) bool {
	return c.inner.Representable(v)
}
