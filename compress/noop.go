package compress

import "github.com/arloliu/mebit/format"

// NoOpCodec stores payloads unchanged.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// NewNoOpCodec returns the pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

func (NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself; the result aliases the input.
func (NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself after checking its length.
func (NoOpCodec) Decompress(data []byte, rawLen int) ([]byte, error) {
	return checkLen(data, rawLen)
}
