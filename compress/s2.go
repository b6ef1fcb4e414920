package compress

import (
	"fmt"
	"strconv"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/klauspost/compress/s2"
)

// S2Codec uses S2, the Snappy-compatible block format from klauspost/compress.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec returns the S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

func (S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (S2Codec) Decompress(data []byte, rawLen int) ([]byte, error) {
	if out, done, err := emptyPayload(data, rawLen); done {
		return out, err
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n != rawLen {
		return nil, errs.New(errs.ErrInvalidPayloadLength, "",
			"s2 block holds "+strconv.Itoa(n)+" bytes, want "+strconv.Itoa(rawLen))
	}

	out, err := s2.Decode(make([]byte, rawLen), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return checkLen(out, rawLen)
}
