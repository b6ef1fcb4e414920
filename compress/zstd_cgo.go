//go:build gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// zstdLevel matches the klauspost SpeedDefault level.
const zstdLevel = 3

// Compress compresses data into one zstd frame.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress expands a zstd frame into exactly rawLen bytes.
func (ZstdCodec) Decompress(data []byte, rawLen int) ([]byte, error) {
	if out, done, err := emptyPayload(data, rawLen); done {
		return out, err
	}
	if err := zstdCheckFrame(data, rawLen); err != nil {
		return nil, err
	}

	out, err := gozstd.Decompress(make([]byte, 0, rawLen), data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return checkLen(out, rawLen)
}
