package compress

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/pierrec/lz4/v4"
)

// Every input byte of an LZ4 block expands to at most 255 output bytes, as a
// match length extension byte.
const (
	lz4MaxExpansion   = 255
	lz4ExpansionSlack = 64
)

// lz4CompressorPool keeps lz4.Compressor hash tables warm between calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec uses the LZ4 block format.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec returns the LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

func (LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress compresses data into a single LZ4 block.
//
// Incompressible input makes CompressBlock report 0 bytes; such input is
// stored as an LZ4 block of literals instead of failing.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		return literalBlock(data), nil
	}

	return dst[:n], nil
}

// Decompress expands a single LZ4 block into exactly rawLen bytes.
func (LZ4Codec) Decompress(data []byte, rawLen int) ([]byte, error) {
	if out, done, err := emptyPayload(data, rawLen); done {
		return out, err
	}

	if limit := lz4MaxExpansion*len(data) + lz4ExpansionSlack; rawLen > limit {
		return nil, errs.New(errs.ErrInvalidPayloadLength, "",
			"lz4 block of "+strconv.Itoa(len(data))+" bytes cannot hold "+strconv.Itoa(rawLen))
	}

	buf := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return checkLen(buf[:n], rawLen)
}

// literalBlock encodes data as one LZ4 sequence made only of literals.
func literalBlock(data []byte) []byte {
	n := len(data)
	out := make([]byte, 0, n+n/255+16)

	if n < 15 {
		out = append(out, byte(n<<4))
	} else {
		out = append(out, 0xF0)
		rem := n - 15
		for rem >= 255 {
			out = append(out, 255)
			rem -= 255
		}
		out = append(out, byte(rem))
	}

	return append(out, data...)
}
