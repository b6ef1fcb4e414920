package compress

import (
	"fmt"
	"strconv"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/klauspost/compress/zstd"
)

// ZstdCodec uses Zstandard.
//
// The default build uses the pure Go klauspost/compress implementation with
// pooled encoders and decoders. Building with the gozstd tag switches to the
// cgo valyala/gozstd binding. Both produce standard zstd frames and can read
// each other's output.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec returns the Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

func (ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}

// zstdCheckFrame validates the frame header of data against rawLen before any
// output is allocated. Both encoders record the content size in the frame
// header, so frames without it are rejected.
func zstdCheckFrame(data []byte, rawLen int) error {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return fmt.Errorf("zstd decompression failed: %w", err)
	}

	if !h.HasFCS {
		return errs.New(errs.ErrInvalidPayloadLength, "", "zstd frame without content size")
	}

	if h.FrameContentSize != uint64(rawLen) { //nolint: gosec
		return errs.New(errs.ErrInvalidPayloadLength, "",
			"zstd frame holds "+strconv.FormatUint(h.FrameContentSize, 10)+" bytes, want "+strconv.Itoa(rawLen))
	}

	return nil
}
