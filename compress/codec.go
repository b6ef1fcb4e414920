// Package compress provides the codecs applied to record set snapshot
// payloads.
//
// A payload is the concatenation of fixed-size packed records, so it is
// usually highly repetitive: unused fields are zero, enum fields take few
// distinct values. Four codecs are available:
//   - None: payload stored as is
//   - Zstd: best ratio, moderate speed (klauspost/compress, or valyala/gozstd
//     when built with the gozstd tag)
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression
//
// The uncompressed length of a payload is always known from the snapshot
// header, so Decompress takes it as a parameter, allocates the output once and
// rejects data that expands to any other length.
//
// All codecs are stateless values and safe for concurrent use.
package compress

import (
	"fmt"
	"strconv"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
)

// Compressor compresses a payload.
type Compressor interface {
	// Compress returns the compressed form of data. The input is not modified.
	// The result may alias data for codecs that do not transform it.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload.
type Decompressor interface {
	// Decompress returns the original payload of rawLen bytes. It fails when
	// data is corrupted or does not expand to exactly rawLen bytes.
	Decompress(data []byte, rawLen int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
	Type() format.CompressionType
}

// CreateCodec returns the codec of compressionType.
//
// Returns:
//   - Codec: The codec
//   - error: Invalid compression type error
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid compression type: %d", uint8(compressionType))
	}
}

// checkLen verifies a decompressed payload against the expected length.
func checkLen(out []byte, rawLen int) ([]byte, error) {
	if len(out) != rawLen {
		return nil, errs.New(errs.ErrInvalidPayloadLength, "",
			"decompressed "+strconv.Itoa(len(out))+" bytes, want "+strconv.Itoa(rawLen))
	}

	return out, nil
}

// emptyPayload handles zero-length input for every codec.
func emptyPayload(data []byte, rawLen int) ([]byte, bool, error) {
	if len(data) != 0 {
		return nil, false, nil
	}

	if rawLen != 0 {
		_, err := checkLen(nil, rawLen)
		return nil, true, err
	}

	return nil, true, nil
}
