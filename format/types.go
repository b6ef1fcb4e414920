// Package format holds the enumerations shared by the record set snapshot
// format.
package format

type CompressionType uint8

// The values are the discriminants stored in the 2-bit compression field of a
// snapshot header.
const (
	CompressionNone CompressionType = 0x0 // CompressionNone stores the payload as is.
	CompressionZstd CompressionType = 0x1 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x2 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x3 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
