// Package endian selects the byte order of the fixed-width integers in a
// record set snapshot header.
//
// Snapshot headers are little-endian unless their flag word marks them
// big-endian; the packed records themselves are byte-order free since fields
// are addressed bit by bit from the first byte.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, recordSize)
//
// All engines are stateless and safe for concurrent use.
package endian

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// EndianEngine combines the read/write and append forms of a byte order.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the byte order of the host CPU.
func Native() EndianEngine {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsBigEndian reports whether engine is the big-endian byte order.
func IsBigEndian(engine EndianEngine) bool {
	return engine == GetBigEndianEngine()
}

// GetLittleEndianEngine returns the little-endian engine, the snapshot default.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
