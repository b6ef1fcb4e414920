// Package specifier describes the type of a packed field: how many bits it
// occupies and how a raw unsigned integer read from those bits maps to the
// value callers see.
//
// Three kinds exist:
//   - Uint: an unsigned integer of 1..64 bits held in the smallest Go
//     unsigned type that fits (uint8, uint16, uint32 or uint64).
//   - Bool: a single bit.
//   - Enum: a closed set of named values of an unsigned Go type, using
//     log2(variant count) bits.
//
// Specifiers are immutable and safe for concurrent use.
package specifier

import (
	mathbits "math/bits"
	"strconv"

	"github.com/arloliu/mebit/bits"
	"github.com/arloliu/mebit/errs"
)

// Kind is the logical type of a field.
type Kind uint8

const (
	KindUint Kind = iota + 1
	KindBool
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "Uint"
	case KindBool:
		return "Bool"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Container is the bit size of the Go unsigned type holding a field's value.
type Container uint8

const (
	Container8  Container = 8
	Container16 Container = 16
	Container32 Container = 32
	Container64 Container = 64
)

func (c Container) String() string {
	switch c {
	case Container8, Container16, Container32, Container64:
		return "uint" + strconv.Itoa(int(c))
	default:
		return "Unknown"
	}
}

// containers maps a bit count to its container, indexed by (bits-1)/8.
var containers = [8]Container{
	Container8,
	Container16,
	Container32, Container32,
	Container64, Container64, Container64, Container64,
}

// ContainerFor returns the smallest container holding n bits.
//
//	1-8   -> uint8
//	9-16  -> uint16
//	17-32 -> uint32
//	33-64 -> uint64
func ContainerFor(n int) (Container, error) {
	if n < 1 || n > bits.MaxWidth {
		return 0, errs.New(errs.ErrInvalidWidth, "", "got "+strconv.Itoa(n))
	}

	return containers[(n-1)/8], nil
}

// Unsigned is the set of Go types a field value can have.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Descriptor is the type-independent part of a specifier. Layouts and
// records hold fields through their Descriptor.
type Descriptor interface {
	// Bits returns the field width, 1..64.
	Bits() int
	// Kind returns the logical type.
	Kind() Kind
	// Container returns the in-memory size of the value type.
	Container() Container
	// TypeName names the value type, e.g. "uint16", "bool" or an enum name.
	TypeName() string
	// CheckRaw reports whether raw decodes to a valid value.
	CheckRaw(raw uint64) error
	// FormatRaw renders raw the way the value would print.
	FormatRaw(raw uint64) string
}

// Specifier converts between a value of type T and the raw integer stored in
// a field.
//
// Encode never fails: bits above the field width are dropped. Decode fails
// with errs.ErrDecode when raw does not map to a value of T.
type Specifier[T any] interface {
	Descriptor
	Encode(v T) uint64
	Decode(raw uint64) (T, error)
}

// widthOf returns the bit size of T.
func widthOf[T Unsigned]() int {
	var zero T
	return mathbits.Len64(uint64(^zero))
}
