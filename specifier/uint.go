package specifier

import (
	"strconv"

	"github.com/arloliu/mebit/bits"
	"github.com/arloliu/mebit/errs"
)

// Uint is an unsigned integer field of a fixed bit width with values of type T.
type Uint[T Unsigned] struct {
	width     int
	container Container
}

var _ Specifier[uint16] = Uint[uint16]{}

// NewUint returns an integer specifier of n bits.
//
// T must be the smallest unsigned type that holds n bits; NewUint[uint32](12)
// fails with errs.ErrContainerMismatch because 12 bits belong in a uint16.
//
// Returns:
//   - Uint[T]: The specifier
//   - error: errs.ErrInvalidWidth if n is outside 1..64, errs.ErrContainerMismatch
//     if T is not the minimal container
func NewUint[T Unsigned](n int) (Uint[T], error) {
	c, err := ContainerFor(n)
	if err != nil {
		return Uint[T]{}, err
	}

	if w := widthOf[T](); w != int(c) {
		return Uint[T]{}, errs.New(errs.ErrContainerMismatch, "",
			strconv.Itoa(n)+" bits need "+c.String()+", got uint"+strconv.Itoa(w))
	}

	return Uint[T]{width: n, container: c}, nil
}

// MustUint is like NewUint but panics on error. It is meant for package-level
// field definitions.
func MustUint[T Unsigned](n int) Uint[T] {
	u, err := NewUint[T](n)
	if err != nil {
		panic("specifier: " + err.Error())
	}

	return u
}

// U8 returns a MustUint[uint8] specifier of n (1..8) bits.
func U8(n int) Uint[uint8] { return MustUint[uint8](n) }

// U16 returns a MustUint[uint16] specifier of n (9..16) bits.
func U16(n int) Uint[uint16] { return MustUint[uint16](n) }

// U32 returns a MustUint[uint32] specifier of n (17..32) bits.
func U32(n int) Uint[uint32] { return MustUint[uint32](n) }

// U64 returns a MustUint[uint64] specifier of n (33..64) bits.
func U64(n int) Uint[uint64] { return MustUint[uint64](n) }

func (u Uint[T]) Bits() int            { return u.width }
func (u Uint[T]) Kind() Kind           { return KindUint }
func (u Uint[T]) Container() Container { return u.container }
func (u Uint[T]) TypeName() string     { return u.container.String() }

// Encode returns v truncated to the field width.
func (u Uint[T]) Encode(v T) uint64 {
	return uint64(v) & bits.Mask(u.width)
}

// Decode returns raw truncated to the field width. It never fails.
func (u Uint[T]) Decode(raw uint64) (T, error) {
	return T(raw & bits.Mask(u.width)), nil
}

func (u Uint[T]) CheckRaw(uint64) error { return nil }

func (u Uint[T]) FormatRaw(raw uint64) string {
	return strconv.FormatUint(raw&bits.Mask(u.width), 10)
}
