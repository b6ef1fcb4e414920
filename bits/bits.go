// Package bits reads and writes unsigned integers of 1 to 64 bits at arbitrary
// bit offsets inside a byte slice.
//
// # Bit Order
//
// Bit 0 of a buffer is the least-significant bit of byte 0, bit 8 is the
// least-significant bit of byte 1, and so on. A value written at offset o with
// width w occupies bits o..o+w-1, its least-significant bit at bit o.
//
// # Strategies
//
// Read and Write are segment based: the affected bit range is split into a
// partial first byte, whole middle bytes and a partial last byte, and each
// segment is merged with a single mask. ReadBitwise and WriteBitwise move one
// bit at a time. Both produce identical buffers; the bitwise pair serves as the
// reference in tests and benchmarks.
//
// # Errors
//
// A width outside 1..64 fails with errs.ErrInvalidWidth. A negative offset or
// a range past the end of the buffer fails with errs.ErrOutOfRange. Value bits
// above the width are ignored on write. None of the functions allocate on
// success.
package bits

import (
	"strconv"

	"github.com/arloliu/mebit/errs"
)

// MaxWidth is the widest field a single access can move.
const MaxWidth = 64

// Mask returns a mask with the low width bits set.
// Widths of 64 or more return all ones.
func Mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}

	return uint64(1)<<uint(width) - 1
}

// Segments describes how a bit range splits over the bytes of a buffer.
//
// First is the number of bits in the first byte. When the whole range fits in
// one byte First equals the width and Middle and Last are zero. Otherwise
// Middle counts the whole bytes that follow and Last is the number of bits in
// the final partial byte, zero when the range ends on a byte boundary.
type Segments struct {
	Start  int // index of the first byte
	Shift  int // bit position of the range inside the first byte
	First  int
	Middle int
	Last   int
}

// Bytes returns the number of bytes the range touches.
func (s Segments) Bytes() int {
	n := 1 + s.Middle
	if s.Last > 0 {
		n++
	}

	return n
}

// Plan splits the range [offset, offset+width) into segments.
// It does not validate its arguments.
func Plan(offset, width int) Segments {
	s := Segments{
		Start: offset >> 3,
		Shift: offset & 7,
	}

	s.First = 8 - s.Shift
	if s.First >= width {
		s.First = width
		return s
	}

	s.Last = (offset + width) & 7
	s.Middle = (width - s.First - s.Last) >> 3

	return s
}

// Read returns the width bits of buf starting at bit offset.
func Read(buf []byte, offset, width int) (uint64, error) {
	if err := check(len(buf), offset, width); err != nil {
		return 0, err
	}

	s := Plan(offset, width)

	if s.First == width {
		return uint64(buf[s.Start]>>uint(s.Shift)) & Mask(width), nil
	}

	v := uint64(buf[s.Start] >> uint(s.Shift))
	n := s.First
	idx := s.Start + 1

	for range s.Middle {
		v |= uint64(buf[idx]) << uint(n)
		n += 8
		idx++
	}

	if s.Last > 0 {
		v |= uint64(buf[idx]&byte(Mask(s.Last))) << uint(n)
	}

	return v, nil
}

// Write stores the low width bits of value into buf starting at bit offset.
// Bits of buf outside the range are left untouched.
func Write(buf []byte, offset, width int, value uint64) error {
	if err := check(len(buf), offset, width); err != nil {
		return err
	}

	value &= Mask(width)
	s := Plan(offset, width)

	if s.First == width {
		m := byte(Mask(width)) << uint(s.Shift)
		buf[s.Start] = buf[s.Start]&^m | byte(value)<<uint(s.Shift)

		return nil
	}

	m := byte(0xFF) << uint(s.Shift)
	buf[s.Start] = buf[s.Start]&^m | byte(value)<<uint(s.Shift)
	value >>= uint(s.First)
	idx := s.Start + 1

	for range s.Middle {
		buf[idx] = byte(value)
		value >>= 8
		idx++
	}

	if s.Last > 0 {
		m = byte(Mask(s.Last))
		buf[idx] = buf[idx]&^m | byte(value)&m
	}

	return nil
}

// ReadBitwise is Read implemented one bit at a time.
func ReadBitwise(buf []byte, offset, width int) (uint64, error) {
	if err := check(len(buf), offset, width); err != nil {
		return 0, err
	}

	var v uint64
	for i := range width {
		pos := offset + i
		if buf[pos>>3]&(1<<uint(pos&7)) != 0 {
			v |= 1 << uint(i)
		}
	}

	return v, nil
}

// WriteBitwise is Write implemented one bit at a time.
func WriteBitwise(buf []byte, offset, width int, value uint64) error {
	if err := check(len(buf), offset, width); err != nil {
		return err
	}

	for i := range width {
		pos := offset + i
		m := byte(1) << uint(pos&7)
		if value&(1<<uint(i)) != 0 {
			buf[pos>>3] |= m
		} else {
			buf[pos>>3] &^= m
		}
	}

	return nil
}

// Check reports whether a width-bit access at offset fits a buffer of size bytes.
func Check(size, offset, width int) error {
	return check(size, offset, width)
}

func check(size, offset, width int) error {
	if width < 1 || width > MaxWidth {
		return errs.New(errs.ErrInvalidWidth, "", "got "+strconv.Itoa(width))
	}

	if offset < 0 || offset > size*8-width {
		return errs.New(errs.ErrOutOfRange, "",
			"offset "+strconv.Itoa(offset)+" width "+strconv.Itoa(width)+
				" exceeds "+strconv.Itoa(size*8)+" bits")
	}

	return nil
}
