package specifier

import (
	mathbits "math/bits"
	"strconv"

	"github.com/arloliu/mebit/bits"
	"github.com/arloliu/mebit/errs"
)

// Variant is one named value of an enum. Its discriminant is uint64(Value).
type Variant[T Unsigned] struct {
	Name  string
	Value T
}

// V is shorthand for Variant[T]{Name: name, Value: value}.
func V[T Unsigned](name string, value T) Variant[T] {
	return Variant[T]{Name: name, Value: value}
}

// Enum is a closed enumeration field of type T.
//
// The variant count must be a power of two, at least 2, and the field uses
// log2(count) bits. Two variants may share a discriminant, the first one
// declared being the canonical name; the raw values left without a variant
// then fail to decode with errs.ErrDecode.
type Enum[T Unsigned] struct {
	name     string
	width    int
	variants []Variant[T]
	names    map[uint64]string // discriminant -> canonical name
}

var _ Specifier[uint8] = (*Enum[uint8])(nil)

// NewEnum builds an enum specifier named name from variants, in declaration order.
//
// Returns:
//   - *Enum[T]: The specifier
//   - error: errs.ErrInvalidVariantCount if the count is not a power of two >= 2,
//     errs.ErrDiscriminantOverflow if a value needs more than log2(count) bits,
//     errs.ErrInvalidVariantName or errs.ErrDuplicateVariant for bad names
func NewEnum[T Unsigned](name string, variants ...Variant[T]) (*Enum[T], error) {
	count := len(variants)
	if count < 2 || count&(count-1) != 0 {
		return nil, errs.New(errs.ErrInvalidVariantCount, name, "got "+strconv.Itoa(count)+" variants")
	}

	width := mathbits.TrailingZeros(uint(count))

	e := &Enum[T]{
		name:     name,
		width:    width,
		variants: make([]Variant[T], count),
		names:    make(map[uint64]string, count),
	}
	copy(e.variants, variants)

	seen := make(map[string]struct{}, count)
	limit := bits.Mask(width)

	for _, v := range variants {
		if v.Name == "" {
			return nil, errs.New(errs.ErrInvalidVariantName, name, "empty name")
		}

		if _, dup := seen[v.Name]; dup {
			return nil, errs.New(errs.ErrDuplicateVariant, name, v.Name)
		}
		seen[v.Name] = struct{}{}

		raw := uint64(v.Value)
		if raw > limit {
			return nil, errs.New(errs.ErrDiscriminantOverflow, name,
				v.Name+" = "+strconv.FormatUint(raw, 10)+" does not fit "+strconv.Itoa(width)+" bits")
		}

		if _, ok := e.names[raw]; !ok {
			e.names[raw] = v.Name
		}
	}

	return e, nil
}

// MustEnum is like NewEnum but panics on error.
func MustEnum[T Unsigned](name string, variants ...Variant[T]) *Enum[T] {
	e, err := NewEnum(name, variants...)
	if err != nil {
		panic("specifier: " + err.Error())
	}

	return e
}

// Name returns the enum name.
func (e *Enum[T]) Name() string { return e.name }

// Variants returns a copy of the variants in declaration order.
func (e *Enum[T]) Variants() []Variant[T] {
	out := make([]Variant[T], len(e.variants))
	copy(out, e.variants)

	return out
}

// VariantName returns the canonical name of v.
func (e *Enum[T]) VariantName(v T) (string, bool) {
	n, ok := e.names[uint64(v)]
	return n, ok
}

// Bits returns the field width. A nil enum reports 0 so that layouts reject it.
func (e *Enum[T]) Bits() int {
	if e == nil {
		return 0
	}

	return e.width
}

func (e *Enum[T]) Kind() Kind       { return KindEnum }
func (e *Enum[T]) TypeName() string { return e.name }

// Container returns the size of T, the type Decode returns.
func (e *Enum[T]) Container() Container {
	return Container(widthOf[T]())
}

// Encode returns the discriminant of v truncated to the field width.
// Values outside the enum are not rejected; they fail on Decode.
func (e *Enum[T]) Encode(v T) uint64 {
	return uint64(v) & bits.Mask(e.width)
}

// Decode returns the variant whose discriminant is raw.
func (e *Enum[T]) Decode(raw uint64) (T, error) {
	if err := e.CheckRaw(raw); err != nil {
		return 0, err
	}

	return T(raw), nil
}

// CheckRaw fails with errs.ErrDecode when raw is not a discriminant.
func (e *Enum[T]) CheckRaw(raw uint64) error {
	if _, ok := e.names[raw]; !ok {
		return errs.New(errs.ErrDecode, "", "enum "+e.name+": raw value "+strconv.FormatUint(raw, 10))
	}

	return nil
}

// FormatRaw returns the variant name, or "<name>(raw)" for unknown values.
func (e *Enum[T]) FormatRaw(raw uint64) string {
	if n, ok := e.names[raw]; ok {
		return n
	}

	return e.name + "(" + strconv.FormatUint(raw, 10) + ")"
}
