package record

import (
	"github.com/arloliu/mebit/bits"
	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/layout"
	"github.com/arloliu/mebit/specifier"
)

// Field is the typed accessor of one field of a record type.
type Field[T any] struct {
	name  string
	spec  specifier.Specifier[T]
	typ   *Type
	field layout.Field
}

func (f *Field[T]) bind(t *Type, lf layout.Field) {
	f.typ = t
	f.field = lf
}

// Name returns the field name.
func (f *Field[T]) Name() string {
	return f.name
}

// Spec returns the field specifier.
func (f *Field[T]) Spec() specifier.Specifier[T] {
	return f.spec
}

// Offset returns the bit offset of the field, or -1 before the type is built.
func (f *Field[T]) Offset() int {
	if f.typ == nil {
		return -1
	}

	return f.field.Offset
}

// Bits returns the field width.
func (f *Field[T]) Bits() int {
	return f.spec.Bits()
}

// Get reads the field from r.
//
// Returns:
//   - T: The decoded value
//   - error: errs.ErrFieldUnbound or errs.ErrLayoutMismatch when f cannot be used
//     with r, errs.ErrDecode when an enum field holds an unknown discriminant
func (f *Field[T]) Get(r *Record) (T, error) {
	var zero T

	if err := f.check(r); err != nil {
		return zero, err
	}

	raw, err := bits.Read(r.raw, f.field.Offset, f.field.Bits())
	if err != nil {
		return zero, errs.WithField(err, f.name)
	}

	v, err := f.spec.Decode(raw)
	if err != nil {
		return zero, errs.WithField(err, f.name)
	}

	return v, nil
}

// MustGet is like Get but panics on error.
func (f *Field[T]) MustGet(r *Record) T {
	v, err := f.Get(r)
	if err != nil {
		panic("record: " + err.Error())
	}

	return v
}

// Set writes v into r. Bits of v above the field width are dropped.
//
// Set fails only when f cannot be used with r.
func (f *Field[T]) Set(r *Record, v T) error {
	if err := f.check(r); err != nil {
		return err
	}

	if err := bits.Write(r.raw, f.field.Offset, f.field.Bits(), f.spec.Encode(v)); err != nil {
		return errs.WithField(err, f.name)
	}

	return nil
}

func (f *Field[T]) check(r *Record) error {
	if f.typ == nil {
		return errs.New(errs.ErrFieldUnbound, f.name, "")
	}

	if r == nil || r.typ != f.typ {
		return errs.New(errs.ErrLayoutMismatch, f.name, "field of "+f.typ.name)
	}

	return nil
}
