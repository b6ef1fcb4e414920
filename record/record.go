package record

import (
	"bytes"
	"strings"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/layout"
)

// Record is one instance of a record type. It owns a byte buffer of exactly
// Type.Size() bytes, unless it was created with Type.Wrap.
type Record struct {
	typ *Type
	raw []byte
}

// Type returns the record type.
func (r *Record) Type() *Type {
	return r.typ
}

// Bytes returns the packed bytes of r.
//
// The returned slice aliases the record; it stays valid for the lifetime of
// the record and reflects later writes. Callers must not modify it.
func (r *Record) Bytes() []byte {
	return r.raw
}

// AppendTo appends the packed bytes of r to dst.
func (r *Record) AppendTo(dst []byte) []byte {
	return append(dst, r.raw...)
}

// Clone returns a copy of r with its own buffer.
func (r *Record) Clone() *Record {
	c := &Record{typ: r.typ, raw: make([]byte, len(r.raw))}
	copy(c.raw, r.raw)

	return c
}

// Reset zeroes every field.
func (r *Record) Reset() {
	clear(r.raw)
}

// Equal reports whether o has the same type and bytes as r.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}

	return r.typ == o.typ && bytes.Equal(r.raw, o.raw)
}

// Raw returns the undecoded bits of the field called name.
func (r *Record) Raw(name string) (uint64, error) {
	f, err := r.field(name)
	if err != nil {
		return 0, err
	}

	return r.typ.layout.Read(r.raw, f)
}

// SetRaw stores the low bits of v in the field called name without going
// through the field specifier. Any bit pattern can be written, including
// values an enum field cannot decode.
func (r *Record) SetRaw(name string, v uint64) error {
	f, err := r.field(name)
	if err != nil {
		return err
	}

	return r.typ.layout.Write(r.raw, f, v)
}

// Validate checks that every field holds a decodable value and returns the
// first failure.
func (r *Record) Validate() error {
	for _, f := range r.typ.layout.Fields() {
		raw, err := r.typ.layout.Read(r.raw, f)
		if err != nil {
			return err
		}

		if err := f.Spec.CheckRaw(raw); err != nil {
			return errs.WithField(err, f.Name)
		}
	}

	return nil
}

// String renders r as Name{field: value, ...}, enum fields by variant name.
func (r *Record) String() string {
	var b strings.Builder

	b.WriteString(r.typ.name)
	b.WriteByte('{')

	for i, f := range r.typ.layout.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")

		raw, err := r.typ.layout.Read(r.raw, f)
		if err != nil {
			b.WriteString("?")
			continue
		}
		b.WriteString(f.Spec.FormatRaw(raw))
	}

	b.WriteByte('}')

	return b.String()
}

func (r *Record) field(name string) (layout.Field, error) {
	f, ok := r.typ.layout.Field(name)
	if !ok {
		return layout.Field{}, errs.New(errs.ErrUnknownField, name, "record type "+r.typ.name)
	}

	return f, nil
}
