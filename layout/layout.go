// Package layout computes where each field of a packed record lives.
//
// A Layout is built once from an ordered list of fields. Fields are placed in
// declaration order without padding or reordering: the first field starts at
// bit 0 and every other field starts where the previous one ends. The total
// width must be a whole number of bytes, otherwise New fails with
// errs.ErrMisalignedLayout.
//
// A Layout is immutable and safe for concurrent use.
package layout

import (
	"strconv"
	"strings"

	"github.com/arloliu/mebit/bits"
	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/internal/hash"
	"github.com/arloliu/mebit/specifier"
)

// FieldSpec declares one field of a layout.
type FieldSpec struct {
	Name string
	Spec specifier.Descriptor
}

// Field is a placed field.
type Field struct {
	Name   string
	Spec   specifier.Descriptor
	Index  int // position in declaration order
	Offset int // bit offset of the least-significant bit
}

// Bits returns the field width.
func (f Field) Bits() int {
	return f.Spec.Bits()
}

// End returns the bit offset just past the field.
func (f Field) End() int {
	return f.Offset + f.Spec.Bits()
}

// Layout is the computed placement of a sequence of fields.
type Layout struct {
	fields      []Field
	index       map[string]int
	totalBits   int
	fingerprint uint64
}

// New places fields in order and validates the result.
//
// Returns:
//   - *Layout: The computed layout
//   - error: errs.ErrEmptyLayout, errs.ErrInvalidFieldName, errs.ErrDuplicateField,
//     errs.ErrInvalidWidth or errs.ErrMisalignedLayout
func New(fields ...FieldSpec) (*Layout, error) {
	if len(fields) == 0 {
		return nil, errs.ErrEmptyLayout
	}

	l := &Layout{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	fp := hash.NewFingerprint()

	offset := 0
	for i, fs := range fields {
		if fs.Name == "" || strings.TrimSpace(fs.Name) != fs.Name {
			return nil, errs.New(errs.ErrInvalidFieldName, fs.Name, "field "+strconv.Itoa(i))
		}

		if _, dup := l.index[fs.Name]; dup {
			return nil, errs.New(errs.ErrDuplicateField, fs.Name, "")
		}

		if fs.Spec == nil {
			return nil, errs.New(errs.ErrInvalidWidth, fs.Name, "nil specifier")
		}

		width := fs.Spec.Bits()
		if width < 1 || width > bits.MaxWidth {
			return nil, errs.New(errs.ErrInvalidWidth, fs.Name, "got "+strconv.Itoa(width))
		}

		l.index[fs.Name] = i
		l.fields = append(l.fields, Field{
			Name:   fs.Name,
			Spec:   fs.Spec,
			Index:  i,
			Offset: offset,
		})
		fp.Add(fs.Name, fs.Spec.TypeName(), uint8(fs.Spec.Kind()), width)

		offset += width
	}

	if rem := offset % 8; rem != 0 {
		return nil, errs.New(errs.ErrMisalignedLayout, "",
			"total "+strconv.Itoa(offset)+" bits, "+strconv.Itoa(8-rem)+" bits short of a byte boundary")
	}

	l.totalBits = offset
	l.fingerprint = fp.Sum()

	return l, nil
}

// TotalBits returns the sum of all field widths.
func (l *Layout) TotalBits() int {
	return l.totalBits
}

// TotalBytes returns the size of a record buffer.
func (l *Layout) TotalBytes() int {
	return l.totalBits / 8
}

// NumFields returns the number of fields.
func (l *Layout) NumFields() int {
	return len(l.fields)
}

// Fields returns a copy of the fields in declaration order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)

	return out
}

// FieldAt returns the i-th field.
func (l *Layout) FieldAt(i int) (Field, bool) {
	if i < 0 || i >= len(l.fields) {
		return Field{}, false
	}

	return l.fields[i], true
}

// Field returns the field called name.
func (l *Layout) Field(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}

	return l.fields[i], true
}

// Offsets returns the bit offset of every field in declaration order.
func (l *Layout) Offsets() []int {
	out := make([]int, len(l.fields))
	for i, f := range l.fields {
		out[i] = f.Offset
	}

	return out
}

// Fingerprint identifies the layout by the names, types and widths of its
// fields. Layouts with the same fields in the same order share a fingerprint.
func (l *Layout) Fingerprint() uint64 {
	return l.fingerprint
}

// Read returns the raw bits of f from buf.
func (l *Layout) Read(buf []byte, f Field) (uint64, error) {
	if len(buf) != l.TotalBytes() {
		return 0, errs.New(errs.ErrInvalidSize, f.Name,
			"got "+strconv.Itoa(len(buf))+" bytes, want "+strconv.Itoa(l.TotalBytes()))
	}

	v, err := bits.Read(buf, f.Offset, f.Bits())
	if err != nil {
		return 0, errs.WithField(err, f.Name)
	}

	return v, nil
}

// Write stores the low bits of raw into f in buf.
func (l *Layout) Write(buf []byte, f Field, raw uint64) error {
	if len(buf) != l.TotalBytes() {
		return errs.New(errs.ErrInvalidSize, f.Name,
			"got "+strconv.Itoa(len(buf))+" bytes, want "+strconv.Itoa(l.TotalBytes()))
	}

	if err := bits.Write(buf, f.Offset, f.Bits(), raw); err != nil {
		return errs.WithField(err, f.Name)
	}

	return nil
}

// String renders the layout, one field per line:
//
//	layout 8 bits / 1 bytes
//	  acknowledged bool bits 0..0
//	  delivery_mode DeliveryMode bits 1..3
func (l *Layout) String() string {
	var b strings.Builder

	b.WriteString("layout ")
	b.WriteString(strconv.Itoa(l.totalBits))
	b.WriteString(" bits / ")
	b.WriteString(strconv.Itoa(l.TotalBytes()))
	b.WriteString(" bytes\n")

	for _, f := range l.fields {
		b.WriteString("  ")
		b.WriteString(f.Name)
		b.WriteByte(' ')
		b.WriteString(f.Spec.TypeName())
		b.WriteString(" bits ")
		b.WriteString(strconv.Itoa(f.Offset))
		b.WriteString("..")
		b.WriteString(strconv.Itoa(f.End() - 1))
		b.WriteByte('\n')
	}

	return b.String()
}
