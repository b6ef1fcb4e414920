// Package record defines packed record types and their instances.
//
// A record type is declared once with a Builder. Each call to Add declares the
// next field and returns a typed accessor; Build computes the layout and fails
// if the definition is invalid, for example when the field widths do not add
// up to whole bytes.
//
//	b := record.NewBuilder("RedirectionTableEntry")
//	ack := record.Add(b, "acknowledged", specifier.Bool())
//	mode := record.Add(b, "delivery_mode", deliveryModes) // 3-bit enum
//	vector := record.Add(b, "vector", specifier.U8(4))
//
//	typ, err := b.Build()
//	if err != nil {
//	    return err
//	}
//
//	rec := typ.New()
//	_ = ack.Set(rec, true)
//	_ = mode.Set(rec, SMI)
//	m, err := mode.Get(rec)
//
// Creating records from a built type never fails. Accessors fail only when
// used with a record of another type or, for enum fields, when the stored bits
// match no variant.
//
// Types are immutable and safe for concurrent use. Records are plain values
// without internal locking; concurrent writers need external synchronization.
package record

import (
	"strconv"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/layout"
)

// Type is a built record type.
type Type struct {
	name   string
	layout *layout.Layout
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// Layout returns the field layout.
func (t *Type) Layout() *layout.Layout {
	return t.layout
}

// Size returns the record size in bytes.
func (t *Type) Size() int {
	return t.layout.TotalBytes()
}

// Fingerprint returns the layout fingerprint.
func (t *Type) Fingerprint() uint64 {
	return t.layout.Fingerprint()
}

// New returns a zeroed record.
func (t *Type) New() *Record {
	return &Record{typ: t, raw: make([]byte, t.layout.TotalBytes())}
}

// FromBytes returns a record holding a copy of raw.
//
// The contents are not validated; call Validate to check that every enum
// field holds a known variant.
func (t *Type) FromBytes(raw []byte) (*Record, error) {
	if err := t.checkSize(raw); err != nil {
		return nil, err
	}

	r := t.New()
	copy(r.raw, raw)

	return r, nil
}

// Wrap returns a record backed by raw without copying it. Writes through the
// record modify raw.
func (t *Type) Wrap(raw []byte) (*Record, error) {
	if err := t.checkSize(raw); err != nil {
		return nil, err
	}

	return &Record{typ: t, raw: raw}, nil
}

func (t *Type) checkSize(raw []byte) error {
	if len(raw) != t.Size() {
		return errs.New(errs.ErrInvalidSize, t.name,
			"got "+strconv.Itoa(len(raw))+" bytes, want "+strconv.Itoa(t.Size()))
	}

	return nil
}

// String returns the type name followed by its layout.
func (t *Type) String() string {
	return t.name + " " + t.layout.String()
}
