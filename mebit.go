// Package mebit declares packed bit-level record layouts and reads and writes
// their fields in place.
//
// A record type is an ordered list of fields, each a fixed number of bits wide.
// Fields pack contiguously from bit 0, the least significant bit of byte 0,
// with no padding; the total width must be a whole number of bytes. Each field
// has a specifier describing how its bits map to a Go value: an unsigned
// integer of 1 to 64 bits, a one-bit boolean, or a closed enumeration whose
// variant count is a power of two.
//
// # Basic Usage
//
// Declaring the 4-byte record a(1) b(4) c(7) d(13) e(7):
//
//	import "github.com/arloliu/mebit"
//
//	b := mebit.NewBuilder("Packet")
//	fa := mebit.Add(b, "a", mebit.Bool())
//	fb := mebit.Add(b, "b", mebit.U8(4))
//	fc := mebit.Add(b, "c", mebit.U8(7))
//	fd := mebit.Add(b, "d", mebit.U16(13))
//	fe := mebit.Add(b, "e", mebit.U8(7))
//
//	typ, err := b.Build() // fails with errs.ErrMisalignedLayout if widths do not sum to whole bytes
//
//	rec := typ.New()
//	_ = fd.Set(rec, 4200)
//	v, _ := fd.Get(rec) // 4200
//
// Storing many records and snapshotting them:
//
//	set, _ := mebit.NewRecordSet(typ, recordset.WithCompression(format.CompressionZstd))
//	_ = set.Append(rec)
//	blob, _ := set.Encode()
//	restored, _ := mebit.DecodeRecordSet(typ, blob)
//
// # Package Structure
//
// This package re-exports the most common entry points. The building blocks
// live in their own packages:
//
//   - bits: raw bit-range reads and writes on byte slices
//   - specifier: field specifiers (Uint, Bool, Enum)
//   - layout: offset computation and validation
//   - record: record types, builders, typed field accessors and records
//   - recordset: fixed-stride record collections and compressed snapshots
//   - registry: record types indexed by layout fingerprint
//   - errs: sentinel errors and error kinds
package mebit

import (
	"github.com/arloliu/mebit/internal/logging"
	"github.com/arloliu/mebit/record"
	"github.com/arloliu/mebit/recordset"
	"github.com/arloliu/mebit/registry"
	"github.com/arloliu/mebit/specifier"
	"go.uber.org/zap"
)

// SetLogger sets the logger used by every mebit package. The default logger
// discards everything; a nil logger restores it.
func SetLogger(l *zap.Logger) {
	logging.SetLogger(l)
}

// NewBuilder starts the definition of a record type called name.
func NewBuilder(name string, opts ...record.BuilderOption) *record.Builder {
	return record.NewBuilder(name, opts...)
}

// Add declares the next field of b and returns its typed accessor.
func Add[T any](b *record.Builder, name string, spec specifier.Specifier[T]) *record.Field[T] {
	return record.Add(b, name, spec)
}

// AddBits is like Add but fails the build with errs.ErrInvalidWidth unless
// spec is exactly n bits wide.
func AddBits[T any](b *record.Builder, name string, n int, spec specifier.Specifier[T]) *record.Field[T] {
	return record.AddBits(b, name, n, spec)
}

// Bool returns the one-bit boolean specifier.
func Bool() specifier.Boolean {
	return specifier.Bool()
}

// U8 returns an integer specifier of n bits, 1 <= n <= 8. It panics otherwise.
func U8(n int) specifier.Uint[uint8] { return specifier.U8(n) }

// U16 returns an integer specifier of n bits, 9 <= n <= 16. It panics otherwise.
func U16(n int) specifier.Uint[uint16] { return specifier.U16(n) }

// U32 returns an integer specifier of n bits, 17 <= n <= 32. It panics otherwise.
func U32(n int) specifier.Uint[uint32] { return specifier.U32(n) }

// U64 returns an integer specifier of n bits, 33 <= n <= 64. It panics otherwise.
func U64(n int) specifier.Uint[uint64] { return specifier.U64(n) }

// Enum returns an enumeration specifier.
//
// Parameters:
//   - name: Enum name used in errors and debug output
//   - variants: Variants in declaration order, built with specifier.V
//
// Returns:
//   - *specifier.Enum[T]: The specifier
//   - error: errs.ErrInvalidVariantCount, errs.ErrDiscriminantOverflow or a
//     variant name error
func Enum[T specifier.Unsigned](name string, variants ...specifier.Variant[T]) (*specifier.Enum[T], error) {
	return specifier.NewEnum(name, variants...)
}

// NewRecordSet returns an empty record set of typ.
func NewRecordSet(typ *record.Type, opts ...recordset.Option) (*recordset.RecordSet, error) {
	return recordset.New(typ, opts...)
}

// DecodeRecordSet restores a record set of typ from a snapshot produced by
// RecordSet.Encode.
func DecodeRecordSet(typ *record.Type, data []byte) (*recordset.RecordSet, error) {
	return recordset.Decode(typ, data)
}

// NewRegistry returns an empty record type registry.
func NewRegistry(opts ...registry.Option) (*registry.Registry, error) {
	return registry.New(opts...)
}
