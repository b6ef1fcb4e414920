// Package errs defines the errors returned by mebit.
//
// Every failure is reported through one of the sentinel errors below, either
// directly or wrapped in an *Error that adds the field name and a detail
// message. Callers compare with errors.Is and classify with KindOf:
//
//	v, err := mode.Get(rec)
//	if errors.Is(err, errs.ErrDecode) {
//	    // the buffer holds a raw value that is not a known variant
//	}
package errs

import (
	"errors"
	"strings"
)

// Kind classifies an error.
type Kind string

const (
	KindMisalignedLayout     Kind = "misaligned_layout"
	KindInvalidVariantCount  Kind = "invalid_variant_count"
	KindDiscriminantOverflow Kind = "discriminant_overflow"
	KindOutOfRange           Kind = "out_of_range"
	KindDecode               Kind = "decode_error"
	KindInvalidDefinition    Kind = "invalid_definition" // malformed field, specifier or type definition
	KindInvalidBlob          Kind = "invalid_blob"       // malformed record set snapshot
	KindUnknown              Kind = "unknown"
)

// Definition-time errors. A type whose definition fails with one of these
// cannot produce records.
var (
	ErrMisalignedLayout     = errors.New("total bit width is not a multiple of 8")
	ErrInvalidVariantCount  = errors.New("enum variant count is not a power of two")
	ErrDiscriminantOverflow = errors.New("enum discriminant does not fit the allotted bits")
	ErrDuplicateVariant     = errors.New("duplicate enum variant name")
	ErrInvalidVariantName   = errors.New("invalid enum variant name")
	ErrInvalidWidth         = errors.New("bit width must be between 1 and 64")
	ErrContainerMismatch    = errors.New("container type is not the minimal width for the bit count")
	ErrEmptyLayout          = errors.New("layout has no fields")
	ErrInvalidFieldName     = errors.New("invalid field name")
	ErrDuplicateField       = errors.New("duplicate field name")
	ErrTypeAlreadyBuilt     = errors.New("record type already built")
)

// Per-call errors.
var (
	ErrOutOfRange     = errors.New("bit range exceeds buffer")
	ErrDecode         = errors.New("raw value matches no known variant")
	ErrUnknownField   = errors.New("unknown field")
	ErrFieldUnbound   = errors.New("field is not bound to a built record type")
	ErrLayoutMismatch = errors.New("record belongs to a different record type")
	ErrInvalidSize    = errors.New("buffer size does not match record size")
)

// Registry and record set errors.
var (
	ErrDuplicateType         = errors.New("record type already registered")
	ErrFingerprintCollision  = errors.New("layout fingerprint collision")
	ErrTypeNotFound          = errors.New("record type not found")
	ErrInvalidTypeName       = errors.New("invalid record type name")
	ErrNilType               = errors.New("record type is nil")
	ErrFingerprintMismatch   = errors.New("layout fingerprint mismatch")
	ErrInvalidHeaderSize     = errors.New("invalid header size")
	ErrInvalidMagicNumber    = errors.New("invalid magic number")
	ErrInvalidHeaderFlags    = errors.New("invalid header flags")
	ErrChecksumMismatch      = errors.New("payload checksum mismatch")
	ErrInvalidPayloadLength  = errors.New("invalid payload length")
	ErrRecordIndexOutOfRange = errors.New("record index out of range")
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrMisalignedLayout, KindMisalignedLayout},
	{ErrInvalidVariantCount, KindInvalidVariantCount},
	{ErrDiscriminantOverflow, KindDiscriminantOverflow},
	{ErrDuplicateVariant, KindInvalidDefinition},
	{ErrInvalidVariantName, KindInvalidDefinition},
	{ErrInvalidWidth, KindInvalidDefinition},
	{ErrContainerMismatch, KindInvalidDefinition},
	{ErrEmptyLayout, KindInvalidDefinition},
	{ErrInvalidFieldName, KindInvalidDefinition},
	{ErrDuplicateField, KindInvalidDefinition},
	{ErrTypeAlreadyBuilt, KindInvalidDefinition},
	{ErrOutOfRange, KindOutOfRange},
	{ErrRecordIndexOutOfRange, KindOutOfRange},
	{ErrDecode, KindDecode},
	{ErrUnknownField, KindInvalidDefinition},
	{ErrFieldUnbound, KindInvalidDefinition},
	{ErrLayoutMismatch, KindInvalidDefinition},
	{ErrInvalidSize, KindOutOfRange},
	{ErrDuplicateType, KindInvalidDefinition},
	{ErrFingerprintCollision, KindInvalidDefinition},
	{ErrTypeNotFound, KindInvalidDefinition},
	{ErrInvalidTypeName, KindInvalidDefinition},
	{ErrNilType, KindInvalidDefinition},
	{ErrFingerprintMismatch, KindInvalidBlob},
	{ErrInvalidHeaderSize, KindInvalidBlob},
	{ErrInvalidMagicNumber, KindInvalidBlob},
	{ErrInvalidHeaderFlags, KindInvalidBlob},
	{ErrChecksumMismatch, KindInvalidBlob},
	{ErrInvalidPayloadLength, KindInvalidBlob},
}

// Error carries the field and detail of a failure alongside its sentinel.
type Error struct {
	Err    error  // sentinel, one of the Err* values
	Field  string // field or type name, may be empty
	Detail string
}

// New returns an *Error wrapping sentinel.
func New(sentinel error, field, detail string) *Error {
	return &Error{Err: sentinel, Field: field, Detail: detail}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())
	if e.Field != "" {
		b.WriteString(" (")
		b.WriteString(e.Field)
		b.WriteByte(')')
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	return b.String()
}

// Unwrap returns the sentinel.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the classification of the wrapped sentinel.
func (e *Error) Kind() Kind {
	return KindOf(e.Err)
}

// KindOf classifies err by the sentinel found in its chain.
// It returns KindUnknown for nil or unrecognized errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindUnknown
}

// WithField attaches name to err when err is an *Error without a field.
// Other errors are returned unchanged.
func WithField(err error, name string) error {
	var e *Error
	if errors.As(err, &e) && e.Field == "" {
		return &Error{Err: e.Err, Field: name, Detail: e.Detail}
	}

	return err
}
