// Package recordset stores records of one type back to back and serializes
// them as a compressed snapshot.
//
// A record set is a fixed-stride array: record i occupies bytes
// [i*size, (i+1)*size) of the payload, with size the record type's byte size.
// A snapshot is a 32-byte Header followed by the payload compressed with the
// selected codec. The header carries the layout fingerprint of the record
// type and an xxHash64 checksum of the uncompressed payload, so a snapshot
// decoded with the wrong type or from corrupted bytes is rejected.
//
//	set, _ := recordset.New(entryType, recordset.WithCompression(format.CompressionZstd))
//	rec, _ := set.AppendNew()
//	_ = vector.Set(rec, 0x30)
//
//	blob, err := set.Encode()
//	...
//	decoded, err := recordset.Decode(entryType, blob)
//
// A RecordSet is not safe for concurrent use.
package recordset

import (
	"bytes"
	"iter"
	"math"
	"strconv"

	"github.com/arloliu/mebit/compress"
	"github.com/arloliu/mebit/endian"
	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/arloliu/mebit/internal/hash"
	"github.com/arloliu/mebit/internal/logging"
	"github.com/arloliu/mebit/internal/options"
	"github.com/arloliu/mebit/internal/pool"
	"github.com/arloliu/mebit/record"
	"github.com/arloliu/mebit/registry"
	"go.uber.org/zap"
)

type config struct {
	compression format.CompressionType
	bigEndian   bool
	capacity    int
}

// Option configures a RecordSet or a single Encode call.
type Option = options.Option[*config]

// WithCompression selects the snapshot codec. The default is
// format.CompressionNone.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.CreateCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithByteOrder selects the byte order of the snapshot header integers. The
// default is little-endian. Packed records are byte-order free and are not
// affected.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errs.New(errs.ErrOutOfRange, "", "nil byte order")
		}
		c.bigEndian = endian.IsBigEndian(engine)

		return nil
	})
}

// WithNativeByteOrder writes snapshot headers in the host byte order.
func WithNativeByteOrder() Option {
	return WithByteOrder(endian.Native())
}

// WithCapacity preallocates room for n records. It has no effect on Encode.
func WithCapacity(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 {
			return errs.New(errs.ErrOutOfRange, "", "negative capacity "+strconv.Itoa(n))
		}
		c.capacity = n

		return nil
	})
}

// RecordSet is an ordered collection of records of one type.
type RecordSet struct {
	typ  *record.Type
	size int
	data []byte
	cfg  config
}

// New returns an empty record set for typ.
//
// Returns:
//   - *RecordSet: The record set
//   - error: errs.ErrNilType for a nil type, or an option error
func New(typ *record.Type, opts ...Option) (*RecordSet, error) {
	if typ == nil {
		return nil, errs.ErrNilType
	}

	s := &RecordSet{typ: typ, size: typ.Size()}
	if err := options.Apply(&s.cfg, opts...); err != nil {
		return nil, err
	}

	s.data = make([]byte, 0, s.cfg.capacity*s.size)

	return s, nil
}

// Type returns the record type.
func (s *RecordSet) Type() *record.Type {
	return s.typ
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	return len(s.data) / s.size
}

// Compression returns the codec used by Encode when no option overrides it.
func (s *RecordSet) Compression() format.CompressionType {
	return s.cfg.compression
}

// ByteOrder returns the header byte order used by Encode when no option
// overrides it.
func (s *RecordSet) ByteOrder() endian.EndianEngine {
	h := Header{BigEndian: s.cfg.bigEndian}

	return h.Engine()
}

// Bytes returns the packed records. The slice aliases the set and must not be
// modified.
func (s *RecordSet) Bytes() []byte {
	return s.data
}

// Append copies r to the end of the set.
func (s *RecordSet) Append(r *record.Record) error {
	if err := s.check(r); err != nil {
		return err
	}

	s.data = append(s.data, r.Bytes()...)

	return nil
}

// AppendNew appends a zeroed record and returns a view of it with its index.
//
// The view writes straight into the set. It stays valid until the set grows
// again; use At for a copy that outlives later appends.
func (s *RecordSet) AppendNew() (*record.Record, int) {
	idx := s.Len()
	s.data = append(s.data, make([]byte, s.size)...)

	rec, _ := s.typ.Wrap(s.slot(idx))

	return rec, idx
}

// At returns a copy of record i.
func (s *RecordSet) At(i int) (*record.Record, error) {
	if err := s.checkIndex(i); err != nil {
		return nil, err
	}

	return s.typ.FromBytes(s.slot(i))
}

// Set overwrites record i with r.
func (s *RecordSet) Set(i int, r *record.Record) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if err := s.check(r); err != nil {
		return err
	}

	copy(s.slot(i), r.Bytes())

	return nil
}

// All yields a view of every record in order. Writes through a view modify
// the set; views must not be kept past the iteration.
func (s *RecordSet) All() iter.Seq2[int, *record.Record] {
	return func(yield func(int, *record.Record) bool) {
		for i := range s.Len() {
			rec, _ := s.typ.Wrap(s.slot(i))
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Validate checks that every record holds decodable values.
func (s *RecordSet) Validate() error {
	for i, rec := range s.All() {
		if err := rec.Validate(); err != nil {
			return &IndexError{Index: i, Err: err}
		}
	}

	return nil
}

// Reset removes every record and keeps the allocated memory.
func (s *RecordSet) Reset() {
	s.data = s.data[:0]
}

// Encode serializes the set into a snapshot. Options override the set's
// compression and byte order for this call only.
//
// Returns:
//   - []byte: Header followed by the compressed payload
//   - error: errs.ErrInvalidPayloadLength when the payload exceeds 4GiB, or a
//     codec error
func (s *RecordSet) Encode(opts ...Option) ([]byte, error) {
	cfg := s.cfg
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	if uint64(len(s.data)) > math.MaxUint32 {
		return nil, errs.New(errs.ErrInvalidPayloadLength, "", strconv.Itoa(len(s.data))+" bytes")
	}

	codec, err := compress.CreateCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Compress(s.data)
	if err != nil {
		return nil, err
	}

	h := Header{
		Compression:   cfg.compression,
		BigEndian:     cfg.bigEndian,
		RecordSize:    uint32(s.size),      //nolint: gosec
		RecordCount:   uint32(s.Len()),     //nolint: gosec
		PayloadLength: uint32(len(s.data)), //nolint: gosec
		Fingerprint:   s.typ.Fingerprint(),
		Checksum:      hash.Bytes(s.data),
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	bb.Grow(HeaderSize + len(payload))
	h.put(bb.ExtendOrGrow(HeaderSize))
	_, _ = bb.Write(payload)

	return bytes.Clone(bb.Bytes()), nil
}

// Decode restores a record set of type typ from a snapshot.
//
// The decoded set keeps the snapshot's compression and byte order as its
// defaults.
//
// Returns:
//   - *RecordSet: The decoded set
//   - error: errs.ErrNilType, a header error, errs.ErrFingerprintMismatch when
//     the snapshot holds another type, errs.ErrInvalidSize or
//     errs.ErrInvalidPayloadLength for inconsistent sizes,
//     errs.ErrChecksumMismatch for corrupted payloads, or a codec error
func Decode(typ *record.Type, data []byte) (*RecordSet, error) {
	if typ == nil {
		return nil, errs.ErrNilType
	}

	h, err := ParseHeader(data)
	if err != nil {
		logDecodeFailure(typ.Name(), err)
		return nil, err
	}

	s, err := decode(typ, h, data[HeaderSize:])
	if err != nil {
		logDecodeFailure(typ.Name(), err)
		return nil, err
	}

	return s, nil
}

// DecodeWith restores a record set whose type is looked up in reg by the
// snapshot's layout fingerprint.
//
// Returns:
//   - *RecordSet: The decoded set
//   - error: errs.ErrTypeNotFound when reg has no matching type, or any error
//     of Decode
func DecodeWith(reg *registry.Registry, data []byte) (*RecordSet, error) {
	if reg == nil {
		return nil, errs.New(errs.ErrTypeNotFound, "", "nil registry")
	}

	h, err := ParseHeader(data)
	if err != nil {
		logDecodeFailure("", err)
		return nil, err
	}

	typ, ok := reg.Lookup(h.Fingerprint)
	if !ok {
		err := errs.New(errs.ErrTypeNotFound, "", "fingerprint "+strconv.FormatUint(h.Fingerprint, 16))
		logDecodeFailure("", err)

		return nil, err
	}

	s, err := decode(typ, h, data[HeaderSize:])
	if err != nil {
		logDecodeFailure(typ.Name(), err)
		return nil, err
	}

	return s, nil
}

func decode(typ *record.Type, h Header, payload []byte) (*RecordSet, error) {
	if h.Fingerprint != typ.Fingerprint() {
		return nil, errs.New(errs.ErrFingerprintMismatch, typ.Name(),
			"snapshot "+strconv.FormatUint(h.Fingerprint, 16)+", type "+strconv.FormatUint(typ.Fingerprint(), 16))
	}

	if int(h.RecordSize) != typ.Size() {
		return nil, errs.New(errs.ErrInvalidSize, typ.Name(),
			"snapshot records are "+strconv.FormatUint(uint64(h.RecordSize), 10)+" bytes, want "+strconv.Itoa(typ.Size()))
	}

	if uint64(h.RecordSize)*uint64(h.RecordCount) != uint64(h.PayloadLength) {
		return nil, errs.New(errs.ErrInvalidPayloadLength, typ.Name(),
			strconv.FormatUint(uint64(h.RecordCount), 10)+" records in "+strconv.FormatUint(uint64(h.PayloadLength), 10)+" bytes")
	}

	codec, err := compress.CreateCodec(h.Compression)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(payload, int(h.PayloadLength))
	if err != nil {
		return nil, err
	}

	if sum := hash.Bytes(raw); sum != h.Checksum {
		return nil, errs.New(errs.ErrChecksumMismatch, typ.Name(),
			"got "+strconv.FormatUint(sum, 16)+", want "+strconv.FormatUint(h.Checksum, 16))
	}

	// The pass-through codec returns a view of the snapshot.
	if h.Compression == format.CompressionNone {
		raw = bytes.Clone(raw)
	}
	if raw == nil {
		raw = []byte{}
	}

	return &RecordSet{
		typ:  typ,
		size: typ.Size(),
		data: raw,
		cfg:  config{compression: h.Compression, bigEndian: h.BigEndian},
	}, nil
}

func logDecodeFailure(typeName string, err error) {
	logging.Logger().Debug("record set snapshot rejected",
		zap.String("type", typeName),
		zap.String("kind", string(errs.KindOf(err))),
		zap.Error(err),
	)
}

func (s *RecordSet) slot(i int) []byte {
	return s.data[i*s.size : (i+1)*s.size]
}

func (s *RecordSet) check(r *record.Record) error {
	if r == nil || r.Type() != s.typ {
		return errs.New(errs.ErrLayoutMismatch, "", "record set of "+s.typ.Name())
	}

	return nil
}

func (s *RecordSet) checkIndex(i int) error {
	if i < 0 || i >= s.Len() {
		return errs.New(errs.ErrRecordIndexOutOfRange, "",
			"index "+strconv.Itoa(i)+", length "+strconv.Itoa(s.Len()))
	}

	return nil
}
