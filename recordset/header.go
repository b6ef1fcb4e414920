package recordset

import (
	"strconv"

	"github.com/arloliu/mebit/endian"
	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/arloliu/mebit/record"
	"github.com/arloliu/mebit/specifier"
)

const (
	HeaderSize = 32    // fixed snapshot header size in bytes
	Magic      = 0xB17 // 12-bit magic number of snapshot format v1

	flagSize = 2
)

// flagFields is the packed 16-bit flag word at the start of the header:
// magic in bits 0-11, compression in bits 12-13, the big-endian marker in
// bit 14, bit 15 reserved. Being bit addressed, the flag word itself does not
// depend on the byte order it announces.
type flagFields struct {
	typ         *record.Type
	magic       *record.Field[uint16]
	compression *record.Field[format.CompressionType]
	bigEndian   *record.Field[bool]
	reserved    *record.Field[uint8]
}

var flag = newFlagFields()

func newFlagFields() flagFields {
	compressions := specifier.MustEnum("Compression",
		specifier.V("None", format.CompressionNone),
		specifier.V("Zstd", format.CompressionZstd),
		specifier.V("S2", format.CompressionS2),
		specifier.V("LZ4", format.CompressionLZ4),
	)

	b := record.NewBuilder("SnapshotFlag")
	f := flagFields{
		magic:       record.Add(b, "magic", specifier.U16(12)),
		compression: record.Add[format.CompressionType](b, "compression", compressions),
		bigEndian:   record.Add(b, "big_endian", specifier.Bool()),
		reserved:    record.Add(b, "reserved", specifier.U8(1)),
	}
	f.typ = b.MustBuild()

	return f
}

// Header is the fixed-size header of a record set snapshot.
//
// Layout, integers little-endian unless BigEndian is set:
//
//	0-1    flag word (magic, compression, byte order, reserved)
//	2-3    reserved, must be zero
//	4-7    record size in bytes
//	8-11   record count
//	12-15  uncompressed payload length
//	16-23  layout fingerprint of the record type
//	24-31  xxHash64 of the uncompressed payload
type Header struct {
	Compression   format.CompressionType
	BigEndian     bool
	RecordSize    uint32
	RecordCount   uint32
	PayloadLength uint32
	Fingerprint   uint64
	Checksum      uint64
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.put(b)

	return b
}

// Engine returns the byte order of the header integer fields.
func (h *Header) Engine() endian.EndianEngine {
	if h.BigEndian {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

func (h *Header) put(b []byte) {
	engine := h.Engine()

	rec, _ := flag.typ.Wrap(b[:flagSize])
	rec.Reset()
	_ = flag.magic.Set(rec, Magic)
	_ = flag.compression.Set(rec, h.Compression)
	_ = flag.bigEndian.Set(rec, h.BigEndian)

	b[2], b[3] = 0, 0
	engine.PutUint32(b[4:8], h.RecordSize)
	engine.PutUint32(b[8:12], h.RecordCount)
	engine.PutUint32(b[12:16], h.PayloadLength)
	engine.PutUint64(b[16:24], h.Fingerprint)
	engine.PutUint64(b[24:32], h.Checksum)
}

// Parse parses the header from data, which must be exactly HeaderSize bytes.
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize, errs.ErrInvalidMagicNumber, or
//     errs.ErrInvalidHeaderFlags when reserved bits are set
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.New(errs.ErrInvalidHeaderSize, "",
			"got "+strconv.Itoa(len(data))+" bytes, want "+strconv.Itoa(HeaderSize))
	}

	rec, err := flag.typ.FromBytes(data[:flagSize])
	if err != nil {
		return err
	}

	if magic := flag.magic.MustGet(rec); magic != Magic {
		return errs.New(errs.ErrInvalidMagicNumber, "", "got 0x"+strconv.FormatUint(uint64(magic), 16))
	}

	if flag.reserved.MustGet(rec) != 0 || data[2] != 0 || data[3] != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	h.Compression = flag.compression.MustGet(rec)
	h.BigEndian = flag.bigEndian.MustGet(rec)
	engine := h.Engine()

	h.RecordSize = engine.Uint32(data[4:8])
	h.RecordCount = engine.Uint32(data[8:12])
	h.PayloadLength = engine.Uint32(data[12:16])
	h.Fingerprint = engine.Uint64(data[16:24])
	h.Checksum = engine.Uint64(data[24:32])

	return nil
}

// ParseHeader parses the header at the start of a snapshot.
//
// Returns:
//   - Header: Parsed header
//   - error: errs.ErrInvalidHeaderSize if data is shorter than HeaderSize, or a
//     flag validation error
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.New(errs.ErrInvalidHeaderSize, "",
			"got "+strconv.Itoa(len(data))+" bytes, want at least "+strconv.Itoa(HeaderSize))
	}

	var h Header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
