package recordset

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/arloliu/mebit/endian"
	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/format"
	"github.com/arloliu/mebit/internal/logging"
	"github.com/arloliu/mebit/record"
	"github.com/arloliu/mebit/registry"
	"github.com/arloliu/mebit/specifier"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sampleMode uint8

const (
	modeOff sampleMode = iota
	modeOn
	modeAuto
)

var allCompressions = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// sample is a 5-byte record: 12-bit id, 2-bit mode, 2 flags, 24-bit value.
type sample struct {
	typ    *record.Type
	id     *record.Field[uint16]
	mode   *record.Field[sampleMode]
	active *record.Field[bool]
	spare  *record.Field[bool]
	value  *record.Field[uint32]
}

func newSample(t testing.TB, name string) sample {
	t.Helper()

	// "Automatic" aliases Auto, so raw value 3 decodes to nothing.
	modes := specifier.MustEnum("Mode",
		specifier.V("Off", modeOff),
		specifier.V("On", modeOn),
		specifier.V("Auto", modeAuto),
		specifier.V("Automatic", modeAuto),
	)

	b := record.NewBuilder(name)
	s := sample{
		id:     record.Add(b, "id", specifier.U16(12)),
		mode:   record.Add[sampleMode](b, "mode", modes),
		active: record.Add(b, "active", specifier.Bool()),
		spare:  record.Add(b, "spare", specifier.Bool()),
		value:  record.Add(b, "value", specifier.U32(24)),
	}

	typ, err := b.Build()
	require.NoError(t, err)
	s.typ = typ

	return s
}

func (s sample) fill(t testing.TB, set *RecordSet, n int) {
	t.Helper()

	for i := range n {
		rec, idx := set.AppendNew()
		require.Equal(t, i, idx)
		require.NoError(t, s.id.Set(rec, uint16(i)))
		require.NoError(t, s.mode.Set(rec, sampleMode(i%3)))
		require.NoError(t, s.active.Set(rec, i%2 == 0))
		require.NoError(t, s.value.Set(rec, uint32(i*1000)))
	}
}

func (s sample) requireRecord(t *testing.T, set *RecordSet, i int) {
	t.Helper()

	rec, err := set.At(i)
	require.NoError(t, err)
	require.Equal(t, uint16(i)&0xFFF, s.id.MustGet(rec))
	require.Equal(t, sampleMode(i%3), s.mode.MustGet(rec))
	require.Equal(t, i%2 == 0, s.active.MustGet(rec))
	require.Equal(t, uint32(i*1000)&0xFFFFFF, s.value.MustGet(rec))
}

func TestNew(t *testing.T) {
	s := newSample(t, "Sample")

	set, err := New(s.typ, WithCapacity(16), WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.Zero(t, set.Len())
	require.Same(t, s.typ, set.Type())
	require.Equal(t, format.CompressionS2, set.Compression())
	require.GreaterOrEqual(t, cap(set.Bytes()), 16*5)
	require.Equal(t, endian.GetLittleEndianEngine(), set.ByteOrder())

	_, err = New(nil)
	require.ErrorIs(t, err, errs.ErrNilType)

	_, err = New(s.typ, WithCapacity(-1))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = New(s.typ, WithCompression(format.CompressionType(9)))
	require.Error(t, err)

	_, err = New(s.typ, WithByteOrder(nil))
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestRecordSet_AppendAtSet(t *testing.T) {
	s := newSample(t, "Sample")
	set, err := New(s.typ)
	require.NoError(t, err)

	rec := s.typ.New()
	require.NoError(t, s.id.Set(rec, 7))
	require.NoError(t, s.mode.Set(rec, modeAuto))
	require.NoError(t, set.Append(rec))

	// Append copies: later writes to rec do not reach the set.
	require.NoError(t, s.id.Set(rec, 9))
	got, err := set.At(0)
	require.NoError(t, err)
	require.Equal(t, uint16(7), s.id.MustGet(got))

	// At copies too.
	require.NoError(t, s.id.Set(got, 100))
	again, _ := set.At(0)
	require.Equal(t, uint16(7), s.id.MustGet(again))

	require.NoError(t, set.Set(0, rec))
	again, _ = set.At(0)
	require.Equal(t, uint16(9), s.id.MustGet(again))
	require.Equal(t, 1, set.Len())
	require.Len(t, set.Bytes(), 5)

	other := newSample(t, "Other")
	require.ErrorIs(t, set.Append(other.typ.New()), errs.ErrLayoutMismatch)
	require.ErrorIs(t, set.Append(nil), errs.ErrLayoutMismatch)
	require.ErrorIs(t, set.Set(0, other.typ.New()), errs.ErrLayoutMismatch)

	_, err = set.At(1)
	require.ErrorIs(t, err, errs.ErrRecordIndexOutOfRange)
	_, err = set.At(-1)
	require.ErrorIs(t, err, errs.ErrRecordIndexOutOfRange)
	require.ErrorIs(t, set.Set(5, rec), errs.ErrRecordIndexOutOfRange)
}

func TestRecordSet_AllAndReset(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ)
	s.fill(t, set, 10)

	seen := 0
	for i, rec := range set.All() {
		require.Equal(t, uint16(i), s.id.MustGet(rec))
		require.NoError(t, s.spare.Set(rec, true))
		seen++
	}
	require.Equal(t, 10, seen)

	for i := range set.Len() {
		rec, _ := set.At(i)
		require.True(t, s.spare.MustGet(rec), "views write through")
	}

	seen = 0
	for range set.All() {
		seen++
		if seen == 3 {
			break
		}
	}
	require.Equal(t, 3, seen)

	set.Reset()
	require.Zero(t, set.Len())
}

func TestRecordSet_EncodeDecode(t *testing.T) {
	s := newSample(t, "Sample")

	for _, ct := range allCompressions {
		for _, n := range []int{0, 1, 3, 1000} {
			t.Run(ct.String()+"/"+strconv.Itoa(n), func(t *testing.T) {
				set, err := New(s.typ, WithCompression(ct))
				require.NoError(t, err)
				s.fill(t, set, n)

				blob, err := set.Encode()
				require.NoError(t, err)

				h, err := ParseHeader(blob)
				require.NoError(t, err)
				require.Equal(t, ct, h.Compression)
				require.Equal(t, uint32(5), h.RecordSize)
				require.Equal(t, uint32(n), h.RecordCount)
				require.Equal(t, uint32(n*5), h.PayloadLength)
				require.Equal(t, s.typ.Fingerprint(), h.Fingerprint)

				decoded, err := Decode(s.typ, blob)
				require.NoError(t, err)
				require.NotNil(t, decoded.Bytes())
				require.Equal(t, n, decoded.Len())
				require.Equal(t, ct, decoded.Compression())
				require.Equal(t, set.Bytes(), decoded.Bytes())

				for i := range n {
					s.requireRecord(t, decoded, i)
				}
			})
		}
	}
}

func TestRecordSet_EncodeCompresses(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ)
	for range 4096 {
		rec, _ := set.AppendNew()
		require.NoError(t, s.mode.Set(rec, modeOn))
		require.NoError(t, s.value.Set(rec, 0xABCDEF))
	}

	plain, err := set.Encode()
	require.NoError(t, err)
	require.Len(t, plain, HeaderSize+4096*5)

	zstd, err := set.Encode(WithCompression(format.CompressionZstd))
	require.NoError(t, err)
	require.Less(t, len(zstd), len(plain)/2)
	require.Equal(t, format.CompressionNone, set.Compression(), "Encode options apply to one call")
}

func TestRecordSet_ByteOrder(t *testing.T) {
	s := newSample(t, "Sample")
	set, err := New(s.typ, WithByteOrder(endian.GetBigEndianEngine()), WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.Equal(t, endian.GetBigEndianEngine(), set.ByteOrder())
	s.fill(t, set, 7)

	blob, err := set.Encode()
	require.NoError(t, err)

	h, err := ParseHeader(blob)
	require.NoError(t, err)
	require.True(t, h.BigEndian)
	require.Equal(t, []byte{0, 0, 0, 5}, blob[4:8])

	decoded, err := Decode(s.typ, blob)
	require.NoError(t, err)
	require.Equal(t, endian.GetBigEndianEngine(), decoded.ByteOrder())
	require.Equal(t, set.Bytes(), decoded.Bytes())
	s.requireRecord(t, decoded, 6)

	// Records are byte-order free: both snapshots carry the same payload.
	little, err := set.Encode(WithByteOrder(endian.GetLittleEndianEngine()))
	require.NoError(t, err)
	require.Equal(t, []byte{5, 0, 0, 0}, little[4:8])
	require.Equal(t, blob[HeaderSize:], little[HeaderSize:])
	require.Equal(t, endian.GetBigEndianEngine(), set.ByteOrder(), "Encode options apply to one call")

	native, err := set.Encode(WithNativeByteOrder())
	require.NoError(t, err)
	h, err = ParseHeader(native)
	require.NoError(t, err)
	require.Equal(t, endian.Native(), h.Engine())
}

func TestRecordSet_DecodeIsIndependentOfSnapshot(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ)
	s.fill(t, set, 4)

	blob, err := set.Encode()
	require.NoError(t, err)

	decoded, err := Decode(s.typ, blob)
	require.NoError(t, err)

	clear(blob)
	s.requireRecord(t, decoded, 3)
}

func TestDecode_Errors(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ)
	s.fill(t, set, 8)

	blob, err := set.Encode()
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(append([]byte(nil), blob...))
	}

	other := newSample(t, "Renamed")
	require.Equal(t, s.typ.Fingerprint(), other.typ.Fingerprint())

	wider := func() *record.Type {
		b := record.NewBuilder("Wider")
		record.Add(b, "id", specifier.U16(16))
		return b.MustBuild()
	}()

	tests := []struct {
		name string
		typ  *record.Type
		data []byte
		want error
	}{
		{"nil type", nil, blob, errs.ErrNilType},
		{"truncated header", s.typ, blob[:10], errs.ErrInvalidHeaderSize},
		{"other type", wider, blob, errs.ErrFingerprintMismatch},
		{"checksum", s.typ, mutate(func(b []byte) []byte { b[24] ^= 0xFF; return b }), errs.ErrChecksumMismatch},
		{"payload bit flip", s.typ, mutate(func(b []byte) []byte { b[HeaderSize+3] ^= 0x10; return b }), errs.ErrChecksumMismatch},
		{"truncated payload", s.typ, blob[:len(blob)-1], errs.ErrInvalidPayloadLength},
		{"trailing bytes", s.typ, mutate(func(b []byte) []byte { return append(b, 0) }), errs.ErrInvalidPayloadLength},
		{"record count", s.typ, mutate(func(b []byte) []byte { b[8]++; return b }), errs.ErrInvalidPayloadLength},
		{"record size", s.typ, mutate(func(b []byte) []byte { b[4]++; return b }), errs.ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.typ, tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// Same layout under another name decodes; only the layout is checked.
	decoded, err := Decode(other.typ, blob)
	require.NoError(t, err)
	require.Equal(t, 8, decoded.Len())
}

func TestDecode_CompressedCorruption(t *testing.T) {
	s := newSample(t, "Sample")

	for _, ct := range allCompressions[1:] {
		t.Run(ct.String(), func(t *testing.T) {
			set, _ := New(s.typ, WithCompression(ct))
			s.fill(t, set, 200)

			blob, err := set.Encode()
			require.NoError(t, err)

			_, err = Decode(s.typ, blob[:len(blob)-4])
			require.Error(t, err)

			tampered := append([]byte(nil), blob...)
			tampered[24] ^= 0x01
			_, err = Decode(s.typ, tampered)
			require.ErrorIs(t, err, errs.ErrChecksumMismatch)
		})
	}
}

func TestDecode_OversizedHeaderClaims(t *testing.T) {
	s := newSample(t, "Sample")

	for _, ct := range allCompressions {
		t.Run(ct.String(), func(t *testing.T) {
			h := Header{
				Compression:   ct,
				RecordSize:    5,
				RecordCount:   200_000_000,
				PayloadLength: 1_000_000_000,
				Fingerprint:   s.typ.Fingerprint(),
			}
			blob := append(h.Bytes(), 0x00)

			var (
				before, after runtime.MemStats
				err           error
			)
			runtime.GC()
			runtime.ReadMemStats(&before)
			_, err = Decode(s.typ, blob)
			runtime.ReadMemStats(&after)

			require.Error(t, err)
			if ct != format.CompressionZstd {
				require.ErrorIs(t, err, errs.ErrInvalidPayloadLength)
			}
			require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
		})
	}
}

func TestDecode_LogsFailures(t *testing.T) {
	s := newSample(t, "Sample")

	core, logs := observer.New(zap.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	_, err := Decode(s.typ, []byte{1, 2, 3})
	require.Error(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "record set snapshot rejected", entry.Message)
	require.Equal(t, "Sample", entry.ContextMap()["type"])
	require.Equal(t, string(errs.KindInvalidBlob), entry.ContextMap()["kind"])
}

func TestDecodeWith(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ, WithCompression(format.CompressionLZ4))
	s.fill(t, set, 20)

	blob, err := set.Encode()
	require.NoError(t, err)

	reg, err := registry.New()
	require.NoError(t, err)

	_, err = DecodeWith(reg, blob)
	require.ErrorIs(t, err, errs.ErrTypeNotFound)

	require.NoError(t, reg.Register(s.typ))

	decoded, err := DecodeWith(reg, blob)
	require.NoError(t, err)
	require.Same(t, s.typ, decoded.Type())
	require.Equal(t, 20, decoded.Len())
	s.requireRecord(t, decoded, 19)

	_, err = DecodeWith(reg, blob[:HeaderSize])
	require.ErrorIs(t, err, errs.ErrInvalidPayloadLength)

	_, err = DecodeWith(nil, blob)
	require.ErrorIs(t, err, errs.ErrTypeNotFound)
}

func TestRecordSet_Validate(t *testing.T) {
	s := newSample(t, "Sample")
	set, _ := New(s.typ)
	s.fill(t, set, 5)
	require.NoError(t, set.Validate())

	rec, err := set.At(3)
	require.NoError(t, err)
	require.NoError(t, rec.SetRaw("mode", 3))
	require.NoError(t, set.Set(3, rec))

	err = set.Validate()
	require.ErrorIs(t, err, errs.ErrDecode)

	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 3, ie.Index)
	require.Contains(t, err.Error(), "record 3: ")

	// Corrupt enum values survive a snapshot round trip and fail on access.
	blob, err := set.Encode()
	require.NoError(t, err)
	decoded, err := Decode(s.typ, blob)
	require.NoError(t, err)

	got, _ := decoded.At(3)
	_, err = s.mode.Get(got)
	require.ErrorIs(t, err, errs.ErrDecode)
}
