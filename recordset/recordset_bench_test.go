package recordset

import (
	"testing"
)

func BenchmarkRecordSet_Encode(b *testing.B) {
	s := newSample(b, "Sample")

	for _, ct := range allCompressions {
		set, _ := New(s.typ, WithCompression(ct))
		s.fill(b, set, 10000)

		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(set.Bytes())))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = set.Encode()
			}
		})
	}
}

func BenchmarkRecordSet_Decode(b *testing.B) {
	s := newSample(b, "Sample")

	for _, ct := range allCompressions {
		set, _ := New(s.typ, WithCompression(ct))
		s.fill(b, set, 10000)
		blob, _ := set.Encode()

		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(set.Bytes())))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = Decode(s.typ, blob)
			}
		})
	}
}
