package registry

import (
	"strconv"
	"sync"
	"testing"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/record"
	"github.com/arloliu/mebit/specifier"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func buildType(t *testing.T, name string, widths ...int) *record.Type {
	t.Helper()

	b := record.NewBuilder(name)
	for i, w := range widths {
		name := string(rune('a' + i))
		switch {
		case w <= 8:
			record.Add(b, name, specifier.U8(w))
		case w <= 16:
			record.Add(b, name, specifier.U16(w))
		case w <= 32:
			record.Add(b, name, specifier.U32(w))
		default:
			record.Add(b, name, specifier.U64(w))
		}
	}

	typ, err := b.Build()
	require.NoError(t, err)

	return typ
}

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()

	r, err := New(opts...)
	require.NoError(t, err)

	return r
}

func TestRegistry_RegisterLookup(t *testing.T) {
	r := newRegistry(t)
	entry := buildType(t, "Entry", 40, 24)
	header := buildType(t, "Header", 16)

	require.NoError(t, r.Register(entry))
	require.NoError(t, r.Register(header))
	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"Entry", "Header"}, r.Names())

	got, ok := r.Lookup(entry.Fingerprint())
	require.True(t, ok)
	require.Same(t, entry, got)

	got, ok = r.LookupName("Header")
	require.True(t, ok)
	require.Same(t, header, got)

	_, ok = r.Lookup(0)
	require.False(t, ok)
	_, ok = r.LookupName("Missing")
	require.False(t, ok)
}

func TestRegistry_Errors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := newRegistry(t, WithLogger(zap.New(core)))

	require.ErrorIs(t, r.Register(nil), errs.ErrNilType)

	first := buildType(t, "Entry", 32)
	require.NoError(t, r.Register(first))

	err := r.Register(buildType(t, "Entry", 8))
	require.ErrorIs(t, err, errs.ErrDuplicateType)
	require.Equal(t, errs.KindInvalidDefinition, errs.KindOf(err))

	// Same field names and widths under another name share the fingerprint.
	err = r.Register(buildType(t, "Alias", 32))
	require.ErrorIs(t, err, errs.ErrFingerprintCollision)
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "Alias", logs.All()[0].ContextMap()["type"])
	require.Equal(t, "Entry", logs.All()[0].ContextMap()["registered"])

	require.Equal(t, 1, r.Len())

	_, err = New(WithLogger(nil))
	require.Error(t, err)
}

func TestRegistry_MustRegister(t *testing.T) {
	r := newRegistry(t)
	typ := buildType(t, "Entry", 8)

	require.NotPanics(t, func() { r.MustRegister(typ) })
	require.Panics(t, func() { r.MustRegister(typ) })
}

func TestRegistry_Reset(t *testing.T) {
	r := newRegistry(t)
	typ := buildType(t, "Entry", 8)
	r.MustRegister(typ)

	r.Reset()
	require.Zero(t, r.Len())
	require.Empty(t, r.Names())

	require.NoError(t, r.Register(typ))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := newRegistry(t)

	types := make([]*record.Type, 32)
	for i := range types {
		b := record.NewBuilder("T" + strconv.Itoa(i))
		record.Add(b, "f"+strconv.Itoa(i), specifier.U8(8))
		types[i] = b.MustBuild()
	}

	var wg sync.WaitGroup
	for _, typ := range types {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Register(typ)
			_, _ = r.Lookup(typ.Fingerprint())
			_ = r.Names()
		}()
	}
	wg.Wait()

	require.Equal(t, len(types), r.Len())
	for _, typ := range types {
		got, ok := r.Lookup(typ.Fingerprint())
		require.True(t, ok)
		require.Same(t, typ, got)
	}
}
