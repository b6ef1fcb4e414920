package record

import (
	"fmt"
	"strconv"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/internal/logging"
	"github.com/arloliu/mebit/internal/options"
	"github.com/arloliu/mebit/layout"
	"github.com/arloliu/mebit/specifier"
	"go.uber.org/zap"
)

type builderConfig struct {
	logger *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*builderConfig]

// WithLogger sets the logger used while building. By default the package
// logger from mebit.SetLogger is used.
func WithLogger(l *zap.Logger) BuilderOption {
	return options.New(func(c *builderConfig) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = l

		return nil
	})
}

type binder interface {
	bind(t *Type, f layout.Field)
}

// Builder declares the fields of a record type.
//
// A Builder is not safe for concurrent use. It records the first error it
// encounters and reports it from Build.
type Builder struct {
	name    string
	specs   []layout.FieldSpec
	binders []binder
	cfg     builderConfig
	err     error
	built   bool
}

// NewBuilder starts the definition of a record type called name.
func NewBuilder(name string, opts ...BuilderOption) *Builder {
	b := &Builder{name: name}

	if err := options.Apply(&b.cfg, opts...); err != nil {
		b.err = err
	}
	if b.cfg.logger == nil {
		b.cfg.logger = logging.Logger()
	}

	return b
}

// Add declares the next field of b and returns its accessor.
//
// The accessor becomes usable once b.Build succeeds. Adding to a builder that
// has already been built records errs.ErrTypeAlreadyBuilt.
func Add[T any](b *Builder, name string, spec specifier.Specifier[T]) *Field[T] {
	f := &Field[T]{name: name, spec: spec}

	if b.built {
		b.setErr(errs.New(errs.ErrTypeAlreadyBuilt, b.name, "cannot add field "+name))
		return f
	}

	var desc specifier.Descriptor
	if spec != nil {
		desc = spec
	}

	b.specs = append(b.specs, layout.FieldSpec{Name: name, Spec: desc})
	b.binders = append(b.binders, f)

	return f
}

// AddBits is like Add but also declares the field width. Build fails with
// errs.ErrInvalidWidth when spec is not exactly n bits wide, which pins the
// width of enum fields whose bit count follows from their variant count.
func AddBits[T any](b *Builder, name string, n int, spec specifier.Specifier[T]) *Field[T] {
	f := Add(b, name, spec)

	if spec != nil && !b.built && spec.Bits() != n {
		b.setErr(errs.New(errs.ErrInvalidWidth, name,
			"declared "+strconv.Itoa(n)+" bits, specifier has "+strconv.Itoa(spec.Bits())))
	}

	return f
}

// Build computes the layout, binds every accessor returned by Add and returns
// the record type. A builder can be built once.
func (b *Builder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.built {
		return nil, errs.New(errs.ErrTypeAlreadyBuilt, b.name, "")
	}

	if b.name == "" {
		return nil, errs.New(errs.ErrInvalidTypeName, "", "empty name")
	}

	l, err := layout.New(b.specs...)
	if err != nil {
		b.cfg.logger.Debug("record type rejected",
			zap.String("type", b.name),
			zap.Error(err))

		return nil, fmt.Errorf("record type %s: %w", b.name, err)
	}

	t := &Type{name: b.name, layout: l}
	for i, bd := range b.binders {
		f, _ := l.FieldAt(i)
		bd.bind(t, f)
	}
	b.built = true

	b.cfg.logger.Debug("record type built",
		zap.String("type", b.name),
		zap.Int("fields", l.NumFields()),
		zap.Int("bits", l.TotalBits()),
		zap.Int("bytes", l.TotalBytes()),
		zap.Uint64("fingerprint", l.Fingerprint()))

	return t, nil
}

// MustBuild is like Build but panics on error. It is meant for package-level
// type definitions.
func (b *Builder) MustBuild() *Type {
	t, err := b.Build()
	if err != nil {
		panic("record: " + err.Error())
	}

	return t
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
