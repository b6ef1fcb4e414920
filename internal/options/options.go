// Package options implements generic functional options.
//
// A package exposes its options as Option[*config] values built with New or
// NoError and applies them with Apply:
//
//	type BuilderOption = options.Option[*builderConfig]
//
//	func WithLogger(l *zap.Logger) BuilderOption {
//	    return options.NoError(func(c *builderConfig) { c.logger = l })
//	}
package options

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

type optionFunc[T any] func(T) error

func (f optionFunc[T]) apply(target T) error {
	return f(target)
}

// New returns an option that may fail.
func New[T any](fn func(T) error) Option[T] {
	return optionFunc[T](fn)
}

// NoError returns an option that cannot fail.
func NoError[T any](fn func(T)) Option[T] {
	return optionFunc[T](func(target T) error {
		fn(target)
		return nil
	})
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
