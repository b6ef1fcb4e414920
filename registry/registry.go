// Package registry maps layout fingerprints to record types, so that a record
// set snapshot can be decoded without knowing its type up front.
package registry

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/arloliu/mebit/errs"
	"github.com/arloliu/mebit/internal/logging"
	"github.com/arloliu/mebit/internal/options"
	"github.com/arloliu/mebit/record"
	"go.uber.org/zap"
)

// Registry tracks record types by fingerprint and by name.
//
// Two types with different names must not share a fingerprint: a snapshot
// only stores the fingerprint, and the name is what tells the types apart.
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byHash map[uint64]*record.Type
	byName map[string]*record.Type
	names  []string // registration order
	logger *zap.Logger
}

// Option configures a Registry.
type Option = options.Option[*Registry]

// WithLogger sets the logger used to report fingerprint collisions.
// The package logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return options.New(func(r *Registry) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = l

		return nil
	})
}

// New returns an empty registry.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		byHash: make(map[uint64]*record.Type),
		byName: make(map[string]*record.Type),
		logger: logging.Logger(),
	}

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Register adds typ.
//
// Returns:
//   - error: errs.ErrNilType for a nil type, errs.ErrDuplicateType when the
//     name is taken, errs.ErrFingerprintCollision when another type already
//     owns the fingerprint
func (r *Registry) Register(typ *record.Type) error {
	if typ == nil {
		return errs.ErrNilType
	}

	name := typ.Name()
	fp := typ.Fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return errs.New(errs.ErrDuplicateType, name, "")
	}

	if owner, exists := r.byHash[fp]; exists {
		r.logger.Warn("record type fingerprint collision",
			zap.String("type", name),
			zap.String("registered", owner.Name()),
			zap.Uint64("fingerprint", fp),
		)

		return errs.New(errs.ErrFingerprintCollision, name,
			"fingerprint "+strconv.FormatUint(fp, 16)+" owned by "+owner.Name())
	}

	r.byHash[fp] = typ
	r.byName[name] = typ
	r.names = append(r.names, name)

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typ *record.Type) {
	if err := r.Register(typ); err != nil {
		panic("registry: " + err.Error())
	}
}

// Lookup returns the type with fingerprint fp.
func (r *Registry) Lookup(fp uint64) (*record.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.byHash[fp]

	return typ, ok
}

// LookupName returns the type called name.
func (r *Registry) LookupName(name string) (*record.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.byName[name]

	return typ, ok
}

// Names returns the registered type names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}

// Reset removes every type.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.byHash)
	clear(r.byName)
	r.names = r.names[:0]
}
