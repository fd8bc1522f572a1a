package schema

import (
	"fmt"
	"reflect"
	"sort"

	"eserial/internal/errs"
)

// Registry maps type ids to descriptors.
//
// A Registry is filled once at process start and only read afterwards.
// It performs no locking: any number of goroutines may call Lookup
// concurrently, but Register must not run concurrently with anything else.
type Registry struct {
	types map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Descriptor, 16)}
}

// DefaultRegistry is the process-wide registry used by the package level
// functions here and in eserial.
var DefaultRegistry = NewRegistry()

// Register declares a type. Registering a type id again replaces the
// previous descriptor.
func (r *Registry) Register(typeID string, version uint32, newFn func() Object, fields ...Field) (*Descriptor, error) {
	if typeID == "" {
		return nil, fmt.Errorf("%w: empty type id", errs.ErrInvalidDescriptor)
	}
	if newFn == nil {
		return nil, fmt.Errorf("%w: %s has no constructor", errs.ErrInvalidDescriptor, typeID)
	}
	// references are tracked by identity, so instances must be pointers
	if v := newFn(); v == nil {
		return nil, fmt.Errorf("%w: %s constructor returned nil", errs.ErrInvalidDescriptor, typeID)
	} else if rv := reflect.ValueOf(v); rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("%w: %s constructor returned %T, want a non-nil pointer", errs.ErrInvalidDescriptor, typeID, v)
	}
	d := &Descriptor{
		TypeID:  typeID,
		Version: version,
		New:     newFn,
		Fields:  make([]Field, 0, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s has an unnamed field", errs.ErrInvalidDescriptor, typeID)
		}
		if _, ok := seen[f.Name]; ok {
			return nil, fmt.Errorf("%w: %s.%s declared twice", errs.ErrInvalidDescriptor, typeID, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Transient {
			continue
		}
		if !f.Kind.valid() {
			return nil, fmt.Errorf("%w: %s.%s has kind %s", errs.ErrInvalidDescriptor, typeID, f.Name, f.Kind)
		}
		if f.Get == nil || f.Set == nil {
			return nil, fmt.Errorf("%w: %s.%s needs both accessors", errs.ErrInvalidDescriptor, typeID, f.Name)
		}
		d.index[f.Name] = len(d.Fields)
		d.Fields = append(d.Fields, f)
	}
	r.types[typeID] = d
	return d, nil
}

// MustRegister is Register for init-time declarations.
func (r *Registry) MustRegister(typeID string, version uint32, newFn func() Object, fields ...Field) *Descriptor {
	d, err := r.Register(typeID, version, newFn, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

func (r *Registry) Lookup(typeID string) (*Descriptor, bool) {
	d, ok := r.types[typeID]
	return d, ok
}

// Types returns the registered type ids in sorted order.
func (r *Registry) Types() []string {
	res := make([]string, 0, len(r.types))
	for id := range r.types {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

func Register(typeID string, version uint32, newFn func() Object, fields ...Field) (*Descriptor, error) {
	return DefaultRegistry.Register(typeID, version, newFn, fields...)
}

func MustRegister(typeID string, version uint32, newFn func() Object, fields ...Field) *Descriptor {
	return DefaultRegistry.MustRegister(typeID, version, newFn, fields...)
}

func Lookup(typeID string) (*Descriptor, bool) {
	return DefaultRegistry.Lookup(typeID)
}
