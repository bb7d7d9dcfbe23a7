package model

import (
	"errors"
	"fmt"
	"sync"
)

// Registry owns a set of model types and enumerations. Types are defined,
// then the registry is sealed; after Seal the metadata is read-only and safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*Type
	order  []*Type
	enums  map[string]*EnumType
	sealed bool
	errs   []error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Type),
		enums: make(map[string]*EnumType),
	}
}

// fail records a definition error. Callers hold r.mu.
func (r *Registry) fail(err error) {
	r.errs = append(r.errs, err)
}

// Define creates a type deriving from base (nil for a root type). Definition
// errors are reported by Seal.
func (r *Registry) Define(name string, base *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Type{name: name, base: base, registry: r}

	switch {
	case r.sealed:
		r.fail(fmt.Errorf("%w: cannot define %s", ErrRegistrySealed, name))
		return t
	case r.types[name] != nil:
		r.fail(fmt.Errorf("%w: %s", ErrDuplicateType, name))
		return t
	case base != nil && base.registry != r:
		r.fail(fmt.Errorf("%w: base %s of %s belongs to another registry", ErrUnknownType, base.name, name))
		return t
	}

	if base != nil {
		base.subtypes = append(base.subtypes, t)
	}

	r.types[name] = t
	r.order = append(r.order, t)

	return t
}

// DefineEnum creates an enumeration.
func (r *Registry) DefineEnum(name string, members ...EnumMember) *EnumType {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &EnumType{Name: name, Members: members}

	if r.sealed {
		r.fail(fmt.Errorf("%w: cannot define enum %s", ErrRegistrySealed, name))
		return e
	}

	if r.enums[name] != nil || r.types[name] != nil {
		r.fail(fmt.Errorf("%w: %s", ErrDuplicateType, name))
		return e
	}

	r.enums[name] = e

	return e
}

// TypeByName looks up a model type.
func (r *Registry) TypeByName(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]

	return t, ok
}

// MustType looks up a model type and panics when it does not exist.
func (r *Registry) MustType(name string) *Type {
	t, ok := r.TypeByName(name)
	if !ok {
		panic(fmt.Sprintf("model: unknown type %q", name))
	}

	return t
}

// EnumByName looks up an enumeration.
func (r *Registry) EnumByName(name string) (*EnumType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.enums[name]

	return e, ok
}

// Types returns all types in definition order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*Type(nil), r.order...)
}

// Sealed reports whether Seal succeeded.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sealed
}

// Seal validates the definitions, resolves inherited properties and assigns
// backing field slots. Base properties keep their slot in every subtype.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil
	}

	for _, t := range r.order {
		if t.base == nil {
			r.layout(t)
		}
	}

	if len(r.errs) > 0 {
		return errors.Join(r.errs...)
	}

	r.sealed = true

	return nil
}

func (r *Registry) layout(t *Type) {
	t.all = nil
	t.byKey = make(map[string]*Property)
	t.slots = 0

	if t.base != nil {
		t.all = append(t.all, t.base.all...)
		t.slots = t.base.slots

		for _, p := range t.base.all {
			t.byKey[p.Name] = p
		}
	}

	for _, p := range t.declared {
		if existing, ok := t.byKey[p.Name]; ok && existing != p {
			r.fail(fmt.Errorf("%w: %s.%s hides %s", ErrDuplicateProperty, t.name, p.Name, existing))
			continue
		}

		if !p.Static && p.Compute == nil {
			p.Slot = t.slots
			t.slots++
		}

		t.all = append(t.all, p)
		t.byKey[p.Name] = p
	}

	for _, sub := range t.subtypes {
		r.layout(sub)
	}
}
