package model

import "fmt"

// Type is a model type: a name, an optional base type and the properties it
// declares. Types are created through a Registry and are immutable once the
// registry is sealed.
type Type struct {
	name     string
	base     *Type
	registry *Registry
	subtypes []*Type
	declared []*Property

	// populated by Registry.Seal
	all   []*Property
	byKey map[string]*Property
	slots int
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

// Base returns the base type, or nil for a root type.
func (t *Type) Base() *Type {
	return t.base
}

// Registry returns the registry the type belongs to.
func (t *Type) Registry() *Registry {
	return t.registry
}

// Subtypes returns the direct subtypes in definition order.
func (t *Type) Subtypes() []*Type {
	return t.subtypes
}

// DescendantsInclusive returns t followed by all of its descendants in
// depth-first definition order.
func (t *Type) DescendantsInclusive() []*Type {
	result := []*Type{t}
	for _, sub := range t.subtypes {
		result = append(result, sub.DescendantsInclusive()...)
	}

	return result
}

// IsSubtypeOf reports whether t is other or derives from it.
func (t *Type) IsSubtypeOf(other *Type) bool {
	for cur := t; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}

	return false
}

// Property returns a declared or inherited property by exact name.
func (t *Type) Property(name string) (*Property, bool) {
	p, ok := t.byKey[name]
	return p, ok
}

// Properties returns the declared and inherited properties, base type first.
func (t *Type) Properties() []*Property {
	return t.all
}

// DeclaredProperties returns the properties declared by t itself.
func (t *Type) DeclaredProperties() []*Property {
	return t.declared
}

// SlotCount is the number of backing fields an instance of t needs.
func (t *Type) SlotCount() int {
	return t.slots
}

func (t *Type) add(p *Property) *Property {
	p.DeclaringType = t
	p.Slot = -1

	r := t.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		r.fail(fmt.Errorf("%w: cannot add %s.%s", ErrRegistrySealed, t.name, p.Name))
		return p
	}

	for cur := t; cur != nil; cur = cur.base {
		for _, existing := range cur.declared {
			if existing.Name == p.Name {
				r.fail(fmt.Errorf("%w: %s.%s already declared by %s", ErrDuplicateProperty, t.name, p.Name, cur.name))
				return p
			}
		}
	}

	t.declared = append(t.declared, p)

	return p
}

// AddProperty declares a fully described property. DeclaringType and Slot are
// assigned by the type.
func (t *Type) AddProperty(p *Property) *Property {
	return t.add(p)
}

// AddValue declares a non-nullable value property.
func (t *Type) AddValue(name string, kind Kind) *Property {
	return t.add(&Property{Name: name, Kind: kind})
}

// AddNullable declares a nullable value property.
func (t *Type) AddNullable(name string, kind Kind) *Property {
	return t.add(&Property{Name: name, Kind: kind, Nullable: true})
}

// AddEnum declares an enumeration-valued property.
func (t *Type) AddEnum(name string, enum *EnumType) *Property {
	return t.add(&Property{Name: name, Kind: KindEnum, Enum: enum})
}

// AddValueList declares a property holding a list of primitive values.
func (t *Type) AddValueList(name string, kind Kind) *Property {
	return t.add(&Property{Name: name, Kind: kind, List: true})
}

// AddReference declares a single-valued reference property. References are
// always nullable.
func (t *Type) AddReference(name string, target *Type) *Property {
	return t.add(&Property{Name: name, Kind: KindObject, RefType: target})
}

// AddList declares a list-valued reference property.
func (t *Type) AddList(name string, target *Type) *Property {
	return t.add(&Property{Name: name, Kind: KindObject, RefType: target, List: true})
}

// AddComputed declares a read-only value property whose value is computed
// from the instance on every read.
func (t *Type) AddComputed(name string, kind Kind, compute func(Instance) any) *Property {
	return t.add(&Property{Name: name, Kind: kind, Nullable: true, ReadOnly: true, Compute: compute})
}

// AddStatic declares a static value property shared by every instance.
func (t *Type) AddStatic(name string, kind Kind, value any) *Property {
	return t.add(&Property{Name: name, Kind: kind, Static: true, ReadOnly: true, StaticValue: value})
}
