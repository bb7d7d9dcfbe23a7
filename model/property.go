package model

import "fmt"

// Property describes a declared property. A property with a non-nil RefType is
// a reference property; otherwise it is a value property of Kind.
type Property struct {
	Name          string
	DeclaringType *Type

	Static   bool
	List     bool
	ReadOnly bool

	// RefType is the target type of a reference property.
	RefType *Type

	// Kind, Nullable and Enum describe a value property.
	Kind     Kind
	Nullable bool
	Enum     *EnumType

	// Compute makes the property computed: it has no backing field and is
	// evaluated on every read.
	Compute func(Instance) any
	// StaticValue is the value of a static property.
	StaticValue any

	// Slot is the backing field index, or -1 when the property has none.
	Slot int

	observers ObserverRegistry
}

// IsReference reports whether the property navigates to model instances.
func (p *Property) IsReference() bool {
	return p.RefType != nil
}

// HasField reports whether the property is backed by an instance field.
func (p *Property) HasField() bool {
	return p.Slot >= 0
}

// Observers returns the property's observer registry.
func (p *Property) Observers() *ObserverRegistry {
	return &p.observers
}

// TypeName describes the property type the way schema documents spell it.
func (p *Property) TypeName() string {
	var name string

	switch {
	case p.RefType != nil:
		name = p.RefType.Name()
	case p.Enum != nil:
		name = p.Enum.Name
	default:
		name = p.Kind.String()
	}

	if p.List {
		return name + "*"
	}

	if p.Nullable || p.RefType != nil {
		return name + "?"
	}

	return name
}

func (p *Property) String() string {
	if p.DeclaringType == nil {
		return p.Name
	}

	return fmt.Sprintf("%s.%s", p.DeclaringType.Name(), p.Name)
}
