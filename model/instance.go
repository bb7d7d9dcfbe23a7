package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Instance is a runtime object paired with its model type.
type Instance interface {
	Type() *Type
	Get(p *Property) any
	Set(p *Property, v any) error
}

// FieldReader is implemented by instances that expose their backing fields by
// slot. Compiled expressions read fielded properties through it directly.
type FieldReader interface {
	Field(slot int) any
}

// List is the runtime value of a list-valued reference property or of a list
// operator over one. Type is the static element type, which may be a base of
// the items' dynamic types.
type List struct {
	Type  *Type
	Items []Instance
}

// NewList creates a tagged list.
func NewList(t *Type, items ...Instance) List {
	return List{Type: t, Items: items}
}

// Len returns the number of items.
func (l List) Len() int {
	return len(l.Items)
}

func (l List) String() string {
	return fmt.Sprintf("List<%v>[%d]", l.Type, len(l.Items))
}

// Object is the reference Instance implementation: a fixed slot array laid
// out by the type's sealed metadata. Object performs no locking; callers
// coordinate concurrent mutation.
type Object struct {
	id     uuid.UUID
	key    string
	typ    *Type
	fields []any
}

// NewObject creates an instance of t with zero-valued fields.
func NewObject(t *Type) *Object {
	return NewObjectWithKey(t, "")
}

// NewObjectWithKey creates an instance of t identified by key in data documents.
func NewObjectWithKey(t *Type, key string) *Object {
	o := &Object{
		id:     uuid.New(),
		key:    key,
		typ:    t,
		fields: make([]any, t.SlotCount()),
	}

	for _, p := range t.Properties() {
		if p.HasField() {
			o.fields[p.Slot] = zeroValue(p)
		}
	}

	return o
}

func zeroValue(p *Property) any {
	switch {
	case p.IsReference() && p.List:
		return List{Type: p.RefType}
	case p.IsReference(), p.List, p.Nullable:
		return nil
	case p.Kind == KindEnum && p.Enum != nil && len(p.Enum.Members) > 0:
		return EnumValue{Enum: p.Enum}
	default:
		return p.Kind.Zero()
	}
}

// ID returns the unique identity of the instance.
func (o *Object) ID() uuid.UUID {
	return o.id
}

// Key returns the data document key, if any.
func (o *Object) Key() string {
	return o.key
}

// Type returns the instance type.
func (o *Object) Type() *Type {
	return o.typ
}

// Field returns the backing field at slot.
func (o *Object) Field(slot int) any {
	return o.fields[slot]
}

// Get returns the value of p, which must be declared on the instance type or
// one of its bases. Unknown properties read as nil.
func (o *Object) Get(p *Property) any {
	switch {
	case p.Static:
		return p.StaticValue
	case p.Compute != nil:
		return p.Compute(o)
	case !o.typ.IsSubtypeOf(p.DeclaringType):
		return nil
	default:
		return o.fields[p.Slot]
	}
}

// Set assigns p and notifies the property's observers.
func (o *Object) Set(p *Property, v any) error {
	if p.ReadOnly || p.Static || p.Compute != nil {
		return fmt.Errorf("%w: %s", ErrReadOnlyProperty, p)
	}

	if err := o.init(p, v); err != nil {
		return err
	}

	p.Observers().Notify(o, p)

	return nil
}

// init assigns p without the read-only check and without notification.
func (o *Object) init(p *Property, v any) error {
	if !p.HasField() || !o.typ.IsSubtypeOf(p.DeclaringType) {
		return fmt.Errorf("%w: %s on %s", ErrPropertyNotOnType, p, o.typ)
	}

	v, err := CheckValue(p, v)
	if err != nil {
		return err
	}

	o.fields[p.Slot] = v

	return nil
}

func (o *Object) String() string {
	if o.key != "" {
		return fmt.Sprintf("%s(%s)", o.typ.Name(), o.key)
	}

	return fmt.Sprintf("%s(%s)", o.typ.Name(), o.id)
}

// CheckValue validates v against p and returns the value to store. A nil
// list is normalized to an empty list.
func CheckValue(p *Property, v any) (any, error) {
	mismatch := func() (any, error) {
		return nil, fmt.Errorf("%w: %s expects %s, got %T", ErrValueTypeMismatch, p, p.TypeName(), v)
	}

	switch {
	case p.IsReference() && p.List:
		switch list := v.(type) {
		case nil:
			return List{Type: p.RefType}, nil
		case List:
			for _, item := range list.Items {
				if item == nil || !item.Type().IsSubtypeOf(p.RefType) {
					return mismatch()
				}
			}

			return List{Type: p.RefType, Items: list.Items}, nil
		case []Instance:
			return CheckValue(p, List{Type: p.RefType, Items: list})
		default:
			return mismatch()
		}

	case p.IsReference():
		if v == nil {
			return nil, nil
		}

		inst, ok := v.(Instance)
		if !ok || !inst.Type().IsSubtypeOf(p.RefType) {
			return mismatch()
		}

		return inst, nil

	case p.List:
		if v == nil {
			return nil, nil
		}

		items, ok := v.([]any)
		if !ok {
			return mismatch()
		}

		for _, item := range items {
			if !acceptsValue(p, item) {
				return mismatch()
			}
		}

		return items, nil

	case v == nil:
		if !p.Nullable {
			return mismatch()
		}

		return nil, nil

	default:
		if !acceptsValue(p, v) {
			return mismatch()
		}

		return v, nil
	}
}

func acceptsValue(p *Property, v any) bool {
	if p.Kind == KindEnum {
		ev, ok := v.(EnumValue)
		return ok && ev.Enum == p.Enum
	}

	return p.Kind.Accepts(v)
}
