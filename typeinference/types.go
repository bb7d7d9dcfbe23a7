package typeinference

import (
	"fmt"

	"github.com/shibukawa/modelexpr/model"
)

// Type is the static type of an expression node: a primitive kind
// (optionally nullable), an enumeration, a model reference, a list, a
// projection record, object, or the type of the null literal.
type Type struct {
	Kind     model.Kind
	Nullable bool
	Enum     *model.EnumType
	Model    *model.Type
	Record   *RecordType
	Elem     *Type
	null     bool
}

// Frequently used types
var (
	Invalid  = Type{}
	Null     = Type{null: true}
	Object   = Type{Kind: model.KindObject}
	Bool     = Primitive(model.KindBool)
	Int32    = Primitive(model.KindInt32)
	Uint32   = Primitive(model.KindUint32)
	Int64    = Primitive(model.KindInt64)
	Uint64   = Primitive(model.KindUint64)
	Float32  = Primitive(model.KindFloat32)
	Float64  = Primitive(model.KindFloat64)
	Decimal  = Primitive(model.KindDecimal)
	Char     = Primitive(model.KindChar)
	String   = Primitive(model.KindString)
	DateTime = Primitive(model.KindDateTime)
	Duration = Primitive(model.KindDuration)
	Guid     = Primitive(model.KindGuid)
)

// Primitive returns the non-nullable type of kind.
func Primitive(kind model.Kind) Type {
	return Type{Kind: kind}
}

// NullableOf returns the nullable form of a value type. Types that can
// already hold null are returned unchanged.
func NullableOf(t Type) Type {
	if t.CanBeNull() {
		return t
	}

	t.Nullable = true

	return t
}

// EnumOf returns the type of an enumeration.
func EnumOf(e *model.EnumType) Type {
	return Type{Kind: model.KindEnum, Enum: e}
}

// ModelOf returns a reference to a model type.
func ModelOf(t *model.Type) Type {
	return Type{Kind: model.KindObject, Model: t}
}

// ListOf returns a list of elem.
func ListOf(elem Type) Type {
	return Type{Kind: model.KindObject, Elem: &elem}
}

// RecordOf returns the type of a projection record.
func RecordOf(r *RecordType) Type {
	return Type{Kind: model.KindObject, Record: r}
}

// PropertyType returns the static type of reading p.
func PropertyType(p *model.Property) Type {
	var t Type

	switch {
	case p.IsReference():
		t = ModelOf(p.RefType)
	case p.Enum != nil:
		t = EnumOf(p.Enum)
	default:
		t = Primitive(p.Kind)
	}

	if p.List {
		return ListOf(t)
	}

	if p.Nullable {
		return NullableOf(t)
	}

	return t
}

// IsValid reports whether t denotes a type.
func (t Type) IsValid() bool {
	return t.null || t.Kind != model.KindInvalid
}

// IsNull reports whether t is the type of the null literal.
func (t Type) IsNull() bool {
	return t.null
}

// IsList reports whether t is a list.
func (t Type) IsList() bool {
	return t.Elem != nil
}

// IsModel reports whether t is a single model reference.
func (t Type) IsModel() bool {
	return t.Model != nil
}

// IsModelList reports whether t is a list of model references.
func (t Type) IsModelList() bool {
	return t.Elem != nil && t.Elem.Model != nil
}

// IsRecord reports whether t is a projection record.
func (t Type) IsRecord() bool {
	return t.Record != nil
}

// IsObject reports whether t is the untyped object type.
func (t Type) IsObject() bool {
	return t.Kind == model.KindObject && t.Model == nil && t.Elem == nil && t.Record == nil
}

// IsValue reports whether t is a primitive or enumeration value type.
func (t Type) IsValue() bool {
	return !t.null && t.Kind != model.KindInvalid && t.Kind != model.KindObject
}

// IsNullableValue reports whether t is a nullable value type.
func (t Type) IsNullableValue() bool {
	return t.IsValue() && t.Nullable
}

// CanBeNull reports whether null is a valid value of t.
func (t Type) CanBeNull() bool {
	return t.null || t.Nullable || t.Kind == model.KindObject || t.Kind == model.KindString
}

// Underlying strips the nullable marker of a value type.
func (t Type) Underlying() Type {
	t.Nullable = false
	return t
}

// ElemType returns the element type of a list, or Invalid.
func (t Type) ElemType() Type {
	if t.Elem == nil {
		return Invalid
	}

	return *t.Elem
}

// IsNumeric reports whether t is a (possibly nullable) numeric type.
func (t Type) IsNumeric() bool {
	return t.IsValue() && t.Kind.IsNumeric()
}

// IsBool reports whether t is bool or bool?.
func (t Type) IsBool() bool {
	return t.IsValue() && t.Kind == model.KindBool
}

// IsEnum reports whether t is a (possibly nullable) enumeration.
func (t Type) IsEnum() bool {
	return t.IsValue() && t.Kind == model.KindEnum
}

// IsString reports whether t is string.
func (t Type) IsString() bool {
	return t.IsValue() && t.Kind == model.KindString
}

// Equal reports structural type identity.
func (t Type) Equal(other Type) bool {
	if t.null != other.null || t.Kind != other.Kind || t.Nullable != other.Nullable ||
		t.Enum != other.Enum || t.Model != other.Model || t.Record != other.Record {
		return false
	}

	if (t.Elem == nil) != (other.Elem == nil) {
		return false
	}

	return t.Elem == nil || t.Elem.Equal(*other.Elem)
}

func (t Type) String() string {
	var name string

	switch {
	case t.null:
		return "null"
	case t.Kind == model.KindInvalid:
		return "invalid"
	case t.Elem != nil:
		return fmt.Sprintf("List<%s>", t.Elem)
	case t.Model != nil:
		return t.Model.Name()
	case t.Record != nil:
		return t.Record.String()
	case t.Enum != nil:
		name = t.Enum.Name
	default:
		name = t.Kind.String()
	}

	if t.Nullable {
		return name + "?"
	}

	return name
}
