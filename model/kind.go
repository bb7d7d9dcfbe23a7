package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the runtime kind of a value property.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindChar
	KindString
	KindDateTime
	KindDuration
	KindGuid
	KindEnum
	KindObject
)

// Char is the runtime representation of a char value. It is distinct from
// int32 so formatting and overload resolution can tell the two apart.
type Char rune

// String returns the character itself.
func (c Char) String() string {
	return string(rune(c))
}

var kindNames = map[Kind]string{
	KindBool:     "bool",
	KindInt8:     "sbyte",
	KindUint8:    "byte",
	KindInt16:    "short",
	KindUint16:   "ushort",
	KindInt32:    "int",
	KindUint32:   "uint",
	KindInt64:    "long",
	KindUint64:   "ulong",
	KindFloat32:  "float",
	KindFloat64:  "double",
	KindDecimal:  "decimal",
	KindChar:     "char",
	KindString:   "string",
	KindDateTime: "DateTime",
	KindDuration: "TimeSpan",
	KindGuid:     "Guid",
	KindEnum:     "enum",
	KindObject:   "object",
}

// String returns the string representation of Kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "invalid"
}

// schemaKinds maps the type names accepted in schema documents. Lookup is
// case-insensitive.
var schemaKinds = map[string]Kind{
	"bool":     KindBool,
	"boolean":  KindBool,
	"sbyte":    KindInt8,
	"int8":     KindInt8,
	"byte":     KindUint8,
	"uint8":    KindUint8,
	"short":    KindInt16,
	"int16":    KindInt16,
	"ushort":   KindUint16,
	"uint16":   KindUint16,
	"int":      KindInt32,
	"int32":    KindInt32,
	"uint":     KindUint32,
	"uint32":   KindUint32,
	"long":     KindInt64,
	"int64":    KindInt64,
	"ulong":    KindUint64,
	"uint64":   KindUint64,
	"float":    KindFloat32,
	"single":   KindFloat32,
	"float32":  KindFloat32,
	"double":   KindFloat64,
	"float64":  KindFloat64,
	"decimal":  KindDecimal,
	"char":     KindChar,
	"string":   KindString,
	"datetime": KindDateTime,
	"timespan": KindDuration,
	"duration": KindDuration,
	"guid":     KindGuid,
	"uuid":     KindGuid,
	"object":   KindObject,
}

// KindByName looks up a primitive kind by schema type name.
func KindByName(name string) (Kind, bool) {
	k, ok := schemaKinds[strings.ToLower(name)]
	return k, ok
}

// IsNumeric reports whether values of the kind take part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k >= KindInt8 && k <= KindDecimal
}

// IsIntegral reports whether the kind is an integer kind.
func (k Kind) IsIntegral() bool {
	return k >= KindInt8 && k <= KindUint64
}

// IsUnsigned reports whether the kind is an unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// Zero returns the zero value of the kind. Enum and object kinds have no
// zero value independent of their type and return nil.
func (k Kind) Zero() any {
	switch k {
	case KindBool:
		return false
	case KindInt8:
		return int8(0)
	case KindUint8:
		return uint8(0)
	case KindInt16:
		return int16(0)
	case KindUint16:
		return uint16(0)
	case KindInt32:
		return int32(0)
	case KindUint32:
		return uint32(0)
	case KindInt64:
		return int64(0)
	case KindUint64:
		return uint64(0)
	case KindFloat32:
		return float32(0)
	case KindFloat64:
		return float64(0)
	case KindDecimal:
		return decimal.Zero
	case KindChar:
		return Char(0)
	case KindString:
		return ""
	case KindDateTime:
		return time.Time{}
	case KindDuration:
		return time.Duration(0)
	case KindGuid:
		return uuid.Nil
	default:
		return nil
	}
}

// KindOf returns the kind of a runtime value, or KindInvalid when v is not a
// primitive value.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case uint16:
		return KindUint16
	case int32:
		return KindInt32
	case uint32:
		return KindUint32
	case int64:
		return KindInt64
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case decimal.Decimal:
		return KindDecimal
	case Char:
		return KindChar
	case string:
		return KindString
	case time.Time:
		return KindDateTime
	case time.Duration:
		return KindDuration
	case uuid.UUID:
		return KindGuid
	case EnumValue:
		return KindEnum
	default:
		return KindInvalid
	}
}

// Accepts reports whether v is a valid non-null runtime value for the kind.
func (k Kind) Accepts(v any) bool {
	if k == KindObject {
		return true
	}

	return KindOf(v) == k
}
