package typeinference

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shibukawa/modelexpr/model"
	"github.com/shopspring/decimal"
)

// implicitNumeric lists the implicit numeric promotions per source kind.
// Every promotion goes from a narrower to a wider domain, so the relation is
// a strict partial order.
var implicitNumeric = map[model.Kind][]model.Kind{
	model.KindInt8:    {model.KindInt16, model.KindInt32, model.KindInt64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindUint8:   {model.KindInt16, model.KindUint16, model.KindInt32, model.KindUint32, model.KindInt64, model.KindUint64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindInt16:   {model.KindInt32, model.KindInt64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindUint16:  {model.KindInt32, model.KindUint32, model.KindInt64, model.KindUint64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindInt32:   {model.KindInt64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindUint32:  {model.KindInt64, model.KindUint64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindInt64:   {model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindUint64:  {model.KindFloat32, model.KindFloat64, model.KindDecimal},
	model.KindFloat32: {model.KindFloat64},
	model.KindChar:    {model.KindUint16, model.KindInt32, model.KindUint32, model.KindInt64, model.KindUint64, model.KindFloat32, model.KindFloat64, model.KindDecimal},
}

func isImplicitNumeric(from, to model.Kind) bool {
	for _, k := range implicitNumeric[from] {
		if k == to {
			return true
		}
	}

	return false
}

// IsCompatibleWith reports whether a value of type from converts implicitly
// to type to, without unwrapping nullable values.
func IsCompatibleWith(from, to Type) bool {
	return convertible(from, to, false)
}

func convertible(from, to Type, allowUnwrap bool) bool {
	if from.Equal(to) || to.IsObject() {
		return true
	}

	if from.IsNull() {
		return to.CanBeNull()
	}

	switch {
	case to.IsList():
		if !from.IsList() {
			return false
		}

		fe, te := from.ElemType(), to.ElemType()
		if te.IsObject() {
			return true
		}

		if fe.IsModel() && te.IsModel() {
			return fe.Model.IsSubtypeOf(te.Model)
		}

		return fe.Equal(te)

	case to.IsModel():
		return from.IsModel() && from.Model.IsSubtypeOf(to.Model)

	case to.IsValue():
		if !from.IsValue() {
			return false
		}

		if from.Nullable && !to.Nullable && !allowUnwrap {
			return false
		}

		fu, tu := from.Underlying(), to.Underlying()

		switch {
		case fu.Kind == model.KindEnum:
			return fu.Equal(tu) || tu.Kind == model.KindString
		case tu.Kind == model.KindEnum:
			return false
		case fu.Kind == tu.Kind:
			return true
		default:
			return isImplicitNumeric(fu.Kind, tu.Kind)
		}
	}

	return false
}

// NeedsUnwrap reports whether converting from to to requires unwrapping a
// nullable value.
func NeedsUnwrap(from, to Type) bool {
	return from.IsNullableValue() && to.IsValue() && !to.Nullable
}

// CanConvertArgument reports whether arg converts implicitly to the parameter
// type. Literal arguments additionally convert when their constant value
// fits: integer literals to narrower integral kinds, real literals to
// decimal, and string literals to a member of an enumeration.
func CanConvertArgument(arg Argument, to Type, allowUnwrap bool) bool {
	if convertible(arg.Type, to, allowUnwrap) {
		return true
	}

	if !arg.Literal {
		return false
	}

	return literalConvertible(arg.Value, to)
}

func literalConvertible(value any, to Type) bool {
	tu := to.Underlying()
	if !tu.IsValue() {
		return false
	}

	switch v := value.(type) {
	case string:
		if tu.Kind != model.KindEnum || tu.Enum == nil {
			return false
		}

		_, ok := tu.Enum.MemberFold(v)

		return ok
	case int32, uint32, int64, uint64:
		return tu.Kind.IsIntegral() && integerFits(v, tu.Kind)
	case float64:
		return tu.Kind == model.KindDecimal
	}

	return false
}

var integerRanges = map[model.Kind][2]float64{
	model.KindInt8:   {math.MinInt8, math.MaxInt8},
	model.KindUint8:  {0, math.MaxUint8},
	model.KindInt16:  {math.MinInt16, math.MaxInt16},
	model.KindUint16: {0, math.MaxUint16},
	model.KindInt32:  {math.MinInt32, math.MaxInt32},
	model.KindUint32: {0, math.MaxUint32},
}

func integerFits(v any, kind model.Kind) bool {
	switch kind {
	case model.KindInt64:
		if u, ok := v.(uint64); ok {
			return u <= math.MaxInt64
		}

		return true
	case model.KindUint64:
		if _, ok := v.(uint64); ok {
			return true
		}

		i, ok := toInt64(v)

		return ok && i >= 0
	}

	r, ok := integerRanges[kind]
	if !ok {
		return false
	}

	f, _ := toFloat64(v)

	return f >= r[0] && f <= r[1]
}

// CompareConversions compares converting arg to p1 against converting it to
// p2. It returns 1 when p1 is the better target, -1 when p2 is, and 0 when
// neither is better.
func CompareConversions(arg Argument, p1, p2 Type) int {
	switch {
	case p1.Equal(p2):
		return 0
	case arg.Type.Equal(p1):
		return 1
	case arg.Type.Equal(p2):
		return -1
	}

	c12 := IsCompatibleWith(p1, p2)
	c21 := IsCompatibleWith(p2, p1)

	switch {
	case c12 && !c21:
		return 1
	case c21 && !c12:
		return -1
	}

	n1, n2 := p1.IsNullableValue(), p2.IsNullableValue()

	switch {
	case !n1 && n2:
		return 1
	case n1 && !n2:
		return -1
	}

	s1, s2 := isSignedIntegral(p1), isSignedIntegral(p2)
	u1, u2 := isUnsignedIntegral(p1), isUnsignedIntegral(p2)

	switch {
	case s1 && u2:
		return 1
	case s2 && u1:
		return -1
	}

	return 0
}

func isSignedIntegral(t Type) bool {
	return t.IsValue() && t.Kind.IsIntegral() && !t.Kind.IsUnsigned()
}

func isUnsignedIntegral(t Type) bool {
	return t.IsValue() && t.Kind.IsUnsigned()
}

// ConvertValue converts a runtime value to the representation of type to.
// Numeric conversions truncate like an explicit cast; nil stays nil.
func ConvertValue(v any, to Type) (any, error) {
	if v == nil || !to.IsValue() {
		return v, nil
	}

	tu := to.Underlying()

	switch tu.Kind {
	case model.KindEnum:
		switch ev := v.(type) {
		case model.EnumValue:
			return ev, nil
		case string:
			if tu.Enum != nil {
				if member, ok := tu.Enum.MemberFold(ev); ok {
					return member, nil
				}
			}
		default:
			if id, ok := toInt64(v); ok && tu.Enum != nil {
				if member, ok := tu.Enum.ByValue(id); ok {
					return member, nil
				}
			}
		}

	case model.KindString:
		switch sv := v.(type) {
		case string:
			return sv, nil
		case model.EnumValue:
			return sv.Name(), nil
		case fmt.Stringer:
			return sv.String(), nil
		}

	case model.KindChar:
		if i, ok := toInt64(v); ok {
			return model.Char(rune(i)), nil
		}

	case model.KindBool, model.KindDateTime, model.KindDuration, model.KindGuid:
		if model.KindOf(v) == tu.Kind {
			return v, nil
		}

	default:
		if tu.Kind.IsNumeric() {
			if converted, ok := convertNumeric(v, tu.Kind); ok {
				return converted, nil
			}
		}
	}

	return nil, fmt.Errorf("cannot convert %v (%T) to %s", v, v, to)
}

func convertNumeric(v any, kind model.Kind) (any, bool) {
	switch kind {
	case model.KindFloat32:
		f, ok := toFloat64(v)
		return float32(f), ok
	case model.KindFloat64:
		f, ok := toFloat64(v)
		return f, ok
	case model.KindDecimal:
		return toDecimal(v)
	case model.KindUint64:
		if u, ok := v.(uint64); ok {
			return u, true
		}
	}

	i, ok := toInt64(v)
	if !ok {
		return nil, false
	}

	switch kind {
	case model.KindInt8:
		return int8(i), true
	case model.KindUint8:
		return uint8(i), true
	case model.KindInt16:
		return int16(i), true
	case model.KindUint16:
		return uint16(i), true
	case model.KindInt32:
		return int32(i), true
	case model.KindUint32:
		return uint32(i), true
	case model.KindInt64:
		return i, true
	case model.KindUint64:
		return uint64(i), true
	}

	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case uint8:
		return int64(n), true
	case int16:
		return int64(n), true
	case uint16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case model.Char:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case decimal.Decimal:
		return n.IntPart(), true
	}

	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}

	i, ok := toInt64(v)

	return float64(i), ok
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), true
	}

	i, ok := toInt64(v)

	return decimal.NewFromInt(i), ok
}
