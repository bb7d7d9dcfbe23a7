package typeinference

import (
	"github.com/shibukawa/modelexpr/model"
)

// Operator identifies a unary or binary operator.
type Operator int

const (
	OpOr Operator = iota
	OpAnd
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpConcat
	OpNegate
	OpNot
)

var operatorSymbols = [...]string{
	OpOr:           "||",
	OpAnd:          "&&",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpModulo:       "%",
	OpConcat:       "&",
	OpNegate:       "-",
	OpNot:          "!",
}

// String returns the native dialect symbol of the operator.
func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}

	return "?"
}

// IsComparison reports whether the operator is an equality or relational
// operator, which always yields bool.
func (o Operator) IsComparison() bool {
	return o >= OpEqual && o <= OpGreaterEqual
}

// IsEquality reports whether the operator is == or !=.
func (o Operator) IsEquality() bool {
	return o == OpEqual || o == OpNotEqual
}

var (
	arithmeticKinds = []model.Kind{
		model.KindInt32, model.KindUint32, model.KindInt64, model.KindUint64,
		model.KindFloat32, model.KindFloat64, model.KindDecimal,
	}
	relationalKinds = append(append([]model.Kind(nil), arithmeticKinds...),
		model.KindString, model.KindChar, model.KindDateTime, model.KindDuration)
	equalityKinds = append(append([]model.Kind(nil), relationalKinds...),
		model.KindBool, model.KindGuid)
	negationKinds = []model.Kind{
		model.KindInt32, model.KindInt64, model.KindFloat32, model.KindFloat64,
		model.KindDecimal, model.KindDuration,
	}
)

func binary(op Operator, left, right, result Type) Signature {
	return Signature{Name: op.String(), Params: []Type{left, right}, Result: result}
}

func uniform(op Operator, kinds []model.Kind, comparison bool) []Signature {
	sigs := make([]Signature, 0, len(kinds))

	for _, k := range kinds {
		t := Primitive(k)
		result := t

		if comparison {
			result = Bool
		}

		sigs = append(sigs, binary(op, t, t, result))
	}

	return sigs
}

// lifted appends the nullable form of every signature whose parameters are
// not already nullable. Comparisons keep their bool result; other results
// become nullable.
func lifted(sigs []Signature, comparison bool) []Signature {
	result := append([]Signature(nil), sigs...)

	for _, s := range sigs {
		params := make([]Type, len(s.Params))
		changed := false

		for i, p := range s.Params {
			params[i] = NullableOf(p)
			changed = changed || !params[i].Equal(p)
		}

		if !changed {
			continue
		}

		r := Bool
		if !comparison {
			r = NullableOf(s.Result)
		}

		result = append(result, Signature{Name: s.Name, Params: params, Result: r})
	}

	return result
}

var operatorSignatures = buildOperatorSignatures()

func buildOperatorSignatures() map[Operator][]Signature {
	sigs := make(map[Operator][]Signature)

	for _, op := range []Operator{OpAnd, OpOr} {
		sigs[op] = lifted([]Signature{binary(op, Bool, Bool, Bool)}, false)
	}

	sigs[OpEqual] = lifted(uniform(OpEqual, equalityKinds, true), true)
	sigs[OpNotEqual] = lifted(uniform(OpNotEqual, equalityKinds, true), true)

	for _, op := range []Operator{OpLess, OpLessEqual, OpGreater, OpGreaterEqual} {
		sigs[op] = lifted(uniform(op, relationalKinds, true), true)
	}

	for _, op := range []Operator{OpMultiply, OpDivide, OpModulo} {
		sigs[op] = lifted(uniform(op, arithmeticKinds, false), false)
	}

	add := uniform(OpAdd, arithmeticKinds, false)
	add = append(add,
		binary(OpAdd, DateTime, Duration, DateTime),
		binary(OpAdd, Duration, Duration, Duration),
	)
	sigs[OpAdd] = lifted(add, false)

	sub := uniform(OpSubtract, arithmeticKinds, false)
	sub = append(sub,
		binary(OpSubtract, DateTime, DateTime, Duration),
		binary(OpSubtract, DateTime, Duration, DateTime),
		binary(OpSubtract, Duration, Duration, Duration),
	)
	sigs[OpSubtract] = lifted(sub, false)

	var neg []Signature
	for _, k := range negationKinds {
		t := Primitive(k)
		neg = append(neg, Signature{Name: OpNegate.String(), Params: []Type{t}, Result: t})
	}

	sigs[OpNegate] = lifted(neg, false)
	sigs[OpNot] = lifted([]Signature{{Name: OpNot.String(), Params: []Type{Bool}, Result: Bool}}, false)

	return sigs
}

// OperatorSignatures returns the built-in candidate set of an operator.
func OperatorSignatures(op Operator) []Signature {
	return operatorSignatures[op]
}
