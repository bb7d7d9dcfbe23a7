package parser

import (
	"github.com/shibukawa/modelexpr/typeinference"
)

// promote converts n to type to when an implicit conversion exists.
// Unnamed literals are folded into a literal of the target type; other
// nodes are wrapped in a Convert.
func promote(n Node, to typeinference.Type, allowUnwrap bool) (Node, bool) {
	from := n.ResultType()
	if from.Equal(to) {
		return n, true
	}

	if !typeinference.CanConvertArgument(argumentOf(n), to, allowUnwrap) {
		return nil, false
	}

	if lit, ok := n.(*Literal); ok && lit.Name == "" && to.IsValue() {
		if v, err := typeinference.ConvertValue(lit.Value, to); err == nil {
			return &Literal{baseNode: baseNode{pos: lit.pos, result: to}, Value: v}, true
		}
	}

	return &Convert{baseNode: baseNode{pos: n.Position(), result: to}, Operand: n}, true
}

func argumentOf(n Node) typeinference.Argument {
	arg := typeinference.Argument{Type: n.ResultType()}

	if lit, ok := n.(*Literal); ok && lit.Name == "" {
		arg.Literal = true
		arg.Value = lit.Value
	}

	return arg
}

func arguments(nodes []Node) []typeinference.Argument {
	args := make([]typeinference.Argument, len(nodes))
	for i, n := range nodes {
		args[i] = argumentOf(n)
	}

	return args
}

// commonType returns the type both a and b convert to, used for the
// branches of a conditional and the items of an array literal.
func commonType(a, b Node) (typeinference.Type, bool) {
	at, bt := a.ResultType(), b.ResultType()
	if at.Equal(bt) {
		return at, true
	}

	ab := typeinference.CanConvertArgument(argumentOf(a), bt, false)
	ba := typeinference.CanConvertArgument(argumentOf(b), at, false)

	switch {
	case ab && !ba:
		return bt, true
	case ba && !ab:
		return at, true
	case ab && ba:
		switch {
		case typeinference.IsCompatibleWith(at, bt) && !typeinference.IsCompatibleWith(bt, at):
			return bt, true
		case typeinference.IsCompatibleWith(bt, at) && !typeinference.IsCompatibleWith(at, bt):
			return at, true
		}

		return typeinference.Invalid, false
	}

	switch {
	case at.IsNull() && bt.IsValue():
		return typeinference.NullableOf(bt), true
	case bt.IsNull() && at.IsValue():
		return typeinference.NullableOf(at), true
	case at.IsValue() && bt.IsValue():
		if nb := typeinference.NullableOf(bt); typeinference.CanConvertArgument(argumentOf(a), nb, false) {
			return nb, true
		}

		if na := typeinference.NullableOf(at); typeinference.CanConvertArgument(argumentOf(b), na, false) {
			return na, true
		}
	case at.IsModel() && bt.IsModel():
		for base := at.Model.Base(); base != nil; base = base.Base() {
			if bt.Model.IsSubtypeOf(base) {
				return typeinference.ModelOf(base), true
			}
		}
	}

	return typeinference.Invalid, false
}
