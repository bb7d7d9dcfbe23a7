package compiler

import (
	"fmt"
	"math"
	"time"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/typeinference"
	"github.com/shopspring/decimal"
)

func relational(op typeinference.Operator, c int) bool {
	switch op {
	case typeinference.OpLess:
		return c < 0
	case typeinference.OpLessEqual:
		return c <= 0
	case typeinference.OpGreater:
		return c > 0
	default:
		return c >= 0
	}
}

// arithmetic applies a binary arithmetic operator to two non-null operands
// already converted to the operator's parameter types. Integer arithmetic
// wraps on overflow.
func arithmetic(op typeinference.Operator, l, r any) (any, error) {
	switch lv := l.(type) {
	case int32:
		if rv, ok := r.(int32); ok {
			return integral(op, lv, rv)
		}
	case uint32:
		if rv, ok := r.(uint32); ok {
			return integral(op, lv, rv)
		}
	case int64:
		if rv, ok := r.(int64); ok {
			return integral(op, lv, rv)
		}
	case uint64:
		if rv, ok := r.(uint64); ok {
			return integral(op, lv, rv)
		}
	case float32:
		if rv, ok := r.(float32); ok {
			v, err := floating(op, float64(lv), float64(rv))
			return float32(v), err
		}
	case float64:
		if rv, ok := r.(float64); ok {
			return floating(op, lv, rv)
		}
	case decimal.Decimal:
		if rv, ok := r.(decimal.Decimal); ok {
			return decimalArithmetic(op, lv, rv)
		}
	case time.Time:
		switch rv := r.(type) {
		case time.Duration:
			if op == typeinference.OpAdd {
				return lv.Add(rv), nil
			}

			if op == typeinference.OpSubtract {
				return lv.Add(-rv), nil
			}
		case time.Time:
			if op == typeinference.OpSubtract {
				return lv.Sub(rv), nil
			}
		}
	case time.Duration:
		if rv, ok := r.(time.Duration); ok {
			if op == typeinference.OpAdd {
				return lv + rv, nil
			}

			if op == typeinference.OpSubtract {
				return lv - rv, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: operator %s cannot be applied to %T and %T", modelexpr.ErrEvaluation, op, l, r)
}

func integral[T int32 | uint32 | int64 | uint64](op typeinference.Operator, a, b T) (any, error) {
	switch op {
	case typeinference.OpAdd:
		return a + b, nil
	case typeinference.OpSubtract:
		return a - b, nil
	case typeinference.OpMultiply:
		return a * b, nil
	case typeinference.OpDivide, typeinference.OpModulo:
		if b == 0 {
			return nil, ErrDivideByZero
		}

		if op == typeinference.OpDivide {
			return a / b, nil
		}

		return a % b, nil
	}

	return nil, fmt.Errorf("%w: operator %s on %T", modelexpr.ErrEvaluation, op, a)
}

// floating follows IEEE semantics: division by zero yields an infinity or NaN.
func floating(op typeinference.Operator, a, b float64) (float64, error) {
	switch op {
	case typeinference.OpAdd:
		return a + b, nil
	case typeinference.OpSubtract:
		return a - b, nil
	case typeinference.OpMultiply:
		return a * b, nil
	case typeinference.OpDivide:
		return a / b, nil
	case typeinference.OpModulo:
		return math.Mod(a, b), nil
	}

	return 0, fmt.Errorf("%w: operator %s on floating point", modelexpr.ErrEvaluation, op)
}

func decimalArithmetic(op typeinference.Operator, a, b decimal.Decimal) (any, error) {
	switch op {
	case typeinference.OpAdd:
		return a.Add(b), nil
	case typeinference.OpSubtract:
		return a.Sub(b), nil
	case typeinference.OpMultiply:
		return a.Mul(b), nil
	case typeinference.OpDivide, typeinference.OpModulo:
		if b.IsZero() {
			return nil, ErrDivideByZero
		}

		if op == typeinference.OpDivide {
			return a.Div(b), nil
		}

		return a.Mod(b), nil
	}

	return nil, fmt.Errorf("%w: operator %s on decimal", modelexpr.ErrEvaluation, op)
}

func negate(v any) (any, error) {
	switch n := v.(type) {
	case int32:
		return -n, nil
	case int64:
		return -n, nil
	case float32:
		return -n, nil
	case float64:
		return -n, nil
	case decimal.Decimal:
		return n.Neg(), nil
	case time.Duration:
		return -n, nil
	}

	return nil, fmt.Errorf("%w: cannot negate %T", modelexpr.ErrEvaluation, v)
}

// itemsOf returns the elements of a list value as a slice of values.
func itemsOf(v any) []any {
	switch l := v.(type) {
	case model.List:
		items := make([]any, len(l.Items))
		for i, item := range l.Items {
			items[i] = item
		}

		return items
	case []any:
		return l
	}

	return nil
}

// newList builds the runtime value of a list of elem. Lists of model
// references keep their element type tag.
func newList(elem typeinference.Type, values []any) any {
	if !elem.IsModel() {
		return values
	}

	items := make([]model.Instance, len(values))

	for i, v := range values {
		items[i], _ = v.(model.Instance)
	}

	return model.NewList(elem.Model, items...)
}
