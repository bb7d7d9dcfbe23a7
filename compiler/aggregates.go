package compiler

import (
	"fmt"
	"slices"

	"github.com/shibukawa/modelexpr"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/parser"
	"github.com/shibukawa/modelexpr/typeinference"
)

// aggregate carries the compiled parts of a list operator. each evaluates
// the argument with the element parameter bound to item.
type aggregate struct {
	node   *parser.Aggregate
	source evalFunc
	arg    evalFunc
	slot   int
}

func (a *aggregate) each(f *frame, item any) (any, error) {
	f.slots[a.slot] = item
	return a.arg(f)
}

func (a *aggregate) test(f *frame, item any) (bool, error) {
	if a.arg == nil {
		return true, nil
	}

	v, err := a.each(f, item)

	return truthy(v), err
}

func compileAggregate(n *parser.Aggregate) (evalFunc, error) {
	source, err := compileNode(n.Source)
	if err != nil {
		return nil, err
	}

	a := &aggregate{node: n, source: source, slot: -1}

	if n.Arg != nil {
		if a.arg, err = compileNode(n.Arg); err != nil {
			return nil, err
		}
	}

	if n.Element != nil {
		a.slot = n.Element.Slot
	}

	apply, ok := aggregateFuncs[n.Op]
	if !ok {
		return nil, fmt.Errorf("%w: list operator %s", ErrUnknownNodeType, n.Op)
	}

	return func(f *frame) (any, error) {
		src, err := source(f)
		if err != nil || src == nil {
			return nil, err
		}

		return apply(a, f, itemsOf(src))
	}, nil
}

type aggregateFunc func(a *aggregate, f *frame, items []any) (any, error)

var aggregateFuncs = map[typeinference.AggregateOp]aggregateFunc{
	typeinference.AggFirst:             pickFirst(false, true),
	typeinference.AggFirstOrDefault:    pickFirst(false, false),
	typeinference.AggLast:              pickFirst(true, true),
	typeinference.AggLastOrDefault:     pickFirst(true, false),
	typeinference.AggWhere:             where,
	typeinference.AggAny:               anyMatch,
	typeinference.AggAll:               allMatch,
	typeinference.AggContains:          contains,
	typeinference.AggCount:             count,
	typeinference.AggMin:               extreme(-1),
	typeinference.AggMax:               extreme(1),
	typeinference.AggSum:               sum,
	typeinference.AggAverage:           average,
	typeinference.AggSelect:            project,
	typeinference.AggOrderBy:           orderBy(false),
	typeinference.AggOrderByDescending: orderBy(true),
	typeinference.AggExcept:            except,
}

func (a *aggregate) resultList(values []any) any {
	return newList(a.node.ResultType().ElemType(), values)
}

// pickFirst returns the first (or last) element satisfying the predicate.
// Without a match the strict forms fail and the default forms yield the
// zero value of the element type.
func pickFirst(last, strict bool) aggregateFunc {
	return func(a *aggregate, f *frame, items []any) (any, error) {
		for i := range items {
			item := items[i]
			if last {
				item = items[len(items)-1-i]
			}

			ok, err := a.test(f, item)
			if err != nil {
				return nil, err
			}

			if ok {
				return item, nil
			}
		}

		if strict {
			return nil, fmt.Errorf("%w: %w", modelexpr.ErrEvaluation, ErrEmptySequence)
		}

		return defaultOf(a.node.ResultType()), nil
	}
}

func defaultOf(t typeinference.Type) any {
	if !t.IsValue() || t.Nullable {
		return nil
	}

	if t.IsEnum() {
		if len(t.Enum.Members) == 0 {
			return nil
		}

		return model.EnumValue{Enum: t.Enum}
	}

	return t.Kind.Zero()
}

func where(a *aggregate, f *frame, items []any) (any, error) {
	var result []any

	for _, item := range items {
		ok, err := a.test(f, item)
		if err != nil {
			return nil, err
		}

		if ok {
			result = append(result, item)
		}
	}

	return a.resultList(result), nil
}

func anyMatch(a *aggregate, f *frame, items []any) (any, error) {
	for _, item := range items {
		ok, err := a.test(f, item)
		if err != nil || ok {
			return ok, err
		}
	}

	return false, nil
}

func allMatch(a *aggregate, f *frame, items []any) (any, error) {
	for _, item := range items {
		ok, err := a.test(f, item)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func contains(a *aggregate, f *frame, items []any) (any, error) {
	want, err := a.arg(f)
	if err != nil {
		return nil, err
	}

	return slices.ContainsFunc(items, func(item any) bool {
		return typeinference.ValuesEqual(item, want)
	}), nil
}

func count(a *aggregate, f *frame, items []any) (any, error) {
	if a.arg == nil {
		return int32(len(items)), nil
	}

	var n int32

	for _, item := range items {
		ok, err := a.test(f, item)
		if err != nil {
			return nil, err
		}

		if ok {
			n++
		}
	}

	return n, nil
}

// selected evaluates the argument for every element, skipping nulls.
func (a *aggregate) selected(f *frame, items []any) ([]any, error) {
	values := make([]any, 0, len(items))

	for _, item := range items {
		v, err := a.each(f, item)
		if err != nil {
			return nil, err
		}

		if v != nil {
			values = append(values, v)
		}
	}

	return values, nil
}

// extreme returns the smallest (sign -1) or largest (sign 1) selected
// value. An empty list yields null.
func extreme(sign int) aggregateFunc {
	return func(a *aggregate, f *frame, items []any) (any, error) {
		values, err := a.selected(f, items)
		if err != nil || len(values) == 0 {
			return nil, err
		}

		best := values[0]

		for _, v := range values[1:] {
			c, err := typeinference.CompareValues(v, best)
			if err != nil {
				return nil, err
			}

			if c*sign > 0 {
				best = v
			}
		}

		return best, nil
	}
}

func sum(a *aggregate, f *frame, items []any) (any, error) {
	values, err := a.selected(f, items)
	if err != nil {
		return nil, err
	}

	kind := a.node.Signature.Result.Underlying()
	total := kind.Kind.Zero()

	for _, v := range values {
		if total, err = arithmetic(typeinference.OpAdd, total, v); err != nil {
			return nil, err
		}
	}

	return total, nil
}

// average divides in the result type: double for integral arguments.
// An empty list fails unless the result is nullable.
func average(a *aggregate, f *frame, items []any) (any, error) {
	values, err := a.selected(f, items)
	if err != nil {
		return nil, err
	}

	result := a.node.Signature.Result

	if len(values) == 0 {
		if result.Nullable {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %w", modelexpr.ErrEvaluation, ErrEmptySequence)
	}

	kind := result.Underlying()
	total := kind.Kind.Zero()

	for _, v := range values {
		converted, err := typeinference.ConvertValue(v, kind)
		if err != nil {
			return nil, err
		}

		if total, err = arithmetic(typeinference.OpAdd, total, converted); err != nil {
			return nil, err
		}
	}

	n, err := typeinference.ConvertValue(int32(len(values)), kind)
	if err != nil {
		return nil, err
	}

	return arithmetic(typeinference.OpDivide, total, n)
}

func project(a *aggregate, f *frame, items []any) (any, error) {
	values := make([]any, len(items))

	for i, item := range items {
		v, err := a.each(f, item)
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return a.resultList(values), nil
}

// orderBy sorts stably by the selected key; null keys sort first.
func orderBy(descending bool) aggregateFunc {
	return func(a *aggregate, f *frame, items []any) (any, error) {
		keys := make([]any, len(items))

		for i, item := range items {
			k, err := a.each(f, item)
			if err != nil {
				return nil, err
			}

			keys[i] = k
		}

		order := make([]int, len(items))
		for i := range order {
			order[i] = i
		}

		var sortErr error

		slices.SortStableFunc(order, func(i, j int) int {
			c, err := compareKeys(keys[i], keys[j])
			if err != nil && sortErr == nil {
				sortErr = err
			}

			if descending {
				return -c
			}

			return c
		})

		if sortErr != nil {
			return nil, sortErr
		}

		sorted := make([]any, len(items))
		for i, idx := range order {
			sorted[i] = items[idx]
		}

		return a.resultList(sorted), nil
	}
}

func compareKeys(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}

	return typeinference.CompareValues(a, b)
}

// except returns the distinct elements of the source that are not in the
// argument list.
func except(a *aggregate, f *frame, items []any) (any, error) {
	other, err := a.arg(f)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64][]any)

	mark := func(v any) bool {
		h := typeinference.HashValue(v)
		if slices.ContainsFunc(seen[h], func(s any) bool { return typeinference.ValuesEqual(s, v) }) {
			return false
		}

		seen[h] = append(seen[h], v)

		return true
	}

	for _, v := range itemsOf(other) {
		mark(v)
	}

	var result []any

	for _, item := range items {
		if mark(item) {
			result = append(result, item)
		}
	}

	return a.resultList(result), nil
}
