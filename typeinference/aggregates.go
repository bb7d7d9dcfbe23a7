package typeinference

// AggregateOp is one of the list operators available on list-typed
// expressions.
type AggregateOp int

const (
	AggFirst AggregateOp = iota
	AggFirstOrDefault
	AggLast
	AggLastOrDefault
	AggWhere
	AggAny
	AggAll
	AggContains
	AggCount
	AggMin
	AggMax
	AggSum
	AggAverage
	AggSelect
	AggOrderBy
	AggOrderByDescending
	AggExcept
)

var aggregateNames = [...]string{
	AggFirst:             "First",
	AggFirstOrDefault:    "FirstOrDefault",
	AggLast:              "Last",
	AggLastOrDefault:     "LastOrDefault",
	AggWhere:             "Where",
	AggAny:               "Any",
	AggAll:               "All",
	AggContains:          "Contains",
	AggCount:             "Count",
	AggMin:               "Min",
	AggMax:               "Max",
	AggSum:               "Sum",
	AggAverage:           "Average",
	AggSelect:            "Select",
	AggOrderBy:           "OrderBy",
	AggOrderByDescending: "OrderByDescending",
	AggExcept:            "Except",
}

var aggregatesByName = func() map[string]AggregateOp {
	m := make(map[string]AggregateOp, len(aggregateNames))
	for op, name := range aggregateNames {
		m[FoldName(name)] = AggregateOp(op)
	}

	return m
}()

// LookupAggregate finds a list operator by case-insensitive name.
func LookupAggregate(name string) (AggregateOp, bool) {
	op, ok := aggregatesByName[FoldName(name)]
	return op, ok
}

func (op AggregateOp) String() string {
	if op >= 0 && int(op) < len(aggregateNames) {
		return aggregateNames[op]
	}

	return "?"
}

// ElementScoped reports whether the operator's argument is evaluated per
// element with a fresh implicit element parameter. Contains and Except take
// an argument from the enclosing scope instead.
func (op AggregateOp) ElementScoped() bool {
	return op != AggContains && op != AggExcept
}

// SelectsElements reports whether the operator returns a subset or
// reordering of its source, so the result keeps the source element type.
func (op AggregateOp) SelectsElements() bool {
	switch op {
	case AggWhere, AggOrderBy, AggOrderByDescending, AggExcept:
		return true
	default:
		return false
	}
}

// ReturnsElement reports whether the operator returns a single source element.
func (op AggregateOp) ReturnsElement() bool {
	switch op {
	case AggFirst, AggFirstOrDefault, AggLast, AggLastOrDefault:
		return true
	default:
		return false
	}
}

// NeedsOrdering reports whether the operator compares its argument values.
func (op AggregateOp) NeedsOrdering() bool {
	switch op {
	case AggMin, AggMax, AggOrderBy, AggOrderByDescending:
		return true
	default:
		return false
	}
}

var (
	predicate = []Type{Bool}
	anyValue  = []Type{Object}
	numeric   = []Type{Int32, Int64, Float32, Float64, Decimal}
)

func aggregateSignature(op AggregateOp, params []Type, result Type) Signature {
	return Signature{Name: op.String(), Params: params, Result: result}
}

var aggregateSignatures = buildAggregateSignatures()

func buildAggregateSignatures() map[AggregateOp][]Signature {
	sigs := make(map[AggregateOp][]Signature)

	for _, op := range []AggregateOp{AggFirst, AggFirstOrDefault, AggLast, AggLastOrDefault, AggAny, AggCount} {
		sigs[op] = []Signature{
			aggregateSignature(op, nil, Invalid),
			aggregateSignature(op, predicate, Invalid),
		}
	}

	for _, op := range []AggregateOp{AggWhere, AggAll} {
		sigs[op] = []Signature{aggregateSignature(op, predicate, Invalid)}
	}

	for _, op := range []AggregateOp{AggMin, AggMax, AggSelect, AggOrderBy, AggOrderByDescending, AggContains, AggExcept} {
		sigs[op] = []Signature{aggregateSignature(op, anyValue, Invalid)}
	}

	for _, t := range numeric {
		sigs[AggSum] = append(sigs[AggSum], aggregateSignature(AggSum, []Type{t}, t))

		avg := t
		if t.Equal(Int32) || t.Equal(Int64) {
			avg = Float64
		}

		sigs[AggAverage] = append(sigs[AggAverage], aggregateSignature(AggAverage, []Type{t}, avg))
	}

	for _, op := range []AggregateOp{AggSum, AggAverage} {
		for _, s := range sigs[op] {
			sigs[op] = append(sigs[op], aggregateSignature(op, []Type{NullableOf(s.Params[0])}, NullableOf(s.Result)))
		}
	}

	return sigs
}

// AggregateSignatures returns the candidate forms of a list operator. Each
// parameter is the type of the per-element argument; results are filled in
// by AggregateResultType.
func AggregateSignatures(op AggregateOp) []Signature {
	return aggregateSignatures[op]
}

// AggregateResultType returns the static result of applying op to a list of
// elem, given the resolved match and the argument type (Invalid when the
// operator was called without an argument).
func AggregateResultType(op AggregateOp, elem Type, m Match, arg Type) Type {
	switch {
	case op.SelectsElements():
		return ListOf(elem)
	case op.ReturnsElement():
		return elem
	}

	switch op {
	case AggAny, AggAll, AggContains:
		return Bool
	case AggCount:
		return Int32
	case AggMin, AggMax:
		return arg
	case AggSelect:
		return ListOf(arg)
	default:
		return m.Signature.Result
	}
}
