package typeinference

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func sig(name string, result Type, params ...Type) Signature {
	return Signature{Name: name, Params: params, Result: result}
}

func args(types ...Type) []Argument {
	result := make([]Argument, len(types))
	for i, t := range types {
		result[i] = Argument{Type: t}
	}

	return result
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Signature
		args       []Argument
		outcome    Outcome
		want       string
	}{
		{
			name:       "exact match",
			candidates: []Signature{sig("f", Int32, Int32), sig("f", Int64, Int64)},
			args:       args(Int32),
			outcome:    Resolved,
			want:       "f(int) : int",
		},
		{
			name:       "narrowest widening wins",
			candidates: []Signature{sig("f", Float64, Float64), sig("f", Int64, Int64)},
			args:       args(Int32),
			outcome:    Resolved,
			want:       "f(long) : long",
		},
		{
			name:       "arity filters candidates",
			candidates: []Signature{sig("f", Int32, Int32), sig("f", Int32, Int32, Int32)},
			args:       args(Int32, Int32),
			outcome:    Resolved,
			want:       "f(int, int) : int",
		},
		{
			name:       "none applicable",
			candidates: []Signature{sig("f", Int32, Int32)},
			args:       args(String),
			outcome:    NoneApplicable,
		},
		{
			name:       "ambiguous crossing",
			candidates: []Signature{sig("f", Int32, Int64, Int32), sig("f", Int32, Int32, Int64)},
			args:       args(Int32, Int32),
			outcome:    Ambiguous,
		},
		{
			name:       "unrelated targets are ambiguous",
			candidates: []Signature{sig("f", Float64, Float64), sig("f", Decimal, Decimal)},
			args:       args(Int32),
			outcome:    Ambiguous,
		},
		{
			name:       "nullable argument prefers lifted form",
			candidates: []Signature{sig("f", Int32, Int32), sig("f", NullableOf(Int32), NullableOf(Int32))},
			args:       args(NullableOf(Int32)),
			outcome:    Resolved,
			want:       "f(int?) : int?",
		},
		{
			name:       "null argument prefers reference",
			candidates: []Signature{sig("f", Bool, String), sig("f", Bool, NullableOf(Int32))},
			args:       args(Null),
			outcome:    Resolved,
			want:       "f(string) : bool",
		},
		{
			name:       "no candidates",
			candidates: nil,
			args:       args(Int32),
			outcome:    NoneApplicable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, outcome := Resolve(tt.candidates, tt.args)
			assert.Equal(t, tt.outcome, outcome)

			if tt.outcome == Resolved {
				assert.Equal(t, tt.want, m.Signature.String())
			}
		})
	}
}

func TestResolve_NullableUnwrap(t *testing.T) {
	candidates := []Signature{sig("Abs", Int32, Int32), sig("Abs", Float64, Float64)}

	m, outcome := Resolve(candidates, args(NullableOf(Int32)))
	assert.Equal(t, Resolved, outcome)
	assert.True(t, m.Unwrapped)
	assert.Equal(t, "Abs(int) : int", m.Signature.String())

	m, outcome = Resolve(candidates, args(Int32))
	assert.Equal(t, Resolved, outcome)
	assert.False(t, m.Unwrapped)
}

func TestResolve_Variadic(t *testing.T) {
	format := Signature{Name: "Format", Params: []Type{String, Object}, Variadic: true, Result: String}
	candidates := []Signature{format}

	t.Run("expanded", func(t *testing.T) {
		m, outcome := Resolve(candidates, args(String, Int32, Bool))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, 1, m.RestIndex)
		assert.False(t, m.Spread)
		assert.Equal(t, 3, len(m.Params))
		assert.True(t, m.Params[2].IsObject())
	})

	t.Run("empty rest", func(t *testing.T) {
		m, outcome := Resolve(candidates, args(String))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, 1, m.RestIndex)
		assert.False(t, m.Spread)
	})

	t.Run("list passed as rest array", func(t *testing.T) {
		m, outcome := Resolve(candidates, args(String, ListOf(Int32)))
		assert.Equal(t, Resolved, outcome)
		assert.True(t, m.Spread)
	})

	t.Run("list argument binds the rest array", func(t *testing.T) {
		fixed := sig("Format", String, String, Object)
		m, outcome := Resolve([]Signature{format, fixed}, args(String, ListOf(Int32)))
		assert.Equal(t, Resolved, outcome)
		assert.True(t, m.Spread)
	})

	t.Run("missing fixed argument", func(t *testing.T) {
		_, outcome := Resolve(candidates, nil)
		assert.Equal(t, NoneApplicable, outcome)
	})
}

func TestResolve_Deterministic(t *testing.T) {
	candidates := OperatorSignatures(OpAdd)
	reversed := make([]Signature, len(candidates))

	for i, s := range candidates {
		reversed[len(candidates)-1-i] = s
	}

	pairs := [][2]Type{
		{Int32, Int32}, {Int32, Int64}, {Int64, Float64}, {Int32, Decimal},
		{NullableOf(Int32), Int32}, {DateTime, Duration}, {Float32, Int32},
		{Uint32, Int32}, {Char, Char},
	}

	for _, p := range pairs {
		a := args(p[0], p[1])
		m1, o1 := Resolve(candidates, a)
		m2, o2 := Resolve(reversed, a)

		assert.Equal(t, o1, o2, "%s + %s", p[0], p[1])

		if o1 == Resolved {
			assert.Equal(t, m1.Signature.String(), m2.Signature.String(), "%s + %s", p[0], p[1])
		}
	}
}

func TestOperatorSignatures(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		left  Type
		right Type
		want  string
	}{
		{"int plus int", OpAdd, Int32, Int32, "int"},
		{"int plus long", OpAdd, Int32, Int64, "long"},
		{"int plus double", OpAdd, Int32, Float64, "double"},
		{"int plus decimal", OpAdd, Int32, Decimal, "decimal"},
		{"uint plus int", OpAdd, Uint32, Int32, "long"},
		{"nullable plus int", OpAdd, NullableOf(Int32), Int32, "int?"},
		{"date plus span", OpAdd, DateTime, Duration, "DateTime"},
		{"date minus date", OpSubtract, DateTime, DateTime, "TimeSpan"},
		{"compare nullable", OpLess, NullableOf(Int32), Int64, "bool"},
		{"string equality", OpEqual, String, String, "bool"},
		{"string to null", OpEqual, String, Null, "bool"},
		{"and", OpAnd, Bool, NullableOf(Bool), "bool?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, outcome := Resolve(OperatorSignatures(tt.op), args(tt.left, tt.right))
			assert.Equal(t, Resolved, outcome)
			assert.Equal(t, tt.want, m.Signature.Result.String())
		})
	}

	t.Run("incompatible", func(t *testing.T) {
		_, outcome := Resolve(OperatorSignatures(OpAdd), args(Bool, Int32))
		assert.Equal(t, NoneApplicable, outcome)
	})

	t.Run("decimal and double", func(t *testing.T) {
		_, outcome := Resolve(OperatorSignatures(OpMultiply), args(Decimal, Float64))
		assert.Equal(t, NoneApplicable, outcome)
	})

	t.Run("negate", func(t *testing.T) {
		m, outcome := Resolve(OperatorSignatures(OpNegate), args(NullableOf(Float64)))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "double?", m.Signature.Result.String())
	})
}

func TestAggregates(t *testing.T) {
	op, ok := LookupAggregate("orderbydescending")
	assert.True(t, ok)
	assert.Equal(t, AggOrderByDescending, op)

	_, ok = LookupAggregate("Skip")
	assert.False(t, ok)

	assert.False(t, AggContains.ElementScoped())
	assert.True(t, AggWhere.ElementScoped())

	t.Run("average of int is double", func(t *testing.T) {
		m, outcome := Resolve(AggregateSignatures(AggAverage), args(Int32))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "double", AggregateResultType(AggAverage, Int32, m, Int32).String())
	})

	t.Run("sum of nullable decimal", func(t *testing.T) {
		m, outcome := Resolve(AggregateSignatures(AggSum), args(NullableOf(Decimal)))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "decimal?", AggregateResultType(AggSum, Decimal, m, NullableOf(Decimal)).String())
	})

	t.Run("count with predicate", func(t *testing.T) {
		m, outcome := Resolve(AggregateSignatures(AggCount), args(Bool))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "int", AggregateResultType(AggCount, String, m, Bool).String())
	})

	t.Run("where keeps element type", func(t *testing.T) {
		m, outcome := Resolve(AggregateSignatures(AggWhere), args(Bool))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "List<string>", AggregateResultType(AggWhere, String, m, Bool).String())
	})

	t.Run("where needs a predicate", func(t *testing.T) {
		_, outcome := Resolve(AggregateSignatures(AggWhere), args(Int32))
		assert.Equal(t, NoneApplicable, outcome)
	})

	t.Run("select", func(t *testing.T) {
		m, outcome := Resolve(AggregateSignatures(AggSelect), args(Int64))
		assert.Equal(t, Resolved, outcome)
		assert.Equal(t, "List<long>", AggregateResultType(AggSelect, String, m, Int64).String())
	})
}
