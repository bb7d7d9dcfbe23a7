package typeinference

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/testhelper"
	"github.com/shopspring/decimal"
)

func TestRecordTypeOf_Interned(t *testing.T) {
	a := RecordTypeOf([]RecordField{{Name: "N", Type: String}, {Name: "A", Type: NullableOf(Int32)}})
	b := RecordTypeOf([]RecordField{{Name: "N", Type: String}, {Name: "A", Type: NullableOf(Int32)}})
	c := RecordTypeOf([]RecordField{{Name: "A", Type: NullableOf(Int32)}, {Name: "N", Type: String}})

	assert.True(t, a == b)
	assert.False(t, a == c)
	assert.Equal(t, "{N:string, A:int?}", a.String())
	assert.True(t, RecordOf(a).Equal(RecordOf(b)))
}

func TestRecordTypeOf_PerRegistry(t *testing.T) {
	first := testhelper.PersonRegistry(t).MustType("Person")
	second := testhelper.PersonRegistry(t).MustType("Person")

	a := RecordTypeOf([]RecordField{{Name: "M", Type: ModelOf(first)}})
	b := RecordTypeOf([]RecordField{{Name: "M", Type: ModelOf(second)}})

	assert.True(t, a != b)
	assert.Equal(t, a.String(), b.String())
	assert.True(t, a.Fields[0].Type.Model == first)
	assert.True(t, b.Fields[0].Type.Model == second)
	assert.True(t, a == RecordTypeOf([]RecordField{{Name: "M", Type: ModelOf(first)}}))

	listA := RecordTypeOf([]RecordField{{Name: "L", Type: ListOf(ModelOf(first))}})
	listB := RecordTypeOf([]RecordField{{Name: "L", Type: ListOf(ModelOf(second))}})
	assert.True(t, listA != listB)

	nestedA := RecordTypeOf([]RecordField{{Name: "R", Type: RecordOf(a)}})
	nestedB := RecordTypeOf([]RecordField{{Name: "R", Type: RecordOf(b)}})
	assert.True(t, nestedA != nestedB)
}

func TestRecord_EqualAndHash(t *testing.T) {
	rt := RecordTypeOf([]RecordField{{Name: "Name", Type: String}, {Name: "Salary", Type: Decimal}})

	r1 := &Record{Type: rt, Values: []any{"Bob", decimal.RequireFromString("800")}}
	r2 := &Record{Type: rt, Values: []any{"Bob", decimal.RequireFromString("800.00")}}
	r3 := &Record{Type: rt, Values: []any{"Bob", decimal.RequireFromString("801")}}

	assert.True(t, r1.Equal(r2))
	assert.False(t, r1.Equal(r3))
	assert.Equal(t, r1.Hash(), r1.Hash())
	assert.NotEqual(t, r1.Hash(), r3.Hash())
	assert.Equal(t, "{Name = Bob, Salary = 800}", r1.String())

	v, ok := r1.Get("Name")
	assert.True(t, ok)
	assert.Equal(t, any("Bob"), v)

	_, ok = r1.Get("name")
	assert.False(t, ok)
}

func TestValuesEqual(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	graph := testhelper.PersonGraph(t, r)
	person := r.MustType("Person")

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, int32(0), false},
		{"same instance", graph["alice"], graph["alice"], true},
		{"different instances", graph["alice"], graph["bob"], false},
		{"decimal scale", decimal.RequireFromString("1.50"), decimal.RequireFromString("1.5"), true},
		{"time zones", time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 18, 0, 0, 0, time.FixedZone("JST", 9*3600)), true},
		{"lists by item identity", model.NewList(person, graph["bob"]), model.NewList(person, graph["bob"]), true},
		{"value lists", []any{"go", "sql"}, []any{"go", "sql"}, true},
		{"value lists differ", []any{"go"}, []any{"go", "sql"}, false},
		{"kinds differ", int32(1), int64(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", int32(1), int32(2), -1},
		{"strings are ordinal", "B", "a", -1},
		{"decimals", decimal.RequireFromString("2"), decimal.RequireFromString("1.5"), 1},
		{"durations", time.Hour, time.Minute, 1},
		{"bools", false, true, -1},
		{"equal floats", 1.5, 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareValues(tt.a, tt.b)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := CompareValues("a", int32(1))
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "[go, sql]", FormatValue([]any{"go", "sql"}))
	assert.Equal(t, "1h30m0s", FormatValue(90*time.Minute))
	assert.Equal(t, "2015-04-01T09:00:00Z", FormatValue(time.Date(2015, 4, 1, 9, 0, 0, 0, time.UTC)))
}
