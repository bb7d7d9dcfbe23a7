package typeinference

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/testhelper"
	"github.com/shopspring/decimal"
)

func TestIsCompatibleWith(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	person := ModelOf(r.MustType("Person"))
	employee := ModelOf(r.MustType("Employee"))
	level := EnumOf(mustEnum(t, r, "Level"))

	tests := []struct {
		name string
		from Type
		to   Type
		want bool
	}{
		{"identity", Int32, Int32, true},
		{"widening int to long", Int32, Int64, true},
		{"widening int to decimal", Int32, Decimal, true},
		{"narrowing long to int", Int64, Int32, false},
		{"double to decimal", Float64, Decimal, false},
		{"decimal to double", Decimal, Float64, false},
		{"float to double", Float32, Float64, true},
		{"char to int", Char, Int32, true},
		{"int to char", Int32, Char, false},
		{"value to nullable", Int32, NullableOf(Int32), true},
		{"widening into nullable", Int32, NullableOf(Int64), true},
		{"nullable to value", NullableOf(Int32), Int32, false},
		{"null to nullable", Null, NullableOf(Int32), true},
		{"null to string", Null, String, true},
		{"null to model", Null, person, true},
		{"null to value", Null, Int32, false},
		{"enum to string", level, String, true},
		{"string to enum", String, level, false},
		{"enum to int", level, Int32, false},
		{"anything to object", Guid, Object, true},
		{"subtype to base", employee, person, true},
		{"base to subtype", person, employee, false},
		{"list covariance", ListOf(employee), ListOf(person), true},
		{"list contravariance", ListOf(person), ListOf(employee), false},
		{"list to list of object", ListOf(Int32), ListOf(Object), true},
		{"list of int to list of long", ListOf(Int32), ListOf(Int64), false},
		{"model to string", person, String, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatibleWith(tt.from, tt.to))
		})
	}
}

func TestCanConvertArgument_Literals(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	level := EnumOf(mustEnum(t, r, "Level"))

	tests := []struct {
		name string
		arg  Argument
		to   Type
		want bool
	}{
		{"int literal to byte", Argument{Type: Int32, Literal: true, Value: int32(200)}, Primitive(model.KindUint8), true},
		{"int literal too large for byte", Argument{Type: Int32, Literal: true, Value: int32(300)}, Primitive(model.KindUint8), false},
		{"negative literal to uint", Argument{Type: Int32, Literal: true, Value: int32(-1)}, Uint32, false},
		{"int literal to ulong", Argument{Type: Int32, Literal: true, Value: int32(5)}, Uint64, true},
		{"non-literal int to short", Argument{Type: Int32}, Primitive(model.KindInt16), false},
		{"real literal to decimal", Argument{Type: Float64, Literal: true, Value: 1.5}, Decimal, true},
		{"real literal to float", Argument{Type: Float64, Literal: true, Value: 1.5}, Float32, false},
		{"string literal to enum", Argument{Type: String, Literal: true, Value: "senior"}, level, true},
		{"unknown enum member", Argument{Type: String, Literal: true, Value: "Intern"}, level, false},
		{"string literal to nullable enum", Argument{Type: String, Literal: true, Value: "Junior"}, NullableOf(level), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanConvertArgument(tt.arg, tt.to, false))
		})
	}
}

func TestCompareConversions(t *testing.T) {
	tests := []struct {
		name   string
		arg    Argument
		p1, p2 Type
		want   int
	}{
		{"exact beats widening", Argument{Type: Int32}, Int32, Int64, 1},
		{"narrower target wins", Argument{Type: Int32}, Int64, Float64, 1},
		{"wider target loses", Argument{Type: Int32}, Decimal, Int64, -1},
		{"non-nullable beats nullable", Argument{Type: Null}, String, NullableOf(Int32), 1},
		{"signed beats unsigned", Argument{Type: Char}, Int32, Uint32, 1},
		{"unrelated targets", Argument{Type: Int32}, Float64, Decimal, 0},
		{"same target", Argument{Type: Int32}, Int64, Int64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareConversions(tt.arg, tt.p1, tt.p2))
			assert.Equal(t, -tt.want, CompareConversions(tt.arg, tt.p2, tt.p1))
		})
	}
}

func TestConvertValue(t *testing.T) {
	r := testhelper.PersonRegistry(t)
	levelEnum := mustEnum(t, r, "Level")
	senior, _ := levelEnum.Member("Senior")

	tests := []struct {
		name  string
		value any
		to    Type
		want  any
	}{
		{"int to long", int32(3), Int64, int64(3)},
		{"long to int truncates", int64(1<<32 + 1), Int32, int32(1)},
		{"int to double", int32(3), Float64, float64(3)},
		{"double to int truncates", 3.9, Int32, int32(3)},
		{"int to decimal", int32(7), Decimal, decimal.NewFromInt(7)},
		{"int to char", int32(65), Char, model.Char('A')},
		{"enum to string", senior, String, "Senior"},
		{"string to enum", "senior", EnumOf(levelEnum), senior},
		{"id to enum", int64(1), EnumOf(levelEnum), senior},
		{"nil stays nil", nil, NullableOf(Int32), nil},
		{"duration", time.Second, Duration, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertValue(tt.value, tt.to)
			assert.NoError(t, err)
			assert.True(t, ValuesEqual(tt.want, got), "got %v", got)
		})
	}

	t.Run("failure", func(t *testing.T) {
		_, err := ConvertValue("abc", Int32)
		assert.Error(t, err)
	})
}

func mustEnum(t *testing.T, r *model.Registry, name string) *model.EnumType {
	t.Helper()

	e, ok := r.EnumByName(name)
	assert.True(t, ok, "enum %s", name)

	return e
}
