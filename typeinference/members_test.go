package typeinference

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shopspring/decimal"
)

func invokeMember(t *testing.T, recv Type, name string, values []any, argTypes ...Type) (any, error) {
	t.Helper()

	m, outcome := Resolve(Members(recv, name), args(argTypes...))
	assert.Equal(t, Resolved, outcome, "%s.%s", recv, name)

	return m.Signature.Invoke(values)
}

func TestMembers_String(t *testing.T) {
	tests := []struct {
		name     string
		member   string
		values   []any
		argTypes []Type
		want     any
	}{
		{"length counts runes", "Length", []any{"日本語"}, nil, int32(3)},
		{"upper", "ToUpper", []any{"straße"}, nil, "STRASSE"},
		{"lower", "tolower", []any{"ABC"}, nil, "abc"},
		{"trim", "Trim", []any{"  x "}, nil, "x"},
		{"starts with", "StartsWith", []any{"hello", "he"}, []Type{String}, true},
		{"ends with", "EndsWith", []any{"hello", "lo"}, []Type{String}, true},
		{"contains", "Contains", []any{"hello", "ell"}, []Type{String}, true},
		{"index of string", "IndexOf", []any{"日本語", "語"}, []Type{String}, int32(2)},
		{"index of missing", "IndexOf", []any{"abc", "z"}, []Type{String}, int32(-1)},
		{"index of char", "IndexOf", []any{"abc", model.Char('c')}, []Type{Char}, int32(2)},
		{"substring", "Substring", []any{"hello", int32(1)}, []Type{Int32}, "ello"},
		{"substring with length", "Substring", []any{"hello", int32(1), int32(3)}, []Type{Int32, Int32}, "ell"},
		{"replace", "Replace", []any{"a-b-c", "-", "+"}, []Type{String, String}, "a+b+c"},
		{"to string", "ToString", []any{"x"}, nil, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := invokeMember(t, String, tt.member, tt.values, tt.argTypes...)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("substring out of range", func(t *testing.T) {
		_, err := invokeMember(t, String, "Substring", []any{"abc", int32(4)}, Int32)
		assert.IsError(t, err, ErrIndexOutOfRange)
	})
}

func TestMembers_DateTimeAndDuration(t *testing.T) {
	joined := time.Date(2015, 4, 1, 9, 30, 0, 0, time.UTC)

	year, err := invokeMember(t, DateTime, "Year", []any{joined})
	assert.NoError(t, err)
	assert.Equal(t, any(int32(2015)), year)

	date, err := invokeMember(t, DateTime, "Date", []any{joined})
	assert.NoError(t, err)
	assert.Equal(t, any(time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC)), date)

	later, err := invokeMember(t, DateTime, "AddDays", []any{joined, 1.5}, Int32)
	assert.NoError(t, err)
	assert.Equal(t, any(joined.Add(36*time.Hour)), later)

	span := 26*time.Hour + 3*time.Minute

	hours, err := invokeMember(t, Duration, "Hours", []any{span})
	assert.NoError(t, err)
	assert.Equal(t, any(int32(2)), hours)

	total, err := invokeMember(t, Duration, "TotalMinutes", []any{span})
	assert.NoError(t, err)
	assert.Equal(t, any(1563.0), total)
}

func TestMembers_Nullable(t *testing.T) {
	intq := NullableOf(Int32)

	for _, name := range []string{"HasValue", "Value", "GetValueOrDefault"} {
		sigs := Members(intq, name)
		assert.NotZero(t, len(sigs), name)
		assert.True(t, sigs[0].AcceptsNull, name)
	}

	has, err := invokeMember(t, intq, "HasValue", []any{nil})
	assert.NoError(t, err)
	assert.Equal(t, any(false), has)

	_, err = invokeMember(t, intq, "Value", []any{nil})
	assert.IsError(t, err, ErrNoValue)

	def, err := invokeMember(t, intq, "GetValueOrDefault", []any{nil})
	assert.NoError(t, err)
	assert.Equal(t, any(int32(0)), def)

	fallback, err := invokeMember(t, intq, "GetValueOrDefault", []any{nil, int32(7)}, Int32)
	assert.NoError(t, err)
	assert.Equal(t, any(int32(7)), fallback)

	assert.Zero(t, len(Members(Int32, "HasValue")))
}

func TestMembers_Enum(t *testing.T) {
	level := &model.EnumType{Name: "Level", Members: []model.EnumMember{
		{Name: "Junior", Value: 0, DisplayName: "Junior Staff"},
		{Name: "Senior", Value: 1},
	}}
	junior := model.EnumValue{Enum: level, Index: 0}

	display, err := invokeMember(t, EnumOf(level), "DisplayName", []any{junior})
	assert.NoError(t, err)
	assert.Equal(t, any("Junior Staff"), display)

	id, err := invokeMember(t, EnumOf(level), "Id", []any{model.EnumValue{Enum: level, Index: 1}})
	assert.NoError(t, err)
	assert.Equal(t, any(int64(1)), id)
}

func TestStaticMembers(t *testing.T) {
	mathKeyword, ok := LookupTypeKeyword("Math")
	assert.True(t, ok)

	call := func(t *testing.T, k TypeKeyword, name string, values []any, argTypes ...Type) any {
		t.Helper()

		m, outcome := Resolve(StaticMembers(k, name), args(argTypes...))
		assert.Equal(t, Resolved, outcome, name)

		got, err := m.Signature.Invoke(values)
		assert.NoError(t, err)

		return got
	}

	assert.Equal(t, any(int32(5)), call(t, mathKeyword, "Abs", []any{int32(-5)}, Int32))
	assert.Equal(t, any(2.0), call(t, mathKeyword, "Round", []any{2.5}, Float64))
	assert.Equal(t, any(1.25), call(t, mathKeyword, "Round", []any{1.2451, int32(2)}, Float64, Int32))
	assert.Equal(t, any(int64(3)), call(t, mathKeyword, "Max", []any{int64(3), int64(2)}, Int32, Int64))
	assert.True(t, decimal.RequireFromString("2").Equal(
		call(t, mathKeyword, "Round", []any{decimal.RequireFromString("2.5")}, Decimal).(decimal.Decimal)))

	stringKeyword, _ := LookupTypeKeyword("string")

	assert.Equal(t, any(true), call(t, stringKeyword, "IsNullOrEmpty", []any{nil}, Null))
	assert.Equal(t, any("a1true"), call(t, stringKeyword, "Concat",
		[]any{[]any{"a", int32(1), true}}, String, Int32, Bool))
	assert.Equal(t, any("Bob is 30 {x}"), call(t, stringKeyword, "Format",
		[]any{"{0} is {1} {{x}}", []any{"Bob", int32(30)}}, String, String, Int32))

	timeSpan, _ := LookupTypeKeyword("TimeSpan")
	assert.Equal(t, any(90*time.Minute), call(t, timeSpan, "FromHours", []any{1.5}, Float64))

	guid, _ := LookupTypeKeyword("Guid")
	assert.Equal(t, any(uuid.Nil), call(t, guid, "Empty", nil))

	_, ok = LookupTypeKeyword("math")
	assert.False(t, ok)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		keyword string
		values  []any
		types   []Type
		want    any
	}{
		{"int", []any{3.9}, []Type{Float64}, int32(3)},
		{"int", []any{"42"}, []Type{String}, int32(42)},
		{"long", []any{int32(7)}, []Type{Int32}, int64(7)},
		{"double", []any{"2.5"}, []Type{String}, 2.5},
		{"char", []any{int32(65)}, []Type{Int32}, model.Char('A')},
		{"string", []any{int32(12)}, []Type{Int32}, "12"},
		{"bool", []any{"true"}, []Type{String}, true},
		{"DateTime", []any{int32(2020), int32(2), int32(29)}, []Type{Int32, Int32, Int32}, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"TimeSpan", []any{int32(1), int32(30), int32(0)}, []Type{Int32, Int32, Int32}, 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			k, ok := LookupTypeKeyword(tt.keyword)
			assert.True(t, ok)

			m, outcome := Resolve(Constructors(k), args(tt.types...))
			assert.Equal(t, Resolved, outcome)

			got, err := m.Signature.Invoke(tt.values)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		k, _ := LookupTypeKeyword("DateTime")
		m, _ := Resolve(Constructors(k), args(Int32, Int32, Int32))

		_, err := m.Signature.Invoke([]any{int32(2021), int32(2), int32(29)})
		assert.IsError(t, err, ErrIndexOutOfRange)
	})

	t.Run("parse failure", func(t *testing.T) {
		k, _ := LookupTypeKeyword("int")
		m, _ := Resolve(Constructors(k), args(String))

		_, err := m.Signature.Invoke([]any{"4x"})
		assert.IsError(t, err, ErrInvalidFormat)
	})
}

func TestIndexers(t *testing.T) {
	c, err := StringIndexer()[0].Invoke([]any{"héllo", int32(1)})
	assert.NoError(t, err)
	assert.Equal(t, any(model.Char('é')), c)

	_, err = StringIndexer()[0].Invoke([]any{"abc", int32(3)})
	assert.IsError(t, err, ErrIndexOutOfRange)

	v, err := ListIndexer(String)[0].Invoke([]any{[]any{"a", "b"}, int32(1)})
	assert.NoError(t, err)
	assert.Equal(t, any("b"), v)
}
