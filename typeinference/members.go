package typeinference

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Host member errors surfaced at evaluation time.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoValue         = errors.New("nullable object must have a value")
	ErrInvalidFormat   = errors.New("invalid format")
)

// The catalog below describes the members reachable from expressions on
// host values. Invokers receive arguments already converted to the
// parameter types; for instance members args[0] is the receiver.

func prop(name string, result Type, get func(recv any) any) Signature {
	return Signature{
		Name:     name,
		Property: true,
		Result:   result,
		Invoke: func(args []any) (any, error) {
			return get(args[0]), nil
		},
	}
}

func method(name string, params []Type, result Type, invoke Invoker) Signature {
	return Signature{Name: name, Params: params, Result: result, Invoke: invoke}
}

func static(name string, result Type, get func() any) Signature {
	return Signature{
		Name:     name,
		Property: true,
		Result:   result,
		Invoke: func([]any) (any, error) {
			return get(), nil
		},
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func runeIndex(s string, byteIndex int) int32 {
	if byteIndex < 0 {
		return -1
	}

	return int32(utf8.RuneCountInString(s[:byteIndex]))
}

var stringMembers = NewSignatureTable(
	prop("Length", Int32, func(r any) any { return int32(utf8.RuneCountInString(str(r))) }),
	method("ToUpper", nil, String, func(a []any) (any, error) {
		return cases.Upper(language.Und).String(str(a[0])), nil
	}),
	method("ToLower", nil, String, func(a []any) (any, error) {
		return cases.Lower(language.Und).String(str(a[0])), nil
	}),
	method("Trim", nil, String, func(a []any) (any, error) {
		return strings.TrimSpace(str(a[0])), nil
	}),
	method("StartsWith", []Type{String}, Bool, func(a []any) (any, error) {
		return strings.HasPrefix(str(a[0]), str(a[1])), nil
	}),
	method("EndsWith", []Type{String}, Bool, func(a []any) (any, error) {
		return strings.HasSuffix(str(a[0]), str(a[1])), nil
	}),
	method("Contains", []Type{String}, Bool, func(a []any) (any, error) {
		return strings.Contains(str(a[0]), str(a[1])), nil
	}),
	method("IndexOf", []Type{String}, Int32, func(a []any) (any, error) {
		s := str(a[0])
		return runeIndex(s, strings.Index(s, str(a[1]))), nil
	}),
	method("IndexOf", []Type{Char}, Int32, func(a []any) (any, error) {
		s := str(a[0])
		return runeIndex(s, strings.IndexRune(s, rune(a[1].(model.Char)))), nil
	}),
	method("Substring", []Type{Int32}, String, func(a []any) (any, error) {
		runes := []rune(str(a[0]))
		start := int(a[1].(int32))

		if start < 0 || start > len(runes) {
			return nil, fmt.Errorf("%w: Substring(%d) of length %d", ErrIndexOutOfRange, start, len(runes))
		}

		return string(runes[start:]), nil
	}),
	method("Substring", []Type{Int32, Int32}, String, func(a []any) (any, error) {
		runes := []rune(str(a[0]))
		start, length := int(a[1].(int32)), int(a[2].(int32))

		if start < 0 || length < 0 || start+length > len(runes) {
			return nil, fmt.Errorf("%w: Substring(%d, %d) of length %d", ErrIndexOutOfRange, start, length, len(runes))
		}

		return string(runes[start : start+length]), nil
	}),
	method("Replace", []Type{String, String}, String, func(a []any) (any, error) {
		return strings.ReplaceAll(str(a[0]), str(a[1]), str(a[2])), nil
	}),
	method("Replace", []Type{Char, Char}, String, func(a []any) (any, error) {
		return strings.ReplaceAll(str(a[0]), a[1].(model.Char).String(), a[2].(model.Char).String()), nil
	}),
)

func addDuration(unit time.Duration) Invoker {
	return func(a []any) (any, error) {
		return a[0].(time.Time).Add(time.Duration(a[1].(float64) * float64(unit))), nil
	}
}

var dateTimeMembers = NewSignatureTable(
	prop("Year", Int32, func(r any) any { return int32(r.(time.Time).Year()) }),
	prop("Month", Int32, func(r any) any { return int32(r.(time.Time).Month()) }),
	prop("Day", Int32, func(r any) any { return int32(r.(time.Time).Day()) }),
	prop("Hour", Int32, func(r any) any { return int32(r.(time.Time).Hour()) }),
	prop("Minute", Int32, func(r any) any { return int32(r.(time.Time).Minute()) }),
	prop("Second", Int32, func(r any) any { return int32(r.(time.Time).Second()) }),
	prop("DayOfYear", Int32, func(r any) any { return int32(r.(time.Time).YearDay()) }),
	prop("Date", DateTime, func(r any) any {
		t := r.(time.Time)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}),
	prop("TimeOfDay", Duration, func(r any) any {
		t := r.(time.Time)
		return t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
	}),
	method("AddDays", []Type{Float64}, DateTime, addDuration(24*time.Hour)),
	method("AddHours", []Type{Float64}, DateTime, addDuration(time.Hour)),
	method("AddMinutes", []Type{Float64}, DateTime, addDuration(time.Minute)),
	method("AddSeconds", []Type{Float64}, DateTime, addDuration(time.Second)),
	method("AddMonths", []Type{Int32}, DateTime, func(a []any) (any, error) {
		return a[0].(time.Time).AddDate(0, int(a[1].(int32)), 0), nil
	}),
	method("AddYears", []Type{Int32}, DateTime, func(a []any) (any, error) {
		return a[0].(time.Time).AddDate(int(a[1].(int32)), 0, 0), nil
	}),
)

const day = 24 * time.Hour

var durationMembers = NewSignatureTable(
	prop("Days", Int32, func(r any) any { return int32(r.(time.Duration) / day) }),
	prop("Hours", Int32, func(r any) any { return int32(r.(time.Duration) % day / time.Hour) }),
	prop("Minutes", Int32, func(r any) any { return int32(r.(time.Duration) % time.Hour / time.Minute) }),
	prop("Seconds", Int32, func(r any) any { return int32(r.(time.Duration) % time.Minute / time.Second) }),
	prop("Ticks", Int64, func(r any) any { return int64(r.(time.Duration) / 100) }),
	prop("TotalDays", Float64, func(r any) any { return r.(time.Duration).Hours() / 24 }),
	prop("TotalHours", Float64, func(r any) any { return r.(time.Duration).Hours() }),
	prop("TotalMinutes", Float64, func(r any) any { return r.(time.Duration).Minutes() }),
	prop("TotalSeconds", Float64, func(r any) any { return r.(time.Duration).Seconds() }),
)

var enumMembers = NewSignatureTable(
	prop("Id", Int64, func(r any) any { return r.(model.EnumValue).ID() }),
	prop("Name", String, func(r any) any { return r.(model.EnumValue).Name() }),
	prop("DisplayName", String, func(r any) any { return r.(model.EnumValue).DisplayName() }),
)

var objectMembers = NewSignatureTable(
	method("ToString", nil, String, func(a []any) (any, error) {
		return FormatValue(a[0]), nil
	}),
	method("Equals", []Type{Object}, Bool, func(a []any) (any, error) {
		return ValuesEqual(a[0], a[1]), nil
	}),
)

// zeroOf returns the default value of a non-nullable value type.
func zeroOf(t Type) any {
	if t.Kind == model.KindEnum && t.Enum != nil {
		return model.EnumValue{Enum: t.Enum}
	}

	return t.Kind.Zero()
}

func nullableMembers(t Type) SignatureTable {
	value := t.Underlying()

	return NewSignatureTable(
		Signature{
			Name: "HasValue", Property: true, Result: Bool, AcceptsNull: true,
			Invoke: func(a []any) (any, error) { return a[0] != nil, nil },
		},
		Signature{
			Name: "Value", Property: true, Result: value, AcceptsNull: true,
			Invoke: func(a []any) (any, error) {
				if a[0] == nil {
					return nil, ErrNoValue
				}

				return a[0], nil
			},
		},
		Signature{
			Name: "GetValueOrDefault", Result: value, AcceptsNull: true,
			Invoke: func(a []any) (any, error) {
				if a[0] == nil {
					return zeroOf(value), nil
				}

				return a[0], nil
			},
		},
		Signature{
			Name: "GetValueOrDefault", Params: []Type{value}, Result: value, AcceptsNull: true,
			Invoke: func(a []any) (any, error) {
				if a[0] == nil {
					return a[1], nil
				}

				return a[0], nil
			},
		},
	)
}

// Members returns the instance members named name on a receiver of type
// recv. Members specific to the receiver shadow ToString and Equals.
func Members(recv Type, name string) []Signature {
	var table SignatureTable

	switch {
	case recv.IsNullableValue():
		table = nullableMembers(recv)
	case recv.IsString():
		table = stringMembers
	case recv.IsEnum():
		table = enumMembers
	case recv.IsValue() && recv.Kind == model.KindDateTime:
		table = dateTimeMembers
	case recv.IsValue() && recv.Kind == model.KindDuration:
		table = durationMembers
	}

	if sigs := table.Signatures(name); len(sigs) > 0 {
		return sigs
	}

	return objectMembers.Signatures(name)
}

func unaryFloat(name string, fn func(float64) float64) Signature {
	return method(name, []Type{Float64}, Float64, func(a []any) (any, error) {
		return fn(a[0].(float64)), nil
	})
}

func roundDigits(x float64, digits int32) float64 {
	scale := math.Pow(10, float64(digits))
	return math.RoundToEven(x*scale) / scale
}

func mathMembers() SignatureTable {
	table := NewSignatureTable(
		unaryFloat("Floor", math.Floor),
		unaryFloat("Ceiling", math.Ceil),
		unaryFloat("Round", math.RoundToEven),
		unaryFloat("Sqrt", math.Sqrt),
		method("Pow", []Type{Float64, Float64}, Float64, func(a []any) (any, error) {
			return math.Pow(a[0].(float64), a[1].(float64)), nil
		}),
		method("Round", []Type{Float64, Int32}, Float64, func(a []any) (any, error) {
			return roundDigits(a[0].(float64), a[1].(int32)), nil
		}),
		method("Floor", []Type{Decimal}, Decimal, func(a []any) (any, error) {
			return a[0].(decimal.Decimal).Floor(), nil
		}),
		method("Ceiling", []Type{Decimal}, Decimal, func(a []any) (any, error) {
			return a[0].(decimal.Decimal).Ceil(), nil
		}),
		method("Round", []Type{Decimal}, Decimal, func(a []any) (any, error) {
			return a[0].(decimal.Decimal).RoundBank(0), nil
		}),
		method("Round", []Type{Decimal, Int32}, Decimal, func(a []any) (any, error) {
			return a[0].(decimal.Decimal).RoundBank(a[1].(int32)), nil
		}),
	)

	for _, t := range []Type{Int32, Int64, Float32, Float64, Decimal} {
		table.Add(
			method("Abs", []Type{t}, t, func(a []any) (any, error) { return absValue(a[0]), nil }),
			method("Min", []Type{t, t}, t, pickValue(-1)),
			method("Max", []Type{t, t}, t, pickValue(1)),
		)
	}

	return table
}

func absValue(v any) any {
	switch n := v.(type) {
	case int32:
		if n < 0 {
			return -n
		}
	case int64:
		if n < 0 {
			return -n
		}
	case float32:
		return float32(math.Abs(float64(n)))
	case float64:
		return math.Abs(n)
	case decimal.Decimal:
		return n.Abs()
	}

	return v
}

// pickValue returns the smaller (sign -1) or larger (sign 1) argument.
func pickValue(sign int) Invoker {
	return func(a []any) (any, error) {
		c, err := CompareValues(a[0], a[1])
		if err != nil {
			return nil, err
		}

		if c*sign >= 0 {
			return a[0], nil
		}

		return a[1], nil
	}
}

// formatComposite expands {n} placeholders; {{ and }} are literal braces.
func formatComposite(format string, args []any) (string, error) {
	var sb strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]

		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed placeholder in %q", ErrInvalidFormat, format)
			}

			n, err := strconv.Atoi(format[i+1 : i+end])
			if err != nil || n < 0 || n >= len(args) {
				return "", fmt.Errorf("%w: bad placeholder %q", ErrInvalidFormat, format[i:i+end+1])
			}

			if args[n] != nil {
				sb.WriteString(FormatValue(args[n]))
			}

			i += end
		case c == '}':
			return "", fmt.Errorf("%w: unmatched '}' in %q", ErrInvalidFormat, format)
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}

func concatValues(args []any) string {
	var sb strings.Builder

	for _, v := range args {
		if v != nil {
			sb.WriteString(FormatValue(v))
		}
	}

	return sb.String()
}

var staticMembers = map[model.Kind]SignatureTable{
	model.KindString: NewSignatureTable(
		static("Empty", String, func() any { return "" }),
		method("IsNullOrEmpty", []Type{String}, Bool, func(a []any) (any, error) {
			return str(a[0]) == "", nil
		}),
		Signature{
			Name: "Concat", Params: []Type{Object}, Variadic: true, Result: String,
			Invoke: func(a []any) (any, error) {
				rest, _ := a[0].([]any)
				return concatValues(rest), nil
			},
		},
		Signature{
			Name: "Format", Params: []Type{String, Object}, Variadic: true, Result: String,
			Invoke: func(a []any) (any, error) {
				rest, _ := a[1].([]any)
				return formatComposite(str(a[0]), rest)
			},
		},
	),
	model.KindDateTime: NewSignatureTable(
		static("Now", DateTime, func() any { return time.Now() }),
		static("Today", DateTime, func() any {
			now := time.Now()
			return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		}),
		method("Parse", []Type{String}, DateTime, func(a []any) (any, error) {
			return parseDateTime(str(a[0]))
		}),
	),
	model.KindDuration: NewSignatureTable(
		static("Zero", Duration, func() any { return time.Duration(0) }),
		fromUnit("FromDays", day),
		fromUnit("FromHours", time.Hour),
		fromUnit("FromMinutes", time.Minute),
		fromUnit("FromSeconds", time.Second),
		fromUnit("FromMilliseconds", time.Millisecond),
	),
	model.KindGuid: NewSignatureTable(
		static("Empty", Guid, func() any { return uuid.Nil }),
		method("NewGuid", nil, Guid, func([]any) (any, error) { return uuid.New(), nil }),
		method("Parse", []Type{String}, Guid, func(a []any) (any, error) {
			return uuid.Parse(str(a[0]))
		}),
	),
}

func fromUnit(name string, unit time.Duration) Signature {
	return method(name, []Type{Float64}, Duration, func(a []any) (any, error) {
		return time.Duration(a[0].(float64) * float64(unit)), nil
	})
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidFormat, s)
}

// TypeKeyword is a predefined type name usable in expressions for
// conversions T(x) and static access T.Member.
type TypeKeyword struct {
	Name string
	Type Type
	Math bool // the Math class has statics only
}

var typeKeywords = func() map[string]TypeKeyword {
	names := map[string]Type{
		"bool": Bool, "Boolean": Bool,
		"sbyte": Primitive(model.KindInt8), "SByte": Primitive(model.KindInt8),
		"byte": Primitive(model.KindUint8), "Byte": Primitive(model.KindUint8),
		"short": Primitive(model.KindInt16), "Int16": Primitive(model.KindInt16),
		"ushort": Primitive(model.KindUint16), "UInt16": Primitive(model.KindUint16),
		"int": Int32, "Int32": Int32,
		"uint": Uint32, "UInt32": Uint32,
		"long": Int64, "Int64": Int64,
		"ulong": Uint64, "UInt64": Uint64,
		"float": Float32, "Single": Float32,
		"double": Float64, "Double": Float64,
		"decimal": Decimal, "Decimal": Decimal,
		"char": Char, "Char": Char,
		"string": String, "String": String,
		"DateTime": DateTime,
		"TimeSpan": Duration,
		"Guid":     Guid,
		"object":   Object, "Object": Object,
	}

	m := make(map[string]TypeKeyword, len(names)+1)
	for name, t := range names {
		m[name] = TypeKeyword{Name: name, Type: t}
	}

	m["Math"] = TypeKeyword{Name: "Math", Math: true}

	return m
}()

// LookupTypeKeyword finds a predefined type name. Names are case-sensitive.
func LookupTypeKeyword(name string) (TypeKeyword, bool) {
	k, ok := typeKeywords[name]
	return k, ok
}

var mathTable = mathMembers()

// StaticMembers returns the static members named name on a type keyword.
func StaticMembers(k TypeKeyword, name string) []Signature {
	if k.Math {
		return mathTable.Signatures(name)
	}

	if !k.Type.IsValue() {
		return nil
	}

	return staticMembers[k.Type.Kind].Signatures(name)
}

var constructorKinds = []model.Kind{
	model.KindInt8, model.KindUint8, model.KindInt16, model.KindUint16,
	model.KindInt32, model.KindUint32, model.KindInt64, model.KindUint64,
	model.KindFloat32, model.KindFloat64, model.KindDecimal, model.KindChar,
}

func convertTo(target Type) Invoker {
	return func(a []any) (any, error) {
		return ConvertValue(a[0], target)
	}
}

func parseNumber(target Type) Invoker {
	return func(a []any) (any, error) {
		s := strings.TrimSpace(str(a[0]))

		var v any

		switch {
		case target.Kind == model.KindDecimal:
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, s)
			}

			v = d
		case target.Kind == model.KindFloat32 || target.Kind == model.KindFloat64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, s)
			}

			v = f
		case target.Kind == model.KindUint64:
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, s)
			}

			v = u
		default:
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, s)
			}

			if !integerFits(i, target.Kind) {
				return nil, fmt.Errorf("%w: %s overflows %s", ErrInvalidFormat, s, target)
			}

			v = i
		}

		return ConvertValue(v, target)
	}
}

// Constructors returns the conversion forms T(x) of a type keyword.
func Constructors(k TypeKeyword) []Signature {
	if k.Math {
		return nil
	}

	t := k.Type
	name := k.Name

	switch {
	case t.Kind.IsNumeric():
		sigs := make([]Signature, 0, len(constructorKinds)+1)
		for _, from := range constructorKinds {
			sigs = append(sigs, method(name, []Type{Primitive(from)}, t, convertTo(t)))
		}

		return append(sigs, method(name, []Type{String}, t, parseNumber(t)))

	case t.Kind == model.KindChar:
		sigs := make([]Signature, 0, len(constructorKinds))
		for _, from := range constructorKinds {
			if from.IsIntegral() || from == model.KindChar {
				sigs = append(sigs, method(name, []Type{Primitive(from)}, t, convertTo(t)))
			}
		}

		return sigs

	case t.Kind == model.KindString:
		return []Signature{method(name, []Type{Object}, t, func(a []any) (any, error) {
			if a[0] == nil {
				return nil, nil
			}

			return FormatValue(a[0]), nil
		})}

	case t.Kind == model.KindBool:
		return []Signature{
			method(name, []Type{Bool}, t, convertTo(t)),
			method(name, []Type{String}, t, func(a []any) (any, error) {
				b, err := strconv.ParseBool(strings.TrimSpace(str(a[0])))
				if err != nil {
					return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidFormat, str(a[0]))
				}

				return b, nil
			}),
		}

	case t.Kind == model.KindDateTime:
		return []Signature{
			method(name, []Type{Int32, Int32, Int32}, t, func(a []any) (any, error) {
				return newDate(a, 0, 0, 0)
			}),
			method(name, []Type{Int32, Int32, Int32, Int32, Int32, Int32}, t, func(a []any) (any, error) {
				return newDate(a, a[3].(int32), a[4].(int32), a[5].(int32))
			}),
			method(name, []Type{String}, t, func(a []any) (any, error) {
				return parseDateTime(str(a[0]))
			}),
		}

	case t.Kind == model.KindDuration:
		return []Signature{
			method(name, []Type{Int32, Int32, Int32}, t, func(a []any) (any, error) {
				return clock(0, a[0].(int32), a[1].(int32), a[2].(int32)), nil
			}),
			method(name, []Type{Int32, Int32, Int32, Int32}, t, func(a []any) (any, error) {
				return clock(a[0].(int32), a[1].(int32), a[2].(int32), a[3].(int32)), nil
			}),
			method(name, []Type{Int64}, t, func(a []any) (any, error) {
				return time.Duration(a[0].(int64) * 100), nil
			}),
		}

	case t.Kind == model.KindGuid:
		return []Signature{
			method(name, []Type{String}, t, func(a []any) (any, error) {
				return uuid.Parse(str(a[0]))
			}),
		}
	}

	return nil
}

func newDate(a []any, hour, minute, second int32) (any, error) {
	year, month, dayOfMonth := int(a[0].(int32)), int(a[1].(int32)), int(a[2].(int32))

	if month < 1 || month > 12 || dayOfMonth < 1 || dayOfMonth > 31 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return nil, fmt.Errorf("%w: invalid date component", ErrIndexOutOfRange)
	}

	t := time.Date(year, time.Month(month), dayOfMonth, int(hour), int(minute), int(second), 0, time.UTC)
	if t.Day() != dayOfMonth {
		return nil, fmt.Errorf("%w: day %d not in month %d", ErrIndexOutOfRange, dayOfMonth, month)
	}

	return t, nil
}

func clock(days, hours, minutes, seconds int32) time.Duration {
	return time.Duration(days)*day + time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}

// StringIndexer returns the indexer s[i] on strings.
func StringIndexer() []Signature {
	return []Signature{method("[]", []Type{Int32}, Char, func(a []any) (any, error) {
		runes := []rune(str(a[0]))
		i := int(a[1].(int32))

		if i < 0 || i >= len(runes) {
			return nil, fmt.Errorf("%w: index %d of length %d", ErrIndexOutOfRange, i, len(runes))
		}

		return model.Char(runes[i]), nil
	})}
}

// ListIndexer returns the indexer l[i] on a list of elem.
func ListIndexer(elem Type) []Signature {
	return []Signature{method("[]", []Type{Int32}, elem, func(a []any) (any, error) {
		i := int(a[1].(int32))

		switch l := a[0].(type) {
		case model.List:
			if i < 0 || i >= len(l.Items) {
				return nil, fmt.Errorf("%w: index %d of length %d", ErrIndexOutOfRange, i, len(l.Items))
			}

			return l.Items[i], nil
		case []any:
			if i < 0 || i >= len(l) {
				return nil, fmt.Errorf("%w: index %d of length %d", ErrIndexOutOfRange, i, len(l))
			}

			return l[i], nil
		}

		return nil, fmt.Errorf("%w: %T is not indexable", ErrIndexOutOfRange, a[0])
	})}
}
