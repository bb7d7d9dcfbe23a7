package typeinference

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shibukawa/modelexpr/model"
	"github.com/shopspring/decimal"
)

// ValuesEqual compares two runtime values. Model instances compare by
// identity, records and lists by value.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case *Record:
		bv, ok := b.(*Record)
		return ok && av.Equal(bv)
	case model.List:
		bv, ok := b.(model.List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}

		for i := range av.Items {
			if av.Items[i] != bv.Items[i] {
				return false
			}
		}

		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	case model.Instance:
		bv, ok := b.(model.Instance)
		return ok && av == bv
	}

	return a == b
}

// HashValue returns a hash consistent with ValuesEqual.
func HashValue(v any) uint64 {
	return xxhash.Sum64String(hashKey(v))
}

// hashKey renders v so that values equal under ValuesEqual share a key.
func hashKey(v any) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case model.Instance:
		return fmt.Sprintf("inst:%p", tv)
	case time.Time:
		return "time:" + tv.UTC().Format(time.RFC3339Nano)
	case *Record:
		return fmt.Sprintf("rec:%x", tv.Hash())
	case model.List:
		parts := make([]string, len(tv.Items))
		for i, item := range tv.Items {
			parts[i] = hashKey(item)
		}

		return "list:[" + strings.Join(parts, ",") + "]"
	case []any:
		parts := make([]string, len(tv))
		for i, item := range tv {
			parts[i] = hashKey(item)
		}

		return "[" + strings.Join(parts, ",") + "]"
	}

	return fmt.Sprintf("%T:%s", v, FormatValue(v))
}

// FormatValue renders a runtime value as text. It backs ToString() and the
// CLI output.
func FormatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case float32:
		return strconv.FormatFloat(float64(tv), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64)
	case decimal.Decimal:
		return tv.String()
	case time.Time:
		return tv.Format(time.RFC3339)
	case time.Duration:
		return tv.String()
	case uuid.UUID:
		return tv.String()
	case model.Char:
		return tv.String()
	case model.EnumValue:
		return tv.Name()
	case *Record:
		return tv.String()
	case model.List:
		parts := make([]string, len(tv.Items))
		for i, item := range tv.Items {
			parts[i] = FormatValue(item)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		parts := make([]string, len(tv))
		for i, item := range tv {
			parts[i] = FormatValue(item)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return tv.String()
	case model.Instance:
		return tv.Type().Name()
	}

	return fmt.Sprint(v)
}

// CompareValues orders two non-null runtime values of the same kind.
func CompareValues(a, b any) (int, error) {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return compareBool(av, bv), nil
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv), nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	case time.Duration:
		if bv, ok := b.(time.Duration); ok {
			return compareOrdered(int64(av), int64(bv)), nil
		}
	case uuid.UUID:
		if bv, ok := b.(uuid.UUID); ok {
			return strings.Compare(av.String(), bv.String()), nil
		}
	case model.EnumValue:
		if bv, ok := b.(model.EnumValue); ok {
			return compareOrdered(av.ID(), bv.ID()), nil
		}
	case float32, float64:
		af, _ := toFloat64(a)
		if bf, ok := toFloat64(b); ok {
			return compareOrdered(af, bf), nil
		}
	case uint64:
		if bv, ok := b.(uint64); ok {
			return compareOrdered(av, bv), nil
		}
	default:
		if ai, ok := toInt64(a); ok {
			if bi, ok := toInt64(b); ok {
				return compareOrdered(ai, bi), nil
			}
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func compareOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// TypeOfValue returns the static type of an externally supplied value.
func TypeOfValue(v any) Type {
	switch tv := v.(type) {
	case nil:
		return Null
	case model.EnumValue:
		return EnumOf(tv.Enum)
	case model.List:
		return ListOf(ModelOf(tv.Type))
	case []any:
		return ListOf(Object)
	case *Record:
		return RecordOf(tv.Type)
	case model.Instance:
		return ModelOf(tv.Type())
	}

	if k := model.KindOf(v); k != model.KindInvalid {
		return Primitive(k)
	}

	return Object
}
