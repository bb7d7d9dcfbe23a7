package compiler

import (
	"fmt"
	"strings"

	"github.com/shibukawa/modelexpr/model"
	"github.com/shibukawa/modelexpr/typeinference"
)

type keyed interface {
	Key() string
}

// FormatValue renders an evaluation result. Model instances print as
// Type(key), and tagged model lists keep their element type.
func FormatValue(v any) string {
	switch tv := v.(type) {
	case model.Instance:
		if k, ok := tv.(keyed); ok && k.Key() != "" {
			return fmt.Sprintf("%s(%s)", tv.Type().Name(), k.Key())
		}

		return fmt.Sprint(tv)
	case model.List:
		return fmt.Sprintf("List<%s>%s", tv.Type.Name(), formatItems(itemsOf(tv)))
	case []any:
		return formatItems(tv)
	case *typeinference.Record:
		parts := make([]string, len(tv.Values))
		for i, f := range tv.Type.Fields {
			parts[i] = f.Name + " = " + FormatValue(tv.Values[i])
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case string:
		return fmt.Sprintf("%q", tv)
	}

	return typeinference.FormatValue(v)
}

func formatItems(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = FormatValue(item)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
