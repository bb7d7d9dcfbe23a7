package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/shibukawa/modelexpr"
	"github.com/shopspring/decimal"
)

// LoadSchema builds and seals a registry from a YAML schema document.
// Types may be listed in any order; a base type only has to exist somewhere
// in the document.
func LoadSchema(data []byte) (*Registry, error) {
	var doc modelexpr.Schema

	err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	return BuildSchema(&doc)
}

// BuildSchema builds and seals a registry from a decoded schema document.
func BuildSchema(doc *modelexpr.Schema) (*Registry, error) {
	r := NewRegistry()

	for _, def := range doc.Enums {
		members := make([]EnumMember, len(def.Members))
		for i, m := range def.Members {
			members[i] = EnumMember{Name: m.Name, Value: int64(i), DisplayName: m.DisplayName}
			if m.Value != nil {
				members[i].Value = *m.Value
			}
		}

		r.DefineEnum(def.Name, members...)
	}

	defs := make(map[string]modelexpr.TypeDefinition, len(doc.Types))
	for _, def := range doc.Types {
		if _, dup := defs[def.Name]; dup {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidSchema, ErrDuplicateType, def.Name)
		}

		defs[def.Name] = def
	}

	// define bases before derived types, keeping document order otherwise
	var define func(name string, visiting map[string]bool) (*Type, error)

	define = func(name string, visiting map[string]bool) (*Type, error) {
		if t, ok := r.TypeByName(name); ok {
			return t, nil
		}

		def, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidSchema, ErrUnknownType, name)
		}

		if visiting[name] {
			return nil, fmt.Errorf("%w: inheritance cycle at %s", ErrInvalidSchema, name)
		}

		visiting[name] = true

		var base *Type

		if def.Base != "" {
			b, err := define(def.Base, visiting)
			if err != nil {
				return nil, err
			}

			base = b
		}

		return r.Define(name, base), nil
	}

	for _, def := range doc.Types {
		if _, err := define(def.Name, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	for _, def := range doc.Types {
		t := r.MustType(def.Name)

		for _, pd := range def.Properties {
			p, err := propertyFromDefinition(r, pd)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidSchema, def.Name, pd.Name, err)
			}

			t.AddProperty(p)
		}
	}

	if err := r.Seal(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	return r, nil
}

func propertyFromDefinition(r *Registry, pd modelexpr.PropertyDefinition) (*Property, error) {
	p := &Property{
		Name:     pd.Name,
		List:     pd.List,
		ReadOnly: pd.ReadOnly || pd.Static,
		Static:   pd.Static,
		Nullable: pd.Nullable,
	}

	if target, ok := r.TypeByName(pd.Type); ok {
		if pd.Static {
			return nil, errors.New("reference properties cannot be static")
		}

		p.Kind = KindObject
		p.RefType = target
		p.Nullable = false

		return p, nil
	}

	if enum, ok := r.EnumByName(pd.Type); ok {
		p.Kind = KindEnum
		p.Enum = enum

		return p, nil
	}

	kind, ok := KindByName(pd.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, pd.Type)
	}

	p.Kind = kind

	return p, nil
}

// LoadInstances creates the objects described by a YAML instance document.
// Reference values name other objects by key. The result maps keys to
// objects.
func LoadInstances(r *Registry, data []byte) (map[string]*Object, error) {
	var doc modelexpr.InstanceDocument

	err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse instance document: %w", err)
	}

	return BuildInstances(r, &doc)
}

// BuildInstances creates the objects described by a decoded instance document.
func BuildInstances(r *Registry, doc *modelexpr.InstanceDocument) (map[string]*Object, error) {
	if !r.Sealed() {
		return nil, ErrRegistryNotSealed
	}

	objects := make(map[string]*Object, len(doc.Objects))

	for i, def := range doc.Objects {
		t, ok := r.TypeByName(def.Type)
		if !ok {
			return nil, fmt.Errorf("%w: object %d: %s", ErrUnknownType, i, def.Type)
		}

		key := def.Key
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}

		if _, dup := objects[key]; dup {
			return nil, fmt.Errorf("%w: duplicate object key %s", ErrInvalidSchema, key)
		}

		objects[key] = NewObjectWithKey(t, key)
	}

	// assign values after every object exists so references can point forward
	for i, def := range doc.Objects {
		key := def.Key
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}

		obj := objects[key]

		for name, raw := range def.Values {
			p, ok := obj.Type().Property(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s has no property %s", ErrPropertyNotOnType, obj, name)
			}

			v, err := decodeValue(p, raw, objects)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", obj, name, err)
			}

			if err := obj.init(p, v); err != nil {
				return nil, err
			}
		}
	}

	return objects, nil
}

func decodeValue(p *Property, raw any, objects map[string]*Object) (any, error) {
	if raw == nil {
		return nil, nil
	}

	if p.IsReference() {
		lookup := func(v any) (Instance, error) {
			key := fmt.Sprint(v)

			obj, ok := objects[key]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownInstanceKey, key)
			}

			return obj, nil
		}

		if !p.List {
			return lookup(raw)
		}

		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a list of keys", ErrValueTypeMismatch, p)
		}

		list := List{Type: p.RefType, Items: make([]Instance, 0, len(items))}

		for _, item := range items {
			inst, err := lookup(item)
			if err != nil {
				return nil, err
			}

			list.Items = append(list.Items, inst)
		}

		return list, nil
	}

	if p.List {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a list", ErrValueTypeMismatch, p)
		}

		result := make([]any, len(items))

		for i, item := range items {
			v, err := DecodeScalar(p.Kind, p.Enum, item)
			if err != nil {
				return nil, err
			}

			result[i] = v
		}

		return result, nil
	}

	return DecodeScalar(p.Kind, p.Enum, raw)
}

// DecodeScalar converts a YAML scalar to the runtime representation of kind.
func DecodeScalar(kind Kind, enum *EnumType, raw any) (any, error) {
	mismatch := fmt.Errorf("%w: cannot decode %v (%T) as %s", ErrValueTypeMismatch, raw, raw, kind)

	switch kind {
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}

	case KindInt8, KindUint8, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64:
		return decodeInteger(kind, raw, mismatch)

	case KindFloat32, KindFloat64:
		var f float64

		switch n := raw.(type) {
		case float64:
			f = n
		case uint64:
			f = float64(n)
		case int64:
			f = float64(n)
		case int:
			f = float64(n)
		default:
			return nil, mismatch
		}

		if kind == KindFloat32 {
			return float32(f), nil
		}

		return f, nil

	case KindDecimal:
		switch n := raw.(type) {
		case string:
			d, err := decimal.NewFromString(n)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValueTypeMismatch, err)
			}

			return d, nil
		case float64:
			return decimal.NewFromFloat(n), nil
		case uint64:
			return decimal.RequireFromString(strconv.FormatUint(n, 10)), nil
		case int64:
			return decimal.NewFromInt(n), nil
		case int:
			return decimal.NewFromInt(int64(n)), nil
		}

	case KindChar:
		if s, ok := raw.(string); ok && len([]rune(s)) == 1 {
			return Char([]rune(s)[0]), nil
		}

	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}

	case KindDateTime:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
				if t, err := time.Parse(layout, v); err == nil {
					return t, nil
				}
			}
		}

	case KindDuration:
		if s, ok := raw.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValueTypeMismatch, err)
			}

			return d, nil
		}

	case KindGuid:
		if s, ok := raw.(string); ok {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrValueTypeMismatch, err)
			}

			return id, nil
		}

	case KindEnum:
		if enum == nil {
			return nil, mismatch
		}

		if s, ok := raw.(string); ok {
			if v, ok := enum.MemberFold(strings.TrimSpace(s)); ok {
				return v, nil
			}
		}

		if n, err := decodeInteger(KindInt64, raw, mismatch); err == nil {
			if v, ok := enum.ByValue(n.(int64)); ok {
				return v, nil
			}
		}

	case KindObject:
		return raw, nil
	}

	return nil, mismatch
}

func decodeInteger(kind Kind, raw any, mismatch error) (any, error) {
	var (
		signed   int64
		unsigned uint64
		negative bool
	)

	switch n := raw.(type) {
	case uint64:
		unsigned = n
	case int64:
		signed, negative = n, n < 0
		unsigned = uint64(n)
	case int:
		signed, negative = int64(n), n < 0
		unsigned = uint64(n)
	case float64:
		if n != math.Trunc(n) {
			return nil, mismatch
		}

		signed, negative = int64(n), n < 0
		unsigned = uint64(signed)
	default:
		return nil, mismatch
	}

	if !negative {
		if unsigned > math.MaxInt64 {
			if kind == KindUint64 {
				return unsigned, nil
			}

			return nil, mismatch
		}

		signed = int64(unsigned)
	}

	inRange := func(lo, hi int64) bool { return signed >= lo && signed <= hi }

	switch kind {
	case KindInt8:
		if inRange(math.MinInt8, math.MaxInt8) {
			return int8(signed), nil
		}
	case KindUint8:
		if inRange(0, math.MaxUint8) {
			return uint8(signed), nil
		}
	case KindInt16:
		if inRange(math.MinInt16, math.MaxInt16) {
			return int16(signed), nil
		}
	case KindUint16:
		if inRange(0, math.MaxUint16) {
			return uint16(signed), nil
		}
	case KindInt32:
		if inRange(math.MinInt32, math.MaxInt32) {
			return int32(signed), nil
		}
	case KindUint32:
		if inRange(0, math.MaxUint32) {
			return uint32(signed), nil
		}
	case KindInt64:
		return signed, nil
	case KindUint64:
		if !negative {
			return uint64(signed), nil
		}
	}

	return nil, mismatch
}
