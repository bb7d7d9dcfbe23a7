package typeinference

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// RecordField is one named member of a projection record.
type RecordField struct {
	Name string
	Type Type
}

// RecordType is the structural type of a new(a as X, ...) projection. Record
// types are interned per field signature, so equal signatures share one
// *RecordType and identity comparison is type equality.
type RecordType struct {
	Fields    []RecordField
	signature string
}

// recordTypes interns record types by identity key for the lifetime of the
// process. Entries are never evicted: the number of distinct projection
// shapes is bounded by the expressions an application parses.
var recordTypes sync.Map

// RecordTypeOf returns the interned record type for fields. Model, enum and
// record field types are keyed by identity, so equally named types from
// different registries never share a record type.
func RecordTypeOf(fields []RecordField) *RecordType {
	parts := make([]string, len(fields))
	keys := make([]string, len(fields))

	for i, f := range fields {
		parts[i] = f.Name + ":" + f.Type.String()
		keys[i] = f.Name + ":" + identityKey(f.Type)
	}

	key := "{" + strings.Join(keys, ", ") + "}"

	if existing, ok := recordTypes.Load(key); ok {
		return existing.(*RecordType)
	}

	rt := &RecordType{
		Fields:    append([]RecordField(nil), fields...),
		signature: "{" + strings.Join(parts, ", ") + "}",
	}
	actual, _ := recordTypes.LoadOrStore(key, rt)

	return actual.(*RecordType)
}

// identityKey renders t with the addresses of its named types.
func identityKey(t Type) string {
	nullable := ""
	if t.Nullable {
		nullable = "?"
	}

	switch {
	case t.Elem != nil:
		return "List<" + identityKey(*t.Elem) + ">"
	case t.Model != nil:
		return fmt.Sprintf("model:%s@%p", t.Model.Name(), t.Model)
	case t.Record != nil:
		return fmt.Sprintf("record@%p", t.Record)
	case t.Enum != nil:
		return fmt.Sprintf("enum:%s@%p%s", t.Enum.Name, t.Enum, nullable)
	}

	return t.String()
}

// Field returns the index of a field by case-sensitive name.
func (r *RecordType) Field(name string) (int, bool) {
	for i, f := range r.Fields {
		if f.Name == name {
			return i, true
		}
	}

	return -1, false
}

func (r *RecordType) String() string {
	return r.signature
}

// Record is the runtime value of a projection.
type Record struct {
	Type   *RecordType
	Values []any
}

// Get returns a field value by name.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.Type.Field(name)
	if !ok {
		return nil, false
	}

	return r.Values[i], true
}

// Equal reports value equality: same record type and equal field values.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.Type != other.Type {
		return false
	}

	for i, v := range r.Values {
		if !ValuesEqual(v, other.Values[i]) {
			return false
		}
	}

	return true
}

// Hash returns a hash consistent with Equal.
func (r *Record) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(r.Type.signature)

	for _, v := range r.Values {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(hashKey(v))
	}

	return d.Sum64()
}

func (r *Record) String() string {
	var sb strings.Builder

	sb.WriteString("{")

	for i, f := range r.Type.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "%s = %s", f.Name, FormatValue(r.Values[i]))
	}

	sb.WriteString("}")

	return sb.String()
}
