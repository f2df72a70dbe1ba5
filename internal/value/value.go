// Package value defines the dynamically-typed tree used to represent a
// decoded instance of any registered record, enum, primitive, or array type.
// The original framework generates a Python class per record at runtime;
// since Go cannot synthesize types at runtime, every decoded instance is
// instead a node in this small sum type, and the schema.Record describing it
// is carried alongside for field lookups.
package value

import "github.com/badger-rl/logreader/internal/schema"

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindPrim Kind = iota
	KindRecord
	KindEnum
	KindArray
)

// Value is a decoded instance of some registered type. Exactly one of the
// Prim/Fields/Enum/Items fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	TypeName string

	// Prim holds the decoded Go value for KindPrim: one of bool, int8/16/32/64,
	// uint8/16/32/64, float32/64, or string.
	Prim any

	// Fields holds the ordered field values for KindRecord, in the same order
	// as the originating schema.Record's Fields.
	Fields []Value
	Record *schema.Record

	// Enum holds the selected value's name and ordinal for KindEnum.
	EnumName  string
	EnumIndex int

	// Items holds element values for KindArray.
	Items []Value
}

// NewPrim wraps a decoded primitive Go value.
func NewPrim(typeName string, v any) Value {
	return Value{Kind: KindPrim, TypeName: typeName, Prim: v}
}

// NewRecord wraps a decoded record's field values.
func NewRecord(rec *schema.Record, fields []Value) Value {
	return Value{Kind: KindRecord, TypeName: rec.Name, Record: rec, Fields: fields}
}

// NewEnum wraps a decoded enum selection.
func NewEnum(typeName, name string, index int) Value {
	return Value{Kind: KindEnum, TypeName: typeName, EnumName: name, EnumIndex: index}
}

// NewArray wraps a decoded array's elements.
func NewArray(elemTypeName string, items []Value) Value {
	return Value{Kind: KindArray, TypeName: elemTypeName, Items: items}
}

// Field returns the value of the named field of a KindRecord value, and
// whether that field exists.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindRecord {
		return Value{}, false
	}
	for i, f := range v.Record.Fields {
		if f.Name == name {
			return v.Fields[i], true
		}
	}
	return Value{}, false
}

// AsDict recursively converts the value into plain Go data (map[string]any,
// []any, or a bare scalar/string) suitable for JSON encoding or scripting use,
// mirroring the Python DataClass.asDict() convention the original framework
// exposes for every logged representation.
func (v Value) AsDict() any {
	switch v.Kind {
	case KindPrim:
		return v.Prim
	case KindEnum:
		return v.EnumName
	case KindArray:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.AsDict()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.Fields))
		for i, f := range v.Record.Fields {
			out[f.Name] = v.Fields[i].AsDict()
		}
		return out
	default:
		return nil
	}
}
