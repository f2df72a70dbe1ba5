// Package schema holds the self-describing type system materialized from a
// log's embedded TypeInfo chunk: the set of primitive names, the ordered
// field layout of each compound record, and the ordered value table of each
// enum. It mirrors the role foxglove/mcap's Schema/Channel registries play
// for that format, except the type descriptors here are recursive record
// layouts rather than opaque schema blobs.
package schema

import (
	"fmt"
	"sort"

	"github.com/badger-rl/logreader/internal/logerr"
)

// ArrayKind describes the array suffix, if any, on a field's type expression.
type ArrayKind int

const (
	// NoArray means the type expression is a bare name.
	NoArray ArrayKind = iota
	// FixedArray means the type expression carries a T[N] suffix.
	FixedArray
	// DynamicArray means the type expression carries a T[] suffix, whose
	// length is read as a u32 at decode time.
	DynamicArray
)

// TypeExpr is a parsed field type expression: a base type name plus an
// optional array suffix.
type TypeExpr struct {
	Base      string
	Kind      ArrayKind
	FixedSize int // valid only when Kind == FixedArray
}

// Field is one (name, type) pair of a record descriptor, in wire order.
type Field struct {
	Name string
	Type TypeExpr
}

// Record is an ordered field layout; the order is the wire order.
type Record struct {
	Name   string
	Fields []Field
}

// Enum is an ordered value-name table; the wire representation of an enum
// instance is a single byte indexing into this table.
type Enum struct {
	Name   string
	Values []string
}

// IndexOf returns the position of name in the enum's value table.
func (e *Enum) IndexOf(name string) (int, bool) {
	for i, v := range e.Values {
		if v == name {
			return i, true
		}
	}
	return 0, false
}

// Registry holds the schema decoded from a log's TypeInfo chunk.
type Registry struct {
	primitives map[string]struct{}
	records    map[string]*Record
	enums      map[string]*Enum
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		primitives: make(map[string]struct{}),
		records:    make(map[string]*Record),
		enums:      make(map[string]*Enum),
	}
}

// RegisterPrimitive adds name to the primitive set.
func (r *Registry) RegisterPrimitive(name string) {
	r.primitives[name] = struct{}{}
}

// RegisterRecord stores a canonical ordered field list for name, parsing each
// field's raw type expression string.
func (r *Registry) RegisterRecord(name string, rawFields []struct{ Name, Type string }) error {
	fields := make([]Field, 0, len(rawFields))
	for _, rf := range rawFields {
		fields = append(fields, Field{Name: rf.Name, Type: ParseTypeExpr(rf.Type)})
	}
	r.records[name] = &Record{Name: name, Fields: fields}
	return nil
}

// RegisterEnum stores an ordered value list for name.
func (r *Registry) RegisterEnum(name string, values []string) {
	r.enums[name] = &Enum{Name: name, Values: append([]string(nil), values...)}
}

// IsPrimitive reports whether name was registered as a primitive.
func (r *Registry) IsPrimitive(name string) bool {
	_, ok := r.primitives[name]
	return ok
}

// IsRecord reports whether name was registered as a record.
func (r *Registry) IsRecord(name string) bool {
	_, ok := r.records[name]
	return ok
}

// IsEnum reports whether name was registered as an enum.
func (r *Registry) IsEnum(name string) bool {
	_, ok := r.enums[name]
	return ok
}

// RecordOf returns the record descriptor for name.
func (r *Registry) RecordOf(name string) (*Record, error) {
	rec, ok := r.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: record %q", logerr.ErrUnknownType, name)
	}
	return rec, nil
}

// EnumOf returns the enum descriptor for name.
func (r *Registry) EnumOf(name string) (*Enum, error) {
	e, ok := r.enums[name]
	if !ok {
		return nil, fmt.Errorf("%w: enum %q", logerr.ErrUnknownType, name)
	}
	return e, nil
}

// RecordNames returns every registered record name, sorted for deterministic
// iteration (e.g. when synthesizing decoders up front).
func (r *Registry) RecordNames() []string {
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
