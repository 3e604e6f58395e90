package schema

import (
	"reflect"

	"github.com/ssargent/protostruct/pkg/wire"
)

// Kind classifies how a field is represented on the wire.
type Kind int

const (
	KindScalar   Kind = iota // int, bool, float, string, bytes
	KindEnum                 // named integer type, varint of the backing value
	KindMessage              // nested record
	KindRepeated             // ordered sequence, one tag+value per element
	KindMap                  // repeated synthetic {1: key, 2: value} entries
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindEnum:
		return "enum"
	case KindMessage:
		return "message"
	case KindRepeated:
		return "repeated"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ScalarType identifies the concrete encoding of a scalar field. The subtype
// is fixed by the declared type, never by value magnitude: an integer field
// always varint-encodes and a float field always uses fixed64.
type ScalarType int

const (
	ScalarInt ScalarType = iota
	ScalarBool
	ScalarFloat
	ScalarString
	ScalarBytes
)

func (s ScalarType) String() string {
	switch s {
	case ScalarInt:
		return "int"
	case ScalarBool:
		return "bool"
	case ScalarFloat:
		return "float"
	case ScalarString:
		return "string"
	case ScalarBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// WireType returns the wire category for the scalar subtype.
func (s ScalarType) WireType() wire.Type {
	switch s {
	case ScalarInt, ScalarBool:
		return wire.TypeVarint
	case ScalarFloat:
		return wire.TypeFixed64
	default:
		return wire.TypeBytes
	}
}

// FieldDescriptor is the static metadata for one record field: its name, its
// 1-based wire field number, and how it encodes. Immutable once built.
type FieldDescriptor struct {
	Name     string
	Number   int32
	Kind     Kind
	Scalar   ScalarType // valid for KindScalar
	Optional bool       // pointer-typed field; absence means total omission

	Elem    *FieldDescriptor  // KindRepeated element, KindMap value
	Message *RecordDescriptor // KindMessage nested descriptor
	Key     ScalarType        // KindMap key: ScalarString or ScalarInt
	Entry   *RecordDescriptor // KindMap synthetic 2-field entry descriptor

	// Reflection plumbing; zero-valued for dynamic descriptors.
	Index int          // struct field index, -1 when dynamic
	Type  reflect.Type // declared Go type, nil when dynamic
}

// WireType returns the wire category a value of this field carries. Repeated
// fields tag each element independently, so their wire type is the element's.
func (fd *FieldDescriptor) WireType() wire.Type {
	switch fd.Kind {
	case KindScalar:
		return fd.Scalar.WireType()
	case KindEnum:
		return wire.TypeVarint
	case KindRepeated:
		return fd.Elem.WireType()
	default:
		return wire.TypeBytes
	}
}

// RecordDescriptor owns the ordered field table for one record type. Built
// once, frozen afterward; safe for unsynchronized concurrent reads.
type RecordDescriptor struct {
	Name   string
	Type   reflect.Type // nil for dynamic descriptors
	Fields []*FieldDescriptor

	byName   map[string]*FieldDescriptor
	byNumber map[int32]*FieldDescriptor
}

func newRecordDescriptor(name string, t reflect.Type, fields []*FieldDescriptor) *RecordDescriptor {
	d := &RecordDescriptor{
		Name:     name,
		Type:     t,
		Fields:   fields,
		byName:   make(map[string]*FieldDescriptor, len(fields)),
		byNumber: make(map[int32]*FieldDescriptor, len(fields)),
	}
	for _, fd := range fields {
		d.byName[fd.Name] = fd
		d.byNumber[fd.Number] = fd
	}
	return d
}

// FieldByName looks a field up by its declared name.
func (d *RecordDescriptor) FieldByName(name string) (*FieldDescriptor, bool) {
	fd, ok := d.byName[name]
	return fd, ok
}

// FieldByNumber looks a field up by its wire field number.
func (d *RecordDescriptor) FieldByNumber(number int32) (*FieldDescriptor, bool) {
	fd, ok := d.byNumber[number]
	return fd, ok
}

// newEntryDescriptor builds the synthetic 2-field descriptor protobuf uses
// for one map entry: {1: key, 2: value}.
func newEntryDescriptor(name string, key ScalarType, value *FieldDescriptor) *RecordDescriptor {
	keyField := &FieldDescriptor{
		Name:   "key",
		Number: 1,
		Kind:   KindScalar,
		Scalar: key,
		Index:  -1,
	}
	valueField := &FieldDescriptor{
		Name:    "value",
		Number:  2,
		Kind:    value.Kind,
		Scalar:  value.Scalar,
		Message: value.Message,
		Index:   -1,
		Type:    value.Type,
	}
	return newRecordDescriptor(name, nil, []*FieldDescriptor{keyField, valueField})
}
