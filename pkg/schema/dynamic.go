package schema

import (
	"strings"
	"sync"
)

// FieldSpec declares one field of a dynamic record type, the way a schema
// file or the registration API spells it.
//
// Type is one of the scalar names (int, bool, float, string, bytes) or the
// name of a previously registered type for a nested message. A map field
// sets Type to "map" plus Key and Value.
type FieldSpec struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Repeated bool   `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
}

// DynamicRegistry holds record descriptors built from FieldSpec lists rather
// than Go types. Nested message references resolve against names registered
// earlier, which also rules out cyclic graphs by construction.
type DynamicRegistry struct {
	mu    sync.RWMutex
	types map[string]*RecordDescriptor
	order []string
}

// NewDynamicRegistry creates an empty dynamic type registry.
func NewDynamicRegistry() *DynamicRegistry {
	return &DynamicRegistry{types: make(map[string]*RecordDescriptor)}
}

// Register builds and stores a descriptor for a named record type. Field
// numbers are assigned by declaration order starting at 1, exactly as for
// reflected types.
func (r *DynamicRegistry) Register(name string, fields []FieldSpec) (*RecordDescriptor, error) {
	if name == "" {
		return nil, &Error{Type: name, Reason: "type name is required"}
	}
	// Type names become storage key prefixes, so the separator is reserved.
	if strings.Contains(name, "/") {
		return nil, &Error{Type: name, Reason: "type name must not contain '/'"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; ok {
		return nil, &Error{Type: name, Reason: "type already registered"}
	}

	descriptors := make([]*FieldDescriptor, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, spec := range fields {
		if spec.Name == "" {
			return nil, &Error{Type: name, Reason: "field name is required"}
		}
		if seen[spec.Name] {
			return nil, &Error{Type: name, Field: spec.Name, Reason: "duplicate field name"}
		}
		seen[spec.Name] = true

		fd, err := r.buildField(name, spec, int32(i+1))
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, fd)
	}

	d := newRecordDescriptor(name, nil, descriptors)
	r.types[name] = d
	r.order = append(r.order, name)
	return d, nil
}

// Lookup returns the descriptor registered under name.
func (r *DynamicRegistry) Lookup(name string) (*RecordDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Names lists registered type names in registration order.
func (r *DynamicRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *DynamicRegistry) buildField(typeName string, spec FieldSpec, number int32) (*FieldDescriptor, error) {
	if spec.Type == "map" {
		if spec.Repeated {
			return nil, &Error{Type: typeName, Field: spec.Name, Reason: "map field cannot be repeated"}
		}
		if spec.Optional {
			return nil, &Error{Type: typeName, Field: spec.Name, Reason: "map field cannot be optional"}
		}
		return r.buildMapField(typeName, spec, number)
	}

	elem, err := r.resolve(typeName, spec.Name, spec.Type)
	if err != nil {
		return nil, err
	}

	if spec.Repeated {
		if spec.Optional {
			return nil, &Error{Type: typeName, Field: spec.Name, Reason: "repeated field cannot be optional"}
		}
		elem.Index = -1
		return &FieldDescriptor{
			Name:    spec.Name,
			Number:  number,
			Kind:    KindRepeated,
			Elem:    elem,
			Message: elem.Message,
			Index:   -1,
		}, nil
	}

	elem.Name = spec.Name
	elem.Number = number
	elem.Optional = spec.Optional
	elem.Index = -1
	return elem, nil
}

func (r *DynamicRegistry) buildMapField(typeName string, spec FieldSpec, number int32) (*FieldDescriptor, error) {
	var key ScalarType
	switch spec.Key {
	case "string":
		key = ScalarString
	case "int":
		key = ScalarInt
	default:
		return nil, &Error{Type: typeName, Field: spec.Name, Reason: "map key must be string or int"}
	}

	value, err := r.resolve(typeName, spec.Name, spec.Value)
	if err != nil {
		return nil, err
	}
	value.Index = -1

	return &FieldDescriptor{
		Name:    spec.Name,
		Number:  number,
		Kind:    KindMap,
		Key:     key,
		Elem:    value,
		Message: value.Message,
		Entry:   newEntryDescriptor(spec.Name+"Entry", key, value),
		Index:   -1,
	}, nil
}

// resolve maps a type name to a fresh field descriptor: a scalar subtype or
// a reference to an already registered message.
func (r *DynamicRegistry) resolve(typeName, fieldName, ref string) (*FieldDescriptor, error) {
	switch ref {
	case "int":
		return &FieldDescriptor{Kind: KindScalar, Scalar: ScalarInt}, nil
	case "bool":
		return &FieldDescriptor{Kind: KindScalar, Scalar: ScalarBool}, nil
	case "float":
		return &FieldDescriptor{Kind: KindScalar, Scalar: ScalarFloat}, nil
	case "string":
		return &FieldDescriptor{Kind: KindScalar, Scalar: ScalarString}, nil
	case "bytes":
		return &FieldDescriptor{Kind: KindScalar, Scalar: ScalarBytes}, nil
	case "":
		return nil, &Error{Type: typeName, Field: fieldName, Reason: "field type is required"}
	}
	if nested, ok := r.types[ref]; ok {
		return &FieldDescriptor{Kind: KindMessage, Message: nested}, nil
	}
	return nil, &Error{Type: typeName, Field: fieldName, Reason: "unknown type " + ref}
}
