package schema

import (
	"reflect"
	"sync"
)

// Registry is the process-wide descriptor cache: built lazily on first use,
// never invalidated. The mutex is a build-once guard; once a descriptor is
// published it is immutable and reads need no synchronization.
type Registry struct {
	mu    sync.Mutex
	types map[reflect.Type]*RecordDescriptor
}

// NewRegistry creates an empty descriptor cache.
func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]*RecordDescriptor)}
}

// Descriptor returns the cached descriptor for a struct type, building it on
// first use. Pointer types are unwrapped. Unsupported field types and cyclic
// record graphs fail here, at registration time, never during encode/decode.
func (r *Registry) Descriptor(t reflect.Type) (*RecordDescriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &Error{Type: t.String(), Reason: "record type must be a struct"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.types[t]; ok {
		return d, nil
	}

	b := &builder{registry: r, inProgress: make(map[reflect.Type]bool)}
	return b.message(t)
}

// builder performs one depth-first descriptor construction pass. The
// inProgress set is the cycle marker: revisiting a type before its descriptor
// is finished means the record graph is cyclic.
type builder struct {
	registry   *Registry
	inProgress map[reflect.Type]bool
}

func (b *builder) message(t reflect.Type) (*RecordDescriptor, error) {
	if d, ok := b.registry.types[t]; ok {
		return d, nil
	}
	if b.inProgress[t] {
		return nil, &Error{Type: t.String(), Reason: "cyclic record type graph"}
	}
	b.inProgress[t] = true
	defer delete(b.inProgress, t)

	var fields []*FieldDescriptor
	number := int32(1)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fd, err := b.field(sf, number)
		if err != nil {
			return nil, err
		}
		fd.Index = i
		fields = append(fields, fd)
		number++
	}

	d := newRecordDescriptor(t.Name(), t, fields)
	b.registry.types[t] = d
	return d, nil
}

// field classifies one declared field. Positions are assigned strictly by
// declaration order starting at 1; they are the sole determinant of wire
// compatibility between independently built descriptors.
func (b *builder) field(sf reflect.StructField, number int32) (*FieldDescriptor, error) {
	t := sf.Type
	optional := false

	if t.Kind() == reflect.Ptr {
		optional = true
		t = t.Elem()
		switch t.Kind() {
		case reflect.Slice, reflect.Map, reflect.Ptr:
			return nil, &Error{
				Type:   sf.Type.String(),
				Field:  sf.Name,
				Reason: "optional wrapper only applies to scalar, enum, or message fields",
			}
		}
	}

	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			// []byte is a bytes scalar, not a repeated field.
			break
		}
		elem, err := b.element(sf.Name, t.Elem())
		if err != nil {
			return nil, err
		}
		return &FieldDescriptor{
			Name:    sf.Name,
			Number:  number,
			Kind:    KindRepeated,
			Elem:    elem,
			Message: elem.Message,
			Type:    sf.Type,
		}, nil

	case reflect.Map:
		return b.mapField(sf, number)

	case reflect.Struct:
		nested, err := b.message(t)
		if err != nil {
			return nil, err
		}
		return &FieldDescriptor{
			Name:     sf.Name,
			Number:   number,
			Kind:     KindMessage,
			Optional: optional,
			Message:  nested,
			Type:     sf.Type,
		}, nil
	}

	fd, err := b.terminal(sf.Name, t)
	if err != nil {
		return nil, err
	}
	fd.Number = number
	fd.Optional = optional
	fd.Type = sf.Type
	return fd, nil
}

// element classifies the element type of a repeated field: scalar, enum, or
// message. Nested containers are rejected.
func (b *builder) element(fieldName string, t reflect.Type) (*FieldDescriptor, error) {
	elemType := t
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil, &Error{
				Type:   t.String(),
				Field:  fieldName,
				Reason: "repeated element must be scalar, enum, or message",
			}
		}
	case reflect.Map:
		return nil, &Error{
			Type:   t.String(),
			Field:  fieldName,
			Reason: "repeated element must be scalar, enum, or message",
		}
	case reflect.Struct:
		nested, err := b.message(t)
		if err != nil {
			return nil, err
		}
		return &FieldDescriptor{
			Kind:    KindMessage,
			Message: nested,
			Index:   -1,
			Type:    elemType,
		}, nil
	}
	fd, err := b.terminal(fieldName, t)
	if err != nil {
		return nil, err
	}
	fd.Index = -1
	fd.Type = elemType
	return fd, nil
}

func (b *builder) mapField(sf reflect.StructField, number int32) (*FieldDescriptor, error) {
	t := sf.Type

	var key ScalarType
	switch {
	case t.Key().Kind() == reflect.String:
		key = ScalarString
	case isIntegerKind(t.Key().Kind()):
		key = ScalarInt
	default:
		return nil, &Error{
			Type:   t.String(),
			Field:  sf.Name,
			Reason: "map key must be a string or integer type",
		}
	}

	if t.Elem().Kind() == reflect.Slice && t.Elem().Elem().Kind() != reflect.Uint8 {
		return nil, &Error{
			Type:   t.String(),
			Field:  sf.Name,
			Reason: "map of repeated is not supported",
		}
	}
	value, err := b.element(sf.Name, t.Elem())
	if err != nil {
		return nil, err
	}

	entryName := sf.Name + "Entry"
	return &FieldDescriptor{
		Name:    sf.Name,
		Number:  number,
		Kind:    KindMap,
		Key:     key,
		Elem:    value,
		Message: value.Message,
		Entry:   newEntryDescriptor(entryName, key, value),
		Type:    t,
	}, nil
}

// terminal classifies a non-container type: a scalar subtype or an enum.
// The subtype follows the declared type identity alone.
func (b *builder) terminal(fieldName string, t reflect.Type) (*FieldDescriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return &FieldDescriptor{Name: fieldName, Kind: KindScalar, Scalar: ScalarBool}, nil
	case reflect.Float64:
		return &FieldDescriptor{Name: fieldName, Kind: KindScalar, Scalar: ScalarFloat}, nil
	case reflect.String:
		return &FieldDescriptor{Name: fieldName, Kind: KindScalar, Scalar: ScalarString}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &FieldDescriptor{Name: fieldName, Kind: KindScalar, Scalar: ScalarBytes}, nil
		}
	}
	if isIntegerKind(t.Kind()) {
		// A defined integer type is an enumeration of named values; the wire
		// bytes are indistinguishable from a plain integer scalar.
		if t.PkgPath() != "" {
			return &FieldDescriptor{Name: fieldName, Kind: KindEnum, Scalar: ScalarInt}, nil
		}
		return &FieldDescriptor{Name: fieldName, Kind: KindScalar, Scalar: ScalarInt}, nil
	}
	return nil, &Error{
		Type:   t.String(),
		Field:  fieldName,
		Reason: "unsupported field type",
	}
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
