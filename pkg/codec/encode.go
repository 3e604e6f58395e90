package codec

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/ssargent/protostruct/pkg/schema"
	"github.com/ssargent/protostruct/pkg/wire"
)

// appendMessage encodes one struct value against its descriptor, field by
// field in declaration order.
func appendMessage(buf []byte, desc *schema.RecordDescriptor, rv reflect.Value) ([]byte, error) {
	for _, fd := range desc.Fields {
		var err error
		buf, err = appendField(buf, fd, rv.Field(fd.Index))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendField(buf []byte, fd *schema.FieldDescriptor, fv reflect.Value) ([]byte, error) {
	if fd.Optional {
		// Total omission is the only wire mechanism for optional semantics;
		// there is no "present with default value" marker.
		if fv.IsNil() {
			return buf, nil
		}
		fv = fv.Elem()
	}

	switch fd.Kind {
	case schema.KindScalar, schema.KindEnum:
		return appendScalar(buf, fd.Number, fd.Scalar, fv), nil

	case schema.KindMessage:
		return appendSubmessage(buf, fd.Number, fd.Message, fv)

	case schema.KindRepeated:
		if fv.IsNil() || fv.Len() == 0 {
			return buf, nil
		}
		for i := 0; i < fv.Len(); i++ {
			var err error
			buf, err = appendElement(buf, fd.Number, fd.Elem, fv.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case schema.KindMap:
		return appendMap(buf, fd, fv)
	}
	return nil, fmt.Errorf("codec: unhandled field kind %v", fd.Kind)
}

// appendElement encodes one repeated element or map value: a scalar, an
// enum, or a nested message.
func appendElement(buf []byte, number int32, elem *schema.FieldDescriptor, fv reflect.Value) ([]byte, error) {
	if elem.Kind == schema.KindMessage {
		return appendSubmessage(buf, number, elem.Message, fv)
	}
	return appendScalar(buf, number, elem.Scalar, fv), nil
}

func appendSubmessage(buf []byte, number int32, desc *schema.RecordDescriptor, fv reflect.Value) ([]byte, error) {
	// A nil *struct element encodes as an empty submessage.
	var sub []byte
	if fv.Kind() == reflect.Ptr {
		if !fv.IsNil() {
			var err error
			sub, err = appendMessage(nil, desc, fv.Elem())
			if err != nil {
				return nil, err
			}
		}
	} else {
		var err error
		sub, err = appendMessage(nil, desc, fv)
		if err != nil {
			return nil, err
		}
	}
	buf = wire.AppendTag(buf, number, wire.TypeBytes)
	return wire.AppendBytes(buf, sub), nil
}

func appendScalar(buf []byte, number int32, st schema.ScalarType, fv reflect.Value) []byte {
	switch st {
	case schema.ScalarInt:
		buf = wire.AppendTag(buf, number, wire.TypeVarint)
		if isUnsigned(fv.Kind()) {
			return wire.AppendVarint(buf, fv.Uint())
		}
		// Two's-complement 64-bit varint; negative values always take the
		// full 10 bytes. Not zigzag.
		return wire.AppendVarint(buf, uint64(fv.Int()))
	case schema.ScalarBool:
		buf = wire.AppendTag(buf, number, wire.TypeVarint)
		if fv.Bool() {
			return wire.AppendVarint(buf, 1)
		}
		return wire.AppendVarint(buf, 0)
	case schema.ScalarFloat:
		buf = wire.AppendTag(buf, number, wire.TypeFixed64)
		return wire.AppendFixed64(buf, math.Float64bits(fv.Float()))
	case schema.ScalarString:
		buf = wire.AppendTag(buf, number, wire.TypeBytes)
		return wire.AppendBytes(buf, []byte(fv.String()))
	default: // schema.ScalarBytes
		buf = wire.AppendTag(buf, number, wire.TypeBytes)
		return wire.AppendBytes(buf, fv.Bytes())
	}
}

// appendMap emits one synthetic {1: key, 2: value} entry submessage per map
// entry. Go maps have no iteration order, so entries are emitted in sorted
// key order to keep output deterministic.
func appendMap(buf []byte, fd *schema.FieldDescriptor, fv reflect.Value) ([]byte, error) {
	if fv.IsNil() || fv.Len() == 0 {
		return buf, nil
	}

	keys := fv.MapKeys()
	sortKeys(fd.Key, keys)

	keyField := fd.Entry.Fields[0]
	for _, key := range keys {
		entry := appendScalar(nil, keyField.Number, fd.Key, key)
		entry, err := appendElement(entry, 2, fd.Elem, fv.MapIndex(key))
		if err != nil {
			return nil, err
		}
		buf = wire.AppendTag(buf, fd.Number, wire.TypeBytes)
		buf = wire.AppendBytes(buf, entry)
	}
	return buf, nil
}

func sortKeys(key schema.ScalarType, keys []reflect.Value) {
	if key == schema.ScalarString {
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		return
	}
	if len(keys) > 0 && isUnsigned(keys[0].Kind()) {
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
		return
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
