package codec

import (
	"math"

	"github.com/ssargent/protostruct/pkg/schema"
	"github.com/ssargent/protostruct/pkg/wire"
)

// DecodeFields consumes a wire buffer as a flat sequence of tag+value units
// and reconstructs a field-name to value mapping against the descriptor.
// Units may arrive in any order and may repeat: singular fields are
// last-write-wins, repeated fields append in stream order, map entries
// overwrite on duplicate keys. Unknown field numbers are parsed structurally
// to keep the stream aligned and then discarded.
//
// Mapping values are typed: int64 for integers and enums, bool, float64,
// string, []byte, map[string]interface{} for nested messages, []interface{}
// for repeated fields, and map[string]interface{} or map[int64]interface{}
// for map fields. Absent fields are simply missing from the mapping.
func DecodeFields(data []byte, desc *schema.RecordDescriptor) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	off := 0
	for off < len(data) {
		number, wt, n, err := wire.ConsumeTag(data[off:])
		if err != nil {
			return nil, err
		}
		off += n

		fd, known := desc.FieldByNumber(number)
		if !known {
			n, err = skipValue(data[off:], wt)
			if err != nil {
				return nil, err
			}
			off += n
			continue
		}

		if want := fd.WireType(); wt != want {
			return nil, wire.Errorf("field %s (%d): wire type mismatch, got %s want %s",
				fd.Name, number, wt, want)
		}

		n, err = decodeKnown(data[off:], fd, fields)
		if err != nil {
			return nil, err
		}
		off += n
	}
	return fields, nil
}

// skipValue structurally parses a unit for a field number the descriptor
// does not know, so decoding stays aligned. The value is discarded, never
// surfaced as an error.
func skipValue(data []byte, wt wire.Type) (int, error) {
	switch wt {
	case wire.TypeVarint:
		_, n, err := wire.ConsumeVarint(data)
		return n, err
	case wire.TypeFixed64:
		_, n, err := wire.ConsumeFixed64(data)
		return n, err
	case wire.TypeBytes:
		_, n, err := wire.ConsumeBytes(data)
		return n, err
	default:
		return 0, wire.Errorf("cannot skip unsupported wire type %d", wt)
	}
}

func decodeKnown(data []byte, fd *schema.FieldDescriptor, fields map[string]interface{}) (int, error) {
	switch fd.Kind {
	case schema.KindScalar, schema.KindEnum:
		v, n, err := decodeScalar(data, fd.Scalar)
		if err != nil {
			return 0, err
		}
		fields[fd.Name] = v
		return n, nil

	case schema.KindMessage:
		payload, n, err := wire.ConsumeBytes(data)
		if err != nil {
			return 0, err
		}
		nested, err := DecodeFields(payload, fd.Message)
		if err != nil {
			return 0, err
		}
		fields[fd.Name] = nested
		return n, nil

	case schema.KindRepeated:
		v, n, err := decodeElement(data, fd.Elem)
		if err != nil {
			return 0, err
		}
		list, _ := fields[fd.Name].([]interface{})
		fields[fd.Name] = append(list, v)
		return n, nil

	case schema.KindMap:
		return decodeMapEntry(data, fd, fields)
	}
	return 0, wire.Errorf("field %s: unhandled kind %s", fd.Name, fd.Kind)
}

func decodeElement(data []byte, elem *schema.FieldDescriptor) (interface{}, int, error) {
	if elem.Kind == schema.KindMessage {
		payload, n, err := wire.ConsumeBytes(data)
		if err != nil {
			return nil, 0, err
		}
		nested, err := DecodeFields(payload, elem.Message)
		if err != nil {
			return nil, 0, err
		}
		return nested, n, nil
	}
	return decodeScalar(data, elem.Scalar)
}

func decodeScalar(data []byte, st schema.ScalarType) (interface{}, int, error) {
	switch st {
	case schema.ScalarInt:
		v, n, err := wire.ConsumeVarint(data)
		if err != nil {
			return nil, 0, err
		}
		return int64(v), n, nil
	case schema.ScalarBool:
		v, n, err := wire.ConsumeVarint(data)
		if err != nil {
			return nil, 0, err
		}
		return v != 0, n, nil
	case schema.ScalarFloat:
		v, n, err := wire.ConsumeFixed64(data)
		if err != nil {
			return nil, 0, err
		}
		return math.Float64frombits(v), n, nil
	case schema.ScalarString:
		payload, n, err := wire.ConsumeBytes(data)
		if err != nil {
			return nil, 0, err
		}
		return string(payload), n, nil
	default: // schema.ScalarBytes
		payload, n, err := wire.ConsumeBytes(data)
		if err != nil {
			return nil, 0, err
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, n, nil
	}
}

// decodeMapEntry decodes one {1: key, 2: value} entry submessage and inserts
// the pair into the field's mapping, overwriting duplicates.
func decodeMapEntry(data []byte, fd *schema.FieldDescriptor, fields map[string]interface{}) (int, error) {
	payload, n, err := wire.ConsumeBytes(data)
	if err != nil {
		return 0, err
	}
	entry, err := DecodeFields(payload, fd.Entry)
	if err != nil {
		return 0, err
	}

	// An absent entry field carries its zero value, per protobuf semantics.
	key, ok := entry["key"]
	if !ok {
		key = zeroScalar(fd.Key)
	}
	value, ok := entry["value"]
	if !ok {
		value = zeroValue(fd.Elem)
	}

	if fd.Key == schema.ScalarString {
		m, _ := fields[fd.Name].(map[string]interface{})
		if m == nil {
			m = make(map[string]interface{})
			fields[fd.Name] = m
		}
		m[key.(string)] = value
		return n, nil
	}
	m, _ := fields[fd.Name].(map[int64]interface{})
	if m == nil {
		m = make(map[int64]interface{})
		fields[fd.Name] = m
	}
	m[key.(int64)] = value
	return n, nil
}

func zeroScalar(st schema.ScalarType) interface{} {
	switch st {
	case schema.ScalarInt:
		return int64(0)
	case schema.ScalarBool:
		return false
	case schema.ScalarFloat:
		return float64(0)
	case schema.ScalarString:
		return ""
	default:
		return []byte(nil)
	}
}

func zeroValue(elem *schema.FieldDescriptor) interface{} {
	if elem.Kind == schema.KindMessage {
		return map[string]interface{}{}
	}
	return zeroScalar(elem.Scalar)
}
