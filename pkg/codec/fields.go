package codec

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ssargent/protostruct/pkg/schema"
	"github.com/ssargent/protostruct/pkg/wire"
)

// EncodeFields serializes a field-value mapping against a descriptor. It is
// the encode path for dynamic descriptors, where no Go type exists to
// reflect over; the CLI and the HTTP API feed it JSON-decoded values.
//
// Accepted value shapes are the JSON ones: numbers as float64 or int64,
// bool, string, []byte or base64 string for bytes, []interface{} for
// repeated fields, map[string]interface{} for nested messages and for map
// fields (integer map keys are decimal strings, as in protobuf JSON).
// Fields absent from the mapping are omitted from the output.
func EncodeFields(desc *schema.RecordDescriptor, fields map[string]interface{}) ([]byte, error) {
	return appendFieldMap(nil, desc, fields)
}

func appendFieldMap(buf []byte, desc *schema.RecordDescriptor, fields map[string]interface{}) ([]byte, error) {
	for name := range fields {
		if _, ok := desc.FieldByName(name); !ok {
			return nil, fmt.Errorf("codec: %s has no field %s", desc.Name, name)
		}
	}

	for _, fd := range desc.Fields {
		raw, ok := fields[fd.Name]
		if !ok || raw == nil {
			continue
		}
		var err error
		buf, err = appendRawField(buf, fd, raw)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendRawField(buf []byte, fd *schema.FieldDescriptor, raw interface{}) ([]byte, error) {
	switch fd.Kind {
	case schema.KindScalar, schema.KindEnum:
		return appendRawScalar(buf, fd.Number, fd.Name, fd.Scalar, raw)

	case schema.KindMessage:
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("codec: field %s: expected object, got %T", fd.Name, raw)
		}
		sub, err := appendFieldMap(nil, fd.Message, nested)
		if err != nil {
			return nil, err
		}
		buf = wire.AppendTag(buf, fd.Number, wire.TypeBytes)
		return wire.AppendBytes(buf, sub), nil

	case schema.KindRepeated:
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("codec: field %s: expected list, got %T", fd.Name, raw)
		}
		for _, item := range list {
			var err error
			buf, err = appendRawElement(buf, fd.Number, fd.Name, fd.Elem, item)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case schema.KindMap:
		return appendRawMap(buf, fd, raw)
	}
	return nil, fmt.Errorf("codec: field %s: unhandled kind %s", fd.Name, fd.Kind)
}

func appendRawElement(buf []byte, number int32, name string, elem *schema.FieldDescriptor, raw interface{}) ([]byte, error) {
	if elem.Kind == schema.KindMessage {
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("codec: field %s: expected object, got %T", name, raw)
		}
		sub, err := appendFieldMap(nil, elem.Message, nested)
		if err != nil {
			return nil, err
		}
		buf = wire.AppendTag(buf, number, wire.TypeBytes)
		return wire.AppendBytes(buf, sub), nil
	}
	return appendRawScalar(buf, number, name, elem.Scalar, raw)
}

func appendRawScalar(buf []byte, number int32, name string, st schema.ScalarType, raw interface{}) ([]byte, error) {
	switch st {
	case schema.ScalarInt:
		v, err := coerceInt(raw)
		if err != nil {
			return nil, fmt.Errorf("codec: field %s: %w", name, err)
		}
		buf = wire.AppendTag(buf, number, wire.TypeVarint)
		return wire.AppendVarint(buf, uint64(v)), nil

	case schema.ScalarBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("codec: field %s: expected bool, got %T", name, raw)
		}
		buf = wire.AppendTag(buf, number, wire.TypeVarint)
		if v {
			return wire.AppendVarint(buf, 1), nil
		}
		return wire.AppendVarint(buf, 0), nil

	case schema.ScalarFloat:
		var v float64
		switch n := raw.(type) {
		case float64:
			v = n
		case int64:
			v = float64(n)
		case int:
			v = float64(n)
		default:
			return nil, fmt.Errorf("codec: field %s: expected number, got %T", name, raw)
		}
		buf = wire.AppendTag(buf, number, wire.TypeFixed64)
		return wire.AppendFixed64(buf, math.Float64bits(v)), nil

	case schema.ScalarString:
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("codec: field %s: expected string, got %T", name, raw)
		}
		buf = wire.AppendTag(buf, number, wire.TypeBytes)
		return wire.AppendBytes(buf, []byte(v)), nil

	default: // schema.ScalarBytes
		var payload []byte
		switch v := raw.(type) {
		case []byte:
			payload = v
		case string:
			decoded, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, fmt.Errorf("codec: field %s: invalid base64: %w", name, err)
			}
			payload = decoded
		default:
			return nil, fmt.Errorf("codec: field %s: expected bytes, got %T", name, raw)
		}
		buf = wire.AppendTag(buf, number, wire.TypeBytes)
		return wire.AppendBytes(buf, payload), nil
	}
}

func appendRawMap(buf []byte, fd *schema.FieldDescriptor, raw interface{}) ([]byte, error) {
	entries, err := collectRawEntries(fd, raw)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		entry, err := appendRawScalar(nil, 1, fd.Name, fd.Key, e.key)
		if err != nil {
			return nil, err
		}
		entry, err = appendRawElement(entry, 2, fd.Name, fd.Elem, e.value)
		if err != nil {
			return nil, err
		}
		buf = wire.AppendTag(buf, fd.Number, wire.TypeBytes)
		buf = wire.AppendBytes(buf, entry)
	}
	return buf, nil
}

type rawEntry struct {
	key   interface{}
	value interface{}
}

// collectRawEntries normalizes a map value into sorted entries. JSON objects
// spell integer keys as decimal strings; both forms are accepted.
func collectRawEntries(fd *schema.FieldDescriptor, raw interface{}) ([]rawEntry, error) {
	var entries []rawEntry

	switch m := raw.(type) {
	case map[string]interface{}:
		for k, v := range m {
			if fd.Key == schema.ScalarInt {
				parsed, err := strconv.ParseInt(k, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("codec: field %s: map key %q is not an integer", fd.Name, k)
				}
				entries = append(entries, rawEntry{key: parsed, value: v})
				continue
			}
			entries = append(entries, rawEntry{key: k, value: v})
		}
	case map[int64]interface{}:
		if fd.Key != schema.ScalarInt {
			return nil, fmt.Errorf("codec: field %s: expected string map keys", fd.Name)
		}
		for k, v := range m {
			entries = append(entries, rawEntry{key: k, value: v})
		}
	default:
		return nil, fmt.Errorf("codec: field %s: expected map, got %T", fd.Name, raw)
	}

	if fd.Key == schema.ScalarInt {
		sort.Slice(entries, func(i, j int) bool { return entries[i].key.(int64) < entries[j].key.(int64) })
	} else {
		sort.Slice(entries, func(i, j int) bool { return entries[i].key.(string) < entries[j].key.(string) })
	}
	return entries, nil
}

func coerceInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}
