package codec

import (
	"fmt"
	"reflect"

	"github.com/ssargent/protostruct/pkg/schema"
)

// materialize constructs a struct instance from a decoded field-value
// mapping. Fields missing from the mapping keep their zero value; decoding
// yields absence and materialization preserves it.
func materialize(rv reflect.Value, desc *schema.RecordDescriptor, fields map[string]interface{}) error {
	for _, fd := range desc.Fields {
		raw, ok := fields[fd.Name]
		if !ok {
			continue
		}
		if err := setField(rv.Field(fd.Index), fd, raw); err != nil {
			return err
		}
	}
	return nil
}

func setField(fv reflect.Value, fd *schema.FieldDescriptor, raw interface{}) error {
	if fd.Optional {
		ptr := reflect.New(fv.Type().Elem())
		if err := setSingular(ptr.Elem(), fd, raw); err != nil {
			return err
		}
		fv.Set(ptr)
		return nil
	}

	switch fd.Kind {
	case schema.KindRepeated:
		return setRepeated(fv, fd, raw)
	case schema.KindMap:
		return setMap(fv, fd, raw)
	default:
		return setSingular(fv, fd, raw)
	}
}

func setSingular(fv reflect.Value, fd *schema.FieldDescriptor, raw interface{}) error {
	if fd.Kind == schema.KindMessage {
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("codec: field %s: expected nested mapping, got %T", fd.Name, raw)
		}
		return materialize(fv, fd.Message, nested)
	}
	return setScalar(fv, fd.Name, fd.Scalar, raw)
}

func setScalar(fv reflect.Value, name string, st schema.ScalarType, raw interface{}) error {
	switch st {
	case schema.ScalarInt:
		v, ok := raw.(int64)
		if !ok {
			return fmt.Errorf("codec: field %s: expected int64, got %T", name, raw)
		}
		if isUnsigned(fv.Kind()) {
			fv.SetUint(uint64(v))
		} else {
			fv.SetInt(v)
		}
	case schema.ScalarBool:
		v, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("codec: field %s: expected bool, got %T", name, raw)
		}
		fv.SetBool(v)
	case schema.ScalarFloat:
		v, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("codec: field %s: expected float64, got %T", name, raw)
		}
		fv.SetFloat(v)
	case schema.ScalarString:
		v, ok := raw.(string)
		if !ok {
			return fmt.Errorf("codec: field %s: expected string, got %T", name, raw)
		}
		fv.SetString(v)
	default: // schema.ScalarBytes
		v, ok := raw.([]byte)
		if !ok {
			return fmt.Errorf("codec: field %s: expected bytes, got %T", name, raw)
		}
		fv.SetBytes(v)
	}
	return nil
}

func setRepeated(fv reflect.Value, fd *schema.FieldDescriptor, raw interface{}) error {
	list, ok := raw.([]interface{})
	if !ok {
		return fmt.Errorf("codec: field %s: expected list, got %T", fd.Name, raw)
	}
	out := reflect.MakeSlice(fv.Type(), len(list), len(list))
	for i, item := range list {
		if err := setElement(out.Index(i), fd.Elem, fd.Name, item); err != nil {
			return err
		}
	}
	fv.Set(out)
	return nil
}

// setElement fills one repeated element or map value slot, allocating when
// the slot is a *struct.
func setElement(fv reflect.Value, elem *schema.FieldDescriptor, name string, raw interface{}) error {
	if elem.Kind == schema.KindMessage {
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("codec: field %s: expected nested mapping, got %T", name, raw)
		}
		if fv.Kind() == reflect.Ptr {
			ptr := reflect.New(fv.Type().Elem())
			if err := materialize(ptr.Elem(), elem.Message, nested); err != nil {
				return err
			}
			fv.Set(ptr)
			return nil
		}
		return materialize(fv, elem.Message, nested)
	}
	return setScalar(fv, name, elem.Scalar, raw)
}

func setMap(fv reflect.Value, fd *schema.FieldDescriptor, raw interface{}) error {
	out := reflect.MakeMap(fv.Type())
	keyType := fv.Type().Key()
	elemType := fv.Type().Elem()

	fill := func(key reflect.Value, value interface{}) error {
		slot := reflect.New(elemType).Elem()
		if err := setElement(slot, fd.Elem, fd.Name, value); err != nil {
			return err
		}
		out.SetMapIndex(key, slot)
		return nil
	}

	switch m := raw.(type) {
	case map[string]interface{}:
		for k, v := range m {
			if err := fill(reflect.ValueOf(k).Convert(keyType), v); err != nil {
				return err
			}
		}
	case map[int64]interface{}:
		for k, v := range m {
			if err := fill(reflect.ValueOf(k).Convert(keyType), v); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("codec: field %s: expected map, got %T", fd.Name, raw)
	}

	fv.Set(out)
	return nil
}
