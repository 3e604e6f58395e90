package codec

import (
	"fmt"
	"reflect"

	"github.com/ssargent/protostruct/pkg/schema"
)

// Codec translates Go record types to and from the protostruct wire format.
// It owns the descriptor cache; encode and decode are pure apart from
// consulting it, so a single Codec is safe for concurrent use.
type Codec struct {
	types *schema.Registry
}

// New creates a codec with an empty descriptor cache.
func New() *Codec {
	return &Codec{types: schema.NewRegistry()}
}

// Validator is implemented by record types that carry domain constraints.
// Unmarshal invokes it after the instance is fully materialized and
// propagates its error unchanged; the codec never intercepts or retries a
// validation failure. Required-ness lives here, never at the wire level.
type Validator interface {
	Validate() error
}

// Descriptor returns the cached descriptor for v's type, building it on
// first use. Exposed so callers can inspect field numbering.
func (c *Codec) Descriptor(v interface{}) (*schema.RecordDescriptor, error) {
	return c.types.Descriptor(reflect.TypeOf(v))
}

// Marshal serializes a record instance to wire bytes. Fields are emitted in
// declaration order; absent optionals and empty repeated or map fields are
// omitted entirely.
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("codec: cannot marshal nil")
	}
	desc, err := c.types.Descriptor(rv.Type())
	if err != nil {
		return nil, err
	}
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("codec: cannot marshal nil %s", desc.Name)
		}
		rv = rv.Elem()
	}
	return appendMessage(nil, desc, rv)
}

// Unmarshal decodes wire bytes into v, which must be a non-nil pointer to a
// struct. Decoded raw values are materialized onto a fresh field-value
// mapping first; if the target type implements Validator, its error is
// returned unchanged after materialization.
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("codec: unmarshal target must be a non-nil pointer, got %T", v)
	}
	if rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("codec: unmarshal target must point to a struct, got %T", v)
	}
	desc, err := c.types.Descriptor(rv.Type())
	if err != nil {
		return err
	}

	fields, err := DecodeFields(data, desc)
	if err != nil {
		return err
	}
	if err := materialize(rv.Elem(), desc, fields); err != nil {
		return err
	}

	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}
