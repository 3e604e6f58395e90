package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ssargent/protostruct/pkg/schema"
)

func userDescriptor(t *testing.T) *schema.RecordDescriptor {
	t.Helper()

	registry := schema.NewDynamicRegistry()
	if _, err := registry.Register("Address", []schema.FieldSpec{
		{Name: "street", Type: "string"},
		{Name: "zip", Type: "string"},
	}); err != nil {
		t.Fatalf("register Address failed: %v", err)
	}
	desc, err := registry.Register("User", []schema.FieldSpec{
		{Name: "name", Type: "string"},
		{Name: "age", Type: "int"},
		{Name: "address", Type: "Address", Optional: true},
		{Name: "tags", Type: "string", Repeated: true},
		{Name: "scores", Type: "map", Key: "string", Value: "int"},
	})
	if err != nil {
		t.Fatalf("register User failed: %v", err)
	}
	return desc
}

func TestEncodeFields_MatchesReflectedEncoding(t *testing.T) {
	desc := userDescriptor(t)

	fields := map[string]interface{}{
		"name": "Alice",
		"age":  float64(30), // JSON numbers arrive as float64
	}
	encoded, err := EncodeFields(desc, fields)
	if err != nil {
		t.Fatalf("EncodeFields failed: %v", err)
	}

	// Same shape declared as a Go struct must produce identical bytes.
	c := New()
	reflected, err := c.Marshal(person{Name: "Alice", Age: 30})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// The dynamic type carries extra trailing fields, all absent here.
	if !bytes.Equal(encoded, reflected) {
		t.Errorf("dynamic and reflected encodings must agree: %x vs %x", encoded, reflected)
	}
}

func TestEncodeFields_RoundTrip(t *testing.T) {
	desc := userDescriptor(t)

	fields := map[string]interface{}{
		"name": "Bob",
		"age":  int64(-7),
		"address": map[string]interface{}{
			"street": "Main",
			"zip":    "90210",
		},
		"tags": []interface{}{"a", "b"},
		"scores": map[string]interface{}{
			"math":    int64(90),
			"history": int64(75),
		},
	}

	encoded, err := EncodeFields(desc, fields)
	if err != nil {
		t.Fatalf("EncodeFields failed: %v", err)
	}

	decoded, err := DecodeFields(encoded, desc)
	if err != nil {
		t.Fatalf("DecodeFields failed: %v", err)
	}

	want := map[string]interface{}{
		"name": "Bob",
		"age":  int64(-7),
		"address": map[string]interface{}{
			"street": "Main",
			"zip":    "90210",
		},
		"tags": []interface{}{"a", "b"},
		"scores": map[string]interface{}{
			"math":    int64(90),
			"history": int64(75),
		},
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("dynamic round trip mismatch:\ngot  %#v\nwant %#v", decoded, want)
	}
}

func TestEncodeFields_IntKeyedMap(t *testing.T) {
	registry := schema.NewDynamicRegistry()
	desc, err := registry.Register("Lookup", []schema.FieldSpec{
		{Name: "labels", Type: "map", Key: "int", Value: "string"},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// JSON objects spell integer keys as decimal strings.
	encoded, err := EncodeFields(desc, map[string]interface{}{
		"labels": map[string]interface{}{"7": "seven", "-5": "neg"},
	})
	if err != nil {
		t.Fatalf("EncodeFields failed: %v", err)
	}

	decoded, err := DecodeFields(encoded, desc)
	if err != nil {
		t.Fatalf("DecodeFields failed: %v", err)
	}
	want := map[string]interface{}{
		"labels": map[int64]interface{}{7: "seven", -5: "neg"},
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("int-keyed map mismatch:\ngot  %#v\nwant %#v", decoded, want)
	}
}

func TestEncodeFields_Rejections(t *testing.T) {
	desc := userDescriptor(t)

	testCases := []struct {
		name   string
		fields map[string]interface{}
	}{
		{
			name:   "unknown field name",
			fields: map[string]interface{}{"nope": 1},
		},
		{
			name:   "wrong type for string field",
			fields: map[string]interface{}{"name": 42},
		},
		{
			name:   "fractional value for int field",
			fields: map[string]interface{}{"age": 30.5},
		},
		{
			name:   "list for singular field",
			fields: map[string]interface{}{"name": []interface{}{"x"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := EncodeFields(desc, tc.fields); err == nil {
				t.Error("expected encode to fail")
			}
		})
	}
}
