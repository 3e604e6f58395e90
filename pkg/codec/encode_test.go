package codec

import (
	"bytes"
	"testing"
)

type person struct {
	Name string
	Age  int
}

type status int

const (
	statusUnknown status = 0
	statusActive  status = 1
)

type enumRecord struct {
	State status
}

type intRecord struct {
	State int
}

func TestMarshal_WireBytes(t *testing.T) {
	c := New()

	testCases := []struct {
		name  string
		value interface{}
		want  []byte
	}{
		{
			name:  "string then int",
			value: person{Name: "Alice", Age: 30},
			want: []byte{
				0x0a, 0x05, 'A', 'l', 'i', 'c', 'e', // field 1, length-delimited
				0x10, 0x1e, // field 2, varint 30
			},
		},
		{
			name:  "zero values still encode for non-optional fields",
			value: person{},
			want: []byte{
				0x0a, 0x00, // empty string
				0x10, 0x00, // varint 0
			},
		},
		{
			name:  "negative int is a ten byte two's-complement varint",
			value: person{Name: "n", Age: -1},
			want: []byte{
				0x0a, 0x01, 'n',
				0x10, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01,
			},
		},
		{
			name:  "bool and float",
			value: struct {
				OK    bool
				Score float64
			}{OK: true, Score: 1.5},
			want: []byte{
				0x08, 0x01, // field 1, varint 1
				0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0x3f, // field 2, fixed64
			},
		},
		{
			name:  "bytes field",
			value: struct{ Raw []byte }{Raw: []byte{0x00, 0xff}},
			want:  []byte{0x0a, 0x02, 0x00, 0xff},
		},
		{
			name:  "repeated scalars are unpacked",
			value: struct{ IDs []int }{IDs: []int{1, 2, 3}},
			want: []byte{
				0x08, 0x01,
				0x08, 0x02,
				0x08, 0x03,
			},
		},
		{
			name:  "map entries as key-value submessages in sorted key order",
			value: struct{ Counts map[string]int }{Counts: map[string]int{"b": 2, "a": 1}},
			want: []byte{
				0x0a, 0x05, 0x0a, 0x01, 'a', 0x10, 0x01,
				0x0a, 0x05, 0x0a, 0x01, 'b', 0x10, 0x02,
			},
		},
		{
			name: "nested message is length prefixed",
			value: struct {
				Inner person
			}{Inner: person{Name: "x", Age: 1}},
			want: []byte{
				0x0a, 0x05, // field 1, 5-byte submessage
				0x0a, 0x01, 'x', 0x10, 0x01,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Marshal(tc.value)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("wire bytes mismatch:\ngot  %x\nwant %x", got, tc.want)
			}
		})
	}
}

func TestMarshal_EnumIndistinguishableFromInt(t *testing.T) {
	c := New()

	asEnum, err := c.Marshal(enumRecord{State: statusActive})
	if err != nil {
		t.Fatalf("Marshal enum failed: %v", err)
	}
	asInt, err := c.Marshal(intRecord{State: 1})
	if err != nil {
		t.Fatalf("Marshal int failed: %v", err)
	}

	if !bytes.Equal(asEnum, asInt) {
		t.Errorf("enum and int at the same position must encode identically: %x vs %x", asEnum, asInt)
	}
}

func TestMarshal_Omission(t *testing.T) {
	c := New()

	type profile struct {
		Name     string
		Nickname *string
		Hobbies  []string
		Tags     map[string]string
	}

	unset := profile{Name: "Alice"}
	explicitlyEmpty := profile{Name: "Alice", Hobbies: []string{}, Tags: map[string]string{}}

	a, err := c.Marshal(unset)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := c.Marshal(explicitlyEmpty)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := []byte{0x0a, 0x05, 'A', 'l', 'i', 'c', 'e'}
	if !bytes.Equal(a, want) {
		t.Errorf("absent fields must be omitted entirely: got %x, want %x", a, want)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("nil and empty must encode byte-identical: %x vs %x", a, b)
	}

	nickname := "Ally"
	set, err := c.Marshal(profile{Name: "Alice", Nickname: &nickname})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	wantSet := append(append([]byte{}, want...), 0x12, 0x04, 'A', 'l', 'l', 'y')
	if !bytes.Equal(set, wantSet) {
		t.Errorf("present optional mismatch: got %x, want %x", set, wantSet)
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	c := New()

	value := struct {
		Counts map[string]int
		Names  []string
	}{
		Counts: map[string]int{"x": 1, "y": 2, "z": 3, "w": 4},
		Names:  []string{"a", "b"},
	}

	first, err := c.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Marshal(value)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding is not deterministic:\nfirst %x\nagain %x", first, again)
		}
	}
}

func TestMarshal_UnsupportedType(t *testing.T) {
	c := New()

	if _, err := c.Marshal(struct{ Ch chan int }{}); err == nil {
		t.Error("expected schema error for chan field")
	}
	if _, err := c.Marshal(struct{ F float32 }{}); err == nil {
		t.Error("expected schema error for float32 field")
	}
	if _, err := c.Marshal(42); err == nil {
		t.Error("expected schema error for non-struct value")
	}
}

func TestMarshal_NilValue(t *testing.T) {
	c := New()

	if _, err := c.Marshal(nil); err == nil {
		t.Error("expected error for untyped nil")
	}

	var p *person
	if _, err := c.Marshal(p); err == nil {
		t.Error("expected error for nil pointer")
	}
}
