package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicRegistry_Register(t *testing.T) {
	registry := NewDynamicRegistry()

	addr, err := registry.Register("Address", []FieldSpec{
		{Name: "street", Type: "string"},
		{Name: "zip", Type: "string"},
	})
	require.NoError(t, err)

	user, err := registry.Register("User", []FieldSpec{
		{Name: "name", Type: "string"},
		{Name: "age", Type: "int"},
		{Name: "address", Type: "Address", Optional: true},
		{Name: "tags", Type: "string", Repeated: true},
		{Name: "scores", Type: "map", Key: "string", Value: "int"},
	})
	require.NoError(t, err)

	require.Len(t, user.Fields, 5)
	for i, fd := range user.Fields {
		assert.Equal(t, int32(i+1), fd.Number, "field %s", fd.Name)
	}

	address, ok := user.FieldByName("address")
	require.True(t, ok)
	assert.Equal(t, KindMessage, address.Kind)
	assert.True(t, address.Optional)
	assert.Same(t, addr, address.Message)

	tags, ok := user.FieldByName("tags")
	require.True(t, ok)
	assert.Equal(t, KindRepeated, tags.Kind)
	assert.Equal(t, ScalarString, tags.Elem.Scalar)

	scores, ok := user.FieldByName("scores")
	require.True(t, ok)
	assert.Equal(t, KindMap, scores.Kind)
	assert.Equal(t, ScalarString, scores.Key)
	require.NotNil(t, scores.Entry)

	assert.Equal(t, []string{"Address", "User"}, registry.Names())

	found, ok := registry.Lookup("User")
	require.True(t, ok)
	assert.Same(t, user, found)
}

func TestDynamicRegistry_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		typeName string
		fields   []FieldSpec
		reason   string
	}{
		{
			name:     "empty type name",
			typeName: "",
			fields:   []FieldSpec{{Name: "a", Type: "int"}},
			reason:   "type name is required",
		},
		{
			name:     "empty field name",
			typeName: "T",
			fields:   []FieldSpec{{Type: "int"}},
			reason:   "field name is required",
		},
		{
			name:     "duplicate field name",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "int"}, {Name: "a", Type: "string"}},
			reason:   "duplicate field name",
		},
		{
			name:     "missing field type",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a"}},
			reason:   "field type is required",
		},
		{
			name:     "unknown type reference",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "Nope"}},
			reason:   "unknown type Nope",
		},
		{
			name:     "bad map key",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "map", Key: "float", Value: "int"}},
			reason:   "map key must be string or int",
		},
		{
			name:     "repeated map",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "map", Key: "string", Value: "int", Repeated: true}},
			reason:   "map field cannot be repeated",
		},
		{
			name:     "optional map",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "map", Key: "string", Value: "int", Optional: true}},
			reason:   "map field cannot be optional",
		},
		{
			name:     "slash in type name",
			typeName: "a/b",
			fields:   []FieldSpec{{Name: "a", Type: "int"}},
			reason:   "type name must not contain '/'",
		},
		{
			name:     "repeated optional",
			typeName: "T",
			fields:   []FieldSpec{{Name: "a", Type: "int", Repeated: true, Optional: true}},
			reason:   "repeated field cannot be optional",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			registry := NewDynamicRegistry()
			_, err := registry.Register(tc.typeName, tc.fields)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestDynamicRegistry_DuplicateTypeName(t *testing.T) {
	registry := NewDynamicRegistry()

	_, err := registry.Register("T", []FieldSpec{{Name: "a", Type: "int"}})
	require.NoError(t, err)

	_, err = registry.Register("T", []FieldSpec{{Name: "b", Type: "int"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDynamicRegistry_ForwardReferenceRejected(t *testing.T) {
	registry := NewDynamicRegistry()

	// Referencing a type registered later (or itself) is rejected outright,
	// which is what keeps dynamic graphs acyclic.
	_, err := registry.Register("Node", []FieldSpec{
		{Name: "next", Type: "Node", Optional: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type Node")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")

	content := `types:
  - name: Address
    fields:
      - {name: street, type: string}
      - {name: zip, type: string}
  - name: User
    fields:
      - {name: name, type: string}
      - {name: age, type: int}
      - {name: address, type: Address, optional: true}
      - {name: scores, type: map, key: string, value: int}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Address", "User"}, registry.Names())

	user, ok := registry.Lookup("User")
	require.True(t, ok)
	require.Len(t, user.Fields, 4)

	address, ok := user.FieldByName("address")
	require.True(t, ok)
	assert.Equal(t, KindMessage, address.Kind)
	assert.True(t, address.Optional)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read schema file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("types: [\n"), 0o644))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse schema file")
	})

	t.Run("bad declaration", func(t *testing.T) {
		path := filepath.Join(dir, "decl.yaml")
		content := "types:\n  - name: T\n    fields:\n      - {name: a, type: Nope}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type Nope")
	})
}
