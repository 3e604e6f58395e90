package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSchema(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	content := `types:
  - name: User
    fields:
      - {name: name, type: string}
      - {name: age, type: int}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSchemaType(t *testing.T) {
	schemaPath := writeTestSchema(t)

	require.NoError(t, rootCmd.PersistentFlags().Set("schema", schemaPath))
	defer func() {
		_ = rootCmd.PersistentFlags().Set("schema", "")
	}()

	desc, err := loadSchemaType(rootCmd, "User")
	require.NoError(t, err)
	assert.Equal(t, "User", desc.Name)
	assert.Len(t, desc.Fields, 2)

	_, err = loadSchemaType(rootCmd, "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadSchemaType_RequiresSchemaFlag(t *testing.T) {
	_, err := loadSchemaType(rootCmd, "User")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--schema is required")
}
