package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestVault(t *testing.T) *Vault {
	t.Helper()

	vault, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, vault.Close())
	})
	return vault
}

func TestVault_PutGet(t *testing.T) {
	vault := openTestVault(t)

	id, err := vault.Put("User", []byte{0x0a, 0x05, 'A', 'l', 'i', 'c', 'e'})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, err := vault.Get("User", id)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x05, 'A', 'l', 'i', 'c', 'e'}, data)
}

func TestVault_GetMissing(t *testing.T) {
	vault := openTestVault(t)

	_, err := vault.Get("User", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVault_Delete(t *testing.T) {
	vault := openTestVault(t)

	id, err := vault.Put("User", []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, vault.Delete("User", id))

	_, err = vault.Get("User", id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, vault.Delete("User", id), ErrNotFound)
}

func TestVault_ListIsScopedByType(t *testing.T) {
	vault := openTestVault(t)

	first, err := vault.Put("User", []byte("u1"))
	require.NoError(t, err)
	second, err := vault.Put("User", []byte("u2"))
	require.NoError(t, err)
	_, err = vault.Put("Order", []byte("o1"))
	require.NoError(t, err)

	entries, err := vault.List("User")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Fresh ids are time-ordered, so creation order survives the scan.
	assert.Equal(t, first, entries[0].ID)
	assert.Equal(t, []byte("u1"), entries[0].Data)
	assert.Equal(t, second, entries[1].ID)
	assert.Equal(t, []byte("u2"), entries[1].Data)

	empty, err := vault.List("Nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestVault_RejectsSlashInTypeName(t *testing.T) {
	vault := openTestVault(t)

	// A '/' in the type name would make its entries show up in another
	// type's prefix scan with corrupted ids.
	_, err := vault.Put("a/b", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type name")

	entries, err := vault.List("a")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVault_TypeNamesDoNotCollide(t *testing.T) {
	vault := openTestVault(t)

	// "User" and "UserProfile" share a name prefix but not a key prefix.
	_, err := vault.Put("UserProfile", []byte("p1"))
	require.NoError(t, err)

	entries, err := vault.List("User")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
