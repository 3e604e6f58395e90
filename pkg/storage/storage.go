// Package storage persists encoded messages in a local pebble database,
// keyed by type name and a sortable unique id.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no message exists under the requested id.
var ErrNotFound = errors.New("storage: message not found")

// Entry is one stored message: its id and its encoded bytes.
type Entry struct {
	ID   string
	Data []byte
}

// Vault stores encoded messages grouped by type name. Keys are
// "<type>/<ksuid>", so a prefix scan lists one type's messages in
// creation order.
type Vault struct {
	db *pebble.DB
}

// Open opens (or creates) a vault at the given directory.
func Open(path string) (*Vault, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return &Vault{db: db}, nil
}

// Put stores encoded bytes under a fresh id and returns that id. Type names
// must not contain the key separator '/'.
func (v *Vault) Put(typeName string, data []byte) (string, error) {
	if strings.Contains(typeName, "/") {
		return "", fmt.Errorf("invalid type name %q: must not contain '/'", typeName)
	}
	id := ksuid.New().String()
	if err := v.db.Set(entryKey(typeName, id), data, pebble.NoSync); err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}
	return id, nil
}

// Get returns the encoded bytes stored under an id.
func (v *Vault) Get(typeName, id string) ([]byte, error) {
	data, closer, err := v.db.Get(entryKey(typeName, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes the message stored under an id. Deleting an absent id
// reports ErrNotFound.
func (v *Vault) Delete(typeName, id string) error {
	key := entryKey(typeName, id)
	if _, closer, err := v.db.Get(key); err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read message: %w", err)
	} else {
		closer.Close()
	}
	if err := v.db.Delete(key, pebble.NoSync); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// List returns every message stored under a type name, in id order.
func (v *Vault) List(typeName string) ([]Entry, error) {
	prefix := []byte(typeName + "/")
	upper := append(append([]byte{}, []byte(typeName)...), '/'+1)

	iter, err := v.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vault: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		data := make([]byte, len(iter.Value()))
		copy(data, iter.Value())
		entries = append(entries, Entry{
			ID:   string(iter.Key()[len(prefix):]),
			Data: data,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan vault: %w", err)
	}
	return entries, nil
}

// Close flushes and closes the underlying database.
func (v *Vault) Close() error {
	return v.db.Close()
}

func entryKey(typeName, id string) []byte {
	return []byte(typeName + "/" + id)
}
