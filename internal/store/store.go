// Package store persists application state as flat, pretty-printed JSON
// documents. Every operation is a whole-document read-modify-write guarded
// by a per-store mutex, which closes the lost-update race a multi-writer
// flat file would otherwise have.
package store

import (
	"encoding/json"
	"errors"
	"os"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a record with the same key already exists.
var ErrDuplicate = errors.New("already exists")

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ensureFile creates the document with initial content if it does not exist.
func ensureFile(path string, initial any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return writeJSONFile(path, initial)
}
