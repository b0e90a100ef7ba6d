// Package store persists named collections as JSON documents in the data
// directory. Writes are atomic (temp file + rename) so a crash mid-save never
// leaves a half-written slot behind.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Store struct {
	dir string
}

// Open prepares a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

// Load reads a slot into v. A missing slot leaves v untouched and returns
// nil. A corrupt slot is logged and removed from disk rather than propagated:
// losing one saved collection must never take the whole application down, and
// the stale bytes must not resurface on the next start.
func (s *Store) Load(slot string, v interface{}) error {
	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", slot, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("warning: discarding corrupt %s data: %v", slot, err)
		if rmErr := os.Remove(s.path(slot)); rmErr != nil {
			log.Printf("warning: removing corrupt %s slot: %v", slot, rmErr)
		}
		return nil
	}
	return nil
}

// Save writes v to a slot.
func (s *Store) Save(slot string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", slot, err)
	}

	tmp := s.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", slot, err)
	}
	if err := os.Rename(tmp, s.path(slot)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", slot, err)
	}
	return nil
}

// Remove deletes a slot. Removing a slot that does not exist is not an error.
func (s *Store) Remove(slot string) error {
	err := os.Remove(s.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
