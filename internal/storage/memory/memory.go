// Package memory is an in-process slot store, optionally seeded from JSON
// files on disk.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	mu       sync.Mutex
	slots    map[string][]byte
	versions map[string]int64
	// failWrites makes Set fail; used to exercise best-effort writes.
	failWrites error
}

func New() *Store {
	return &Store{slots: map[string][]byte{}, versions: map[string]int64{}}
}

// NewFromDir seeds every key from "<base>/<key>.json" when the file exists.
// Unreadable files are ignored; the content is stored as-is and decoded
// leniently on read.
func NewFromDir(base string, keys []string) *Store {
	s := New()
	for _, key := range keys {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		s.slots[key] = data
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	s.slots[key] = append([]byte(nil), value...)
	s.versions[key]++
	return nil
}

// Version counts the successful writes of key. Seeded slots start at 0.
func (s *Store) Version(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key], nil
}

// FailWrites makes every later Set return err; nil restores writes.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

func (s *Store) Close() error { return nil }
