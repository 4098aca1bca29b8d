// Package host implements the binding table the embedded interpreter may
// call back into: persisted state access, call input, execution context,
// value return, logging, and the abort primitive. The bridge installs this
// table (as the wasm host module "env") before any guest code runs; every
// interpreter-level side effect routes through it.
package host

import "sort"

// Store is the persisted-state surface behind the storage bindings.
// Implementations are supplied by the execution host; the bridge ships
// MemStore for tests and local runs.
type Store interface {
	// Get returns the value stored under key.
	Get(key []byte) (value []byte, ok bool)

	// Set stores value under key and returns the evicted prior value.
	Set(key, value []byte) (prior []byte, evicted bool)

	// Remove deletes key and returns the evicted prior value.
	Remove(key []byte) (prior []byte, evicted bool)
}

// MemStore is an in-memory Store.
type MemStore struct {
	entries map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string][]byte)}
}

func (s *MemStore) Get(key []byte) ([]byte, bool) {
	v, ok := s.entries[string(key)]
	return cloneBytes(v), ok
}

func (s *MemStore) Set(key, value []byte) ([]byte, bool) {
	k := string(key)
	prior, evicted := s.entries[k]
	s.entries[k] = cloneBytes(value)
	return cloneBytes(prior), evicted
}

func (s *MemStore) Remove(key []byte) ([]byte, bool) {
	k := string(key)
	prior, evicted := s.entries[k]
	delete(s.entries, k)
	return cloneBytes(prior), evicted
}

// cloneBytes keeps callers from mutating stored state through a returned
// or retained slice.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Len returns the number of stored entries.
func (s *MemStore) Len() int {
	return len(s.entries)
}

// Keys returns all keys in sorted order.
func (s *MemStore) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
