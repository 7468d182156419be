package retain

import (
	"fmt"
	"sort"
)

// Store is a flat key-value target. Each key holds a single typed value;
// a Get of the wrong type reports false.
type Store interface {
	PutBool(key string, v bool)
	GetBool(key string) (bool, bool)
	PutInt64(key string, v int64)
	GetInt64(key string) (int64, bool)
	PutUint64(key string, v uint64)
	GetUint64(key string) (uint64, bool)
	PutFloat64(key string, v float64)
	GetFloat64(key string) (float64, bool)
	PutComplex128(key string, v complex128)
	GetComplex128(key string) (complex128, bool)
	PutString(key string, v string)
	GetString(key string) (string, bool)
	PutBytes(key string, v []byte)
	GetBytes(key string) ([]byte, bool)
	Has(key string) bool
	Keys() []string
}

// MapStore is an in-memory Store. It is not safe for concurrent use.
type MapStore struct {
	values map[string]any
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{values: map[string]any{}}
}

func (s *MapStore) put(key string, v any) {
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = v
}

func (s *MapStore) PutBool(key string, v bool) { s.put(key, v) }

func (s *MapStore) GetBool(key string) (bool, bool) { return get[bool](s, key) }

func (s *MapStore) PutInt64(key string, v int64) { s.put(key, v) }

func (s *MapStore) GetInt64(key string) (int64, bool) { return get[int64](s, key) }

func (s *MapStore) PutUint64(key string, v uint64) { s.put(key, v) }

func (s *MapStore) GetUint64(key string) (uint64, bool) { return get[uint64](s, key) }

func (s *MapStore) PutFloat64(key string, v float64) { s.put(key, v) }

func (s *MapStore) GetFloat64(key string) (float64, bool) { return get[float64](s, key) }

func (s *MapStore) PutComplex128(key string, v complex128) { s.put(key, v) }

func (s *MapStore) GetComplex128(key string) (complex128, bool) { return get[complex128](s, key) }

func (s *MapStore) PutString(key string, v string) { s.put(key, v) }

func (s *MapStore) GetString(key string) (string, bool) { return get[string](s, key) }

// PutBytes stores a copy of v.
func (s *MapStore) PutBytes(key string, v []byte) {
	if v == nil {
		s.put(key, []byte(nil))
		return
	}
	s.put(key, append([]byte{}, v...))
}

// GetBytes returns a copy of the stored bytes.
func (s *MapStore) GetBytes(key string) ([]byte, bool) {
	v, ok := get[[]byte](s, key)
	if !ok || v == nil {
		return v, ok
	}
	return append([]byte{}, v...), true
}

func (s *MapStore) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns all keys in sorted order.
func (s *MapStore) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the raw value stored under key.
func (s *MapStore) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores a raw value. Only the types accepted by the typed Put methods
// are allowed.
func (s *MapStore) Set(key string, v any) error {
	switch v.(type) {
	case bool, int64, uint64, float64, complex128, string, []byte:
		s.put(key, v)
		return nil
	default:
		return fmt.Errorf("retain: unsupported value type %T for key %q", v, key)
	}
}

// Len returns the number of stored keys.
func (s *MapStore) Len() int {
	return len(s.values)
}

func get[T any](s *MapStore, key string) (T, bool) {
	v, ok := s.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
