// File: internal/slab/slab.go
// Package slab implements a slot arena with stable integer keys.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package slab

// Slab stores values at stable integer keys. Insert, Get and Remove are all
// O(1). Keys of removed entries are reused in LIFO order; callers must treat
// keys as opaque handles and never rely on their numeric values.
//
// A key stays valid for exactly the lifetime of its entry, which makes the
// arena safe to share between a lookup table and a poller token space.
type Slab[T any] struct {
	entries []entry[T]
	free    []int
	length  int
}

type entry[T any] struct {
	value    T
	occupied bool
}

// New returns an empty slab.
func New[T any]() *Slab[T] {
	return &Slab[T]{}
}

// Insert stores v and returns its key.
func (s *Slab[T]) Insert(v T) int {
	s.length++
	if n := len(s.free); n > 0 {
		key := s.free[n-1]
		s.free = s.free[:n-1]
		s.entries[key] = entry[T]{value: v, occupied: true}
		return key
	}
	s.entries = append(s.entries, entry[T]{value: v, occupied: true})
	return len(s.entries) - 1
}

// Get returns the value stored at key.
func (s *Slab[T]) Get(key int) (T, bool) {
	if key < 0 || key >= len(s.entries) || !s.entries[key].occupied {
		var zero T
		return zero, false
	}
	return s.entries[key].value, true
}

// Remove deletes the entry at key and returns its value. The key becomes
// available for reuse by a later Insert.
func (s *Slab[T]) Remove(key int) (T, bool) {
	if key < 0 || key >= len(s.entries) || !s.entries[key].occupied {
		var zero T
		return zero, false
	}
	v := s.entries[key].value
	var zero T
	s.entries[key] = entry[T]{value: zero}
	s.free = append(s.free, key)
	s.length--
	return v, true
}

// Len returns the number of occupied entries.
func (s *Slab[T]) Len() int {
	return s.length
}

// Range calls fn for every occupied entry until fn returns false.
func (s *Slab[T]) Range(fn func(key int, v T) bool) {
	for key := range s.entries {
		if s.entries[key].occupied && !fn(key, s.entries[key].value) {
			return
		}
	}
}
