package slab_test

import (
	"testing"

	"github.com/momentics/hioload-quic/internal/slab"
)

func TestInsertGet(t *testing.T) {
	s := slab.New[string]()
	a := s.Insert("a")
	b := s.Insert("b")
	if a == b {
		t.Fatalf("keys must be distinct, got %d twice", a)
	}
	if v, ok := s.Get(a); !ok || v != "a" {
		t.Errorf("Get(%d) = %q, %v; want \"a\", true", a, v, ok)
	}
	if v, ok := s.Get(b); !ok || v != "b" {
		t.Errorf("Get(%d) = %q, %v; want \"b\", true", b, v, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestKeysStableAcrossRemove(t *testing.T) {
	s := slab.New[int]()
	keys := make([]int, 4)
	for i := range keys {
		keys[i] = s.Insert(i * 10)
	}
	// removing one entry must not disturb the others
	if _, ok := s.Remove(keys[1]); !ok {
		t.Fatalf("Remove(%d) failed", keys[1])
	}
	for i, k := range keys {
		if i == 1 {
			continue
		}
		if v, ok := s.Get(k); !ok || v != i*10 {
			t.Errorf("Get(%d) = %d, %v; want %d, true", k, v, ok, i*10)
		}
	}
	if _, ok := s.Get(keys[1]); ok {
		t.Errorf("Get on removed key %d succeeded", keys[1])
	}
}

func TestRemovedKeyReused(t *testing.T) {
	s := slab.New[int]()
	s.Insert(1)
	k := s.Insert(2)
	s.Insert(3)
	s.Remove(k)
	if got := s.Insert(4); got != k {
		t.Errorf("Insert after Remove = key %d, want reused key %d", got, k)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestRange(t *testing.T) {
	s := slab.New[int]()
	s.Insert(1)
	k := s.Insert(2)
	s.Insert(3)
	s.Remove(k)

	sum := 0
	s.Range(func(_ int, v int) bool {
		sum += v
		return true
	})
	if sum != 4 {
		t.Errorf("sum over occupied entries = %d, want 4", sum)
	}
}
