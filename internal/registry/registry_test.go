package registry

import (
	"fmt"
	"sync"
	"testing"
)

func TestStore_GetSet(t *testing.T) {
	s := New[int]()

	if _, ok := s.Get("a"); ok {
		t.Error("Get() on empty store should report absent")
	}

	s.Set("a", 1)
	v, ok := s.Get("a")
	if !ok {
		t.Fatal("Get() should find stored key")
	}
	if v != 1 {
		t.Errorf("Get() = %d, want 1", v)
	}

	s.Set("a", 2)
	if v, _ := s.Get("a"); v != 2 {
		t.Errorf("Get() after overwrite = %d, want 2", v)
	}
}

func TestStore_SetIfAbsent(t *testing.T) {
	s := New[string]()

	if !s.SetIfAbsent("k", "first") {
		t.Error("SetIfAbsent() on new key should succeed")
	}
	if s.SetIfAbsent("k", "second") {
		t.Error("SetIfAbsent() on existing key should fail")
	}
	if v, _ := s.Get("k"); v != "first" {
		t.Errorf("value = %q, want %q", v, "first")
	}
}

func TestStore_Delete(t *testing.T) {
	s := New[int]()
	s.Set("a", 1)
	s.Delete("a")
	if s.Contains("a") {
		t.Error("key should be deleted")
	}
	// Deleting a missing key is a no-op
	s.Delete("missing")
}

func TestStore_Len(t *testing.T) {
	s := New[int]()
	for i := 0; i < 5; i++ {
		s.Set(fmt.Sprintf("k%d", i), i)
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestStore_ItemsSnapshot(t *testing.T) {
	s := New[int]()
	s.Set("a", 1)
	s.Set("b", 2)

	snap := s.Items()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}

	// Mutating the snapshot must not affect the store
	delete(snap, "a")
	snap["c"] = 3
	if !s.Contains("a") {
		t.Error("store lost key after snapshot mutation")
	}
	if s.Contains("c") {
		t.Error("store gained key from snapshot mutation")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n)
			s.Set(key, n)
			s.Get(key)
			s.Contains(key)
			s.Items()
			s.Len()
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
	for i := 0; i < 50; i++ {
		v, ok := s.Get(fmt.Sprintf("k%d", i))
		if !ok || v != i {
			t.Errorf("k%d = %d (present=%v), want %d", i, v, ok, i)
		}
	}
}
