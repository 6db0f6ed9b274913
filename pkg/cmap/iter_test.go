package cmap

import (
	"fmt"
	"sort"
	"testing"
)

func TestRange(t *testing.T) {
	m := New[int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	seen := map[string]int{}
	m.Range(func(k string, v int) bool {
		seen[k] = v
		return true
	})

	if len(seen) != 10 {
		t.Errorf("visited %d entries, want 10", len(seen))
	}
	for i := 0; i < 10; i++ {
		if seen[fmt.Sprintf("k%d", i)] != i {
			t.Errorf("k%d = %d", i, seen[fmt.Sprintf("k%d", i)])
		}
	}
}

func TestRangeEarlyStop(t *testing.T) {
	m := New[int]()
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 5
	})

	if visited != 5 {
		t.Errorf("visited %d entries, want 5", visited)
	}
}

func TestKeys(t *testing.T) {
	m := New[int]()
	want := []string{"a", "b", "c"}
	for i, k := range want {
		m.Set(k, i)
	}

	got := m.Keys()
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("Keys returned %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
