package utils

import "testing"

func TestDiffSlicePreservesOrder(t *testing.T) {
	got := DiffSlice([]string{"a", "b", "c", "d"}, []string{"b", "d"})
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDiffSliceEmptyInputs(t *testing.T) {
	if got := DiffSlice([]string{}, []string{"a"}); len(got) != 0 {
		t.Fatalf("expected empty diff, got %v", got)
	}
	got := DiffSlice([]string{"a", "b"}, nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected identity diff, got %v", got)
	}
}

func TestHasDuplicates(t *testing.T) {
	if HasDuplicates([]string{"x", "y", "z"}) {
		t.Fatal("expected no duplicates")
	}
	if !HasDuplicates([]string{"x", "y", "x"}) {
		t.Fatal("expected duplicates")
	}
	if HasDuplicates([]string{}) {
		t.Fatal("empty slice has no duplicates")
	}
}

func TestUniqueSliceFirstOccurrenceWins(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
