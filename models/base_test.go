package models

import "testing"

func TestStringListScanVariants(t *testing.T) {
	var l StringList
	if err := l.Scan([]byte(`["A-1","A-2"]`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if len(l) != 2 || l[0] != "A-1" || l[1] != "A-2" {
		t.Fatalf("unexpected list: %v", l)
	}

	if err := l.Scan(`["B-1"]`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if len(l) != 1 || l[0] != "B-1" {
		t.Fatalf("unexpected list: %v", l)
	}

	if err := l.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if l == nil || len(l) != 0 {
		t.Fatalf("nil column should scan to empty list, got %v", l)
	}

	if err := l.Scan(""); err != nil {
		t.Fatalf("scan empty string: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("empty column should scan to empty list, got %v", l)
	}

	if err := l.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}

func TestStringListValueNeverNull(t *testing.T) {
	var l StringList
	v, err := l.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("nil list should serialize as [], got %v", v)
	}

	l = StringList{"C-9"}
	v, err = l.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["C-9"]` {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestStringListContains(t *testing.T) {
	l := StringList{"a", "b"}
	if !l.Contains("a") || l.Contains("z") {
		t.Fatal("contains misbehaved")
	}
	var empty StringList
	if empty.Contains("a") {
		t.Fatal("empty list contains nothing")
	}
}

func TestRequestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{RequestStatusPending, RequestStatusApproved, RequestStatusRejected} {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if RequestStatus("cancelled").Valid() {
		t.Error("unknown status should be invalid")
	}
}
