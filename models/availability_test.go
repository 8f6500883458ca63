package models

import (
	"testing"

	"github.com/nklabsmm/officeassets_backend/utils"
)

func TestCollectPurchasedIdsKeepsDocumentOrder(t *testing.T) {
	items := []*PurchaseItem{
		{PurchaseId: 1, AssetIds: StringList{"LP-001", "LP-002"}},
		{PurchaseId: 2, AssetIds: StringList{"LP-003"}},
	}
	got := CollectPurchasedIds(items)
	want := []string{"LP-001", "LP-002", "LP-003"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCollectPurchasedIdsDeduplicatesHistoricalFaults(t *testing.T) {
	items := []*PurchaseItem{
		{AssetIds: StringList{"LP-001"}},
		{AssetIds: StringList{"LP-001", "LP-002"}},
	}
	got := CollectPurchasedIds(items)
	if len(got) != 2 || got[0] != "LP-001" || got[1] != "LP-002" {
		t.Fatalf("expected first occurrence to win, got %v", got)
	}
}

func TestCollectConsumedIdsUnionsLegacyColumn(t *testing.T) {
	requests := []*AssetRequest{
		{Status: RequestStatusApproved, LegacyAssetId: "LP-001"},
		{Status: RequestStatusApproved, AssetIds: StringList{"LP-002", "LP-003"}},
		{Status: RequestStatusApproved, LegacyAssetId: "LP-004", AssetIds: StringList{"LP-005"}},
	}
	got := CollectConsumedIds(requests)
	want := []string{"LP-001", "LP-002", "LP-003", "LP-004", "LP-005"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCollectConsumedIdsLegacyDuplicateOfModernList(t *testing.T) {
	// A migrated row may carry the same id in both columns; it must count once.
	requests := []*AssetRequest{
		{Status: RequestStatusApproved, LegacyAssetId: "LP-001", AssetIds: StringList{"LP-001", "LP-002"}},
	}
	got := CollectConsumedIds(requests)
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
}

func TestAvailabilitySubtraction(t *testing.T) {
	purchased := []string{"LP-001", "LP-002", "LP-003", "LP-004"}
	consumed := []string{"LP-002", "LP-004"}
	got := utils.DiffSlice(purchased, consumed)
	if len(got) != 2 || got[0] != "LP-001" || got[1] != "LP-003" {
		t.Fatalf("expected [LP-001 LP-003], got %v", got)
	}
}

func TestSameIdSetIgnoresOrder(t *testing.T) {
	if !sameIdSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatal("order must not matter")
	}
	if sameIdSet([]string{"a"}, []string{"a", "a"}) {
		t.Fatal("length mismatch must fail")
	}
	if sameIdSet([]string{"a", "b"}, []string{"a", "c"}) {
		t.Fatal("different elements must fail")
	}
	if !sameIdSet(nil, []string{}) {
		t.Fatal("nil and empty are the same set")
	}
}
