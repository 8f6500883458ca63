package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/utils"
)

func TestApproveRejectsDuplicateIdsBeforeAnyAllocation(t *testing.T) {
	// The duplicate guard runs before any storage access, so a request
	// supplying the same unit twice fails with a validation error and no
	// state is touched.
	ctx := utils.SetUserEmailInContext(context.Background(), "admin@test.local")
	_, err := ApproveAssetRequest(ctx, 1, &ApproveAssetRequestInput{
		Quantity: 2,
		AssetIds: []string{"u1", "u1"},
	})
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for duplicate ids, got %v", err)
	}
}

func TestApproveRequiresActor(t *testing.T) {
	_, err := ApproveAssetRequest(context.Background(), 1, &ApproveAssetRequestInput{})
	if !errors.Is(err, models.ErrMissingActor) {
		t.Fatalf("expected missing actor error, got %v", err)
	}
}

func TestEffectiveQuantityOverrideWins(t *testing.T) {
	request := &models.AssetRequest{Quantity: 5}
	input := &ApproveAssetRequestInput{Quantity: 3, AssetIds: []string{"a", "b", "c", "d"}}
	if got := effectiveQuantity(input, request); got != 3 {
		t.Fatalf("expected override 3, got %d", got)
	}
}

func TestEffectiveQuantityFallsBackToRequest(t *testing.T) {
	request := &models.AssetRequest{Quantity: 5}
	input := &ApproveAssetRequestInput{}
	if got := effectiveQuantity(input, request); got != 5 {
		t.Fatalf("expected requested 5, got %d", got)
	}
}

func TestEffectiveQuantityFallsBackToIdCount(t *testing.T) {
	request := &models.AssetRequest{}
	input := &ApproveAssetRequestInput{AssetIds: []string{"a", "b"}}
	if got := effectiveQuantity(input, request); got != 2 {
		t.Fatalf("expected id count 2, got %d", got)
	}
}

func TestSameIds(t *testing.T) {
	if !sameIds([]string{"a", "b"}, []string{"a", "b"}) {
		t.Fatal("identical slices must match")
	}
	if sameIds([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatal("rebuild comparison is order sensitive")
	}
	if sameIds([]string{"a"}, []string{"a", "b"}) {
		t.Fatal("length mismatch must fail")
	}
}
