package models

import (
	"context"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"gorm.io/gorm"
)

// The availability resolver is the slow path of the reconciliation core. It
// derives the unallocated id set for an asset from first principles (every id
// ever purchased, minus every id consumed by an approved request) instead of
// trusting the asset row's cached pool. The two must agree after every
// committed operation; RunReconciliationChecks compares them.

// PurchasedAssetIds collects every serialized unit id ever recorded for the
// asset across purchase lines, in document order (purchase id, then line id).
func PurchasedAssetIds(ctx context.Context, assetId int) ([]string, error) {
	db := config.GetDB()
	return purchasedAssetIdsTx(db.WithContext(ctx), assetId)
}

func purchasedAssetIdsTx(tx *gorm.DB, assetId int) ([]string, error) {
	var items []*PurchaseItem
	err := tx.Where("asset_id = ?", assetId).
		Order("purchase_id, id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return CollectPurchasedIds(items), nil
}

// ConsumedAssetIds collects every id held by an approved request for the
// asset, including ids recorded under the historical single-id column.
func ConsumedAssetIds(ctx context.Context, assetId int) ([]string, error) {
	db := config.GetDB()
	return consumedAssetIdsTx(db.WithContext(ctx), assetId)
}

func consumedAssetIdsTx(tx *gorm.DB, assetId int) ([]string, error) {
	var requests []*AssetRequest
	err := tx.Where("asset_id = ? AND status = ?", assetId, RequestStatusApproved).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return CollectConsumedIds(requests), nil
}

// AvailableAssetIds derives the unallocated id set: purchased minus consumed,
// preserving purchase order.
func AvailableAssetIds(ctx context.Context, assetId int) ([]string, error) {
	db := config.GetDB()
	return availableAssetIdsTx(db.WithContext(ctx), assetId)
}

func availableAssetIdsTx(tx *gorm.DB, assetId int) ([]string, error) {
	purchased, err := purchasedAssetIdsTx(tx, assetId)
	if err != nil {
		return nil, err
	}
	consumed, err := consumedAssetIdsTx(tx, assetId)
	if err != nil {
		return nil, err
	}
	return utils.DiffSlice(purchased, consumed), nil
}

// CollectPurchasedIds flattens purchase lines into a single ordered id list.
// Ids that were recorded twice across documents (a data fault the intake path
// prevents, but historical rows may carry) are kept once, first occurrence
// winning, so the subtraction below stays well defined.
func CollectPurchasedIds(items []*PurchaseItem) []string {
	all := make([]string, 0, len(items))
	for _, item := range items {
		all = append(all, item.AssetIds...)
	}
	return utils.UniqueSlice(all)
}

// CollectConsumedIds unions the modern id list with the historical single-id
// column across approved requests.
func CollectConsumedIds(requests []*AssetRequest) []string {
	var all []string
	for _, req := range requests {
		if req.LegacyAssetId != "" {
			all = append(all, req.LegacyAssetId)
		}
		all = append(all, req.AssetIds...)
	}
	return utils.UniqueSlice(all)
}
