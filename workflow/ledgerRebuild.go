package workflow

import (
	"context"
	"fmt"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RebuildAssetLedger recomputes one asset's cached (quantity, pool) pair from
// the availability resolver and overwrites the cache. This is the repair tool
// for reconciliation findings; normal operation never needs it.
//
// The correction is recorded as a rebuild movement so the audit trail shows
// when and by how much the cache was moved.
func RebuildAssetLedger(ctx context.Context, assetId int) (*models.Asset, error) {

	logger := config.GetLogger()
	redisLock := obtainAllocationLock(ctx, assetId)
	defer releaseAllocationLock(ctx, redisLock)

	db := config.GetDB()
	var rebuilt *models.Asset
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := AcquireAssetPostingLock(tx, assetId); err != nil {
			return err
		}
		defer ReleaseAssetPostingLock(tx, assetId)

		var asset models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&asset, assetId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("Asset")
			}
			return err
		}

		derived, err := derivedAvailableIds(tx, assetId)
		if err != nil {
			return err
		}

		if asset.Quantity == len(derived) && sameIds(asset.AssetIds, derived) {
			rebuilt = &asset
			return nil
		}

		logger.WithFields(logrus.Fields{
			"module":      "ledgerRebuild.go",
			"asset_id":    assetId,
			"cached_qty":  asset.Quantity,
			"derived_qty": len(derived),
		}).Warn("ledger.rebuild.correcting")

		qtyDelta := len(derived) - asset.Quantity
		if err := tx.Model(&asset).Updates(map[string]interface{}{
			"Quantity": len(derived),
			"AssetIds": models.StringList(derived),
		}).Error; err != nil {
			return err
		}

		movement := models.AssetMovement{
			AssetId:       assetId,
			Qty:           qtyDelta,
			ClosingQty:    len(derived),
			IdsAdded:      models.StringList(utils.DiffSlice(derived, asset.AssetIds)),
			IdsRemoved:    models.StringList(utils.DiffSlice(asset.AssetIds, derived)),
			Description:   fmt.Sprintf("ledger rebuild for %s", asset.Name),
			ReferenceType: models.MovementReferenceRebuild,
			ReferenceID:   assetId,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		asset.Quantity = len(derived)
		asset.AssetIds = models.StringList(derived)
		rebuilt = &asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	models.InvalidateAssetListCache()
	return rebuilt, nil
}

// RebuildAllAssetLedgers repairs every asset, one transaction each, so a bad
// asset cannot hold a lock across the whole catalog.
func RebuildAllAssetLedgers(ctx context.Context) (corrected []int, err error) {
	assets, err := models.GetAssets(ctx)
	if err != nil {
		return nil, err
	}
	for _, asset := range assets {
		before := asset.Quantity
		rebuilt, err := RebuildAssetLedger(ctx, asset.ID)
		if err != nil {
			return corrected, err
		}
		if rebuilt.Quantity != before {
			corrected = append(corrected, asset.ID)
		}
	}
	return corrected, nil
}

// derivedAvailableIds runs the resolver inside the rebuild transaction so the
// correction sees the same snapshot it locks.
func derivedAvailableIds(tx *gorm.DB, assetId int) ([]string, error) {
	var items []*models.PurchaseItem
	err := tx.Where("asset_id = ?", assetId).
		Order("purchase_id, id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	var requests []*models.AssetRequest
	err = tx.Where("asset_id = ? AND status = ?", assetId, models.RequestStatusApproved).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	purchased := models.CollectPurchasedIds(items)
	consumed := models.CollectConsumedIds(requests)
	return utils.DiffSlice(purchased, consumed), nil
}

func sameIds(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
