package models

import (
	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRef identifies the document a ledger delta originates from.
type LedgerRef struct {
	Type        MovementReferenceType
	ID          int
	DetailID    int
	Description string
	IsReversal  bool
	Reverses    *int
}

// ApplyAssetDelta is the single mutation primitive for an asset's
// (quantity, assetIds) pair. It must run inside the caller's transaction.
//
// The asset row is locked FOR UPDATE for the duration of the read-check-write,
// so concurrent deltas against the same asset serialize at the database. The
// delta is rejected unless it keeps quantity == len(assetIds):
//   - addIds must not already be in the pool (ConflictError)
//   - removeIds must all be in the pool (InsufficientStockError)
//   - the resulting quantity must be >= 0 (InsufficientStockError)
//
// Every accepted delta appends an AssetMovement row.
func ApplyAssetDelta(tx *gorm.DB, assetId int, qtyDelta int, addIds []string, removeIds []string, ref LedgerRef) (*Asset, error) {

	var asset Asset
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, assetId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("Asset")
		}
		return nil, err
	}

	if utils.HasDuplicates(addIds) {
		return nil, utils.NewValidationError("duplicate asset id in delta for asset %d", assetId)
	}
	if utils.HasDuplicates(removeIds) {
		return nil, utils.NewValidationError("duplicate asset id in delta for asset %d", assetId)
	}

	pool := asset.AssetIds
	for _, id := range addIds {
		if pool.Contains(id) {
			return nil, utils.NewConflictError("asset id %q already in stock for asset %d", id, assetId)
		}
	}
	for _, id := range removeIds {
		if !pool.Contains(id) {
			return nil, utils.NewInsufficientStockError("asset id %q is not available for asset %d", id, assetId)
		}
	}

	newQty := asset.Quantity + qtyDelta
	if newQty < 0 {
		return nil, utils.NewInsufficientStockError("stock for asset %d would drop below zero", assetId)
	}

	newPool := utils.DiffSlice(pool, removeIds)
	newPool = append(newPool, addIds...)

	// The counter and the pool must stay reconciled; a caller supplying a
	// qtyDelta that disagrees with the id lists is a core bug, not user input.
	if newQty != len(newPool) {
		err := utils.NewConsistencyError(
			"asset %d: quantity %d does not match pool size %d after delta (ref %s/%d)",
			assetId, newQty, len(newPool), ref.Type, ref.ID)
		config.LogError(config.GetLogger(), "ledger.go", "ApplyAssetDelta", "postcondition", assetId, err)
		return nil, err
	}

	if err := tx.Model(&asset).Updates(map[string]interface{}{
		"Quantity": newQty,
		"AssetIds": StringList(newPool),
	}).Error; err != nil {
		return nil, err
	}

	movement := AssetMovement{
		AssetId:            assetId,
		Qty:                qtyDelta,
		ClosingQty:         newQty,
		IdsAdded:           StringList(addIds),
		IdsRemoved:         StringList(removeIds),
		Description:        ref.Description,
		ReferenceType:      ref.Type,
		ReferenceID:        ref.ID,
		ReferenceDetailID:  ref.DetailID,
		IsReversal:         ref.IsReversal,
		ReversesMovementId: ref.Reverses,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}

	asset.Quantity = newQty
	asset.AssetIds = StringList(newPool)
	config.RemoveRedisKey(assetListCacheKey)
	return &asset, nil
}

// LockAssetPool fetches the asset row FOR UPDATE inside tx and reports which
// of the given ids are missing from its unallocated pool. Used by reversal
// paths to fail closed before any delta is applied.
func LockAssetPool(tx *gorm.DB, assetId int, ids []string) (missing []string, err error) {
	var asset Asset
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, assetId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("Asset")
		}
		return nil, err
	}
	for _, id := range ids {
		if !asset.AssetIds.Contains(id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
