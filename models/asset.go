package models

import (
	"context"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"gorm.io/gorm"
)

// Asset is a catalog entry for a kind of equipment, tracked in aggregate.
//
// Quantity is the authoritative unallocated count and AssetIds the pool of
// unallocated serialized unit identifiers. After every committed operation
// Quantity == len(AssetIds); the ledger re-checks this on each mutation.
type Asset struct {
	ID              int        `gorm:"primary_key" json:"id"`
	Name            string     `gorm:"index;size:100;not null" json:"name"`
	Category        string     `gorm:"index;size:100;not null" json:"category"`
	Subcategory     string     `gorm:"index;size:100;not null" json:"subcategory"`
	Brand           string     `gorm:"size:100" json:"brand"`
	Quantity        int        `gorm:"not null;default:0" json:"quantity"`
	Unit            string     `gorm:"size:20;not null" json:"unit"`
	Description     string     `gorm:"type:text" json:"description"`
	AssetIds        StringList `gorm:"type:json" json:"asset_ids"`
	AssignedToEmail string     `gorm:"index;size:100" json:"assigned_to_email"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAsset struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category" binding:"required"`
	Subcategory     string `json:"subcategory" binding:"required"`
	Brand           string `json:"brand"`
	Quantity        int    `json:"quantity" binding:"min=0"`
	Unit            string `json:"unit" binding:"required"`
	Description     string `json:"description"`
	AssignedToEmail string `json:"assigned_to_email"`
}

const assetListCacheKey = "Asset:all"

// InvalidateAssetListCache drops the cached asset list. Mutation paths in this
// package call it themselves; external writers (ledger rebuild) must too.
func InvalidateAssetListCache() {
	config.RemoveRedisKey(assetListCacheKey)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewAsset) validate(ctx context.Context, id int) error {
	if input.Quantity < 0 {
		return utils.NewValidationError("quantity must not be negative")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Asset](ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateAsset(ctx context.Context, input *NewAsset) (*Asset, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	asset := Asset{
		Name:            input.Name,
		Category:        input.Category,
		Subcategory:     input.Subcategory,
		Brand:           input.Brand,
		Quantity:        input.Quantity,
		Unit:            input.Unit,
		Description:     input.Description,
		AssetIds:        StringList{},
		AssignedToEmail: input.AssignedToEmail,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, err
	}
	config.RemoveRedisKey(assetListCacheKey)

	return &asset, nil
}

// UpdateAsset updates catalog fields only. Quantity and AssetIds are owned by
// the ledger and never written through this path.
func UpdateAsset(ctx context.Context, id int, input *NewAsset) (*Asset, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	asset, err := utils.FetchModel[Asset](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(asset).Updates(map[string]interface{}{
		"Name":            input.Name,
		"Category":        input.Category,
		"Subcategory":     input.Subcategory,
		"Brand":           input.Brand,
		"Unit":            input.Unit,
		"Description":     input.Description,
		"AssignedToEmail": input.AssignedToEmail,
	}).Error
	if err != nil {
		return nil, err
	}
	config.RemoveRedisKey(assetListCacheKey)

	return asset, nil
}

func DeleteAsset(ctx context.Context, id int) (*Asset, error) {

	asset, err := utils.FetchModel[Asset](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()

	// Refuse deletion while purchases or open requests still reference the type.
	var purchaseRefs int64
	if err := db.WithContext(ctx).Model(&PurchaseItem{}).Where("asset_id = ?", id).Count(&purchaseRefs).Error; err != nil {
		return nil, err
	}
	var pendingRefs int64
	if err := db.WithContext(ctx).Model(&AssetRequest{}).
		Where("asset_id = ? AND status = ?", id, RequestStatusPending).
		Count(&pendingRefs).Error; err != nil {
		return nil, err
	}
	if purchaseRefs > 0 || pendingRefs > 0 {
		return nil, utils.NewConflictError("asset is referenced by purchases or pending requests")
	}

	if err := db.WithContext(ctx).Delete(asset).Error; err != nil {
		return nil, err
	}
	config.RemoveRedisKey(assetListCacheKey)

	return asset, nil
}

func GetAsset(ctx context.Context, id int) (*Asset, error) {
	return utils.FetchModel[Asset](ctx, id)
}

func GetAssets(ctx context.Context) ([]*Asset, error) {
	var cached []*Asset
	if found, err := config.GetRedisObject(assetListCacheKey, &cached); err == nil && found {
		return cached, nil
	}

	assets, err := utils.FetchAllModels[Asset](ctx)
	if err != nil {
		return nil, err
	}
	config.SetRedisObject(assetListCacheKey, assets, time.Hour)
	return assets, nil
}

// GetAssetIds returns the ledger fast-path pool. A missing asset yields an
// empty list, not an error (callers render it as an empty selection); any
// other storage failure propagates.
func GetAssetIds(ctx context.Context, id int) ([]string, error) {
	db := config.GetDB()
	var asset Asset
	if err := db.WithContext(ctx).First(&asset, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return []string{}, nil
		}
		return nil, err
	}
	if asset.AssetIds == nil {
		return []string{}, nil
	}
	return asset.AssetIds, nil
}
