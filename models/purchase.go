package models

import (
	"context"
	"fmt"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase records an intake of serialized units from a vendor. Each line
// mints brand-new unit ids into its asset's pool; intake is the only way ids
// enter the system.
type Purchase struct {
	ID            int             `gorm:"primary_key" json:"id"`
	VendorId      string          `gorm:"index;size:100" json:"vendor_id"`
	VendorName    string          `gorm:"size:100;not null" json:"vendor_name"`
	VendorPhone   string          `gorm:"size:30" json:"vendor_phone"`
	VendorAddress string          `gorm:"size:200" json:"vendor_address"`
	InvoiceNo     string          `gorm:"index;size:50;not null" json:"invoice_no"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchase_date"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"purchase_price"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"paid_amount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"due_amount"`
	Items         []PurchaseItem  `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedBy     string          `gorm:"size:100;not null" json:"created_by"`
	UpdatedBy     string          `gorm:"size:100" json:"updated_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PurchaseItem is one line of a purchase. AssetIds is write-once: the minted
// ids are the historical record the availability resolver derives from, so
// they can never be rewritten after the purchase is saved.
type PurchaseItem struct {
	ID         int             `gorm:"primary_key" json:"id"`
	PurchaseId int             `gorm:"index;not null" json:"purchase_id"`
	AssetId    int             `gorm:"index;not null" json:"asset_id"`
	AssetName  string          `gorm:"size:100;not null" json:"asset_name"`
	Qty        int             `gorm:"not null" json:"qty"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_price"`
	AssetIds   StringList      `gorm:"type:json" json:"asset_ids"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchase struct {
	VendorId      string            `json:"vendor_id"`
	VendorName    string            `json:"vendor_name" binding:"required"`
	VendorPhone   string            `json:"vendor_phone"`
	VendorAddress string            `json:"vendor_address"`
	InvoiceNo     string            `json:"invoice_no" binding:"required"`
	PurchaseDate  time.Time         `json:"purchase_date"`
	PurchasePrice decimal.Decimal   `json:"purchase_price"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	Items         []NewPurchaseItem `json:"items" binding:"required,min=1,dive"`
}

type NewPurchaseItem struct {
	AssetId   int             `json:"asset_id" binding:"required"`
	Qty       int             `json:"qty" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AssetIds  []string        `json:"asset_ids" binding:"required,min=1"`
}

// validate checks every line before anything is written. Intake is
// all-or-nothing: one bad line rejects the whole document.
func (input *NewPurchase) validate(ctx context.Context) error {
	if len(input.Items) == 0 {
		return utils.NewValidationError("a purchase needs at least one item")
	}

	seen := make(map[string]bool)
	for i, item := range input.Items {
		if item.Qty <= 0 {
			return utils.NewValidationError("item %d: quantity must be positive", i+1)
		}
		if len(item.AssetIds) != item.Qty {
			return utils.NewValidationError(
				"item %d: %d asset ids supplied for quantity %d", i+1, len(item.AssetIds), item.Qty)
		}
		for _, id := range item.AssetIds {
			if id == "" {
				return utils.NewValidationError("item %d: empty asset id", i+1)
			}
			if seen[id] {
				return utils.NewValidationError("item %d: asset id %q appears more than once", i+1, id)
			}
			seen[id] = true
		}
		if err := utils.ValidateResourceId[Asset](ctx, item.AssetId); err != nil {
			return err
		}
	}
	return nil
}

func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	actor, ok := utils.GetUserEmailFromContext(ctx)
	if !ok {
		return nil, ErrMissingActor
	}

	purchaseDate := input.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now().UTC()
	}

	purchase := Purchase{
		VendorId:      input.VendorId,
		VendorName:    input.VendorName,
		VendorPhone:   input.VendorPhone,
		VendorAddress: input.VendorAddress,
		InvoiceNo:     input.InvoiceNo,
		PurchaseDate:  purchaseDate,
		PurchasePrice: input.PurchasePrice,
		PaidAmount:    input.PaidAmount,
		DueAmount:     input.PurchasePrice.Sub(input.PaidAmount),
		CreatedBy:     actor,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		for _, item := range input.Items {
			line, err := createPurchaseLine(tx, purchase.ID, &item, MovementReferencePurchase)
			if err != nil {
				return err
			}
			purchase.Items = append(purchase.Items, *line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

// createPurchaseLine persists one line and mints its ids into the asset pool.
// Must run inside the purchase transaction.
func createPurchaseLine(tx *gorm.DB, purchaseId int, input *NewPurchaseItem, refType MovementReferenceType) (*PurchaseItem, error) {

	var asset Asset
	if err := tx.First(&asset, input.AssetId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("Asset")
		}
		return nil, err
	}

	line := PurchaseItem{
		PurchaseId: purchaseId,
		AssetId:    input.AssetId,
		AssetName:  asset.Name,
		Qty:        input.Qty,
		UnitPrice:  input.UnitPrice,
		TotalPrice: input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Qty))),
		AssetIds:   StringList(input.AssetIds),
	}
	if err := tx.Create(&line).Error; err != nil {
		return nil, err
	}

	// Reject ids already minted by any purchase, not just ids still in the pool.
	var minted int64
	for _, id := range input.AssetIds {
		err := tx.Model(&PurchaseItem{}).
			Where("asset_id = ? AND id <> ? AND JSON_CONTAINS(asset_ids, JSON_QUOTE(?))",
				input.AssetId, line.ID, id).
			Count(&minted).Error
		if err != nil {
			return nil, err
		}
		if minted > 0 {
			return nil, utils.NewConflictError("asset id %q was already recorded by another purchase", id)
		}
	}

	_, err := ApplyAssetDelta(tx, input.AssetId, input.Qty, input.AssetIds, nil, LedgerRef{
		Type:        refType,
		ID:          purchaseId,
		DetailID:    line.ID,
		Description: fmt.Sprintf("purchase intake %s x%d", asset.Name, input.Qty),
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdatePurchaseInput carries a purchase edit. Existing lines are identified
// by id; lines present in the document but absent from the edit are removed
// (reversed); entries without an id are appended as new intake lines.
type UpdatePurchaseInput struct {
	VendorId      string                `json:"vendor_id"`
	VendorName    string                `json:"vendor_name" binding:"required"`
	VendorPhone   string                `json:"vendor_phone"`
	VendorAddress string                `json:"vendor_address"`
	InvoiceNo     string                `json:"invoice_no" binding:"required"`
	PurchaseDate  time.Time             `json:"purchase_date"`
	PurchasePrice decimal.Decimal       `json:"purchase_price"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Items         []UpdatePurchaseLine  `json:"items" binding:"required,min=1,dive"`
}

type UpdatePurchaseLine struct {
	ID        int             `json:"id"`
	AssetId   int             `json:"asset_id" binding:"required"`
	Qty       int             `json:"qty" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AssetIds  []string        `json:"asset_ids"`
}

// UpdatePurchase edits header fields and the line set.
//
// Minted ids are write-once. For a kept line the edit must echo the stored
// ids exactly, and therefore the stored quantity too; changing either is a
// conflict. New stock enters via appended lines, and a dropped line is
// reversed only while all of its ids are still unallocated.
func UpdatePurchase(ctx context.Context, id int, input *UpdatePurchaseInput) (*Purchase, error) {

	actor, ok := utils.GetUserEmailFromContext(ctx)
	if !ok {
		return nil, ErrMissingActor
	}

	db := config.GetDB()
	var updated *Purchase
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var purchase Purchase
		if err := tx.Preload("Items").First(&purchase, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("Purchase")
			}
			return err
		}

		existing := make(map[int]*PurchaseItem, len(purchase.Items))
		for i := range purchase.Items {
			existing[purchase.Items[i].ID] = &purchase.Items[i]
		}

		kept := make(map[int]bool, len(input.Items))
		for i, line := range input.Items {
			if line.ID == 0 {
				continue
			}
			stored, ok := existing[line.ID]
			if !ok {
				return utils.NewValidationError("item %d: line %d does not belong to this purchase", i+1, line.ID)
			}
			if err := checkLineUnchanged(stored, &line, i); err != nil {
				return err
			}
			kept[line.ID] = true
		}

		// Reverse dropped lines first so their ids leave the pool (or the
		// whole edit fails) before new ids are minted.
		for i := range purchase.Items {
			stored := &purchase.Items[i]
			if kept[stored.ID] {
				continue
			}
			if err := reversePurchaseLine(tx, &purchase, stored); err != nil {
				return err
			}
		}

		for i, line := range input.Items {
			if line.ID != 0 {
				// Kept lines may reprice; ids and quantity stay fixed.
				stored := existing[line.ID]
				err := tx.Model(stored).Updates(map[string]interface{}{
					"UnitPrice":  line.UnitPrice,
					"TotalPrice": line.UnitPrice.Mul(decimal.NewFromInt(int64(stored.Qty))),
				}).Error
				if err != nil {
					return err
				}
				continue
			}
			newLine := NewPurchaseItem{
				AssetId:   line.AssetId,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
				AssetIds:  line.AssetIds,
			}
			if err := validateNewLine(&newLine, i); err != nil {
				return err
			}
			if _, err := createPurchaseLine(tx, purchase.ID, &newLine, MovementReferencePurchaseEdit); err != nil {
				return err
			}
		}

		purchaseDate := input.PurchaseDate
		if purchaseDate.IsZero() {
			purchaseDate = purchase.PurchaseDate
		}
		err := tx.Model(&purchase).Updates(map[string]interface{}{
			"VendorId":      input.VendorId,
			"VendorName":    input.VendorName,
			"VendorPhone":   input.VendorPhone,
			"VendorAddress": input.VendorAddress,
			"InvoiceNo":     input.InvoiceNo,
			"PurchaseDate":  purchaseDate,
			"PurchasePrice": input.PurchasePrice,
			"PaidAmount":    input.PaidAmount,
			"DueAmount":     input.PurchasePrice.Sub(input.PaidAmount),
			"UpdatedBy":     actor,
		}).Error
		if err != nil {
			return err
		}

		var fresh Purchase
		if err := tx.Preload("Items").First(&fresh, purchase.ID).Error; err != nil {
			return err
		}
		updated = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func checkLineUnchanged(stored *PurchaseItem, line *UpdatePurchaseLine, idx int) error {
	if line.AssetId != stored.AssetId {
		return utils.NewConflictError("item %d: asset cannot be changed on a saved line", idx+1)
	}
	if line.Qty != stored.Qty {
		return utils.NewValidationError(
			"item %d: quantity change from %d to %d requires a matching asset id change, but minted ids are fixed; add or remove a line instead",
			idx+1, stored.Qty, line.Qty)
	}
	if len(line.AssetIds) > 0 {
		if len(line.AssetIds) != len(stored.AssetIds) {
			return utils.NewConflictError("item %d: asset ids on a saved line cannot be rewritten", idx+1)
		}
		for j, id := range line.AssetIds {
			if stored.AssetIds[j] != id {
				return utils.NewConflictError("item %d: asset ids on a saved line cannot be rewritten", idx+1)
			}
		}
	}
	return nil
}

func validateNewLine(line *NewPurchaseItem, idx int) error {
	if line.Qty <= 0 {
		return utils.NewValidationError("item %d: quantity must be positive", idx+1)
	}
	if len(line.AssetIds) != line.Qty {
		return utils.NewValidationError(
			"item %d: %d asset ids supplied for quantity %d", idx+1, len(line.AssetIds), line.Qty)
	}
	if utils.HasDuplicates(line.AssetIds) {
		return utils.NewValidationError("item %d: duplicate asset ids", idx+1)
	}
	for _, id := range line.AssetIds {
		if id == "" {
			return utils.NewValidationError("item %d: empty asset id", idx+1)
		}
	}
	return nil
}

// reversePurchaseLine removes a line's ids from the pool and deletes the line.
// Fails closed while any of the ids is allocated to an approved request.
func reversePurchaseLine(tx *gorm.DB, purchase *Purchase, line *PurchaseItem) error {

	missing, err := LockAssetPool(tx, line.AssetId, line.AssetIds)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return utils.NewConflictError(
			"purchase %d line %d: ids %v are allocated to approved requests and cannot be withdrawn",
			purchase.ID, line.ID, missing)
	}

	movement, err := applyReversalDelta(tx, line, purchase.ID)
	if err != nil {
		return err
	}
	if err := MarkLineMovementReversed(tx, purchase.ID, line.ID, movement, "purchase line removed"); err != nil {
		return err
	}
	return tx.Delete(line).Error
}

func applyReversalDelta(tx *gorm.DB, line *PurchaseItem, purchaseId int) (int, error) {
	_, err := ApplyAssetDelta(tx, line.AssetId, -line.Qty, nil, line.AssetIds, LedgerRef{
		Type:        MovementReferencePurchaseReversal,
		ID:          purchaseId,
		DetailID:    line.ID,
		Description: fmt.Sprintf("purchase reversal %s x%d", line.AssetName, line.Qty),
		IsReversal:  true,
	})
	if err != nil {
		return 0, err
	}

	var movement AssetMovement
	err = tx.Where("reference_type = ? AND reference_id = ? AND reference_detail_id = ?",
		MovementReferencePurchaseReversal, purchaseId, line.ID).
		Order("id DESC").
		First(&movement).Error
	if err != nil {
		return 0, err
	}
	return movement.ID, nil
}

// DeletePurchase reverses every line and removes the document. If any minted
// id has been allocated the deletion fails closed with a conflict; the caller
// must release the allocations first.
func DeletePurchase(ctx context.Context, id int) (*Purchase, error) {

	db := config.GetDB()
	var deleted *Purchase
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var purchase Purchase
		if err := tx.Preload("Items").First(&purchase, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("Purchase")
			}
			return err
		}

		for i := range purchase.Items {
			if err := reversePurchaseLine(tx, &purchase, &purchase.Items[i]); err != nil {
				return err
			}
		}
		if err := tx.Delete(&purchase).Error; err != nil {
			return err
		}
		deleted = &purchase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return utils.FetchModel[Purchase](ctx, id, "Items")
}

func GetPurchases(ctx context.Context) ([]*Purchase, error) {
	return utils.FetchAllModels[Purchase](ctx, "Items")
}

// GetPurchaseAssetIds returns the ids minted by one purchase, grouped by line.
func GetPurchaseAssetIds(ctx context.Context, id int) (map[int][]string, error) {
	purchase, err := utils.FetchModel[Purchase](ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	ids := make(map[int][]string, len(purchase.Items))
	for _, item := range purchase.Items {
		ids[item.ID] = item.AssetIds
	}
	return ids, nil
}
