package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetMovement is the append-only audit trail of ledger deltas.
//
// Rows are never deleted. Undoing a movement appends a compensating row and
// links the pair via ReversesMovementId/ReversedByMovementId.
type AssetMovement struct {
	ID                   int                   `gorm:"primary_key" json:"id"`
	AssetId              int                   `gorm:"index;not null" json:"asset_id"`
	Qty                  int                   `gorm:"not null" json:"qty"`
	ClosingQty           int                   `gorm:"not null" json:"closing_qty"`
	IdsAdded             StringList            `gorm:"type:json" json:"ids_added"`
	IdsRemoved           StringList            `gorm:"type:json" json:"ids_removed"`
	Description          string                `gorm:"size:200;not null" json:"description"`
	ReferenceType        MovementReferenceType `gorm:"type:enum('PU','PE','PR','RQ','RB');not null" json:"reference_type"`
	ReferenceID          int                   `gorm:"index" json:"reference_id"`
	ReferenceDetailID    int                   `json:"reference_detail_id"`
	IsReversal           bool                  `gorm:"not null;default:false;index" json:"is_reversal"`
	ReversesMovementId   *int                  `gorm:"index" json:"reverses_movement_id"`
	ReversedByMovementId *int                  `gorm:"index" json:"reversed_by_movement_id"`
	ReversalReason       *string               `gorm:"type:text" json:"reversal_reason"`
	ReversedAt           *time.Time            `gorm:"index" json:"reversed_at"`
	CreatedAt            time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

// MarkLineMovementReversed links one purchase line's original intake movement
// to the compensating row created for its reversal. The line is the linkage
// key: a line minted at intake carries a different reference type than one
// appended by a later edit, so both are matched. Metadata-only update.
func MarkLineMovementReversed(tx *gorm.DB, refId int, detailId int, reversalId int, reason string) error {
	now := time.Now().UTC()
	intakeTypes := []MovementReferenceType{MovementReferencePurchase, MovementReferencePurchaseEdit}
	return tx.Model(&AssetMovement{}).
		Where("reference_type IN ? AND reference_id = ? AND reference_detail_id = ? AND is_reversal = 0 AND reversed_by_movement_id IS NULL",
			intakeTypes, refId, detailId).
		Updates(map[string]interface{}{
			"reversed_by_movement_id": reversalId,
			"reversal_reason":         reason,
			"reversed_at":             now,
		}).Error
}
