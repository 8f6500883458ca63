package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApproveAssetRequestInput carries the approver's decision. AssetIds picks the
// exact units to hand over; when empty the oldest available units are assigned.
// Quantity overrides the requested amount (partial approval); zero keeps it.
type ApproveAssetRequestInput struct {
	Quantity int      `json:"quantity" binding:"min=0"`
	AssetIds []string `json:"asset_ids"`
}

// ApproveAssetRequest allocates units to a pending request and marks it
// approved, atomically. The decision point for availability is here and only
// here; requests are accepted without any stock check.
//
// A request is approved at most once. Approving an already approved request is
// a conflict, and a rejected request cannot be revived; the approver must file
// a fresh request instead.
func ApproveAssetRequest(ctx context.Context, requestId int, input *ApproveAssetRequestInput) (*models.AssetRequest, error) {

	actor, ok := utils.GetUserEmailFromContext(ctx)
	if !ok {
		return nil, models.ErrMissingActor
	}
	actorName, _ := utils.GetUserNameFromContext(ctx)

	if input == nil {
		input = &ApproveAssetRequestInput{}
	}
	if utils.HasDuplicates(input.AssetIds) {
		return nil, utils.NewValidationError("duplicate asset ids in approval")
	}

	// Peek at the request outside the transaction to key the best-effort lock.
	peek, err := models.GetAssetRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	redisLock := obtainAllocationLock(ctx, peek.AssetId)
	defer releaseAllocationLock(ctx, redisLock)

	db := config.GetDB()
	var approved *models.AssetRequest
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var request models.AssetRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, requestId).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("AssetRequest")
			}
			return err
		}

		switch request.Status {
		case models.RequestStatusApproved:
			return utils.NewConflictError("request %d is already approved", requestId)
		case models.RequestStatusRejected:
			return utils.NewConflictError("request %d was rejected; file a new request", requestId)
		}

		if err := AcquireAssetPostingLock(tx, request.AssetId); err != nil {
			return err
		}
		defer ReleaseAssetPostingLock(tx, request.AssetId)

		quantity := effectiveQuantity(input, &request)
		if quantity <= 0 {
			return utils.NewValidationError("approval quantity must be positive")
		}

		ids := input.AssetIds
		if len(ids) == 0 {
			picked, err := pickOldestAvailable(tx, request.AssetId, quantity)
			if err != nil {
				return err
			}
			ids = picked
		} else if len(ids) != quantity {
			return utils.NewValidationError(
				"%d asset ids supplied for approval quantity %d", len(ids), quantity)
		}

		_, err := models.ApplyAssetDelta(tx, request.AssetId, -quantity, nil, ids, models.LedgerRef{
			Type:        models.MovementReferenceRequestApproval,
			ID:          request.ID,
			Description: fmt.Sprintf("request approval %s x%d for %s", request.AssetName, quantity, request.UserEmail),
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		err = tx.Model(&request).Updates(map[string]interface{}{
			"Status":         models.RequestStatusApproved,
			"Quantity":       quantity,
			"AssetIds":       models.StringList(ids),
			"ApprovedBy":     actor,
			"ApprovedByName": actorName,
			"ApprovedAt":     &now,
		}).Error
		if err != nil {
			return err
		}
		approved = &request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// effectiveQuantity resolves the amount to allocate: an explicit override
// wins, then the requested amount, then the size of the supplied id list.
func effectiveQuantity(input *ApproveAssetRequestInput, request *models.AssetRequest) int {
	if input.Quantity > 0 {
		return input.Quantity
	}
	if request.Quantity > 0 {
		return request.Quantity
	}
	return len(input.AssetIds)
}

// pickOldestAvailable locks the asset row and takes the first n pool ids.
// Pool order is intake order, so the oldest stock leaves first.
func pickOldestAvailable(tx *gorm.DB, assetId int, n int) ([]string, error) {
	var asset models.Asset
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&asset, assetId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("Asset")
		}
		return nil, err
	}
	if len(asset.AssetIds) < n {
		return nil, utils.NewInsufficientStockError(
			"asset %d has %d unit(s) available, %d requested", assetId, len(asset.AssetIds), n)
	}
	return append([]string(nil), asset.AssetIds[:n]...), nil
}

// CreateAndApproveAssetRequest is the walk-up counter shortcut: an approver
// hands units over on the spot and records both steps at once.
func CreateAndApproveAssetRequest(ctx context.Context, input *models.NewAssetRequest, approval *ApproveAssetRequestInput) (*models.AssetRequest, error) {
	request, err := models.CreateAssetRequest(ctx, input)
	if err != nil {
		return nil, err
	}
	return ApproveAssetRequest(ctx, request.ID, approval)
}
