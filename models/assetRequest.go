package models

import (
	"context"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"gorm.io/gorm"
)

// AssetRequest is an employee's claim on units of an asset. It is created
// pending and moves exactly once, to approved or rejected. Approval is the
// only transition that touches the ledger; it lives in the workflow package.
//
// LegacyAssetId carries the single-id column older records were written with.
// The availability resolver unions it with AssetIds; new approvals write
// AssetIds only.
type AssetRequest struct {
	ID             int           `gorm:"primary_key" json:"id"`
	UserEmail      string        `gorm:"index;size:100;not null" json:"user_email"`
	AssetId        int           `gorm:"index;not null" json:"asset_id"`
	AssetName      string        `gorm:"size:100;not null" json:"asset_name"`
	Category       string        `gorm:"size:100" json:"category"`
	Subcategory    string        `gorm:"size:100" json:"subcategory"`
	Quantity       int           `gorm:"not null" json:"quantity"`
	Unit           string        `gorm:"size:20" json:"unit"`
	Status         RequestStatus `gorm:"type:enum('pending','approved','rejected');not null;default:'pending';index" json:"status"`
	Message        string        `gorm:"type:text" json:"message"`
	SentDate       time.Time     `gorm:"not null" json:"sent_date"`
	ApprovedBy     string        `gorm:"size:100" json:"approved_by"`
	ApprovedByName string        `gorm:"size:100" json:"approved_by_name"`
	ApprovedAt     *time.Time    `json:"approved_at"`
	RejectReason   string        `gorm:"type:text" json:"reject_reason"`
	AssetIds       StringList    `gorm:"type:json" json:"asset_ids"`
	LegacyAssetId  string        `gorm:"column:legacy_asset_id;size:100" json:"legacy_asset_id"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAssetRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	AssetId   int    `json:"asset_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Message   string `json:"message"`
}

func (input *NewAssetRequest) validate(ctx context.Context) (*Asset, error) {
	if input.Quantity <= 0 {
		return nil, utils.NewValidationError("quantity must be positive")
	}
	asset, err := utils.FetchModel[Asset](ctx, input.AssetId)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// CreateAssetRequest records a pending request. No stock check happens here;
// availability is only decided at approval time.
func CreateAssetRequest(ctx context.Context, input *NewAssetRequest) (*AssetRequest, error) {

	asset, err := input.validate(ctx)
	if err != nil {
		return nil, err
	}

	request := AssetRequest{
		UserEmail:   input.UserEmail,
		AssetId:     asset.ID,
		AssetName:   asset.Name,
		Category:    asset.Category,
		Subcategory: asset.Subcategory,
		Quantity:    input.Quantity,
		Unit:        asset.Unit,
		Status:      RequestStatusPending,
		Message:     input.Message,
		SentDate:    time.Now().UTC(),
		AssetIds:    StringList{},
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

const defaultRejectReason = "No reason provided"

// RejectAssetRequest closes a pending request without touching the ledger.
// Rejecting an already rejected request is a no-op; an approved request has
// allocated units and cannot be rejected.
func RejectAssetRequest(ctx context.Context, id int, reason string) (*AssetRequest, error) {

	actor, ok := utils.GetUserEmailFromContext(ctx)
	if !ok {
		return nil, ErrMissingActor
	}
	actorName, _ := utils.GetUserNameFromContext(ctx)

	if reason == "" {
		reason = defaultRejectReason
	}

	db := config.GetDB()
	var rejected *AssetRequest
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request AssetRequest
		if err := tx.First(&request, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("AssetRequest")
			}
			return err
		}

		switch request.Status {
		case RequestStatusRejected:
			rejected = &request
			return nil
		case RequestStatusApproved:
			return utils.NewConflictError("request %d is approved; release its units before rejecting", id)
		}

		err := tx.Model(&request).Updates(map[string]interface{}{
			"Status":         RequestStatusRejected,
			"RejectReason":   reason,
			"ApprovedBy":     actor,
			"ApprovedByName": actorName,
		}).Error
		if err != nil {
			return err
		}
		rejected = &request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func GetAssetRequest(ctx context.Context, id int) (*AssetRequest, error) {
	return utils.FetchModel[AssetRequest](ctx, id)
}

func GetAssetRequests(ctx context.Context) ([]*AssetRequest, error) {
	return utils.FetchAllModels[AssetRequest](ctx)
}

func GetAssetRequestsByUser(ctx context.Context, email string) ([]*AssetRequest, error) {
	db := config.GetDB()
	var requests []*AssetRequest
	err := db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("sent_date DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func GetPendingAssetRequests(ctx context.Context) ([]*AssetRequest, error) {
	db := config.GetDB()
	var requests []*AssetRequest
	err := db.WithContext(ctx).
		Where("status = ?", RequestStatusPending).
		Order("sent_date").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// UserAssetDetail is one allocated unit held by a user, flattened from the
// approved requests that granted it.
type UserAssetDetail struct {
	RequestId  int        `json:"request_id"`
	AssetId    int        `json:"asset_id"`
	AssetName  string     `json:"asset_name"`
	Category   string     `json:"category"`
	UnitId     string     `json:"unit_id"`
	ApprovedAt *time.Time `json:"approved_at"`
}

// GetUserAssetDetails lists every unit currently held by the user.
func GetUserAssetDetails(ctx context.Context, email string) ([]UserAssetDetail, error) {
	db := config.GetDB()
	var requests []*AssetRequest
	err := db.WithContext(ctx).
		Where("user_email = ? AND status = ?", email, RequestStatusApproved).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	var details []UserAssetDetail
	for _, req := range requests {
		held := req.AssetIds
		if req.LegacyAssetId != "" && !held.Contains(req.LegacyAssetId) {
			held = append(StringList{req.LegacyAssetId}, held...)
		}
		for _, unitId := range held {
			details = append(details, UserAssetDetail{
				RequestId:  req.ID,
				AssetId:    req.AssetId,
				AssetName:  req.AssetName,
				Category:   req.Category,
				UnitId:     unitId,
				ApprovedAt: req.ApprovedAt,
			})
		}
	}
	return details, nil
}
