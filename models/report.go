package models

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DashboardStats is the landing-page summary.
type DashboardStats struct {
	TotalAssets       int64           `json:"total_assets"`
	TotalUnitsInStock int64           `json:"total_units_in_stock"`
	TotalUnitsHeld    int64           `json:"total_units_held"`
	PendingRequests   int64           `json:"pending_requests"`
	ApprovedRequests  int64           `json:"approved_requests"`
	RejectedRequests  int64           `json:"rejected_requests"`
	TotalPurchases    int64           `json:"total_purchases"`
	TotalPurchaseDue  decimal.Decimal `json:"total_purchase_due"`
}

func GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := config.GetDB().WithContext(ctx)
	stats := DashboardStats{TotalPurchaseDue: decimal.Zero}

	if err := db.Model(&Asset{}).Count(&stats.TotalAssets).Error; err != nil {
		return nil, err
	}
	var inStock *int64
	if err := db.Model(&Asset{}).Select("SUM(quantity)").Scan(&inStock).Error; err != nil {
		return nil, err
	}
	if inStock != nil {
		stats.TotalUnitsInStock = *inStock
	}
	var held *int64
	err := db.Model(&AssetRequest{}).
		Where("status = ?", RequestStatusApproved).
		Select("SUM(quantity)").
		Scan(&held).Error
	if err != nil {
		return nil, err
	}
	if held != nil {
		stats.TotalUnitsHeld = *held
	}

	for status, dest := range map[RequestStatus]*int64{
		RequestStatusPending:  &stats.PendingRequests,
		RequestStatusApproved: &stats.ApprovedRequests,
		RequestStatusRejected: &stats.RejectedRequests,
	} {
		if err := db.Model(&AssetRequest{}).Where("status = ?", status).Count(dest).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&Purchase{}).Count(&stats.TotalPurchases).Error; err != nil {
		return nil, err
	}
	var due []string
	if err := db.Model(&Purchase{}).Pluck("due_amount", &due).Error; err != nil {
		return nil, err
	}
	for _, d := range due {
		dec, err := decimal.NewFromString(d)
		if err != nil {
			continue
		}
		stats.TotalPurchaseDue = stats.TotalPurchaseDue.Add(dec)
	}
	return &stats, nil
}

// InventorySummaryRow is one asset's line in the stock report.
type InventorySummaryRow struct {
	AssetId        int    `json:"asset_id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Unit           string `json:"unit"`
	InStock        int    `json:"in_stock"`
	UnitsHeld      int    `json:"units_held"`
	TotalPurchased int    `json:"total_purchased"`
}

func GetInventorySummary(ctx context.Context) ([]InventorySummaryRow, error) {
	assets, err := GetAssets(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]InventorySummaryRow, 0, len(assets))
	for _, asset := range assets {
		purchased, err := PurchasedAssetIds(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		consumed, err := ConsumedAssetIds(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, InventorySummaryRow{
			AssetId:        asset.ID,
			Name:           asset.Name,
			Category:       asset.Category,
			Subcategory:    asset.Subcategory,
			Unit:           asset.Unit,
			InStock:        asset.Quantity,
			UnitsHeld:      len(consumed),
			TotalPurchased: len(purchased),
		})
	}
	return rows, nil
}

// ExportInventorySummaryXlsx renders the stock report as a spreadsheet.
func ExportInventorySummaryXlsx(ctx context.Context) (*bytes.Buffer, error) {
	rows, err := GetInventorySummary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Asset ID", "Name", "Category", "Subcategory", "Unit", "In Stock", "Units Held", "Total Purchased"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, row := range rows {
		values := []interface{}{
			row.AssetId, row.Name, row.Category, row.Subcategory,
			row.Unit, row.InStock, row.UnitsHeld, row.TotalPurchased,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	generated, _ := excelize.CoordinatesToCellName(1, len(rows)+3)
	f.SetCellValue(sheet, generated, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC3339)))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
