package models

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"github.com/sirupsen/logrus"
)

// ReconciliationReport is one persisted finding of the consistency checker.
// Clean assets produce no rows; only faults are recorded.
type ReconciliationReport struct {
	ID         int        `gorm:"primary_key" json:"id"`
	RunId      string     `gorm:"index;size:40;not null" json:"run_id"`
	AssetId    int        `gorm:"index;not null" json:"asset_id"`
	AssetName  string     `gorm:"size:100" json:"asset_name"`
	CheckName  string     `gorm:"size:50;not null" json:"check_name"`
	Expected   string     `gorm:"type:text" json:"expected"`
	Actual     string     `gorm:"type:text" json:"actual"`
	Detail     string     `gorm:"type:text" json:"detail"`
	Resolved   bool       `gorm:"not null;default:false" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

const (
	checkQuantityMatchesPool = "quantity_matches_pool"
	checkPoolMatchesResolver = "pool_matches_resolver"
)

// ReconciliationSummary is the outcome of one checker run.
type ReconciliationSummary struct {
	RunId         string                  `json:"run_id"`
	AssetsChecked int                     `json:"assets_checked"`
	Findings      []*ReconciliationReport `json:"findings"`
	StartedAt     time.Time               `json:"started_at"`
	FinishedAt    time.Time               `json:"finished_at"`
}

// RunReconciliationChecks audits every asset against both invariants of the
// core: the cached quantity must equal the cached pool size, and the cached
// pool must equal the set the availability resolver derives from purchase and
// request history. Findings are persisted and logged; the run itself never
// mutates ledger state.
func RunReconciliationChecks(ctx context.Context) (*ReconciliationSummary, error) {

	summary := &ReconciliationSummary{
		RunId:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := config.GetLogger().WithFields(logrus.Fields{
		"module": "reconciliation.go",
		"runId":  summary.RunId,
	})

	assets, err := utils.FetchAllModels[Asset](ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	for _, asset := range assets {
		summary.AssetsChecked++

		findings, err := checkAsset(ctx, asset)
		if err != nil {
			return nil, err
		}
		for _, finding := range findings {
			finding.RunId = summary.RunId
			if err := db.WithContext(ctx).Create(finding).Error; err != nil {
				return nil, err
			}
			logger.WithFields(logrus.Fields{
				"assetId":  finding.AssetId,
				"check":    finding.CheckName,
				"expected": finding.Expected,
				"actual":   finding.Actual,
			}).Error(utils.NewConsistencyError("reconciliation mismatch: %s", finding.Detail).Error())
			summary.Findings = append(summary.Findings, finding)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	if len(summary.Findings) == 0 {
		logger.WithField("assetsChecked", summary.AssetsChecked).Info("reconciliation clean")
	}
	return summary, nil
}

func checkAsset(ctx context.Context, asset *Asset) ([]*ReconciliationReport, error) {
	var findings []*ReconciliationReport

	if asset.Quantity != len(asset.AssetIds) {
		findings = append(findings, &ReconciliationReport{
			AssetId:   asset.ID,
			AssetName: asset.Name,
			CheckName: checkQuantityMatchesPool,
			Expected:  strconv.Itoa(len(asset.AssetIds)),
			Actual:    strconv.Itoa(asset.Quantity),
			Detail:    "asset quantity does not match its unallocated id pool size",
		})
	}

	derived, err := AvailableAssetIds(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	if !sameIdSet(asset.AssetIds, derived) {
		findings = append(findings, &ReconciliationReport{
			AssetId:   asset.ID,
			AssetName: asset.Name,
			CheckName: checkPoolMatchesResolver,
			Expected:  strings.Join(derived, ","),
			Actual:    strings.Join(asset.AssetIds, ","),
			Detail:    "cached pool disagrees with ids derived from purchase and request history",
		})
	}
	return findings, nil
}

// sameIdSet compares as sets; the pool's internal order is not part of the
// invariant.
func sameIdSet(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// GetOpenReconciliationFindings lists unresolved findings, newest runs first.
func GetOpenReconciliationFindings(ctx context.Context) ([]*ReconciliationReport, error) {
	db := config.GetDB()
	var findings []*ReconciliationReport
	err := db.WithContext(ctx).
		Where("resolved = 0").
		Order("id DESC").
		Find(&findings).Error
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// ResolveReconciliationFinding marks a finding handled after manual repair.
func ResolveReconciliationFinding(ctx context.Context, id int) error {
	db := config.GetDB()
	finding, err := utils.FetchModel[ReconciliationReport](ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return db.WithContext(ctx).Model(finding).Updates(map[string]interface{}{
		"Resolved":   true,
		"ResolvedAt": &now,
	}).Error
}
