package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/utils"
	"github.com/nklabsmm/officeassets_backend/workflow"
	"github.com/shopspring/decimal"
)

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "officeassets_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx := context.Background()
	ctx = utils.SetUserEmailInContext(ctx, "admin@test.local")
	ctx = utils.SetUserNameInContext(ctx, "Test Admin")
	ctx = utils.SetIsAdminInContext(ctx, true)
	return ctx
}

func mustCreateAsset(t *testing.T, ctx context.Context, name string) *models.Asset {
	t.Helper()
	asset, err := models.CreateAsset(ctx, &models.NewAsset{
		Name:        name,
		Category:    "Electronics",
		Subcategory: "Computers",
		Brand:       "Lenovo",
		Unit:        "pcs",
	})
	if err != nil {
		t.Fatalf("CreateAsset(%s): %v", name, err)
	}
	return asset
}

func mustPurchase(t *testing.T, ctx context.Context, assetId int, ids ...string) *models.Purchase {
	t.Helper()
	purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     fmt.Sprintf("INV-%d", time.Now().UnixNano()),
		PurchasePrice: decimal.NewFromInt(int64(1000 * len(ids))),
		PaidAmount:    decimal.NewFromInt(int64(1000 * len(ids))),
		Items: []models.NewPurchaseItem{
			{
				AssetId:   assetId,
				Qty:       len(ids),
				UnitPrice: decimal.NewFromInt(1000),
				AssetIds:  ids,
			},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	return purchase
}

func assertAssetState(t *testing.T, ctx context.Context, assetId int, wantQty int, wantIds ...string) {
	t.Helper()
	asset, err := models.GetAsset(ctx, assetId)
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if asset.Quantity != wantQty {
		t.Fatalf("asset %d: quantity = %d, want %d", assetId, asset.Quantity, wantQty)
	}
	if asset.Quantity != len(asset.AssetIds) {
		t.Fatalf("asset %d: quantity %d != pool size %d", assetId, asset.Quantity, len(asset.AssetIds))
	}
	if len(wantIds) > 0 {
		if len(asset.AssetIds) != len(wantIds) {
			t.Fatalf("asset %d: pool = %v, want %v", assetId, asset.AssetIds, wantIds)
		}
		for i, id := range wantIds {
			if asset.AssetIds[i] != id {
				t.Fatalf("asset %d: pool = %v, want %v", assetId, asset.AssetIds, wantIds)
			}
		}
	}
}

func assertReconciliationClean(t *testing.T, ctx context.Context) {
	t.Helper()
	summary, err := models.RunReconciliationChecks(ctx)
	if err != nil {
		t.Fatalf("RunReconciliationChecks: %v", err)
	}
	if len(summary.Findings) != 0 {
		for _, f := range summary.Findings {
			t.Logf("finding: asset=%d check=%s expected=%s actual=%s", f.AssetId, f.CheckName, f.Expected, f.Actual)
		}
		t.Fatalf("expected clean reconciliation, got %d finding(s)", len(summary.Findings))
	}
}

func TestPurchaseIntakeAndRequestLifecycle(t *testing.T) {
	ctx := setupIntegration(t)

	laptop := mustCreateAsset(t, ctx, "ThinkPad T14")
	mustPurchase(t, ctx, laptop.ID, "LP-001", "LP-002", "LP-003")
	assertAssetState(t, ctx, laptop.ID, 3, "LP-001", "LP-002", "LP-003")

	// An unknown asset renders as an empty selection, not an error.
	if ids, err := models.GetAssetIds(ctx, 999999); err != nil {
		t.Fatalf("GetAssetIds(missing): %v", err)
	} else if len(ids) != 0 {
		t.Fatalf("expected empty pool for missing asset, got %v", ids)
	}

	// A purchase repeating an already minted id is rejected whole.
	_, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     "INV-DUP",
		PurchasePrice: decimal.NewFromInt(1000),
		PaidAmount:    decimal.NewFromInt(1000),
		Items: []models.NewPurchaseItem{
			{AssetId: laptop.ID, Qty: 1, UnitPrice: decimal.NewFromInt(1000), AssetIds: []string{"LP-002"}},
		},
	})
	if err == nil {
		t.Fatal("expected conflict for duplicate minted id")
	}
	assertAssetState(t, ctx, laptop.ID, 3)

	// Duplicate ids within one document are a validation error.
	_, err = models.CreatePurchase(ctx, &models.NewPurchase{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     "INV-DUP2",
		PurchasePrice: decimal.NewFromInt(2000),
		PaidAmount:    decimal.NewFromInt(2000),
		Items: []models.NewPurchaseItem{
			{AssetId: laptop.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1000), AssetIds: []string{"LP-009", "LP-009"}},
		},
	})
	if err == nil || utils.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error for in-document duplicate, got %v", err)
	}

	userCtx := utils.SetUserEmailInContext(context.Background(), "alice@test.local")
	request, err := models.CreateAssetRequest(userCtx, &models.NewAssetRequest{
		UserEmail: "alice@test.local",
		AssetId:   laptop.ID,
		Quantity:  2,
		Message:   "new hire setup",
	})
	if err != nil {
		t.Fatalf("CreateAssetRequest: %v", err)
	}
	if request.Status != models.RequestStatusPending {
		t.Fatalf("new request status = %s, want pending", request.Status)
	}
	// Creation must not touch stock.
	assertAssetState(t, ctx, laptop.ID, 3)

	approved, err := workflow.ApproveAssetRequest(ctx, request.ID, &workflow.ApproveAssetRequestInput{
		AssetIds: []string{"LP-001", "LP-003"},
	})
	if err != nil {
		t.Fatalf("ApproveAssetRequest: %v", err)
	}
	if approved.Status != models.RequestStatusApproved {
		t.Fatalf("approved status = %s", approved.Status)
	}
	if len(approved.AssetIds) != 2 || !approved.AssetIds.Contains("LP-001") || !approved.AssetIds.Contains("LP-003") {
		t.Fatalf("approved ids = %v", approved.AssetIds)
	}
	assertAssetState(t, ctx, laptop.ID, 1, "LP-002")

	// Approval is once only.
	_, err = workflow.ApproveAssetRequest(ctx, request.ID, &workflow.ApproveAssetRequestInput{})
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict re-approving, got %v", err)
	}

	// Count mismatch between ids and quantity.
	second, err := models.CreateAssetRequest(userCtx, &models.NewAssetRequest{
		UserEmail: "alice@test.local",
		AssetId:   laptop.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("CreateAssetRequest(second): %v", err)
	}
	_, err = workflow.ApproveAssetRequest(ctx, second.ID, &workflow.ApproveAssetRequestInput{
		AssetIds: []string{"LP-002", "LP-001"},
	})
	if err == nil || utils.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error for count mismatch, got %v", err)
	}

	// Allocating an id another request already holds.
	_, err = workflow.ApproveAssetRequest(ctx, second.ID, &workflow.ApproveAssetRequestInput{
		AssetIds: []string{"LP-001"},
	})
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict for already allocated id, got %v", err)
	}

	// More units than available.
	big, err := models.CreateAssetRequest(userCtx, &models.NewAssetRequest{
		UserEmail: "alice@test.local",
		AssetId:   laptop.ID,
		Quantity:  5,
	})
	if err != nil {
		t.Fatalf("CreateAssetRequest(big): %v", err)
	}
	_, err = workflow.ApproveAssetRequest(ctx, big.ID, nil)
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Reject defaults the reason; rejecting again is a no-op.
	rejected, err := models.RejectAssetRequest(ctx, big.ID, "")
	if err != nil {
		t.Fatalf("RejectAssetRequest: %v", err)
	}
	if rejected.RejectReason != "No reason provided" {
		t.Fatalf("reject reason = %q", rejected.RejectReason)
	}
	if _, err := models.RejectAssetRequest(ctx, big.ID, "again"); err != nil {
		t.Fatalf("second reject should be a no-op: %v", err)
	}

	// A rejected request stays closed.
	_, err = workflow.ApproveAssetRequest(ctx, big.ID, nil)
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict approving rejected request, got %v", err)
	}

	// Rejecting an approved request is a conflict.
	_, err = models.RejectAssetRequest(ctx, request.ID, "changed my mind")
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict rejecting approved request, got %v", err)
	}

	// Auto-assignment takes the oldest pooled unit.
	auto, err := workflow.ApproveAssetRequest(ctx, second.ID, &workflow.ApproveAssetRequestInput{})
	if err != nil {
		t.Fatalf("auto approve: %v", err)
	}
	if len(auto.AssetIds) != 1 || auto.AssetIds[0] != "LP-002" {
		t.Fatalf("auto-assigned ids = %v, want [LP-002]", auto.AssetIds)
	}
	assertAssetState(t, ctx, laptop.ID, 0)

	details, err := models.GetUserAssetDetails(ctx, "alice@test.local")
	if err != nil {
		t.Fatalf("GetUserAssetDetails: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("expected alice to hold 3 units, got %d", len(details))
	}

	assertReconciliationClean(t, ctx)
}

func TestPurchaseEditAndDeleteRules(t *testing.T) {
	ctx := setupIntegration(t)

	monitor := mustCreateAsset(t, ctx, "Dell U2723")
	purchase := mustPurchase(t, ctx, monitor.ID, "MN-001", "MN-002")
	line := purchase.Items[0]

	header := models.UpdatePurchaseInput{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     purchase.InvoiceNo,
		PurchasePrice: decimal.NewFromInt(2400),
		PaidAmount:    decimal.NewFromInt(2400),
	}

	// Quantity change on a saved line without an id change is rejected.
	badQty := header
	badQty.Items = []models.UpdatePurchaseLine{
		{ID: line.ID, AssetId: monitor.ID, Qty: 3, UnitPrice: decimal.NewFromInt(1200)},
	}
	_, err := models.UpdatePurchase(ctx, purchase.ID, &badQty)
	if err == nil || utils.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error for qty edit, got %v", err)
	}

	// Rewriting minted ids is a conflict.
	badIds := header
	badIds.Items = []models.UpdatePurchaseLine{
		{ID: line.ID, AssetId: monitor.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1200), AssetIds: []string{"MN-001", "MN-099"}},
	}
	_, err = models.UpdatePurchase(ctx, purchase.ID, &badIds)
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict for id rewrite, got %v", err)
	}

	// Repricing a kept line and appending a new line both work.
	grow := header
	grow.Items = []models.UpdatePurchaseLine{
		{ID: line.ID, AssetId: monitor.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1100)},
		{AssetId: monitor.ID, Qty: 1, UnitPrice: decimal.NewFromInt(1150), AssetIds: []string{"MN-003"}},
	}
	updated, err := models.UpdatePurchase(ctx, purchase.ID, &grow)
	if err != nil {
		t.Fatalf("UpdatePurchase(grow): %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("expected 2 lines after growth, got %d", len(updated.Items))
	}
	assertAssetState(t, ctx, monitor.ID, 3, "MN-001", "MN-002", "MN-003")

	// Allocate MN-003, then try to drop its line: must fail closed.
	request, err := models.CreateAssetRequest(ctx, &models.NewAssetRequest{
		UserEmail: "bob@test.local",
		AssetId:   monitor.ID,
		Quantity:  1,
	})
	if err != nil {
		t.Fatalf("CreateAssetRequest: %v", err)
	}
	if _, err := workflow.ApproveAssetRequest(ctx, request.ID, &workflow.ApproveAssetRequestInput{
		AssetIds: []string{"MN-003"},
	}); err != nil {
		t.Fatalf("ApproveAssetRequest: %v", err)
	}

	shrink := header
	shrink.Items = []models.UpdatePurchaseLine{
		{ID: line.ID, AssetId: monitor.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1100)},
	}
	_, err = models.UpdatePurchase(ctx, purchase.ID, &shrink)
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict dropping allocated line, got %v", err)
	}

	// Deleting the whole purchase is equally fail-closed.
	_, err = models.DeletePurchase(ctx, purchase.ID)
	if err == nil || utils.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict deleting purchase with allocated ids, got %v", err)
	}

	// A purchase with a fully unallocated pool deletes cleanly and the stock
	// follows it out.
	spare := mustPurchase(t, ctx, monitor.ID, "MN-010", "MN-011")
	if _, err := models.DeletePurchase(ctx, spare.ID); err != nil {
		t.Fatalf("DeletePurchase(spare): %v", err)
	}
	assertAssetState(t, ctx, monitor.ID, 2, "MN-001", "MN-002")

	assertReconciliationClean(t, ctx)
}

func TestDroppedLineReversalLinksItsOwnMovement(t *testing.T) {
	ctx := setupIntegration(t)
	db := config.GetDB()

	printer := mustCreateAsset(t, ctx, "LaserJet M404")
	purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     "INV-MULTI",
		PurchasePrice: decimal.NewFromInt(3000),
		PaidAmount:    decimal.NewFromInt(3000),
		Items: []models.NewPurchaseItem{
			{AssetId: printer.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1000), AssetIds: []string{"PR-A1", "PR-A2"}},
			{AssetId: printer.ID, Qty: 1, UnitPrice: decimal.NewFromInt(1000), AssetIds: []string{"PR-B1"}},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	lineA, lineB := purchase.Items[0], purchase.Items[1]

	header := models.UpdatePurchaseInput{
		VendorName:    "Office Supplies Ltd",
		InvoiceNo:     purchase.InvoiceNo,
		PurchasePrice: decimal.NewFromInt(2000),
		PaidAmount:    decimal.NewFromInt(2000),
	}

	// Drop only the second line; the first line's intake movement must stay
	// untouched and the dropped line's movement must carry the linkage.
	drop := header
	drop.Items = []models.UpdatePurchaseLine{
		{ID: lineA.ID, AssetId: printer.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1000)},
	}
	if _, err := models.UpdatePurchase(ctx, purchase.ID, &drop); err != nil {
		t.Fatalf("UpdatePurchase(drop): %v", err)
	}

	var movA models.AssetMovement
	if err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND reference_detail_id = ?",
			models.MovementReferencePurchase, purchase.ID, lineA.ID).
		First(&movA).Error; err != nil {
		t.Fatalf("fetch kept line movement: %v", err)
	}
	if movA.ReversedByMovementId != nil {
		t.Fatalf("kept line movement %d wrongly marked reversed by %d", movA.ID, *movA.ReversedByMovementId)
	}

	var movB models.AssetMovement
	if err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND reference_detail_id = ?",
			models.MovementReferencePurchase, purchase.ID, lineB.ID).
		First(&movB).Error; err != nil {
		t.Fatalf("fetch dropped line movement: %v", err)
	}
	if movB.ReversedByMovementId == nil {
		t.Fatal("dropped line movement not linked to its reversal")
	}
	var rev models.AssetMovement
	if err := db.WithContext(ctx).First(&rev, *movB.ReversedByMovementId).Error; err != nil {
		t.Fatalf("fetch reversal movement: %v", err)
	}
	if !rev.IsReversal || rev.ReferenceDetailID != lineB.ID {
		t.Fatalf("linkage points at the wrong movement: %+v", rev)
	}
	assertAssetState(t, ctx, printer.ID, 2, "PR-A1", "PR-A2")

	// A line appended via edit is minted under the edit reference type; its
	// later removal must still link to that movement.
	appendLine := header
	appendLine.Items = []models.UpdatePurchaseLine{
		{ID: lineA.ID, AssetId: printer.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1000)},
		{AssetId: printer.ID, Qty: 1, UnitPrice: decimal.NewFromInt(1000), AssetIds: []string{"PR-C1"}},
	}
	appended, err := models.UpdatePurchase(ctx, purchase.ID, &appendLine)
	if err != nil {
		t.Fatalf("UpdatePurchase(append): %v", err)
	}
	var lineC *models.PurchaseItem
	for i := range appended.Items {
		if appended.Items[i].ID != lineA.ID {
			lineC = &appended.Items[i]
		}
	}
	if lineC == nil {
		t.Fatal("appended line not found")
	}

	dropAgain := header
	dropAgain.Items = []models.UpdatePurchaseLine{
		{ID: lineA.ID, AssetId: printer.ID, Qty: 2, UnitPrice: decimal.NewFromInt(1000)},
	}
	if _, err := models.UpdatePurchase(ctx, purchase.ID, &dropAgain); err != nil {
		t.Fatalf("UpdatePurchase(dropAgain): %v", err)
	}

	var movC models.AssetMovement
	if err := db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND reference_detail_id = ?",
			models.MovementReferencePurchaseEdit, purchase.ID, lineC.ID).
		First(&movC).Error; err != nil {
		t.Fatalf("fetch appended line movement: %v", err)
	}
	if movC.ReversedByMovementId == nil {
		t.Fatal("appended line movement not linked to its reversal")
	}
	var movA2 models.AssetMovement
	if err := db.WithContext(ctx).First(&movA2, movA.ID).Error; err != nil {
		t.Fatalf("refetch kept line movement: %v", err)
	}
	if movA2.ReversedByMovementId != nil {
		t.Fatalf("kept line movement %d wrongly marked reversed", movA2.ID)
	}
	assertAssetState(t, ctx, printer.ID, 2, "PR-A1", "PR-A2")

	assertReconciliationClean(t, ctx)
}

func TestConcurrentApprovalsAllocateEachUnitOnce(t *testing.T) {
	ctx := setupIntegration(t)

	dock := mustCreateAsset(t, ctx, "USB-C Dock")
	mustPurchase(t, ctx, dock.ID, "DK-001", "DK-002", "DK-003")

	const contenders = 6
	requestIds := make([]int, 0, contenders)
	for i := 0; i < contenders; i++ {
		request, err := models.CreateAssetRequest(ctx, &models.NewAssetRequest{
			UserEmail: fmt.Sprintf("user%d@test.local", i),
			AssetId:   dock.ID,
			Quantity:  1,
		})
		if err != nil {
			t.Fatalf("CreateAssetRequest(%d): %v", i, err)
		}
		requestIds = append(requestIds, request.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for _, id := range requestIds {
		wg.Add(1)
		go func(requestId int) {
			defer wg.Done()
			_, err := workflow.ApproveAssetRequest(ctx, requestId, &workflow.ApproveAssetRequestInput{})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var wins, stockouts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case utils.HTTPStatus(err) == 409:
			stockouts++
		default:
			t.Fatalf("unexpected approval error: %v", err)
		}
	}
	if wins != 3 {
		t.Fatalf("expected exactly 3 winners for 3 units, got %d (stockouts=%d)", wins, stockouts)
	}
	assertAssetState(t, ctx, dock.ID, 0)

	// Every unit went to exactly one request.
	consumed, err := models.ConsumedAssetIds(ctx, dock.ID)
	if err != nil {
		t.Fatalf("ConsumedAssetIds: %v", err)
	}
	if len(consumed) != 3 {
		t.Fatalf("expected 3 consumed ids, got %v", consumed)
	}

	assertReconciliationClean(t, ctx)
}

func TestLegacySingleIdColumnCountsAsConsumed(t *testing.T) {
	ctx := setupIntegration(t)

	chair := mustCreateAsset(t, ctx, "Aeron Chair")
	mustPurchase(t, ctx, chair.ID, "CH-001", "CH-002")

	// Simulate a pre-migration approved row holding CH-001 in the old column.
	db := config.GetDB()
	now := time.Now().UTC()
	legacy := models.AssetRequest{
		UserEmail:     "carol@test.local",
		AssetId:       chair.ID,
		AssetName:     chair.Name,
		Quantity:      1,
		Status:        models.RequestStatusApproved,
		SentDate:      now,
		ApprovedAt:    &now,
		LegacyAssetId: "CH-001",
		AssetIds:      models.StringList{},
	}
	if err := db.WithContext(ctx).Create(&legacy).Error; err != nil {
		t.Fatalf("insert legacy request: %v", err)
	}

	available, err := models.AvailableAssetIds(ctx, chair.ID)
	if err != nil {
		t.Fatalf("AvailableAssetIds: %v", err)
	}
	if len(available) != 1 || available[0] != "CH-002" {
		t.Fatalf("resolver must exclude the legacy id, got %v", available)
	}

	// The cached pool still holds CH-001, so reconciliation must flag it and
	// a rebuild must repair it.
	summary, err := models.RunReconciliationChecks(ctx)
	if err != nil {
		t.Fatalf("RunReconciliationChecks: %v", err)
	}
	if len(summary.Findings) == 0 {
		t.Fatal("expected a reconciliation finding for the legacy allocation")
	}

	rebuilt, err := workflow.RebuildAssetLedger(ctx, chair.ID)
	if err != nil {
		t.Fatalf("RebuildAssetLedger: %v", err)
	}
	if rebuilt.Quantity != 1 || len(rebuilt.AssetIds) != 1 || rebuilt.AssetIds[0] != "CH-002" {
		t.Fatalf("rebuild result: qty=%d pool=%v", rebuilt.Quantity, rebuilt.AssetIds)
	}

	assertReconciliationClean(t, ctx)
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("officeassets-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("officeassets-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=officeassets_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
