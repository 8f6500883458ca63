// ledger-rebuild recomputes cached stock from purchase and request history.
// Pass -asset to repair one asset, or run bare to sweep the whole catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/workflow"
)

func main() {
	assetId := flag.Int("asset", 0, "asset id to rebuild (0 = all assets)")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if *assetId > 0 {
		asset, err := workflow.RebuildAssetLedger(ctx, *assetId)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild failed for asset %d: %v\n", *assetId, err)
			os.Exit(1)
		}
		fmt.Printf("asset %d: quantity=%d pool=%d\n", asset.ID, asset.Quantity, len(asset.AssetIds))
		return
	}

	corrected, err := workflow.RebuildAllAssetLedgers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild sweep failed: %v\n", err)
		os.Exit(1)
	}
	if len(corrected) == 0 {
		fmt.Println("all assets already consistent")
		return
	}
	fmt.Printf("corrected %d asset(s): %v\n", len(corrected), corrected)
}
