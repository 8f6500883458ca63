// consistency-check audits every asset's cached stock against the ids derived
// from purchase and request history, and prints the findings. Intended to run
// as a scheduled job; exits non-zero when any mismatch is found so the
// scheduler can alert.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	summary, err := models.RunReconciliationChecks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run %s: checked %d asset(s), %d finding(s)\n",
		summary.RunId, summary.AssetsChecked, len(summary.Findings))
	for _, finding := range summary.Findings {
		fmt.Printf("  asset %d (%s) %s: expected %s, got %s\n",
			finding.AssetId, finding.AssetName, finding.CheckName, finding.Expected, finding.Actual)
	}
	if len(summary.Findings) > 0 {
		os.Exit(2)
	}
}
