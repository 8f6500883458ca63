package models

import "github.com/nklabsmm/officeassets_backend/config"

// MigrateTable syncs the schema. Column order follows dependency order so
// foreign keys resolve on a fresh database.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&Asset{},
		&Purchase{},
		&PurchaseItem{},
		&AssetRequest{},
		&AssetMovement{},
		&ReconciliationReport{},
	)
}
