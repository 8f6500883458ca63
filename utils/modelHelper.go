package utils

import (
	"context"

	"github.com/nklabsmm/officeassets_backend/config"
)

/* DB fetching */

// fetch model from db by primary key
// (may return NotFoundError)
func FetchModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, NewNotFoundError(GetTypeName[T]())
	}
	return &result, nil
}

// fetch all models from db
func FetchAllModels[T any](ctx context.Context, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// check if id exists, return NotFoundError otherwise
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {

	db := config.GetDB()
	var count int64
	var model T
	err := db.WithContext(ctx).Model(&model).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count <= 0 {
		return NewNotFoundError(GetTypeName[T]())
	}

	return nil
}
