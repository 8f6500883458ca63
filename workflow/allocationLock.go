package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/nklabsmm/officeassets_backend/config"
	"gorm.io/gorm"
)

// AcquireAssetPostingLock serializes allocation per asset across instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same *gorm.DB that will do the allocation transaction.
func AcquireAssetPostingLock(tx *gorm.DB, assetId int) error {
	lockName := fmt.Sprintf("asset-posting:%d", assetId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for asset_id=%d", assetId)
	}
	return nil
}

func ReleaseAssetPostingLock(tx *gorm.DB, assetId int) {
	lockName := fmt.Sprintf("asset-posting:%d", assetId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// obtainAllocationLock is a best-effort redis lock to keep concurrent approvals
// of the same asset from queueing on the database lock. If redis is unavailable
// or the lock cannot be obtained we proceed anyway; the row lock inside the
// allocation transaction serializes safely.
func obtainAllocationLock(ctx context.Context, assetId int) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("allocation:%d", assetId), 30*time.Second, nil)
	if err != nil {
		return nil
	}
	return lock
}

func releaseAllocationLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}
