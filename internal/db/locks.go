package db

import (
	"context"
	"fmt"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AcquireProcessingLock attempts to take the cooperative processing lock on an application for an
// operator. The acquisition is a single conditional update so that two operators racing for the
// same application can never both win: the row is claimed only if the lock is free, already held
// by the same operator, or older than the cooldown. A lost race returns a *LockConflictError
// naming the current holder.
func AcquireProcessingLock(ctx context.Context, db *gorm.DB, application *model.Application, operatorID string, now time.Time) error {
	wrapMsg := fmt.Sprintf("unable to lock application '%s'", application.ApplicationCode)

	cutoff := now.Add(-model.OperatorLockCooldown)
	result := db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", application.ID).
		Where("locked_by_id IS NULL OR locked_by_id = ? OR locked_at IS NULL OR locked_at < ?", operatorID, cutoff).
		UpdateColumns(map[string]interface{}{
			"locked_by_id": operatorID,
			"locked_at":    now,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, wrapMsg)
	}

	if result.RowsAffected == 0 {
		var holder model.Application
		err := db.WithContext(ctx).
			Preload("LockedBy").
			Where("id = ?", application.ID).
			First(&holder).
			Error
		if err != nil {
			return errors.Wrap(err, wrapMsg)
		}

		conflict := &LockConflictError{ApplicationCode: application.ApplicationCode}
		if holder.LockedBy != nil {
			conflict.Holder = holder.LockedBy.Username
		}
		if holder.LockedAt != nil {
			conflict.Since = *holder.LockedAt
		}
		return conflict
	}

	application.LockedByID = &operatorID
	application.LockedAt = &now
	return nil
}

// ReleaseProcessingLock releases the processing lock on an application unconditionally. Releasing
// an already-free lock is not an error.
func ReleaseProcessingLock(ctx context.Context, db *gorm.DB, application *model.Application) error {
	wrapMsg := fmt.Sprintf("unable to unlock application '%s'", application.ApplicationCode)

	err := db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", application.ID).
		UpdateColumns(map[string]interface{}{
			"locked_by_id": nil,
			"locked_at":    nil,
		}).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	application.LockedByID = nil
	application.LockedBy = nil
	application.LockedAt = nil
	return nil
}

// ReleaseExpiredLocks releases every processing lock past the absolute ceiling, regardless of
// holder, and returns the number of locks released. Run periodically by the janitor so that an
// operator session that never released its lock cannot park an application indefinitely.
func ReleaseExpiredLocks(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	wrapMsg := "unable to release expired processing locks"

	cutoff := now.Add(-model.OperatorLockCeiling)
	result := db.WithContext(ctx).
		Model(&model.Application{}).
		Where("locked_by_id IS NOT NULL AND locked_at < ?", cutoff).
		UpdateColumns(map[string]interface{}{
			"locked_by_id": nil,
			"locked_at":    nil,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}

	return result.RowsAffected, nil
}
