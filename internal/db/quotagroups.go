package db

import (
	"context"
	"fmt"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetQuotaGroup looks up the quota group with the given identifier.
func GetQuotaGroup(ctx context.Context, db *gorm.DB, quotaGroupID string) (*model.QuotaGroup, error) {
	wrapMsg := fmt.Sprintf("unable to look up quota group '%s'", quotaGroupID)

	var quotaGroup model.QuotaGroup
	err := db.WithContext(ctx).Where("id = ?", quotaGroupID).First(&quotaGroup).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &quotaGroup, nil
}

// GetQuotaGroupByName looks up the quota group with the given name.
func GetQuotaGroupByName(ctx context.Context, db *gorm.DB, name string) (*model.QuotaGroup, error) {
	wrapMsg := fmt.Sprintf("unable to look up quota group '%s'", name)

	var quotaGroup model.QuotaGroup
	err := db.WithContext(ctx).Where("name = ?", name).First(&quotaGroup).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &quotaGroup, nil
}

// ListQuotaGroups lists all of the quota groups defined in the database.
func ListQuotaGroups(ctx context.Context, db *gorm.DB) ([]*model.QuotaGroup, error) {
	wrapMsg := "unable to list quota groups"

	var quotaGroups []*model.QuotaGroup
	err := db.WithContext(ctx).Order("name").Find(&quotaGroups).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return quotaGroups, nil
}

// AddQuotaTime applies an unconditional delta to a metered group's balance as a single atomic
// update in the database. Unlimited and quota-exempt groups are left untouched.
func AddQuotaTime(ctx context.Context, db *gorm.DB, quotaGroup *model.QuotaGroup, hours float64) error {
	wrapMsg := fmt.Sprintf("unable to adjust the balance of quota group '%s'", quotaGroup.Name)

	if !quotaGroup.Metered() || hours == 0 {
		return nil
	}

	err := db.WithContext(ctx).
		Model(quotaGroup).
		UpdateColumn("current_time", gorm.Expr(`"current_time" + ?`, hours)).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	quotaGroup.CurrentTime += hours
	return nil
}

// SubtractQuotaTime removes time from a metered group's balance.
func SubtractQuotaTime(ctx context.Context, db *gorm.DB, quotaGroup *model.QuotaGroup, hours float64) error {
	return AddQuotaTime(ctx, db, quotaGroup, -hours)
}

// ConsumeLabTime debits the quota group billing the given laboratory. The operation is a no-op
// for laboratories without a group and for unlimited or quota-exempt groups. The balance is
// allowed to go negative; overdraft is tracked, not prevented.
func ConsumeLabTime(ctx context.Context, db *gorm.DB, lab *model.Laboratory, hours float64) error {
	if lab == nil || lab.QuotaGroup == nil {
		return nil
	}
	return SubtractQuotaTime(ctx, db, lab.QuotaGroup, hours)
}

// ResetQuota grants a metered group its period time, saturating at the configured maximum, and
// records the reset high-water mark.
func ResetQuota(ctx context.Context, db *gorm.DB, quotaGroup *model.QuotaGroup) error {
	wrapMsg := fmt.Sprintf("unable to reset quota group '%s'", quotaGroup.Name)

	if !quotaGroup.ResetQuota(time.Now()) {
		return nil
	}

	err := db.WithContext(ctx).
		Model(quotaGroup).
		UpdateColumns(map[string]interface{}{
			"current_time":     quotaGroup.CurrentTime,
			"quota_reset_time": quotaGroup.QuotaResetTime,
			"last_reset":       quotaGroup.LastReset,
		}).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// RefreshPeriodTime resets every quota group that's configured for periodic replenishment.
func RefreshPeriodTime(ctx context.Context, db *gorm.DB) error {
	wrapMsg := "unable to refresh the quota periods"

	var quotaGroups []*model.QuotaGroup
	err := db.WithContext(ctx).Where("update_time_on_period").Find(&quotaGroups).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	for _, quotaGroup := range quotaGroups {
		if err = ResetQuota(ctx, db, quotaGroup); err != nil {
			return errors.Wrap(err, wrapMsg)
		}
	}

	return nil
}

// PeriodNeedsRefresh determines whether the quota periods should be replenished. The periods are
// considered due when no main group is in good standing (non-negative balance, quota-exempt, or
// active), or when the labs billed by the groups in good standing have no submitted applications
// left to work off their remaining budget.
func PeriodNeedsRefresh(ctx context.Context, db *gorm.DB) (bool, error) {
	wrapMsg := "unable to determine whether the quota periods need refreshing"

	var groupsInGoodStanding []*model.QuotaGroup
	err := db.WithContext(ctx).
		Where("main").
		Where(
			db.Where(`"current_time" >= 0`).
				Or("period_time = ?", float64(model.QuotaExempt)).
				Or("is_active"),
		).
		Find(&groupsInGoodStanding).
		Error
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	if len(groupsInGoodStanding) == 0 {
		return true, nil
	}

	groupIDs := make([]string, 0, len(groupsInGoodStanding))
	for _, quotaGroup := range groupsInGoodStanding {
		groupIDs = append(groupIDs, *quotaGroup.ID)
	}

	var submitted int64
	err = db.WithContext(ctx).
		Model(&model.Application{}).
		Joins("JOIN laboratories ON applications.lab_id = laboratories.id").
		Where("laboratories.quota_group_id IN ?", groupIDs).
		Where("applications.status = ?", model.StatusSubmitted).
		Count(&submitted).
		Error
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return submitted == 0, nil
}

// TransferQuotaTime moves hours from one quota group to another and records the immutable audit
// row, all within one transaction. The donor's balance is re-checked under a row lock at commit
// time so that concurrent transfers can't both pass a stale sufficiency check.
func TransferQuotaTime(ctx context.Context, db *gorm.DB, userID, donorID, acceptorID string, hours float64) (*model.QuotaTimeTransaction, error) {
	wrapMsg := "unable to transfer quota time"

	if hours <= 0 {
		return nil, ErrInvalidTransferAmount
	}
	if donorID == acceptorID {
		return nil, ErrTransferToSameGroup
	}

	var transaction *model.QuotaTimeTransaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donor model.QuotaGroup
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", donorID).
			First(&donor).
			Error
		if err != nil {
			return errors.Wrap(err, wrapMsg)
		}

		if donor.Metered() && donor.CurrentTime < hours {
			return ErrInsufficientQuotaTime
		}

		var acceptor model.QuotaGroup
		err = tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", acceptorID).
			First(&acceptor).
			Error
		if err != nil {
			return errors.Wrap(err, wrapMsg)
		}

		if err = SubtractQuotaTime(ctx, tx, &donor, hours); err != nil {
			return err
		}
		if err = AddQuotaTime(ctx, tx, &acceptor, hours); err != nil {
			return err
		}

		transaction = &model.QuotaTimeTransaction{
			UserID:               &userID,
			QuotaGroupDonorID:    donor.ID,
			QuotaGroupAcceptorID: acceptor.ID,
			TimeTransfer:         hours,
		}
		if err = tx.WithContext(ctx).Create(transaction).Error; err != nil {
			return errors.Wrap(err, wrapMsg)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// ListQuotaTransfers lists the transfer transactions involving the given quota group as either
// donor or acceptor, newest first.
func ListQuotaTransfers(ctx context.Context, db *gorm.DB, quotaGroupID string) ([]*model.QuotaTimeTransaction, error) {
	wrapMsg := "unable to list quota time transfers"

	var transactions []*model.QuotaTimeTransaction
	err := db.WithContext(ctx).
		Preload("User").
		Preload("QuotaGroupDonor").
		Preload("QuotaGroupAcceptor").
		Where(
			db.Where("quota_group_donor_id = ?", quotaGroupID).
				Or("quota_group_acceptor_id = ?", quotaGroupID),
		).
		Order("datetime_stamp desc").
		Find(&transactions).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return transactions, nil
}

// ListQuotaTransfersSince lists the transfer transactions involving the given quota group that
// were recorded at or after the given time, newest first. Passing a group's last reset time
// yields the transfers of the current period.
func ListQuotaTransfersSince(ctx context.Context, db *gorm.DB, quotaGroupID string, since time.Time) ([]*model.QuotaTimeTransaction, error) {
	wrapMsg := "unable to list quota time transfers"

	var transactions []*model.QuotaTimeTransaction
	err := db.WithContext(ctx).
		Preload("User").
		Preload("QuotaGroupDonor").
		Preload("QuotaGroupAcceptor").
		Where(
			db.Where("quota_group_donor_id = ?", quotaGroupID).
				Or("quota_group_acceptor_id = ?", quotaGroupID),
		).
		Where("datetime_stamp >= ?", since).
		Order("datetime_stamp desc").
		Find(&transactions).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return transactions, nil
}
