package db

import (
	"context"
	"fmt"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// issueAction is one entry in the closed dispatch table of actions an approval workflow can gate.
type issueAction func(ctx context.Context, db *gorm.DB, kwargs map[string]interface{}) error

// issueActions maps method codes to their handlers. Only codes present here can ever run; an
// issue carrying an unknown code is logged and skipped rather than executed.
var issueActions = map[string]issueAction{
	"chgsp": changeSupervisorAction,
	"chglb": changeLaboratoryAction,
}

// kwargString extracts a required string argument from an issue's kwargs.
func kwargString(kwargs map[string]interface{}, key string) (string, error) {
	value, ok := kwargs[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing or invalid argument '%s'", key)
	}
	return value, nil
}

// changeSupervisorAction reassigns an application's supervisor once the approval gates pass.
func changeSupervisorAction(ctx context.Context, db *gorm.DB, kwargs map[string]interface{}) error {
	applicationCode, err := kwargString(kwargs, "application_code")
	if err != nil {
		return err
	}
	supervisorID, err := kwargString(kwargs, "supervisor_id")
	if err != nil {
		return err
	}

	// Self-supervision is out of domain.
	var application model.Application
	err = db.WithContext(ctx).Where("application_code = ?", applicationCode).First(&application).Error
	if err != nil {
		return err
	}
	if application.ClientID != nil && *application.ClientID == supervisorID {
		return fmt.Errorf("a client can't supervise their own application")
	}

	return db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_code = ?", applicationCode).
		UpdateColumn("supervisor_id", supervisorID).
		Error
}

// changeLaboratoryAction reassigns the laboratory whose quota an application is billed under once
// the approval gates pass.
func changeLaboratoryAction(ctx context.Context, db *gorm.DB, kwargs map[string]interface{}) error {
	applicationCode, err := kwargString(kwargs, "application_code")
	if err != nil {
		return err
	}
	labID, err := kwargString(kwargs, "lab_id")
	if err != nil {
		return err
	}

	return db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_code = ?", applicationCode).
		UpdateColumn("lab_id", labID).
		Error
}

// GetNotificationIssue looks up a notification issue with its relations and their response lists
// fully loaded, which is what ActionAllowed needs to evaluate the gates.
func GetNotificationIssue(ctx context.Context, db *gorm.DB, issueID string) (*model.NotificationIssue, error) {
	wrapMsg := fmt.Sprintf("unable to look up notification issue '%s'", issueID)

	var issue model.NotificationIssue
	err := db.WithContext(ctx).
		Preload("Relations").
		Preload("Relations.Pending").
		Preload("Relations.Accepted").
		Preload("Relations.Rejected").
		Where("id = ?", issueID).
		First(&issue).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &issue, nil
}

// TryIssueAction re-evaluates an issue's approval gates and, if they all pass, runs the gated
// action and deactivates the issue's relations. A failing gate is the normal case while responses
// are still outstanding and reports false without error. An unknown method or a failed action run
// also reports false, and leaves the relations active so the failure stays visible.
func TryIssueAction(ctx context.Context, db *gorm.DB, issue *model.NotificationIssue) (bool, error) {
	wrapMsg := fmt.Sprintf("unable to run the action of notification issue '%s'", *issue.ID)

	if !issue.ActionAllowed() {
		return false, nil
	}

	action, ok := issueActions[issue.Method]
	if !ok {
		log.Errorf("notification issue %s names an unknown action method '%s'", *issue.ID, issue.Method)
		return false, nil
	}
	if err := action(ctx, db, issue.Kwargs); err != nil {
		log.Errorf("the action of notification issue %s failed: %s", *issue.ID, err)
		return false, nil
	}

	err := db.WithContext(ctx).
		Model(&model.NotificationRelation{}).
		Where("issue_id = ?", issue.ID).
		UpdateColumn("is_active", false).
		Error
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return true, nil
}

// AcceptNotification moves a pending notification to the accepted list, then re-evaluates the
// owning issue's gates, running the gated action if the acceptance completed them. It reports
// whether the action ran.
func AcceptNotification(ctx context.Context, db *gorm.DB, notificationID string) (bool, error) {
	wrapMsg := fmt.Sprintf("unable to accept notification '%s'", notificationID)

	issue, err := resolveNotificationResponse(ctx, db, notificationID, func(tx *gorm.DB, pending *model.PendingNotification) error {
		accepted := model.AcceptedNotification{
			Notification: pending.Notification,
			AcceptDate:   time.Now(),
		}
		return tx.Create(&accepted).Error
	})
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}
	if issue == nil {
		return false, nil
	}

	return TryIssueAction(ctx, db, issue)
}

// RejectNotification moves a pending notification to the rejected list. Rejection can never
// complete an issue's gates, so no re-evaluation follows.
func RejectNotification(ctx context.Context, db *gorm.DB, notificationID string) error {
	wrapMsg := fmt.Sprintf("unable to reject notification '%s'", notificationID)

	_, err := resolveNotificationResponse(ctx, db, notificationID, func(tx *gorm.DB, pending *model.PendingNotification) error {
		rejected := model.RejectedNotification{
			Notification: pending.Notification,
			RejectDate:   time.Now(),
		}
		return tx.Create(&rejected).Error
	})
	return errors.Wrap(err, wrapMsg)
}

// resolveNotificationResponse transactionally replaces a pending notification with the response
// row the record callback creates, then reloads the owning issue with fresh gate state. A
// notification that is no longer pending resolves to a nil issue, which makes repeated responses
// to the same notification harmless.
func resolveNotificationResponse(
	ctx context.Context,
	db *gorm.DB,
	notificationID string,
	record func(tx *gorm.DB, pending *model.PendingNotification) error,
) (*model.NotificationIssue, error) {
	var relationID *string

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending model.PendingNotification
		err := tx.Where("id = ?", notificationID).First(&pending).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		} else if err != nil {
			return err
		}

		if err = record(tx, &pending); err != nil {
			return err
		}
		if err = tx.Delete(&pending).Error; err != nil {
			return err
		}

		relationID = pending.RelationID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if relationID == nil {
		return nil, nil
	}

	var relation model.NotificationRelation
	err = db.WithContext(ctx).Where("id = ?", relationID).First(&relation).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if relation.IssueID == nil {
		return nil, nil
	}

	return GetNotificationIssue(ctx, db, *relation.IssueID)
}

// ListPendingNotifications lists the pending notifications addressed to a user, newest first.
func ListPendingNotifications(ctx context.Context, db *gorm.DB, userID string) ([]*model.PendingNotification, error) {
	wrapMsg := fmt.Sprintf("unable to list the pending notifications of user '%s'", userID)

	var notifications []*model.PendingNotification
	err := db.WithContext(ctx).
		Where("user_to_id = ?", userID).
		Order("date_created desc").
		Find(&notifications).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notifications, nil
}
