package controllers

import (
	"fmt"
	"net/http"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/internal/query"
	"github.com/cyverse-de/echo-middleware/v2/params"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// extractNotificationID extracts and validates the notification ID path parameter.
func extractNotificationID(ctx echo.Context) (string, error) {
	notificationID, err := params.ValidatedPathParam(ctx, "notification_id", "uuid_rfc4122")
	if err != nil {
		return "", fmt.Errorf("the notification ID must be a valid UUID")
	}
	return notificationID, nil
}

// GetPendingNotifications lists a user's pending notifications.
//
// swagger:route GET /v1/notifications notifications getPendingNotifications
//
// # List Pending Notifications
//
// Lists the pending notifications addressed to the given user, newest first.
//
// responses:
//
//	200: notificationsResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetPendingNotifications(ctx echo.Context) error {
	context := ctx.Request().Context()

	username, err := query.ValidateUsernameQueryParam(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	user, err := db.GetUser(context, s.GORMDB, username)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if user == nil {
		msg := fmt.Sprintf("user %s does not exist", username)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	notifications, err := db.ListPendingNotifications(context, s.GORMDB, *user.ID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, notifications, http.StatusOK)
}

// AcceptNotification accepts a pending notification.
//
// swagger:route POST /v1/notifications/{notification_id}/accept notifications acceptNotification
//
// # Accept Notification
//
// Accepts a pending notification. If the acceptance completes the owning issue's approval gates,
// the gated action runs before the response is sent. Accepting a notification that is no longer
// pending succeeds without effect.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) AcceptNotification(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "accepting notification"})

	context := ctx.Request().Context()

	notificationID, err := extractNotificationID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	actionRan, err := db.AcceptNotification(context, s.GORMDB, notificationID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	msg := "the notification has been accepted"
	if actionRan {
		msg = "the notification has been accepted and the gated action has run"
		log.Infof("notification %s completed its approval gates", notificationID)
	}

	return model.SuccessMessage(ctx, msg, http.StatusOK)
}

// RejectNotification rejects a pending notification.
//
// swagger:route POST /v1/notifications/{notification_id}/reject notifications rejectNotification
//
// # Reject Notification
//
// Rejects a pending notification. Rejecting a notification that is no longer pending succeeds
// without effect.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) RejectNotification(ctx echo.Context) error {
	var err error

	context := ctx.Request().Context()

	notificationID, err := extractNotificationID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	if err = db.RejectNotification(context, s.GORMDB, notificationID); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.SuccessMessage(ctx, "the notification has been rejected", http.StatusOK)
}
