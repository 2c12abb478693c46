package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/UlybinDA/scxrd-sac/internal/httpmodel"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/internal/query"
	"github.com/cyverse-de/echo-middleware/v2/params"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// extractQuotaGroupID extracts and validates the quota group ID path parameter.
func extractQuotaGroupID(ctx echo.Context) (string, error) {
	quotaGroupID, err := params.ValidatedPathParam(ctx, "quota_group_id", "uuid_rfc4122")
	if err != nil {
		return "", fmt.Errorf("the quota group ID must be a valid UUID")
	}
	return quotaGroupID, nil
}

// GetAllQuotaGroups lists all the quota groups.
//
// swagger:route GET /v1/quota-groups quota-groups listQuotaGroups
//
// # List Quota Groups
//
// Lists all the quota groups along with their current balances.
//
// responses:
//
//	200: quotaGroupsResponse
//	500: internalServerErrorResponse
func (s Server) GetAllQuotaGroups(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "getting all quota groups"})

	context := ctx.Request().Context()

	quotaGroups, err := db.ListQuotaGroups(context, s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("listing quota groups from the database")

	return model.Success(ctx, quotaGroups, http.StatusOK)
}

// GetQuotaGroupByID returns the quota group with the given identifier.
//
// swagger:route GET /v1/quota-groups/{quota_group_id} quota-groups getQuotaGroupByID
//
// # Get Quota Group Information
//
// Returns the quota group with the given identifier.
//
// responses:
//
//	200: quotaGroupResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetQuotaGroupByID(ctx echo.Context) error {
	var err error

	context := ctx.Request().Context()

	quotaGroupID, err := extractQuotaGroupID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	quotaGroup, err := db.GetQuotaGroup(context, s.GORMDB, quotaGroupID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if quotaGroup == nil {
		msg := fmt.Sprintf("quota group ID %s not found", quotaGroupID)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	return model.Success(ctx, quotaGroup, http.StatusOK)
}

// TransferQuotaTime moves instrument time between two quota groups.
//
// swagger:route POST /v1/quota-groups/transfers quota-groups transferQuotaTime
//
// # Transfer Quota Time
//
// Moves the given number of hours from the donor group to the acceptor group, recording the
// transfer in the audit trail.
//
// Responses:
//
//	200: transferResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) TransferQuotaTime(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "transferring quota time"})

	context := ctx.Request().Context()

	username, err := query.ValidateUsernameQueryParam(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	// Parse and validate the request body.
	var request httpmodel.TransferRequest
	if err = ctx.Bind(&request); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err = request.Validate(); err != nil {
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

	log = log.WithFields(logrus.Fields{
		"user":     username,
		"donor":    request.DonorID,
		"acceptor": request.AcceptorID,
		"hours":    request.Hours,
	})

	transfer, err := db.TransferQuotaTime(context, s.GORMDB, *user.ID, request.DonorID, request.AcceptorID, request.Hours)
	if err != nil {
		cause := errors.Cause(err)
		switch cause {
		case db.ErrInvalidTransferAmount, db.ErrTransferToSameGroup, db.ErrInsufficientQuotaTime:
			return model.Error(ctx, cause.Error(), http.StatusBadRequest)
		}
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Info("transferred quota time")

	s.publishEvent(map[string]interface{}{"refreshed_at": time.Now()}, "quota", "plot", "refresh")

	return model.Success(ctx, transfer, http.StatusOK)
}

// GetQuotaTransfers lists the transfers a quota group took part in.
//
// swagger:route GET /v1/quota-groups/{quota_group_id}/transfers quota-groups getQuotaTransfers
//
// # List Quota Transfers
//
// Lists the transfers the quota group donated or received, newest first. Passing
// `period=current` restricts the listing to transfers recorded since the group's last reset.
//
// responses:
//
//	200: transfersResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetQuotaTransfers(ctx echo.Context) error {
	var err error

	context := ctx.Request().Context()

	quotaGroupID, err := extractQuotaGroupID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	defaultPeriod := "all"
	period, err := query.ValidateEnumQueryParam(ctx, "period", []string{"all", "current"}, &defaultPeriod)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	var transfers []*model.QuotaTimeTransaction
	if period == "current" {
		quotaGroup, err := db.GetQuotaGroup(context, s.GORMDB, quotaGroupID)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
		if quotaGroup == nil {
			msg := fmt.Sprintf("quota group ID %s not found", quotaGroupID)
			return model.Error(ctx, msg, http.StatusNotFound)
		}
		transfers, err = db.ListQuotaTransfersSince(context, s.GORMDB, quotaGroupID, quotaGroup.LastReset)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
	} else {
		transfers, err = db.ListQuotaTransfers(context, s.GORMDB, quotaGroupID)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
	}

	return model.Success(ctx, transfers, http.StatusOK)
}

// RefreshPeriodTime manually grants every periodic quota group its period time.
//
// swagger:route POST /v1/quota-groups/refresh quota-groups refreshPeriodTime
//
// # Refresh Period Time
//
// Grants every periodic quota group its period time, saturating at the configured maxima, and
// announces the refresh. Normally the refresh happens automatically when the submitted pool of
// metered work drains; this endpoint exists for manual intervention.
//
// responses:
//
//	200: successMessageResponse
//	500: internalServerErrorResponse
func (s Server) RefreshPeriodTime(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "manual period refresh"})

	context := ctx.Request().Context()

	if err := db.RefreshPeriodTime(context, s.GORMDB); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Info("manually refreshed the period time of the periodic quota groups")

	s.publishEvent(map[string]interface{}{"refreshed_at": time.Now()}, "quota", "plot", "refresh")

	return model.SuccessMessage(ctx, "the period time has been refreshed", http.StatusOK)
}

// ResetQuotaGroup grants a single quota group its period time.
//
// swagger:route POST /v1/quota-groups/{quota_group_id}/reset quota-groups resetQuotaGroup
//
// # Reset Quota Group
//
// Grants the quota group its period time, saturating at the configured maximum.
//
// responses:
//
//	200: quotaGroupResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) ResetQuotaGroup(ctx echo.Context) error {
	var err error

	context := ctx.Request().Context()

	quotaGroupID, err := extractQuotaGroupID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	quotaGroup, err := db.GetQuotaGroup(context, s.GORMDB, quotaGroupID)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if quotaGroup == nil {
		msg := fmt.Sprintf("quota group ID %s not found", quotaGroupID)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	if err = db.ResetQuota(context, s.GORMDB, quotaGroup); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, quotaGroup, http.StatusOK)
}
