package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/UlybinDA/scxrd-sac/internal/httpmodel"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/internal/query"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// extractApplicationCode extracts and validates the application code path parameter.
func extractApplicationCode(ctx echo.Context) (string, error) {
	applicationCode := ctx.Param("application_code")
	if applicationCode == "" {
		return "", fmt.Errorf("the application code must be specified")
	}
	return applicationCode, nil
}

// lookupApplication loads an application by the application code in the request path, sending the
// appropriate error response and returning a nil application when the lookup fails.
func (s Server) lookupApplication(ctx echo.Context) (*model.Application, error) {
	applicationCode, err := extractApplicationCode(ctx)
	if err != nil {
		return nil, model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	application, err := db.GetApplicationByCode(ctx.Request().Context(), s.GORMDB, applicationCode)
	if err != nil {
		return nil, model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if application == nil {
		msg := fmt.Sprintf("application %s not found", applicationCode)
		return nil, model.Error(ctx, msg, http.StatusNotFound)
	}

	return application, nil
}

// submissionBlocked reports whether a laboratory's exhausted quota blocks a new submission. The
// ignore-quota-limit flag bypasses the gate.
func submissionBlocked(lab *model.Laboratory, ignoreQuotaLimit bool) bool {
	if ignoreQuotaLimit {
		return false
	}
	return lab.Metered() && lab.GetAvailableTime() <= 0
}

// AddApplication adds a new application to the database.
//
// swagger:route POST /v1/applications applications addApplication
//
// # Add Application
//
// Submits a new experiment application for the given client.
//
// Responses:
//
//	200: applicationResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) AddApplication(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "adding application"})

	context := ctx.Request().Context()

	username, err := query.ValidateUsernameQueryParam(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	// Parse and validate the request body.
	var newApplication httpmodel.NewApplication
	if err = ctx.Bind(&newApplication); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err = newApplication.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{"user": username, "lab": newApplication.LabCode})

	// Look up the laboratory the experiment will be billed under.
	lab, err := db.GetLaboratory(context, s.GORMDB, newApplication.LabCode)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if lab == nil {
		msg := fmt.Sprintf("laboratory %s not found", newApplication.LabCode)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	if submissionBlocked(lab, newApplication.IgnoreQuotaLimit) {
		msg := fmt.Sprintf("laboratory %s has no instrument time available", newApplication.LabCode)
		return model.Error(ctx, msg, http.StatusForbidden)
	}

	client, err := db.EnsureUser(context, s.GORMDB, username)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	applicationCode, err := model.GenerateApplicationCode()
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	application := newApplication.ToDBModel()
	application.ApplicationCode = applicationCode
	application.Date = time.Now()
	application.LabID = lab.ID
	application.ClientID = client.ID
	application.ClientHomeLabID = client.LaboratoryID

	if err = s.GORMDB.WithContext(context).Create(&application).Error; err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Infof("submitted application %s", applicationCode)

	return model.Success(ctx, application, http.StatusOK)
}

// GetApplication returns the application with the given code.
//
// swagger:route GET /v1/applications/{application_code} applications getApplication
//
// # Get Application Information
//
// Returns the application with the given code, including its probes.
//
// responses:
//
//	200: applicationResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) GetApplication(ctx echo.Context) error {
	application, err := s.lookupApplication(ctx)
	if application == nil {
		return err
	}

	return model.Success(ctx, application, http.StatusOK)
}

// prioritizedApplication pairs an application with its current scheduling score for listings.
type prioritizedApplication struct {
	*model.Application

	// The current scheduling score
	Priority float64 `json:"priority"`
}

// GetWorklist lists the submitted applications in processing order.
//
// swagger:route GET /v1/applications/worklist applications getWorklist
//
// # Get Worklist
//
// Lists the submitted applications ordered by descending priority, ties broken by earlier
// submission.
//
// responses:
//
//	200: worklistResponse
//	500: internalServerErrorResponse
func (s Server) GetWorklist(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "getting worklist"})

	context := ctx.Request().Context()
	now := time.Now()

	applications, err := db.ListSubmittedByPriority(context, s.GORMDB, now)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debugf("listed %d submitted applications", len(applications))

	worklist := make([]prioritizedApplication, len(applications))
	for i, application := range applications {
		worklist[i] = prioritizedApplication{
			Application: application,
			Priority:    application.Priority(now),
		}
	}

	return model.Success(ctx, worklist, http.StatusOK)
}

// GetReductionWorklist lists the completed applications whose data still needs reduction.
//
// swagger:route GET /v1/applications/reduction applications getReductionWorklist
//
// # Get Reduction Worklist
//
// Lists the completed applications whose data still needs reduction.
//
// responses:
//
//	200: worklistResponse
//	500: internalServerErrorResponse
func (s Server) GetReductionWorklist(ctx echo.Context) error {
	context := ctx.Request().Context()

	applications, err := db.ListReductionWorklist(context, s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	return model.Success(ctx, applications, http.StatusOK)
}

// MarkSampleReturned records that an application's sample has left the facility.
//
// swagger:route POST /v1/applications/{application_code}/sample-returned applications markSampleReturned
//
// # Mark Sample Returned
//
// Records that the application's sample has left the facility's custody.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) MarkSampleReturned(ctx echo.Context) error {
	application, err := s.lookupApplication(ctx)
	if application == nil {
		return err
	}

	if err = db.MarkSampleReturned(ctx.Request().Context(), s.GORMDB, application); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	msg := fmt.Sprintf("the sample of application %s has been marked returned", application.ApplicationCode)
	return model.SuccessMessage(ctx, msg, http.StatusOK)
}
