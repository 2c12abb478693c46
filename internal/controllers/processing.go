package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/db"
	"github.com/UlybinDA/scxrd-sac/internal/httpmodel"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/internal/query"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ApplicationEvent is the payload published when an application crosses a notable state edge.
type ApplicationEvent struct {
	ApplicationCode string `json:"application_code"`
	SampleCode      string `json:"sample_code"`
	Client          string `json:"client,omitempty"`
	Lab             string `json:"lab,omitempty"`
	Status          string `json:"status"`
	DataStatus      string `json:"data_status"`
}

// applicationEvent builds the published payload from an application row.
func applicationEvent(application *model.Application) ApplicationEvent {
	event := ApplicationEvent{
		ApplicationCode: application.ApplicationCode,
		SampleCode:      application.SampleCode,
		Status:          application.Status,
		DataStatus:      application.DataStatus,
	}
	if application.Client != nil {
		event.Client = application.Client.Username
	}
	if application.Lab != nil {
		event.Lab = application.Lab.Name
	}
	return event
}

// publishTransitionEvents publishes the NATS events corresponding to application state-machine
// edges. An application leaving the submitted pool additionally triggers the period refresh check.
func (s Server) publishTransitionEvents(ctx context.Context, application *model.Application, events []db.TransitionEvent) {
	payload := applicationEvent(application)

	for _, event := range events {
		switch event {
		case db.EventCompleted:
			s.publishEvent(payload, "email", "application", "completed")
			s.publishEvent(map[string]interface{}{"refreshed_at": time.Now()}, "quota", "plot", "refresh")
		case db.EventRejected:
			s.publishEvent(payload, "email", "application", "rejected")
			s.publishEvent(map[string]interface{}{"refreshed_at": time.Now()}, "quota", "plot", "refresh")
		case db.EventDataSent:
			s.publishEvent(payload, "email", "data", "published")
		case db.EventLeftSubmitted:
			s.checkPeriodRefresh(ctx)
		}
	}
}

// checkPeriodRefresh evaluates the period-refresh predicate and, when the submitted pool of
// metered work has drained, grants every periodic group its period time and announces the refresh.
// Failures are logged and swallowed; the next application leaving the pool retries the check.
func (s Server) checkPeriodRefresh(ctx context.Context) {
	log := log.WithFields(logrus.Fields{"context": "period refresh check"})

	needed, err := db.PeriodNeedsRefresh(ctx, s.GORMDB)
	if err != nil {
		log.Errorf("unable to evaluate the period refresh predicate: %s", err)
		return
	}
	if !needed {
		return
	}

	if err = db.RefreshPeriodTime(ctx, s.GORMDB); err != nil {
		log.Errorf("unable to refresh the period time: %s", err)
		return
	}

	log.Info("refreshed the period time of the periodic quota groups")
	s.publishEvent(map[string]interface{}{"refreshed_at": time.Now()}, "quota", "plot", "refresh")
}

// operatorForRequest looks up the user named in the request's user query parameter and verifies
// that they may run the processing workflow.
func (s Server) operatorForRequest(ctx echo.Context) (*model.User, error) {
	username, err := query.ValidateUsernameQueryParam(ctx)
	if err != nil {
		return nil, model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	operator, err := db.GetUser(ctx.Request().Context(), s.GORMDB, username)
	if err != nil {
		return nil, model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if operator == nil {
		msg := fmt.Sprintf("user %s does not exist", username)
		return nil, model.Error(ctx, msg, http.StatusNotFound)
	}
	if !operator.IsOperator {
		msg := fmt.Sprintf("user %s is not an operator", username)
		return nil, model.Error(ctx, msg, http.StatusForbidden)
	}

	return operator, nil
}

// applyProcessingAction updates the application status and data status for one
// processing round trip. The data status tracks the probe set on every save; a
// rejection overrides it.
func applyProcessingAction(application *model.Application, probes []model.Probe, action string) {
	procStatuses := make([]string, len(probes))
	for i, probe := range probes {
		procStatuses[i] = probe.ProcStatus
	}
	application.DataStatus = model.DeriveDataStatus(procStatuses)

	switch action {
	case httpmodel.ActionCompleted:
		application.Status = model.StatusCompleted
	case httpmodel.ActionRejected:
		application.Status = model.StatusRejected
		application.DataStatus = model.DataStatusNoData
	}
}

// ProcessApplication runs one round trip of the operator processing workflow.
//
// swagger:route POST /v1/applications/{application_code}/processing applications processApplication
//
// # Process Application
//
// Takes the processing lock on the application, replaces its probe set, records the experiment
// bookkeeping fields, and applies the requested action. Completing or rejecting the application
// releases the lock; a plain save keeps it so the operator can continue working.
//
// Responses:
//
//	200: applicationResponse
//	400: badRequestResponse
//	403: forbiddenResponse
//	404: notFoundResponse
//	409: conflictResponse
//	500: internalServerErrorResponse
func (s Server) ProcessApplication(ctx echo.Context) error {
	var err error

	log := log.WithFields(logrus.Fields{"context": "processing application"})

	context := ctx.Request().Context()
	now := time.Now()

	application, err := s.lookupApplication(ctx)
	if application == nil {
		return err
	}

	operator, err := s.operatorForRequest(ctx)
	if operator == nil {
		return err
	}

	log = log.WithFields(logrus.Fields{
		"application": application.ApplicationCode,
		"operator":    operator.Username,
	})

	// Parse and validate the request body.
	var request httpmodel.ProcessingRequest
	if err = ctx.Bind(&request); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err = request.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	// Take the processing lock.
	err = db.AcquireProcessingLock(context, s.GORMDB, application, *operator.ID, now)
	if err != nil {
		var conflict *db.LockConflictError
		if errors.As(err, &conflict) {
			return model.Error(ctx, conflict.Error(), http.StatusConflict)
		}
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	// Resolve the instrument when one was named.
	if request.Diffractometer != "" {
		device, err := db.GetDiffractometer(context, s.GORMDB, request.Diffractometer)
		if err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
		if device == nil {
			msg := fmt.Sprintf("diffractometer %s not found", request.Diffractometer)
			return model.Error(ctx, msg, http.StatusNotFound)
		}
		application.DiffractometerID = device.ID
		application.Diffractometer = device
	}

	// Replace the probe set.
	probes, err := db.SaveProcessedProbes(context, s.GORMDB, application, request.DBProbes())
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	// Record the experiment bookkeeping fields.
	application.OperatorID = operator.ID
	application.ExperimentStartDate = request.ExperimentStartDate
	application.ExperimentStart = request.ExperimentStart
	application.ExperimentEndDate = request.ExperimentEndDate
	application.ExperimentEnd = request.ExperimentEnd
	application.QuotaCompensation = request.QuotaCompensation
	application.RawDataDir = request.RawDataDir
	if request.SampleStoragePostExp != "" {
		application.SampleStoragePostExp = request.SampleStoragePostExp
		if model.PostExpStorageReturned(request.SampleStoragePostExp) {
			application.SampleReturned = true
		}
	}

	applyProcessingAction(application, probes, request.Action)

	events, err := db.SaveApplication(context, s.GORMDB, application)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	if err = db.UpdateAggregatedFields(context, s.GORMDB, application); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	// A finished application no longer needs the lock.
	if request.Action != httpmodel.ActionSave {
		if err = db.ReleaseProcessingLock(context, s.GORMDB, application); err != nil {
			return model.Error(ctx, err.Error(), http.StatusInternalServerError)
		}
	}

	log.Infof("applied processing action %s", request.Action)

	s.publishTransitionEvents(context, application, events)

	return model.Success(ctx, application, http.StatusOK)
}

// ReleaseApplicationLock releases the processing lock on an application.
//
// swagger:route DELETE /v1/applications/{application_code}/lock applications releaseApplicationLock
//
// # Release Processing Lock
//
// Releases the processing lock on the application. Releasing an already-free lock succeeds.
//
// responses:
//
//	200: successMessageResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) ReleaseApplicationLock(ctx echo.Context) error {
	application, err := s.lookupApplication(ctx)
	if application == nil {
		return err
	}

	if err = db.ReleaseProcessingLock(ctx.Request().Context(), s.GORMDB, application); err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	msg := fmt.Sprintf("the processing lock on application %s has been released", application.ApplicationCode)
	return model.SuccessMessage(ctx, msg, http.StatusOK)
}

// MarkApplicationReduced marks every probe of an application reduced.
//
// swagger:route POST /v1/applications/{application_code}/reduced applications markApplicationReduced
//
// # Mark Application Reduced
//
// Moves every probe of the application through the reduced transition and updates the data
// status accordingly.
//
// responses:
//
//	200: applicationResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) MarkApplicationReduced(ctx echo.Context) error {
	application, err := s.lookupApplication(ctx)
	if application == nil {
		return err
	}

	context := ctx.Request().Context()

	changed, err := db.MarkAllProbesReduced(context, s.GORMDB, application)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if !changed {
		msg := fmt.Sprintf("application %s has no probes awaiting reduction", application.ApplicationCode)
		return model.SuccessMessage(ctx, msg, http.StatusOK)
	}

	return model.Success(ctx, application, http.StatusOK)
}
