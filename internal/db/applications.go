package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TransitionEvent identifies a state-machine edge produced by saving an application. The events
// drive the downstream collaborators (email, quota visualization, period refresh) and are only
// produced when the corresponding edge actually occurred, never on saves that left the state
// unchanged.
type TransitionEvent string

const (
	EventCompleted     TransitionEvent = "application.completed"
	EventRejected      TransitionEvent = "application.rejected"
	EventDataSent      TransitionEvent = "data.published"
	EventLeftSubmitted TransitionEvent = "application.left-submitted"
)

// GetApplicationByCode looks up an application by its opaque code, loading the quota group,
// instrument, and ordered probes along with it.
func GetApplicationByCode(ctx context.Context, db *gorm.DB, applicationCode string) (*model.Application, error) {
	wrapMsg := fmt.Sprintf("unable to look up application '%s'", applicationCode)

	var application model.Application
	err := db.WithContext(ctx).
		Preload("Lab").
		Preload("Lab.QuotaGroup").
		Preload("Client").
		Preload("Operator").
		Preload("LockedBy").
		Preload("Diffractometer").
		Preload("Probes", func(db *gorm.DB) *gorm.DB {
			return db.Order("probes.number asc")
		}).
		Where("application_code = ?", applicationCode).
		First(&application).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &application, nil
}

// SaveApplication persists proposed changes to an already-submitted application and returns the
// transition events the save produced. The prior row is snapshotted from the database immediately
// before the write so that edge detection compares against what was actually stored, not against
// whatever the caller last read. The billed time is recomputed from the experiment fields and the
// owning laboratory's quota is adjusted by the delta between the new and previously recorded
// values, which keeps edits to experiment times self-correcting instead of double-charging.
func SaveApplication(ctx context.Context, db *gorm.DB, application *model.Application) ([]TransitionEvent, error) {
	wrapMsg := fmt.Sprintf("unable to save application '%s'", application.ApplicationCode)

	var prior model.Application
	err := db.WithContext(ctx).Where("id = ?", application.ID).First(&prior).Error
	if err == gorm.ErrRecordNotFound {
		// The row vanished between read and write. Fail open to "no prior transition" rather
		// than crashing on a benign race.
		application.PrevStatus = nil
		application.PrevDataStatus = ""
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	} else {
		priorStatus := prior.Status
		application.PrevStatus = &priorStatus
		application.PrevDataStatus = prior.DataStatus

		if hours, ok := application.ComputeTimeSpent(); ok {
			delta := hours - prior.TimeSpent
			if err = ConsumeLabTime(ctx, db, application.Lab, delta); err != nil {
				return nil, err
			}
			application.TimeSpent = hours
		}
	}

	err = db.WithContext(ctx).Omit("Lab", "ClientHomeLab", "Client", "Operator", "LockedBy", "Diffractometer", "Probes").
		Save(application).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return transitionEvents(&prior, application), nil
}

// transitionEvents compares the prior and new state of an application and reports the edges that
// occurred.
func transitionEvents(prior, current *model.Application) []TransitionEvent {
	var events []TransitionEvent

	if current.Status == model.StatusCompleted && prior.Status != model.StatusCompleted {
		events = append(events, EventCompleted)
	}
	if current.Status == model.StatusRejected && prior.Status != model.StatusRejected {
		events = append(events, EventRejected)
	}
	if current.DataStatus == model.DataStatusSent && prior.DataStatus != model.DataStatusSent {
		events = append(events, EventDataSent)
	}
	if prior.Status == model.StatusSubmitted && current.Status != model.StatusSubmitted {
		events = append(events, EventLeftSubmitted)
	}

	return events
}

// UpdateAggregatedFields rebuilds the application's denormalized probe summaries from the probe
// rows and persists them with a narrow column update, deliberately bypassing the full save
// pipeline so that the time-spent and quota computations aren't re-triggered.
func UpdateAggregatedFields(ctx context.Context, db *gorm.DB, application *model.Application) error {
	wrapMsg := fmt.Sprintf("unable to update the aggregated fields of application '%s'", application.ApplicationCode)

	var probes []model.Probe
	err := db.WithContext(ctx).
		Where("application_id = ?", application.ID).
		Order("number asc").
		Find(&probes).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	aggregates := model.BuildAggregates(probes)
	aggregates.Apply(application)

	err = db.WithContext(ctx).
		Model(application).
		UpdateColumns(map[string]interface{}{
			"probe_count":               aggregates.ProbeCount,
			"proc_status_application":   aggregates.ProcStatus,
			"smpl_type_application":     aggregates.SampleType,
			"data_quantity_application": aggregates.DataQuantity,
			"dmin_application":          aggregates.Dmin,
		}).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// markAllProbes maps every probe's processing status through the given transition and, if any
// status actually changed, persists the new statuses along with the application's data status and
// processing-status aggregate via a narrow column update.
func markAllProbes(ctx context.Context, db *gorm.DB, application *model.Application, transition func(*model.Probe) bool, dataStatus string) (bool, error) {
	wrapMsg := fmt.Sprintf("unable to update the probe statuses of application '%s'", application.ApplicationCode)

	var probes []model.Probe
	err := db.WithContext(ctx).
		Where("application_id = ?", application.ID).
		Order("number asc").
		Find(&probes).
		Error
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	changed := false
	aggregate := ""
	for i := range probes {
		if transition(&probes[i]) {
			changed = true
			err = db.WithContext(ctx).
				Model(&probes[i]).
				UpdateColumn("proc_status", probes[i].ProcStatus).
				Error
			if err != nil {
				return false, errors.Wrap(err, wrapMsg)
			}
		}
		aggregate += probes[i].ProcStatus
	}

	if !changed {
		return false, nil
	}

	application.ProcStatusApplication = aggregate
	application.PrevDataStatus = application.DataStatus
	application.DataStatus = dataStatus

	err = db.WithContext(ctx).
		Model(application).
		UpdateColumns(map[string]interface{}{
			"proc_status_application": aggregate,
			"prev_data_status":        application.PrevDataStatus,
			"data_status":             dataStatus,
		}).
		Error
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return true, nil
}

// MarkAllProbesReduced maps every probe through the "reduced" transition and, if anything
// changed, moves the application's data status to DATA_REDUCED.
func MarkAllProbesReduced(ctx context.Context, db *gorm.DB, application *model.Application) (bool, error) {
	return markAllProbes(ctx, db, application, (*model.Probe).MarkReduced, model.DataStatusReduced)
}

// MarkAllReducedProbesPosted maps every probe through the "posted" transition and, if anything
// changed, moves the application's data status to DATA_SENT.
func MarkAllReducedProbesPosted(ctx context.Context, db *gorm.DB, application *model.Application) (bool, error) {
	return markAllProbes(ctx, db, application, (*model.Probe).MarkPosted, model.DataStatusSent)
}

// MarkSampleReturned records that the sample has left the facility's custody.
func MarkSampleReturned(ctx context.Context, db *gorm.DB, application *model.Application) error {
	wrapMsg := fmt.Sprintf("unable to mark the sample of application '%s' returned", application.ApplicationCode)

	application.SampleReturned = true
	err := db.WithContext(ctx).
		Model(application).
		UpdateColumn("sample_returned", true).
		Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// ListSubmittedByPriority lists the outstanding submitted applications ordered by descending
// priority with ties broken by earlier submission. The priority is a function of the wall clock,
// so the ordering is computed here on every call rather than stored.
func ListSubmittedByPriority(ctx context.Context, db *gorm.DB, now time.Time) ([]*model.Application, error) {
	wrapMsg := "unable to list the submitted applications"

	var applications []*model.Application
	err := db.WithContext(ctx).
		Preload("Lab").
		Preload("Lab.QuotaGroup").
		Preload("Client").
		Where("status = ?", model.StatusSubmitted).
		Find(&applications).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	sort.SliceStable(applications, func(i, j int) bool {
		pi := applications[i].Priority(now)
		pj := applications[j].Priority(now)
		if pi != pj {
			return pi > pj
		}
		return applications[i].Date.Before(applications[j].Date)
	})

	return applications, nil
}

// ListReductionWorklist lists the completed applications whose data still needs reduction.
func ListReductionWorklist(ctx context.Context, db *gorm.DB) ([]*model.Application, error) {
	wrapMsg := "unable to list the applications awaiting reduction"

	var applications []*model.Application
	err := db.WithContext(ctx).
		Preload("Lab").
		Preload("Client").
		Preload("Operator").
		Where("status = ? AND data_status = ?", model.StatusCompleted, model.DataStatusNeedReduction).
		Order("date asc").
		Find(&applications).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return applications, nil
}

// ListPostableApplications lists the completed applications whose reduced data is ready for the
// posting pipeline, with their probes loaded in probe order.
func ListPostableApplications(ctx context.Context, db *gorm.DB) ([]*model.Application, error) {
	wrapMsg := "unable to list the applications ready for posting"

	var applications []*model.Application
	err := db.WithContext(ctx).
		Preload("Lab").
		Preload("Client").
		Preload("Operator").
		Preload("Probes", func(db *gorm.DB) *gorm.DB {
			return db.Order("probes.number asc")
		}).
		Where("status = ? AND data_status = ?", model.StatusCompleted, model.DataStatusReduced).
		Find(&applications).
		Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return applications, nil
}
