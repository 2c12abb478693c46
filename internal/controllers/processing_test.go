package controllers

import (
	"testing"

	"github.com/UlybinDA/scxrd-sac/internal/httpmodel"
	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestApplyProcessingAction(t *testing.T) {
	probes := []model.Probe{
		{Number: 1, ProcStatus: model.ProcStatusSCR},
		{Number: 2, ProcStatus: model.ProcStatusSCNR},
	}

	t.Run("a plain save tracks the probe set", func(t *testing.T) {
		application := &model.Application{Status: model.StatusSubmitted, DataStatus: model.DataStatusNoData}
		applyProcessingAction(application, probes, httpmodel.ActionSave)
		assert.Equal(t, model.StatusSubmitted, application.Status)
		assert.Equal(t, model.DataStatusNeedReduction, application.DataStatus)
	})

	t.Run("completing tracks the probe set", func(t *testing.T) {
		application := &model.Application{Status: model.StatusSubmitted, DataStatus: model.DataStatusNoData}
		applyProcessingAction(application, probes, httpmodel.ActionCompleted)
		assert.Equal(t, model.StatusCompleted, application.Status)
		assert.Equal(t, model.DataStatusNeedReduction, application.DataStatus)
	})

	t.Run("rejecting overrides the probe set", func(t *testing.T) {
		application := &model.Application{Status: model.StatusSubmitted, DataStatus: model.DataStatusNoData}
		applyProcessingAction(application, probes, httpmodel.ActionRejected)
		assert.Equal(t, model.StatusRejected, application.Status)
		assert.Equal(t, model.DataStatusNoData, application.DataStatus)
	})

	t.Run("saving with no probes reports no data", func(t *testing.T) {
		application := &model.Application{Status: model.StatusSubmitted, DataStatus: model.DataStatusNeedReduction}
		applyProcessingAction(application, nil, httpmodel.ActionSave)
		assert.Equal(t, model.DataStatusNoData, application.DataStatus)
	})
}
