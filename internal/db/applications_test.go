package db

import (
	"testing"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/stretchr/testify/assert"
)

func application(status, dataStatus string) *model.Application {
	return &model.Application{Status: status, DataStatus: dataStatus}
}

func TestTransitionEvents(t *testing.T) {
	t.Run("completing a submitted application", func(t *testing.T) {
		events := transitionEvents(
			application(model.StatusSubmitted, model.DataStatusNoData),
			application(model.StatusCompleted, model.DataStatusNeedReduction),
		)
		assert.Equal(t, []TransitionEvent{EventCompleted, EventLeftSubmitted}, events)
	})

	t.Run("rejecting a submitted application", func(t *testing.T) {
		events := transitionEvents(
			application(model.StatusSubmitted, model.DataStatusNoData),
			application(model.StatusRejected, model.DataStatusNoData),
		)
		assert.Equal(t, []TransitionEvent{EventRejected, EventLeftSubmitted}, events)
	})

	t.Run("publishing the reduced data", func(t *testing.T) {
		events := transitionEvents(
			application(model.StatusCompleted, model.DataStatusReduced),
			application(model.StatusCompleted, model.DataStatusSent),
		)
		assert.Equal(t, []TransitionEvent{EventDataSent}, events)
	})

	t.Run("re-saving a completed application fires nothing", func(t *testing.T) {
		prior := application(model.StatusCompleted, model.DataStatusNeedReduction)
		current := application(model.StatusCompleted, model.DataStatusNeedReduction)
		assert.Empty(t, transitionEvents(prior, current))
	})

	t.Run("re-saving after the data was sent fires nothing", func(t *testing.T) {
		prior := application(model.StatusCompleted, model.DataStatusSent)
		current := application(model.StatusCompleted, model.DataStatusSent)
		assert.Empty(t, transitionEvents(prior, current))
	})

	t.Run("a plain save of a submitted application fires nothing", func(t *testing.T) {
		prior := application(model.StatusSubmitted, model.DataStatusNoData)
		current := application(model.StatusSubmitted, model.DataStatusNoData)
		assert.Empty(t, transitionEvents(prior, current))
	})
}
