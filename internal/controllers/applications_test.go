package controllers

import (
	"testing"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/stretchr/testify/assert"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func TestSubmissionBlocked(t *testing.T) {
	meteredLab := func(currentTime float64) *model.Laboratory {
		return &model.Laboratory{
			QuotaGroup: &model.QuotaGroup{
				PeriodTime:  float64Ptr(10),
				CurrentTime: currentTime,
			},
		}
	}

	t.Run("a positive balance admits the submission", func(t *testing.T) {
		assert.False(t, submissionBlocked(meteredLab(2.5), false))
	})

	t.Run("an exhausted balance blocks the submission", func(t *testing.T) {
		assert.True(t, submissionBlocked(meteredLab(0), false))
		assert.True(t, submissionBlocked(meteredLab(-1.5), false))
	})

	t.Run("the ignore-quota-limit flag bypasses the gate", func(t *testing.T) {
		assert.False(t, submissionBlocked(meteredLab(0), true))
		assert.False(t, submissionBlocked(meteredLab(-1.5), true))
	})

	t.Run("an unmetered laboratory is never blocked", func(t *testing.T) {
		unlimited := &model.Laboratory{QuotaGroup: &model.QuotaGroup{}}
		assert.False(t, submissionBlocked(unlimited, false))

		exempt := &model.Laboratory{QuotaGroup: &model.QuotaGroup{PeriodTime: float64Ptr(model.QuotaExempt)}}
		assert.False(t, submissionBlocked(exempt, false))
	})
}
