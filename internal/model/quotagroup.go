package model

import (
	"fmt"
	"time"
)

// QuotaExempt is the period-time value marking a group that isn't billed against a quota at all.
// A nil period time means the group has unlimited time instead.
const QuotaExempt = -1

// UnlimitedTimeSentinel is the value reported as the available time for unlimited and quota-exempt
// groups. It's a display convention and must never be used in balance arithmetic.
const UnlimitedTimeSentinel = 999999

// QuotaGroup defines a pool of instrument-time hours shared by one or more laboratories.
//
// swagger:model
type QuotaGroup struct {
	// The quota group identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The unique quota group name
	//
	// required: true
	Name string `gorm:"not null;unique" json:"name"`

	// True if this is the system's primary quota group
	Main bool `gorm:"not null;default:true" json:"main"`

	// True if the group's time is replenished periodically
	UpdateTimeOnPeriod bool `gorm:"not null;default:true" json:"update_time_on_period"`

	// True if the quota group is currently active
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Hours granted per reset cycle. Null means unlimited time, -1 means the group is quota-exempt.
	PeriodTime *float64 `gorm:"type:decimal(10,2)" json:"period_time,omitempty"`

	// The maximum balance the group may accumulate across resets
	MaxTime *float64 `gorm:"type:decimal(10,2)" json:"max_time,omitempty"`

	// The live balance of available hours. May go negative, representing overdraft.
	CurrentTime float64 `gorm:"type:decimal(10,2);not null;default:0" json:"current_time"`

	// The balance recorded at the last reset, kept as a high-water mark for reporting
	QuotaResetTime float64 `gorm:"type:decimal(10,2);not null;default:0" json:"quota_reset_time"`

	// The time of the last quota reset
	LastReset time.Time `json:"last_reset"`

	// The scheduled time of the next quota reset
	NextReset *time.Time `json:"next_reset,omitempty"`
}

// TableName specifies the table name to use in the database.
func (q *QuotaGroup) TableName() string {
	return "quota_groups"
}

// Unlimited determines whether the group has unlimited time.
func (q *QuotaGroup) Unlimited() bool {
	return q.PeriodTime == nil
}

// Exempt determines whether the group is quota-exempt.
func (q *QuotaGroup) Exempt() bool {
	return q.PeriodTime != nil && *q.PeriodTime == QuotaExempt
}

// Metered determines whether the group's balance is actually tracked. Time consumption, manual
// deltas, and resets are all no-ops for unlimited and quota-exempt groups.
func (q *QuotaGroup) Metered() bool {
	return !q.Unlimited() && !q.Exempt()
}

// AvailableTime returns the current balance for metered groups and the display sentinel otherwise.
func (q *QuotaGroup) AvailableTime() float64 {
	if !q.Metered() {
		return UnlimitedTimeSentinel
	}
	return q.CurrentTime
}

// AddTime applies an unconditional delta to the in-memory balance. It returns true if the balance
// changed so that callers know whether the group needs to be persisted.
func (q *QuotaGroup) AddTime(hours float64) bool {
	if !q.Metered() || hours == 0 {
		return false
	}
	q.CurrentTime += hours
	return true
}

// SubtractTime removes time from the in-memory balance.
func (q *QuotaGroup) SubtractTime(hours float64) bool {
	return q.AddTime(-hours)
}

// ResetQuota grants the group its period time, saturating at the maximum balance if one is
// configured. The new balance is recorded as the reset high-water mark. Calling this twice grants
// the period amount twice; the caller is responsible for cadence. Returns true if the group
// changed and needs to be persisted.
func (q *QuotaGroup) ResetQuota(now time.Time) bool {
	if !q.Metered() {
		return false
	}

	newTime := q.CurrentTime + *q.PeriodTime
	if q.MaxTime != nil && newTime > *q.MaxTime {
		newTime = *q.MaxTime
	}

	q.CurrentTime = newTime
	q.QuotaResetTime = newTime
	q.LastReset = now
	return true
}

// QuotaStatus generates a human-readable description of the quota configuration.
func (q *QuotaGroup) QuotaStatus() string {
	if q.Unlimited() {
		return "unlimited time"
	}
	if q.Exempt() {
		return "no quota"
	}
	maxTime := "∞"
	if q.MaxTime != nil {
		maxTime = fmt.Sprintf("%.2f", *q.MaxTime)
	}
	return fmt.Sprintf("%.2f/%s h (period: %.2f h)", q.CurrentTime, maxTime, *q.PeriodTime)
}

// Validate verifies the quota group's business invariants.
func (q *QuotaGroup) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("a quota group name is required")
	}
	if q.Main && !q.UpdateTimeOnPeriod {
		return fmt.Errorf("the main quota group must have periodic time updates enabled")
	}
	return nil
}
