package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Application status values.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Application data status values, in normal-flow order.
const (
	DataStatusNoData        = "NO_DATA"
	DataStatusNeedReduction = "NEED_REDUCTION"
	DataStatusReduced       = "DATA_REDUCED"
	DataStatusSent          = "DATA_SENT"
)

// Post-experiment sample storage values.
const (
	PostStorageCupboard    = "cupboard"
	PostStorageFreezer     = "freezer"
	PostStorageOperator    = "operator"
	PostStorageStructurer  = "structurer"
	PostStorageReExamine   = "re"
	PostStorageNotFound    = "not_found"
	PostStorageTaken       = "taken"
	PostStorageNotProvided = "not_provided"
	PostStorageDumped      = "dumped"
)

// OperatorLockCooldown is the minimum age a processing lock must reach before a different
// operator may reclaim it.
const OperatorLockCooldown = 2 * time.Hour

// OperatorLockCeiling is the absolute lock age past which the janitor sweep releases a lock
// regardless of its holder.
const OperatorLockCeiling = 12 * time.Hour

// priorityWindowDays is the width of the deadline window over which the priority score ramps
// linearly from 0 up to 100.
const priorityWindowDays = 14

// GenerateApplicationCode generates the opaque 21-character unique identifier assigned to an
// application at creation.
func GenerateApplicationCode() (string, error) {
	return gonanoid.New(21)
}

// PostExpStorageReturned determines whether a post-experiment storage value implies that the
// sample has left the facility's custody.
func PostExpStorageReturned(value string) bool {
	switch value {
	case PostStorageDumped, PostStorageStructurer, PostStorageReExamine, PostStorageTaken,
		PostStorageNotProvided, PostStorageNotFound:
		return true
	default:
		return false
	}
}

// Application defines a laboratory's request for an experiment, tracked from submission through
// completion and data delivery.
//
// swagger:model
type Application struct {
	// The application identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The opaque 21-character application code, assigned at creation
	//
	// readOnly: true
	ApplicationCode string `gorm:"not null;unique" json:"application_code"`

	// The project code the experiment is billed under
	Project string `json:"project,omitempty"`

	// The scheduling deadline
	Deadline *time.Time `json:"deadline,omitempty"`

	// True if the application carries a manual near-maximum priority override
	AsapPriority bool `gorm:"not null;default:false" json:"asap_priority"`

	// True if the application may be processed even when the quota is exhausted
	IgnoreQuotaLimit bool `gorm:"not null;default:false" json:"ignore_quota_limit"`

	// A signed manual adjustment in hours, added to the computed experiment duration
	QuotaCompensation *float64 `gorm:"type:decimal(6,2)" json:"quota_compensation,omitempty"`

	// The submission date
	Date time.Time `gorm:"not null" json:"date"`

	// The identifier of the laboratory whose quota the experiment consumes
	LabID *string `gorm:"type:uuid;not null" json:"-"`

	// The laboratory whose quota the experiment consumes
	Lab *Laboratory `json:"lab,omitempty"`

	// The identifier of the client's home laboratory, kept for reporting
	ClientHomeLabID *string `gorm:"type:uuid" json:"-"`

	// The client's home laboratory
	ClientHomeLab *Laboratory `gorm:"foreignKey:ClientHomeLabID" json:"client_home_lab,omitempty"`

	// The identifier of the client that submitted the application
	ClientID *string `gorm:"type:uuid" json:"-"`

	// The client that submitted the application
	Client *User `json:"client,omitempty"`

	// The identifier of the client's supervisor
	SupervisorID *string `gorm:"type:uuid" json:"-"`

	// The identifier of the operator that processed the application
	OperatorID *string `gorm:"type:uuid" json:"-"`

	// The operator that processed the application
	Operator *User `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`

	// The sample code. Must not contain path characters since it names data directories.
	//
	// required: true
	SampleCode string `gorm:"not null" json:"sample_code"`

	// A description of the sample's appearance
	SampleAppearance string `json:"sample_appearance,omitempty"`

	// The sample's chemical composition
	Composition string `json:"composition,omitempty"`

	// The container the sample arrived in
	Tare string `json:"tare,omitempty"`

	// Where the sample is stored before the experiment
	SampleStorage string `json:"sample_storage,omitempty"`

	// The experiment start date
	ExperimentStartDate *time.Time `gorm:"type:date" json:"experiment_start_date,omitempty"`

	// The experiment start time of day
	ExperimentStart *time.Time `gorm:"type:time" json:"experiment_start,omitempty"`

	// The experiment end date
	ExperimentEndDate *time.Time `gorm:"type:date" json:"experiment_end_date,omitempty"`

	// The experiment end time of day
	ExperimentEnd *time.Time `gorm:"type:time" json:"experiment_end,omitempty"`

	// The experiment temperature in K
	ExperimentTemp int `gorm:"not null;default:220" json:"experiment_temp"`

	// The identifier of the instrument the experiment ran on
	DiffractometerID *string `gorm:"type:uuid" json:"-"`

	// The instrument the experiment ran on
	Diffractometer *Diffractometer `json:"diffractometer,omitempty"`

	// The instrument hours billed for the experiment
	//
	// readOnly: true
	TimeSpent float64 `gorm:"type:decimal(6,2);not null;default:0" json:"time_spent"`

	// The number of probes in the application
	//
	// readOnly: true
	ProbeCount int `gorm:"not null;default:0" json:"probe_count"`

	// Per-probe processing status codes in probe order, one character per probe
	//
	// readOnly: true
	ProcStatusApplication string `json:"proc_status_application,omitempty"`

	// Per-probe sample type codes in probe order
	//
	// readOnly: true
	SampleTypeApplication string `gorm:"column:smpl_type_application" json:"smpl_type_application,omitempty"`

	// Per-probe data quantity codes in probe order
	//
	// readOnly: true
	DataQuantityApplication string `json:"data_quantity_application,omitempty"`

	// Per-probe limiting resolutions in probe order
	//
	// readOnly: true
	DminApplication string `json:"dmin_application,omitempty"`

	// The application status
	Status string `gorm:"not null;default:submitted" json:"status"`

	// The application status before the last transition
	//
	// readOnly: true
	PrevStatus *string `json:"prev_status,omitempty"`

	// The data status
	DataStatus string `gorm:"not null;default:NO_DATA" json:"data_status"`

	// The data status before the last transition
	//
	// readOnly: true
	PrevDataStatus string `json:"prev_data_status,omitempty"`

	// Where the sample is kept after the experiment
	SampleStoragePostExp string `json:"sample_storage_post_exp,omitempty"`

	// True once the sample has left the facility's custody
	SampleReturned bool `gorm:"not null;default:false" json:"sample_returned"`

	// The raw data directory on the instrument host
	RawDataDir string `json:"raw_data_dir,omitempty"`

	// The path the posting pipeline delivered the reduced data to
	ReducedDataDir string `json:"reduced_data_dir,omitempty"`

	// The identifier of the operator currently holding the processing lock
	LockedByID *string `gorm:"type:uuid" json:"-"`

	// The operator currently holding the processing lock
	LockedBy *User `gorm:"foreignKey:LockedByID" json:"locked_by,omitempty"`

	// The time the processing lock was acquired
	LockedAt *time.Time `json:"locked_at,omitempty"`

	// The probes measured for the application
	Probes []Probe `json:"probes,omitempty"`
}

// TableName specifies the table name to use in the database.
func (a *Application) TableName() string {
	return "applications"
}

// round2 rounds hours values to two decimal places the way they're stored.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Priority computes an application's scheduling score from its deadline and ASAP flag. Overdue
// applications always score 101, ASAP applications 100, and everything else ramps linearly from 0
// at fourteen days out to 100 at the deadline instant. The score is a function of the wall clock
// and must be recomputed on every read.
func Priority(asap bool, deadline *time.Time, now time.Time) float64 {
	if deadline != nil && !deadline.After(now) {
		return 101
	}
	if asap {
		return 100
	}
	if deadline == nil {
		return 0
	}

	daysLeft := deadline.Sub(now).Hours() / 24
	if daysLeft > priorityWindowDays {
		return 0
	}

	return math.Min(100, round2(100*(1-daysLeft/priorityWindowDays)))
}

// Priority computes the application's current scheduling score.
func (a *Application) Priority(now time.Time) float64 {
	return Priority(a.AsapPriority, a.Deadline, now)
}

// CanDownload determines whether the application's reduced data is available for download.
func (a *Application) CanDownload() bool {
	return a.DataStatus == DataStatusSent
}

// LockAvailableTo determines whether the given operator may enter the processing workflow for
// this application: the lock is free, already held by the same operator, or older than the
// cooldown. The authoritative check is the conditional update in the db package; this mirrors its
// condition for callers that already hold a loaded row.
func (a *Application) LockAvailableTo(operatorID string, now time.Time) bool {
	if a.LockedByID == nil || *a.LockedByID == operatorID {
		return true
	}
	if a.LockedAt == nil {
		return true
	}
	return now.Sub(*a.LockedAt) >= OperatorLockCooldown
}

// sameDay compares the calendar dates of two timestamps.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ComputeTimeSpent calculates the billed duration of an experiment in hours, rounded to two
// decimal places. It returns false without a value when any of the four date/time components is
// missing. Runs spanning more than one calendar day bill the instrument's flat night-experiment
// constant instead of the clock difference; same-day runs whose end time reads earlier than their
// start time are assumed to have crossed midnight. The manual quota compensation, when present,
// adjusts the computed duration of a same-day run.
func ComputeTimeSpent(startDate, startTime, endDate, endTime *time.Time, nightExperimentHours float64, compensationHours *float64) (float64, bool) {
	if startDate == nil || startTime == nil || endDate == nil || endTime == nil {
		return 0, false
	}

	if !sameDay(*startDate, *endDate) {
		return round2(nightExperimentHours), true
	}

	start := time.Date(
		startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, startDate.Location(),
	)
	end := time.Date(
		endDate.Year(), endDate.Month(), endDate.Day(),
		endTime.Hour(), endTime.Minute(), endTime.Second(), 0, endDate.Location(),
	)
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}

	hours := end.Sub(start).Hours()
	if compensationHours != nil {
		hours += *compensationHours
	}

	return round2(hours), true
}

// ComputeTimeSpent calculates the application's billed duration from its own experiment fields.
func (a *Application) ComputeTimeSpent() (float64, bool) {
	var nightHours float64
	if a.Diffractometer != nil {
		nightHours = a.Diffractometer.NightExperimentHours()
	}
	return ComputeTimeSpent(
		a.ExperimentStartDate, a.ExperimentStart, a.ExperimentEndDate, a.ExperimentEnd,
		nightHours, a.QuotaCompensation,
	)
}

// Aggregates holds the denormalized per-probe summaries stored on an application row.
type Aggregates struct {
	ProbeCount   int
	ProcStatus   string
	SampleType   string
	DataQuantity string
	Dmin         string
}

// aggregateValue substitutes the sentinel for empty per-probe values so that positions in the
// aggregate strings stay aligned with the probe numbering.
func aggregateValue(v string) string {
	if v == "" {
		return AggregateSentinel
	}
	return v
}

// BuildAggregates rebuilds the application-level aggregate summaries from the full probe set,
// which must already be ordered by probe number.
func BuildAggregates(probes []Probe) Aggregates {
	var procStatus, sampleType, dataQuantity, dmin strings.Builder
	for _, p := range probes {
		procStatus.WriteString(aggregateValue(p.ProcStatus))
		sampleType.WriteString(aggregateValue(p.SampleType))
		dataQuantity.WriteString(aggregateValue(p.DataQuantity))
		if p.Dmin == nil {
			dmin.WriteString(AggregateSentinel)
		} else {
			dmin.WriteString(strconv.FormatFloat(*p.Dmin, 'f', -1, 64))
		}
	}
	return Aggregates{
		ProbeCount:   len(probes),
		ProcStatus:   procStatus.String(),
		SampleType:   sampleType.String(),
		DataQuantity: dataQuantity.String(),
		Dmin:         dmin.String(),
	}
}

// Apply copies the aggregates onto an application.
func (agg Aggregates) Apply(a *Application) {
	a.ProbeCount = agg.ProbeCount
	a.ProcStatusApplication = agg.ProcStatus
	a.SampleTypeApplication = agg.SampleType
	a.DataQuantityApplication = agg.DataQuantity
	a.DminApplication = agg.Dmin
}

// DeriveDataStatus determines an application's data status from the processing statuses of its
// probes: no probe carrying data means NO_DATA, any probe awaiting reduction means
// NEED_REDUCTION, reduced-but-undelivered probes mean DATA_REDUCED, and delivered data with
// nothing left to reduce or send means DATA_SENT.
func DeriveDataStatus(procStatuses []string) string {
	contains := func(set []string, v string) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}

	var needReduction, needSend, someSent, anyData bool
	for _, status := range procStatuses {
		switch {
		case contains(NeedReductionProcStatuses(), status):
			needReduction = true
			anyData = true
		case contains(NeedSendProcStatuses(), status):
			needSend = true
			anyData = true
		case contains(SentProcStatuses(), status):
			someSent = true
			anyData = true
		}
	}

	switch {
	case !anyData:
		return DataStatusNoData
	case someSent && !needSend && !needReduction:
		return DataStatusSent
	case needReduction:
		return DataStatusNeedReduction
	default:
		return DataStatusReduced
	}
}
