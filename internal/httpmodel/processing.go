package httpmodel

import (
	"fmt"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
)

// Processing request actions.
const (
	ActionSave      = "save"
	ActionCompleted = "completed"
	ActionRejected  = "rejected"
)

// ProcessingProbe
//
// swagger:model
type ProcessingProbe struct {

	// The probe identifier, present when updating an existing probe
	ID *string `json:"id"`

	// The crystal habit
	Habit string `json:"habit"`

	// The lattice parameters in Angstroms and degrees
	A  *float64 `json:"a"`
	B  *float64 `json:"b"`
	C  *float64 `json:"c"`
	Al *float64 `json:"al"`
	Bt *float64 `json:"bt"`
	Gm *float64 `json:"gm"`

	// The limiting resolution in Angstroms
	Dmin *float64 `json:"dmin"`

	// The sample type code
	SampleType string `json:"smpl_type"`

	// The collected data quantity code
	DataQuantity string `json:"data_quantity"`

	// A description of the main scans performed
	ScansDesc string `json:"scans_desc"`

	// Free-form operator commentary
	Commentary string `json:"commentary"`

	// The single-character processing status code
	ProcStatus string `json:"proc_status"`

	// The measurement temperature in K
	Temperature *float64 `json:"temperature"`

	// True when the operator has filled in all required fields
	Confirmed bool `json:"confirmed"`
}

// ToDBModel converts a processing probe to its equivalent database model. The probe number and
// owning application are assigned when the probe set is saved.
func (p ProcessingProbe) ToDBModel() model.Probe {
	return model.Probe{
		ID:           p.ID,
		Habit:        p.Habit,
		A:            p.A,
		B:            p.B,
		C:            p.C,
		Al:           p.Al,
		Bt:           p.Bt,
		Gm:           p.Gm,
		Dmin:         p.Dmin,
		SampleType:   p.SampleType,
		DataQuantity: p.DataQuantity,
		ScansDesc:    p.ScansDesc,
		Commentary:   p.Commentary,
		ProcStatus:   p.ProcStatus,
		Temperature:  p.Temperature,
		Confirmed:    p.Confirmed,
	}
}

// ProcessingRequest carries one round-trip of the operator processing workflow: the experiment
// bookkeeping fields, the full probe set, and the action to take on the application.
//
// swagger:model
type ProcessingRequest struct {

	// The action to take: save, completed, or rejected
	//
	// required: true
	Action string `json:"action"`

	// The experiment start date
	ExperimentStartDate *time.Time `json:"experiment_start_date"`

	// The experiment start time of day
	ExperimentStart *time.Time `json:"experiment_start"`

	// The experiment end date
	ExperimentEndDate *time.Time `json:"experiment_end_date"`

	// The experiment end time of day
	ExperimentEnd *time.Time `json:"experiment_end"`

	// The device name of the instrument the experiment ran on
	Diffractometer string `json:"diffractometer"`

	// A signed manual adjustment in hours, added to the computed experiment duration
	QuotaCompensation *float64 `json:"quota_compensation"`

	// Where the sample is kept after the experiment
	SampleStoragePostExp string `json:"sample_storage_post_exp"`

	// The raw data directory on the instrument host
	RawDataDir string `json:"raw_data_dir"`

	// The full probe set, in display order
	Probes []ProcessingProbe `json:"probes"`
}

// Validate verifies that the processing request is well formed.
func (r ProcessingRequest) Validate() error {
	switch r.Action {
	case ActionSave, ActionCompleted, ActionRejected:
	default:
		return fmt.Errorf("the action must be one of save, completed, or rejected")
	}

	// Completing an application requires an instrument so the time spent can be billed.
	if r.Action == ActionCompleted && r.Diffractometer == "" {
		return fmt.Errorf("a diffractometer is required to complete an application")
	}

	return nil
}

// DBProbes converts the request's probe set to database models, in order.
func (r ProcessingRequest) DBProbes() []model.Probe {
	probes := make([]model.Probe, len(r.Probes))
	for i, probe := range r.Probes {
		probes[i] = probe.ToDBModel()
	}
	return probes
}
