package httpmodel

import (
	"fmt"
	"time"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/utils"
)

// NewApplication
//
// swagger:model
type NewApplication struct {

	// The sample code. Must not contain path characters since it names data directories.
	//
	// required: true
	SampleCode string `json:"sample_code"`

	// The code of the laboratory whose quota the experiment consumes
	//
	// required: true
	LabCode string `json:"lab_code"`

	// The project code the experiment is billed under
	Project string `json:"project"`

	// The scheduling deadline
	Deadline *time.Time `json:"deadline"`

	// True to request a manual near-maximum priority override
	AsapPriority bool `json:"asap_priority"`

	// True to allow the submission even when the laboratory's quota is exhausted
	IgnoreQuotaLimit bool `json:"ignore_quota_limit"`

	// A description of the sample's appearance
	SampleAppearance string `json:"sample_appearance"`

	// The sample's chemical composition
	Composition string `json:"composition"`

	// The container the sample arrived in
	Tare string `json:"tare"`

	// The requested experiment temperature in K
	ExperimentTemp int `json:"experiment_temp"`
}

// Validate verifies that all the required fields in a new application are present and well formed.
func (a NewApplication) Validate() error {

	// The sample code is required and names data directories downstream.
	if a.SampleCode == "" {
		return fmt.Errorf("a sample code is required")
	}
	if err := utils.ValidateSampleCode(a.SampleCode); err != nil {
		return err
	}

	// The laboratory code is required so the experiment can be billed.
	if a.LabCode == "" {
		return fmt.Errorf("a laboratory code is required")
	}

	return nil
}

// ToDBModel converts a new application to its equivalent database model. The application code,
// submission date, and client are assigned by the caller.
func (a NewApplication) ToDBModel() model.Application {
	experimentTemp := a.ExperimentTemp
	if experimentTemp == 0 {
		experimentTemp = 220
	}

	return model.Application{
		SampleCode:       a.SampleCode,
		Project:          a.Project,
		Deadline:         a.Deadline,
		AsapPriority:     a.AsapPriority,
		IgnoreQuotaLimit: a.IgnoreQuotaLimit,
		SampleAppearance: a.SampleAppearance,
		Composition:      a.Composition,
		Tare:             a.Tare,
		ExperimentTemp:   experimentTemp,
		Status:           model.StatusSubmitted,
		DataStatus:       model.DataStatusNoData,
	}
}
