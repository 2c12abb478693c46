package model

// Diffractometer defines an instrument that applications are scheduled on. The night-experiment
// constant is the flat number of quota hours billed for any run spanning more than one calendar
// day, regardless of the actual elapsed time.
//
// swagger:model
type Diffractometer struct {
	// The diffractometer identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The unique device name
	//
	// required: true
	DeviceName string `gorm:"not null;unique" json:"device_name"`

	// True if the instrument is currently available for scheduling
	IsAvailable bool `gorm:"not null;default:true" json:"is_available"`

	// Multiplier applied to real elapsed time when billing quota. 1.00 bills real time.
	TimeConsMult *float64 `gorm:"type:decimal(5,2)" json:"time_cons_mult,omitempty"`

	// Flat quota hours billed for a multi-day (night) experiment
	TimeConsNightExperiment *float64 `gorm:"type:decimal(6,2)" json:"time_cons_night_experiment,omitempty"`
}

// TableName specifies the table name to use in the database.
func (d *Diffractometer) TableName() string {
	return "diffractometers"
}

// NightExperimentHours returns the flat billing constant for overnight runs.
func (d *Diffractometer) NightExperimentHours() float64 {
	if d.TimeConsNightExperiment == nil {
		return 0
	}
	return *d.TimeConsNightExperiment
}
