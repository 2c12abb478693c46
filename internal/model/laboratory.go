package model

// Laboratory defines a research group that submits applications against a shared quota group.
//
// swagger:model
type Laboratory struct {
	// The laboratory identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The unique laboratory code
	//
	// required: true
	LabCode string `gorm:"not null;unique" json:"lab_code"`

	// The unique laboratory name
	//
	// required: true
	Name string `gorm:"not null;unique" json:"name"`

	// The organization the laboratory belongs to
	Organization string `json:"organization,omitempty"`

	// The laboratory's country
	Country string `json:"country,omitempty"`

	// The laboratory's city
	City string `json:"city,omitempty"`

	// An abbreviated display name
	ShortName string `json:"short_name,omitempty"`

	// The identifier of the quota group that bills this laboratory's time
	QuotaGroupID *string `gorm:"type:uuid" json:"-"`

	// The quota group that bills this laboratory's time
	QuotaGroup *QuotaGroup `json:"quota_group,omitempty"`
}

// TableName specifies the table name to use in the database.
func (l *Laboratory) TableName() string {
	return "laboratories"
}

// GetAvailableTime returns the laboratory's available instrument time in hours. Laboratories
// without a quota group are treated as inexhaustible, reporting the display sentinel.
func (l *Laboratory) GetAvailableTime() float64 {
	if l.QuotaGroup == nil {
		return UnlimitedTimeSentinel
	}
	return l.QuotaGroup.AvailableTime()
}

// Metered determines whether time consumed by this laboratory is billed against a quota balance.
func (l *Laboratory) Metered() bool {
	return l.QuotaGroup != nil && l.QuotaGroup.Metered()
}
