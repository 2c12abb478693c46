package model

import (
	"fmt"
	"math"
)

// Processing status codes for a probe. The single-character codes form two parallel tracks, one
// for single-crystal experiments and one for powder experiments, plus a handful of terminal and
// special-case codes that no transition moves away from.
const (
	ProcStatusNone        = ""
	ProcStatusTrash       = "x" // trial experiment, nothing worth keeping
	ProcStatusSCNR        = "<" // single-crystal experiment awaiting reduction
	ProcStatusSCR         = "." // single-crystal data reduced, not yet sent to the client
	ProcStatusReReduction = "!" // needs non-routine or repeated reduction
	ProcStatusFailed      = "@" // satisfactory reduction failed, needs non-routine handling
	ProcStatusSCRS        = ">" // single-crystal data sent to the client
	ProcStatusPWNR        = "(" // powder experiment awaiting reduction
	ProcStatusPWR         = ";" // powder data reduced, not yet sent to the client
	ProcStatusPWRS        = ")" // powder data sent to the client
	ProcStatusCellClient  = "+" // skipped, cell matched the client's do-not-measure list
	ProcStatusCellKnown   = "#" // skipped, cell matched a CCDC/ICSD structure
	ProcStatusCancelled   = "-" // experiment not performed or cancelled by the client
	ProcStatusNoCrystals  = "~" // no crystals found in the sample
	ProcStatusLattice     = "l" // cell-only determination done at the client's request
)

// AggregateSentinel substitutes for empty per-probe values in the application-level aggregate
// strings so that their positions stay aligned with the probe numbering.
const AggregateSentinel = "♠"

// ReducedProcStatus maps a processing status through the "reduced" transition. Statuses with no
// reduced counterpart are fixed points.
func ReducedProcStatus(status string) string {
	switch status {
	case ProcStatusSCNR:
		return ProcStatusSCR
	case ProcStatusPWNR:
		return ProcStatusPWR
	case ProcStatusReReduction:
		return ProcStatusSCR
	default:
		return status
	}
}

// PostedProcStatus maps a processing status through the "posted" transition. Statuses with no
// posted counterpart are fixed points.
func PostedProcStatus(status string) string {
	switch status {
	case ProcStatusSCR:
		return ProcStatusSCRS
	case ProcStatusPWR:
		return ProcStatusPWRS
	default:
		return status
	}
}

// NeedToPost determines whether data with the given status has been reduced but not yet sent.
func NeedToPost(status string) bool {
	return status == ProcStatusSCR || status == ProcStatusPWR
}

// NeedReductionProcStatuses returns the status values indicating that data still needs reduction.
func NeedReductionProcStatuses() []string {
	return []string{ProcStatusSCNR, ProcStatusPWNR, ProcStatusReReduction}
}

// NeedSendProcStatuses returns the status values indicating that reduced data awaits delivery.
func NeedSendProcStatuses() []string {
	return []string{ProcStatusSCR, ProcStatusPWR}
}

// SentProcStatuses returns the status values indicating that data has been delivered.
func SentProcStatuses() []string {
	return []string{ProcStatusSCRS, ProcStatusPWRS}
}

// Probe defines one physical sample measured within an application. Probes are numbered densely
// within their application and cascade-deleted with it.
//
// swagger:model
type Probe struct {
	// The probe identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The identifier of the owning application
	ApplicationID *string `gorm:"type:uuid;not null;index" json:"-"`

	// The probe's position within the application, contiguous from 1
	Number int `gorm:"not null" json:"number"`

	// The crystal habit
	Habit string `json:"habit,omitempty"`

	// The lattice parameter a in Angstroms
	A *float64 `gorm:"type:decimal(7,3)" json:"a,omitempty"`

	// The lattice parameter b in Angstroms
	B *float64 `gorm:"type:decimal(7,3)" json:"b,omitempty"`

	// The lattice parameter c in Angstroms
	C *float64 `gorm:"type:decimal(7,3)" json:"c,omitempty"`

	// The angle between b and c in degrees
	Al *float64 `gorm:"type:decimal(5,2)" json:"al,omitempty"`

	// The angle between a and c in degrees
	Bt *float64 `gorm:"type:decimal(5,2)" json:"bt,omitempty"`

	// The angle between a and b in degrees
	Gm *float64 `gorm:"type:decimal(5,2)" json:"gm,omitempty"`

	// The derived unit cell volume in cubic Angstroms
	//
	// readOnly: true
	Volume *float64 `gorm:"type:decimal(9,2)" json:"volume,omitempty"`

	// The limiting resolution in Angstroms
	Dmin *float64 `gorm:"type:decimal(7,3)" json:"dmin,omitempty"`

	// The sample type code
	SampleType string `json:"smpl_type,omitempty"`

	// The collected data quantity code
	DataQuantity string `json:"data_quantity,omitempty"`

	// A description of the main scans performed
	ScansDesc string `json:"scans_desc,omitempty"`

	// Free-form operator commentary
	Commentary string `json:"commentary,omitempty"`

	// The single-character processing status code
	ProcStatus string `json:"proc_status"`

	// The measurement temperature in K
	Temperature *float64 `gorm:"type:decimal(5,2)" json:"temperature,omitempty"`

	// True when the operator has filled in all required fields
	Confirmed bool `gorm:"not null;default:false" json:"confirmed"`
}

// TableName specifies the table name to use in the database.
func (p *Probe) TableName() string {
	return "probes"
}

// HasParameters determines whether all six lattice parameters are present.
func (p *Probe) HasParameters() bool {
	return p.A != nil && p.B != nil && p.C != nil && p.Al != nil && p.Bt != nil && p.Gm != nil
}

// CellVolume calculates the unit cell volume from the lattice parameters using the general
// triclinic formula, which degenerates correctly for all fourteen Bravais lattice types. It's an
// error to call this without all six parameters present.
func (p *Probe) CellVolume() (float64, error) {
	if !p.HasParameters() {
		return 0, fmt.Errorf("unable to calculate the cell volume: lattice parameters are incomplete")
	}

	cosAl := math.Cos(*p.Al * math.Pi / 180)
	cosBt := math.Cos(*p.Bt * math.Pi / 180)
	cosGm := math.Cos(*p.Gm * math.Pi / 180)

	volume := *p.A * *p.B * *p.C * math.Sqrt(
		1-cosAl*cosAl-cosBt*cosBt-cosGm*cosGm+2*cosAl*cosBt*cosGm,
	)
	return volume, nil
}

// RefreshVolume recomputes the derived cell volume whenever all lattice parameters are present.
// An incomplete parameter set leaves the previously stored volume untouched.
func (p *Probe) RefreshVolume() error {
	if !p.HasParameters() {
		return nil
	}
	volume, err := p.CellVolume()
	if err != nil {
		return err
	}
	p.Volume = &volume
	return nil
}

// MarkReduced moves the probe's processing status through the "reduced" transition, reporting
// whether the status actually changed.
func (p *Probe) MarkReduced() bool {
	newStatus := ReducedProcStatus(p.ProcStatus)
	if newStatus == p.ProcStatus {
		return false
	}
	p.ProcStatus = newStatus
	return true
}

// MarkPosted moves the probe's processing status through the "posted" transition, reporting
// whether the status actually changed.
func (p *Probe) MarkPosted() bool {
	newStatus := PostedProcStatus(p.ProcStatus)
	if newStatus == p.ProcStatus {
		return false
	}
	p.ProcStatus = newStatus
	return true
}

// PublicationAttachable determines whether the probe may be linked to a publication. Only fully
// delivered probes and cell-only determinations qualify.
func (p *Probe) PublicationAttachable() bool {
	switch p.ProcStatus {
	case ProcStatusSCRS, ProcStatusPWRS, ProcStatusLattice:
		return true
	default:
		return false
	}
}
