package model

import "time"

// QuotaTimeTransaction defines the immutable audit record of a manual transfer of hours between
// two quota groups. Rows are created when a transfer commits and never modified afterwards.
//
// swagger:model
type QuotaTimeTransaction struct {
	// The transaction identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The identifier of the user that initiated the transfer
	UserID *string `gorm:"type:uuid;not null" json:"-"`

	// The user that initiated the transfer
	User *User `json:"user,omitempty"`

	// The identifier of the quota group the time was taken from
	QuotaGroupDonorID *string `gorm:"type:uuid;not null" json:"-"`

	// The quota group the time was taken from
	QuotaGroupDonor *QuotaGroup `json:"quota_group_donor,omitempty"`

	// The identifier of the quota group the time was granted to
	QuotaGroupAcceptorID *string `gorm:"type:uuid;not null" json:"-"`

	// The quota group the time was granted to
	QuotaGroupAcceptor *QuotaGroup `json:"quota_group_acceptor,omitempty"`

	// The number of hours transferred
	//
	// required: true
	TimeTransfer float64 `gorm:"type:decimal(10,2);not null" json:"time_transfer"`

	// The time the transfer was recorded
	//
	// readOnly: true
	DatetimeStamp time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"datetime_stamp"`
}

// TableName specifies the table name to use in the database.
func (t *QuotaTimeTransaction) TableName() string {
	return "quota_time_transactions"
}
