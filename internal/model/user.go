package model

// User defines the user information to store in the database.
//
// swagger:model
type User struct {
	// The user identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The username
	//
	// required: true
	Username string `gorm:"not null;unique" json:"username"`

	// True if the user acts as an instrument operator
	IsOperator bool `gorm:"not null;default:false" json:"is_operator"`

	// The identifier of the user's home laboratory
	LaboratoryID *string `gorm:"type:uuid" json:"-"`

	// The user's home laboratory
	Laboratory *Laboratory `json:"laboratory,omitempty"`
}

// TableName specifies the table name to use in the database.
func (u *User) TableName() string {
	return "users"
}
