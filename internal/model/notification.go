package model

import "time"

// Approval logic codes for a notification relation.
const (
	LogicAnd = "&"
	LogicOr  = "|"
)

// NotificationIssue defines an action gated behind an approval workflow. The method code selects
// a handler from a closed dispatch table and the kwargs are passed to the handler when the action
// is allowed to run.
//
// swagger:model
type NotificationIssue struct {
	// The issue identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The action method code
	//
	// required: true
	Method string `gorm:"not null" json:"method"`

	// The arguments passed to the action handler
	Kwargs map[string]interface{} `gorm:"serializer:json" json:"kwargs,omitempty"`

	// The approval relations gating the action
	Relations []NotificationRelation `gorm:"foreignKey:IssueID" json:"relations,omitempty"`
}

// TableName specifies the table name to use in the database.
func (i *NotificationIssue) TableName() string {
	return "notification_issues"
}

// ActionAllowed evaluates the issue's approval gates. Every active relation must pass: an
// AND-relation passes when it has no pending and no rejected responses, an OR-relation passes
// when it has at least one accepted response. Relations must be preloaded along with their
// response lists.
func (i *NotificationIssue) ActionAllowed() bool {
	for _, relation := range i.Relations {
		if !relation.IsActive {
			continue
		}
		switch relation.LogicDependence {
		case LogicAnd:
			if len(relation.Rejected) > 0 || len(relation.Pending) > 0 {
				return false
			}
		case LogicOr:
			if len(relation.Accepted) == 0 {
				return false
			}
		}
	}
	return true
}

// NotificationRelation defines one approval gate on an issue, with its AND/OR logic and the
// responses collected so far.
//
// swagger:model
type NotificationRelation struct {
	// The relation identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The approval logic, & or |
	LogicDependence string `gorm:"not null;default:&;index" json:"logic_dependence"`

	// True while the approval workflow is active
	IsActive bool `gorm:"not null;default:false;index" json:"is_active"`

	// The identifier of the gated issue
	IssueID *string `gorm:"type:uuid;not null;index" json:"-"`

	// Responses still awaiting an answer
	Pending []PendingNotification `gorm:"foreignKey:RelationID" json:"pending,omitempty"`

	// Accepted responses
	Accepted []AcceptedNotification `gorm:"foreignKey:RelationID" json:"accepted,omitempty"`

	// Rejected responses
	Rejected []RejectedNotification `gorm:"foreignKey:RelationID" json:"rejected,omitempty"`
}

// TableName specifies the table name to use in the database.
func (r *NotificationRelation) TableName() string {
	return "notification_relations"
}

// Notification holds the fields shared by all notification response rows.
type Notification struct {
	// The notification identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The identifier of the sending user
	UserFromID *string `gorm:"type:uuid;not null" json:"-"`

	// The identifier of the receiving user
	UserToID *string `gorm:"type:uuid;not null" json:"-"`

	// The time the notification was created
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`

	// The notification message
	Message string `json:"message"`

	// The identifier of the approval relation the notification belongs to
	RelationID *string `gorm:"type:uuid;index" json:"-"`
}

// PendingNotification is a notification awaiting a response.
//
// swagger:model
type PendingNotification struct {
	Notification
}

// TableName specifies the table name to use in the database.
func (n *PendingNotification) TableName() string {
	return "pending_notifications"
}

// AcceptedNotification is a notification whose recipient accepted the gated action.
//
// swagger:model
type AcceptedNotification struct {
	Notification

	// The time the notification was accepted
	AcceptDate time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"accept_date"`
}

// TableName specifies the table name to use in the database.
func (n *AcceptedNotification) TableName() string {
	return "accepted_notifications"
}

// RejectedNotification is a notification whose recipient rejected the gated action.
//
// swagger:model
type RejectedNotification struct {
	Notification

	// The time the notification was rejected
	RejectDate time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"reject_date"`
}

// TableName specifies the table name to use in the database.
func (n *RejectedNotification) TableName() string {
	return "rejected_notifications"
}
