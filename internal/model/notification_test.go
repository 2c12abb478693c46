package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionAllowed(t *testing.T) {
	pending := []PendingNotification{{}}
	accepted := []AcceptedNotification{{}}
	rejected := []RejectedNotification{{}}

	tests := []struct {
		name      string
		relations []NotificationRelation
		expected  bool
	}{
		{
			name:      "no relations allows the action",
			relations: nil,
			expected:  true,
		},
		{
			name: "inactive relations are ignored",
			relations: []NotificationRelation{
				{IsActive: false, LogicDependence: LogicAnd, Pending: pending, Rejected: rejected},
			},
			expected: true,
		},
		{
			name: "and-relation fails on a pending response",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicAnd, Pending: pending, Accepted: accepted},
			},
			expected: false,
		},
		{
			name: "and-relation fails on a rejected response",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicAnd, Accepted: accepted, Rejected: rejected},
			},
			expected: false,
		},
		{
			name: "and-relation passes once everyone accepted",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicAnd, Accepted: accepted},
			},
			expected: true,
		},
		{
			name: "or-relation passes on a single acceptance",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicOr, Pending: pending, Accepted: accepted, Rejected: rejected},
			},
			expected: true,
		},
		{
			name: "or-relation fails without any acceptance",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicOr, Pending: pending, Rejected: rejected},
			},
			expected: false,
		},
		{
			name: "every active relation must pass",
			relations: []NotificationRelation{
				{IsActive: true, LogicDependence: LogicOr, Accepted: accepted},
				{IsActive: true, LogicDependence: LogicAnd, Pending: pending},
			},
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			issue := NotificationIssue{Relations: test.relations}
			assert.Equal(t, test.expected, issue.ActionAllowed())
		})
	}
}
