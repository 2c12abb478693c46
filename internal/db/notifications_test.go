package db

import (
	"context"
	"testing"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestTryIssueAction(t *testing.T) {
	ctx := context.Background()

	t.Run("an outstanding gate reports false without error", func(t *testing.T) {
		issue := &model.NotificationIssue{
			ID:     stringPtr("issue-1"),
			Method: "chgsp",
			Relations: []model.NotificationRelation{
				{
					LogicDependence: model.LogicAnd,
					IsActive:        true,
					Pending:         []model.PendingNotification{{}},
				},
			},
		}
		ran, err := TryIssueAction(ctx, nil, issue)
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("an unknown method reports false without error", func(t *testing.T) {
		issue := &model.NotificationIssue{
			ID:     stringPtr("issue-2"),
			Method: "nosuch",
			Relations: []model.NotificationRelation{
				{
					LogicDependence: model.LogicOr,
					IsActive:        true,
					Accepted:        []model.AcceptedNotification{{}},
				},
			},
		}
		ran, err := TryIssueAction(ctx, nil, issue)
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("the dispatch table names only the supported methods", func(t *testing.T) {
		assert.Len(t, issueActions, 2)
		assert.Contains(t, issueActions, "chgsp")
		assert.Contains(t, issueActions, "chglb")
	})
}
