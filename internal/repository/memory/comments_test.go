package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/models"
)

func TestCommentRepo(t *testing.T) {
	repo := NewCommentRepo()
	ctx := context.Background()
	issueID := primitive.NewObjectID()

	for _, text := range []string{"first", "second"} {
		c := &models.Comment{IssueID: issueID, UserID: "u1", Text: text, CreatedAt: base}
		require.NoError(t, repo.Insert(ctx, c))
		assert.False(t, c.ID.IsZero())
	}

	list, err := repo.ListByIssue(ctx, issueID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)

	n, err := repo.DeleteByIssue(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = repo.ListByIssue(ctx, issueID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
