package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/models"
)

type CommentRepo struct {
	mutex    sync.RWMutex
	comments map[primitive.ObjectID][]models.Comment
}

func NewCommentRepo() *CommentRepo {
	return &CommentRepo{comments: make(map[primitive.ObjectID][]models.Comment)}
}

func (r *CommentRepo) Insert(_ context.Context, comment *models.Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	r.comments[comment.IssueID] = append(r.comments[comment.IssueID], *comment)
	return nil
}

func (r *CommentRepo) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]models.Comment{}, r.comments[issueID]...), nil
}

func (r *CommentRepo) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	n := int64(len(r.comments[issueID]))
	delete(r.comments, issueID)
	return n, nil
}
