package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fix-my-city/internal/models"
)

type CommentRepo struct {
	collection *mongo.Collection
}

func NewCommentRepo(db *mongo.Database) *CommentRepo {
	return &CommentRepo{collection: db.Collection(CommentsCollection)}
}

func (r *CommentRepo) Insert(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return storageError("insert comment", err)
	}
	return nil
}

func (r *CommentRepo) ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"issueId": issueID}, opts)
	if err != nil {
		return nil, storageError("find comments", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, storageError("decode comments", err)
	}
	return comments, nil
}

func (r *CommentRepo) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"issueId": issueID})
	if err != nil {
		return 0, storageError("delete comments", err)
	}
	return result.DeletedCount, nil
}
