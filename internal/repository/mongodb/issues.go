// Package mongodb реализует хранилища проблем и комментариев поверх MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
	"fix-my-city/internal/query"
	"fix-my-city/internal/repository"
)

const (
	IssuesCollection   = "issues"
	CommentsCollection = "comments"
)

var (
	_ repository.IssueRepository   = (*IssueRepo)(nil)
	_ repository.CommentRepository = (*CommentRepo)(nil)
)

type IssueRepo struct {
	collection *mongo.Collection
}

func NewIssueRepo(db *mongo.Database) *IssueRepo {
	return &IssueRepo{collection: db.Collection(IssuesCollection)}
}

func (r *IssueRepo) Insert(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, issue); err != nil {
		return storageError("insert issue", err)
	}
	return nil
}

func (r *IssueRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, storageError("find issue", err)
	}
	return &issue, nil
}

func (r *IssueRepo) Find(ctx context.Context, req query.Request) ([]models.Issue, error) {
	filter, err := filterToBSON(req)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(sortToBSON(req.Sort)).
		SetSkip(req.Skip())
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError("find issues", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, storageError("decode issues", err)
	}
	return issues, nil
}

func (r *IssueRepo) Count(ctx context.Context, req query.Request) (int64, error) {
	filter, err := filterToBSON(req)
	if err != nil {
		return 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storageError("count issues", err)
	}
	return total, nil
}

// Replace записывает документ, только если его версия не изменилась с момента чтения.
func (r *IssueRepo) Replace(ctx context.Context, issue *models.Issue, expectedVersion int64) error {
	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": issue.ID, "version": expectedVersion},
		issue,
	)
	if err != nil {
		return storageError("replace issue", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Ничего не совпало: документ удалён или версия уже другая
	exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": issue.ID}, options.Count().SetLimit(1))
	if err != nil {
		return storageError("check issue", err)
	}
	if exists == 0 {
		return errs.ErrNotFound
	}
	return errs.ErrVersionConflict
}

func (r *IssueRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageError("delete issue", err)
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, storageError("list issue ids", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageError("decode issue id", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, storageError("iterate issue ids", err)
	}
	return ids, nil
}

func (r *IssueRepo) Ping(ctx context.Context) error {
	if err := r.collection.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storageError("ping", err)
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", errs.ErrStorage, op, err)
}
