// Package repository описывает хранилища проблем и комментариев.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/models"
	"fix-my-city/internal/query"
)

// IssueRepository хранит проблемы. Любая запись существующего документа
// идёт через Replace с проверкой версии.
type IssueRepository interface {
	// Insert сохраняет новую проблему и проставляет ей ID.
	Insert(ctx context.Context, issue *models.Issue) error

	// FindByID возвращает errs.ErrNotFound, если документа нет.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)

	// Find применяет фильтр, сортировку и пагинацию запроса.
	Find(ctx context.Context, req query.Request) ([]models.Issue, error)

	// Count считает записи по фильтру без пагинации.
	Count(ctx context.Context, req query.Request) (int64, error)

	// Replace записывает issue, только если в хранилище лежит версия expectedVersion.
	// При несовпадении возвращает errs.ErrVersionConflict, при отсутствии - errs.ErrNotFound.
	// В случае успеха issue.Version уже должна быть expectedVersion+1.
	Replace(ctx context.Context, issue *models.Issue, expectedVersion int64) error

	// Delete возвращает errs.ErrNotFound, если удалять нечего.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// IDs возвращает идентификаторы всех проблем, для обслуживающих задач.
	IDs(ctx context.Context) ([]primitive.ObjectID, error)

	Ping(ctx context.Context) error
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	// ListByIssue возвращает комментарии от старых к новым.
	ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Comment, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}
