package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
	"fix-my-city/internal/priority"
	"fix-my-city/internal/query"
	"fix-my-city/internal/repository"
	"fix-my-city/pkg/validator"
)

const DefaultMaxWriteRetries = 10

type IssueService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	policy     TransitionPolicy
	log        *logrus.Logger
	maxRetries int
	now        func() time.Time
}

type Option func(*IssueService)

func WithClock(now func() time.Time) Option {
	return func(s *IssueService) { s.now = now }
}

func WithTransitionPolicy(policy TransitionPolicy) Option {
	return func(s *IssueService) { s.policy = policy }
}

func WithMaxRetries(n int) Option {
	return func(s *IssueService) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func NewIssueService(issues repository.IssueRepository, comments repository.CommentRepository, log *logrus.Logger, opts ...Option) *IssueService {
	s := &IssueService{
		issues:     issues,
		comments:   comments,
		policy:     PermissiveTransitions{},
		log:        log,
		maxRetries: DefaultMaxWriteRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePage - одна страница выдачи и общее число записей по фильтру.
type IssuePage struct {
	Items      []models.Issue
	Total      int64
	Pagination query.Pagination
}

func (s *IssueService) Create(ctx context.Context, in CreateIssueInput, principal *models.Principal) (*models.Issue, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	in.normalize()
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if err := checkCoordinates(in.Location.Coordinates); err != nil {
		return nil, err
	}
	if in.Location.Address == "" {
		return nil, fmt.Errorf("%w: location.address is required", errs.ErrValidation)
	}

	now := s.now()
	issue := &models.Issue{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    models.NewPoint(in.Location.Coordinates[0], in.Location.Coordinates[1], in.Location.Address),
		Photos:      in.Photos,
		Upvotes:     models.UpvoteSet{},
		CreatedBy:   principal.ID,
		CreatedAt:   now,
	}
	if issue.Photos == nil {
		issue.Photos = []models.Photo{}
	}
	issue.RecordStatus(models.StatusReported, models.InitialStatusNotes, principal.ID, now)
	prepareForWrite(issue, now)

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"issue_id": issue.ID.Hex(),
		"user_id":  principal.ID,
		"category": issue.Category,
	}).Info("Issue created")

	return issue, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.issues.FindByID(ctx, oid)
}

func (s *IssueService) Query(ctx context.Context, req query.Request) (*IssuePage, error) {
	items, err := s.issues.Find(ctx, req)
	if err != nil {
		return nil, err
	}
	total, err := s.issues.Count(ctx, req)
	if err != nil {
		return nil, err
	}

	return &IssuePage{
		Items:      items,
		Total:      total,
		Pagination: query.Paginate(req.Page, req.Limit, total),
	}, nil
}

// Update доступен только сотрудникам и администраторам. Смена статуса
// добавляет запись в журнал до применения остальных полей.
func (s *IssueService) Update(ctx context.Context, id string, in UpdateIssueInput, principal *models.Principal) (*models.Issue, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	if !principal.Role.CanTriage() {
		return nil, fmt.Errorf("%w: role %s cannot update issues", errs.ErrForbidden, principal.Role)
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	if in.Title != nil && *in.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", errs.ErrValidation)
	}
	if in.Description != nil && *in.Description == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", errs.ErrValidation)
	}
	if in.Location != nil {
		if err := checkCoordinates(in.Location.Coordinates); err != nil {
			return nil, err
		}
	}

	var from models.IssueStatus
	issue, err := s.mutate(ctx, oid, func(issue *models.Issue, now time.Time) error {
		from = issue.Status
		return s.applyUpdate(issue, in, principal, now)
	})
	if err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"issue_id": issue.ID.Hex(),
		"user_id":  principal.ID,
		"role":     principal.Role,
	})
	if issue.Status != from {
		entry = entry.WithFields(logrus.Fields{"from": from, "to": issue.Status})
	}
	entry.Info("Issue updated")

	return issue, nil
}

func (s *IssueService) applyUpdate(issue *models.Issue, in UpdateIssueInput, principal *models.Principal, now time.Time) error {
	if in.Status != nil && *in.Status != issue.Status {
		if !s.policy.Allow(issue.Status, *in.Status, principal.Role) {
			return fmt.Errorf("%w: transition %q -> %q is not allowed", errs.ErrForbidden, issue.Status, *in.Status)
		}
		notes := in.StatusNotes
		if notes == "" {
			notes = fmt.Sprintf("Status updated to %s", *in.Status)
		}
		issue.RecordStatus(*in.Status, notes, principal.ID, now)
	}

	if in.Title != nil {
		issue.Title = *in.Title
	}
	if in.Description != nil {
		issue.Description = *in.Description
	}
	if in.Category != nil {
		issue.Category = *in.Category
	}
	if in.Location != nil {
		address := in.Location.Address
		if address == "" {
			address = issue.Location.Address
		}
		issue.Location = models.NewPoint(in.Location.Coordinates[0], in.Location.Coordinates[1], address)
	}
	if in.Photos != nil {
		issue.Photos = in.Photos
	}
	if in.AssignedTo != nil {
		issue.AssignedTo = *in.AssignedTo
	}
	return nil
}

// Delete удаляет проблему вместе с журналом и голосами, затем её комментарии.
// Ошибка очистки комментариев только логируется.
func (s *IssueService) Delete(ctx context.Context, id string, principal *models.Principal) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	if !principal.Role.CanDelete() {
		return fmt.Errorf("%w: only admin can delete issues", errs.ErrForbidden)
	}

	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, oid); err != nil {
		return err
	}

	fields := logrus.Fields{"issue_id": oid.Hex(), "user_id": principal.ID}
	if s.comments != nil {
		n, err := s.comments.DeleteByIssue(ctx, oid)
		if err != nil {
			s.log.WithFields(fields).WithError(err).Warn("Failed to delete issue comments")
		}
		fields["comments_deleted"] = n
	}
	s.log.WithFields(fields).Info("Issue deleted")
	return nil
}

// ToggleUpvote добавляет голос пользователя или снимает уже поставленный.
func (s *IssueService) ToggleUpvote(ctx context.Context, id string, principal *models.Principal) (*models.Issue, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var upvoted bool
	issue, err := s.mutate(ctx, oid, func(issue *models.Issue, now time.Time) error {
		upvoted = issue.ToggleUpvote(principal.ID, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"issue_id": issue.ID.Hex(),
		"user_id":  principal.ID,
		"upvoted":  upvoted,
		"upvotes":  issue.UpvoteCount,
	}).Debug("Upvote toggled")

	return issue, nil
}

// RecomputePriorities перезаписывает каждую проблему, чтобы рейтинг учитывал текущий возраст.
func (s *IssueService) RecomputePriorities(ctx context.Context) (int, error) {
	ids, err := s.issues.IDs(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		_, err := s.mutate(ctx, id, func(*models.Issue, time.Time) error { return nil })
		if errors.Is(err, errs.ErrNotFound) {
			continue // удалена во время прохода
		}
		if err != nil {
			return updated, err
		}
		updated++
	}

	s.log.WithField("updated", updated).Info("Priorities recomputed")
	return updated, nil
}

// mutate читает проблему, применяет изменение и пишет с проверкой версии.
// При конфликте версий цикл повторяется на свежей копии, не более maxRetries раз.
func (s *IssueService) mutate(ctx context.Context, id primitive.ObjectID, apply func(*models.Issue, time.Time) error) (*models.Issue, error) {
	for attempt := 1; ; attempt++ {
		issue, err := s.issues.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		now := s.now()
		if err := apply(issue, now); err != nil {
			return nil, err
		}

		expected := issue.Version
		prepareForWrite(issue, now)

		err = s.issues.Replace(ctx, issue, expected)
		if err == nil {
			return issue, nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return nil, err
		}
		if attempt >= s.maxRetries {
			return nil, fmt.Errorf("issue %s: %d attempts: %w", id.Hex(), attempt, err)
		}

		s.log.WithFields(logrus.Fields{"issue_id": id.Hex(), "attempt": attempt}).Debug("Version conflict, retrying")
	}
}

// prepareForWrite пересчитывает производные поля перед каждой записью.
func prepareForWrite(issue *models.Issue, now time.Time) {
	issue.UpvoteCount = issue.Upvotes.Len()
	issue.Priority = priority.Compute(issue.UpvoteCount, issue.CreatedAt, now)
	issue.UpdatedAt = now
	issue.Version++
}
