package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"fix-my-city/internal/models"
	"fix-my-city/internal/repository"
	"fix-my-city/pkg/validator"
)

type CommentService struct {
	issues   repository.IssueRepository
	comments repository.CommentRepository
	log      *logrus.Logger
	now      func() time.Time
}

func NewCommentService(issues repository.IssueRepository, comments repository.CommentRepository, log *logrus.Logger) *CommentService {
	return &CommentService{
		issues:   issues,
		comments: comments,
		log:      log,
		now:      time.Now,
	}
}

func (s *CommentService) Add(ctx context.Context, issueID string, in AddCommentInput, principal *models.Principal) (*models.Comment, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	oid, err := parseID(issueID)
	if err != nil {
		return nil, err
	}

	in.Text = cleanText(in.Text)
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.issues.FindByID(ctx, oid); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		IssueID:   oid,
		UserID:    principal.ID,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"issue_id":   oid.Hex(),
		"comment_id": comment.ID.Hex(),
		"user_id":    principal.ID,
	}).Info("Comment added")

	return comment, nil
}

func (s *CommentService) List(ctx context.Context, issueID string) ([]models.Comment, error) {
	oid, err := parseID(issueID)
	if err != nil {
		return nil, err
	}
	if _, err := s.issues.FindByID(ctx, oid); err != nil {
		return nil, err
	}
	return s.comments.ListByIssue(ctx, oid)
}
