// Package client - типизированный REST клиент для API проблем.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/models"
	"fix-my-city/internal/query"
	"fix-my-city/internal/services"
)

type Client struct {
	http *resty.Client
}

func New(baseURL, token string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &Client{http: rc}
}

// Envelope - общий формат ответа сервера.
type Envelope[T any] struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Count      int              `json:"count,omitempty"`
	Pagination query.Pagination `json:"pagination"`
	Data       T                `json:"data"`
}

// APIError - ответ сервера с success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap позволяет проверять ошибки через errors.Is(err, errs.ErrNotFound).
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return errs.ErrValidation
	case http.StatusUnauthorized:
		return errs.ErrUnauthenticated
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrVersionConflict
	}
	return nil
}

func (c *Client) ListIssues(ctx context.Context, params url.Values) (*Envelope[[]models.Issue], error) {
	var out Envelope[[]models.Issue]
	if err := c.do(ctx, http.MethodGet, "/api/issues", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	var out Envelope[models.Issue]
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) CreateIssue(ctx context.Context, in services.CreateIssueInput) (*models.Issue, error) {
	var out Envelope[models.Issue]
	if err := c.do(ctx, http.MethodPost, "/api/issues", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id string, in services.UpdateIssueInput) (*models.Issue, error) {
	var out Envelope[models.Issue]
	if err := c.do(ctx, http.MethodPut, "/api/issues/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	var out Envelope[map[string]any]
	return c.do(ctx, http.MethodDelete, "/api/issues/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) ToggleUpvote(ctx context.Context, id string) (*models.Issue, error) {
	var out Envelope[models.Issue]
	if err := c.do(ctx, http.MethodPost, "/api/issues/"+url.PathEscape(id)+"/upvote", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ListComments(ctx context.Context, id string) ([]models.Comment, error) {
	var out Envelope[[]models.Comment]
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(id)+"/comments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) AddComment(ctx context.Context, id, text string) (*models.Comment, error) {
	var out Envelope[models.Comment]
	body := services.AddCommentInput{Text: text}
	if err := c.do(ctx, http.MethodPost, "/api/issues/"+url.PathEscape(id)+"/comments", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, result any) error {
	var failure Envelope[any]

	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&failure)
	if params != nil {
		req.SetQueryParamsFromValues(params)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		message := failure.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: message}
	}
	return nil
}

// IsNotFound - удобная проверка для CLI.
func IsNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
