package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fix-my-city/internal/config"
	"fix-my-city/internal/errs"
	"fix-my-city/internal/middleware"
	"fix-my-city/internal/repository/memory"
	"fix-my-city/internal/services"
	"fix-my-city/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Count      int             `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
	Data       json.RawMessage `json:"data"`
}

type issueDTO struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	Priority      float64 `json:"priority"`
	UpvoteCount   int     `json:"upvoteCount"`
	CreatedBy     string  `json:"createdBy"`
	StatusHistory []struct {
		Status    string `json:"status"`
		UpdatedBy string `json:"updatedBy"`
	} `json:"statusHistory"`
	Upvotes []struct {
		User string `json:"user"`
	} `json:"upvotes"`
}

type downStorage struct{}

func (downStorage) Ping(context.Context) error { return errors.New("down") }

type testServer struct {
	router http.Handler
	jwt    *auth.JWTManager
}

func newTestServer(t *testing.T, mutate func(*RouterDeps)) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Env:            "test",
		AllowedOrigins: []string{"http://localhost:3000"},
		DevUserID:      "dev-test-uid",
		DevUserRole:    "admin",
	}

	issues := memory.NewIssueRepo()
	comments := memory.NewCommentRepo()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	deps := RouterDeps{
		Config:         cfg,
		Log:            log,
		IssueService:   services.NewIssueService(issues, comments, log),
		CommentService: services.NewCommentService(issues, comments, log),
		JWTManager:     jwtManager,
		Storage:        issues,
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &testServer{router: SetupRouter(deps), jwt: jwtManager}
}

func (s *testServer) do(t *testing.T, method, path, user, role string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := s.jwt.GenerateToken(user, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decodeIssue(t *testing.T, env envelope) issueDTO {
	t.Helper()
	var issue issueDTO
	require.NoError(t, json.Unmarshal(env.Data, &issue))
	return issue
}

var potholeBody = map[string]any{
	"title":       "Pothole",
	"description": "deep",
	"category":    "Roads",
	"location":    map[string]any{"coordinates": []float64{-122.1, 37.4}},
	"address":     "Main St",
}

func TestRouter_PotholeScenario(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/issues", "U1", "citizen", potholeBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	issue := decodeIssue(t, env)
	assert.Equal(t, "reported", issue.Status)
	assert.InDelta(t, 0, issue.Priority, 0.001)
	assert.Len(t, issue.StatusHistory, 1)
	assert.Equal(t, "U1", issue.CreatedBy)

	path := "/api/issues/" + issue.ID

	w, env = s.do(t, http.MethodPost, path+"/upvote", "U2", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	issue = decodeIssue(t, env)
	assert.InDelta(t, 1, issue.Priority, 0.001)
	require.Len(t, issue.Upvotes, 1)
	assert.Equal(t, "U2", issue.Upvotes[0].User)

	w, env = s.do(t, http.MethodPut, path, "ADM", "admin", map[string]any{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	issue = decodeIssue(t, env)
	require.Len(t, issue.StatusHistory, 2)
	assert.Equal(t, "resolved", issue.StatusHistory[1].Status)
	assert.Equal(t, "ADM", issue.StatusHistory[1].UpdatedBy)

	w, env = s.do(t, http.MethodPost, path+"/upvote", "U2", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	issue = decodeIssue(t, env)
	assert.InDelta(t, 0, issue.Priority, 0.001)
	assert.Empty(t, issue.Upvotes)

	w, env = s.do(t, http.MethodGet, path, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resolved", decodeIssue(t, env).Status)
}

func TestRouter_ErrorStatuses(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodPost, "/api/issues", "U1", "citizen", potholeBody)
	require.Equal(t, http.StatusCreated, w.Code)
	_, env := s.do(t, http.MethodGet, "/api/issues", "", "", nil)
	var list []issueDTO
	require.NoError(t, json.Unmarshal(env.Data, &list))
	path := "/api/issues/" + list[0].ID

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		role   string
		body   any
		want   int
	}{
		{"create without token", http.MethodPost, "/api/issues", "", "", potholeBody, http.StatusUnauthorized},
		{"create invalid category", http.MethodPost, "/api/issues", "U1", "user", map[string]any{
			"title": "x", "description": "y", "category": "Potholes",
			"location": map[string]any{"coordinates": []float64{1, 2}}, "address": "a",
		}, http.StatusBadRequest},
		{"create malformed json", http.MethodPost, "/api/issues", "U1", "user", "not an object", http.StatusBadRequest},
		{"update by citizen", http.MethodPut, path, "U1", "citizen", map[string]any{"status": "closed"}, http.StatusForbidden},
		{"delete by worker", http.MethodDelete, path, "W1", "worker", nil, http.StatusForbidden},
		{"get malformed id", http.MethodGet, "/api/issues/zzz", "", "", nil, http.StatusNotFound},
		{"get missing", http.MethodGet, "/api/issues/65f000000000000000000001", "", "", nil, http.StatusNotFound},
		{"upvote missing", http.MethodPost, "/api/issues/65f000000000000000000001/upvote", "U2", "user", nil, http.StatusNotFound},
		{"bad page", http.MethodGet, "/api/issues?page=0", "", "", nil, http.StatusBadRequest},
		{"bad operator", http.MethodGet, "/api/issues?priority[ne]=1", "", "", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nothing", "", "", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := s.do(t, tc.method, tc.path, tc.user, tc.role, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestRouter_ListPaginationAndSelect(t *testing.T) {
	s := newTestServer(t, nil)

	for i := 0; i < 12; i++ {
		body := map[string]any{
			"title":       fmt.Sprintf("issue %d", i),
			"description": "d",
			"category":    []string{"Roads", "Parks"}[i%2],
			"location":    map[string]any{"coordinates": []float64{30.5, 50.4}, "address": "Kyiv"},
		}
		w, _ := s.do(t, http.MethodPost, "/api/issues", "U1", "user", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := s.do(t, http.MethodGet, "/api/issues?category=Roads&limit=4&page=1", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, env.Count)
	assert.JSONEq(t, `{"next":{"page":2,"limit":4}}`, string(env.Pagination))

	w, env = s.do(t, http.MethodGet, "/api/issues?category=Roads&limit=4&page=2", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Count)
	assert.JSONEq(t, `{"prev":{"page":1,"limit":4}}`, string(env.Pagination))

	w, env = s.do(t, http.MethodGet, "/api/issues?select=title&limit=1", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var projected []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &projected))
	require.Len(t, projected, 1)
	assert.Len(t, projected[0], 2)
	assert.Contains(t, projected[0], "id")
	assert.Contains(t, projected[0], "title")

	w, env = s.do(t, http.MethodGet, "/api/issues?near=30.5,50.4&radius=100", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, env.Count)

	w, env = s.do(t, http.MethodGet, "/api/issues?near=24.0,49.8", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestRouter_DeleteAndComments(t *testing.T) {
	s := newTestServer(t, nil)

	_, env := s.do(t, http.MethodPost, "/api/issues", "U1", "citizen", potholeBody)
	path := "/api/issues/" + decodeIssue(t, env).ID

	w, _ := s.do(t, http.MethodPost, path+"/comments", "", "", map[string]any{"text": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(t, http.MethodPost, path+"/comments", "U2", "user", map[string]any{"text": "same here"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodGet, path+"/comments", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Count)

	w, env = s.do(t, http.MethodDelete, path, "ADM", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{}`, string(env.Data))

	w, _ = s.do(t, http.MethodGet, path, "", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodGet, path+"/comments", "", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreateIsRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Hour)
	defer limiter.Close()

	s := newTestServer(t, func(d *RouterDeps) { d.CreateLimiter = limiter })

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/issues", "U1", "user", potholeBody)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, env := s.do(t, http.MethodPost, "/api/issues", "U1", "user", potholeBody)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, env.Success)

	// лимит считается на пользователя
	w, _ = s.do(t, http.MethodPost, "/api/issues", "U2", "user", potholeBody)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_DevBypass(t *testing.T) {
	s := newTestServer(t, func(d *RouterDeps) {
		d.Config.Env = "development"
		d.Config.BypassAuth = true
	})

	w, env := s.do(t, http.MethodPost, "/api/issues", "", "", potholeBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "dev-test-uid", decodeIssue(t, env).CreatedBy)
}

func TestRouter_HealthRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/", "/health", "/ready", "/live"} {
		w, _ := s.do(t, http.MethodGet, path, "", "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w, _ := s.do(t, http.MethodGet, "/", "", "", nil)
	assert.Contains(t, w.Body.String(), `"environment":"test"`)

	down := newTestServer(t, func(d *RouterDeps) { d.Storage = downStorage{} })
	w, _ = down.do(t, http.MethodGet, "/ready", "", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRespondError_HidesStorageDetailOutsideDevelopment(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	storageErr := fmt.Errorf("%w: connection refused", errs.ErrStorage)

	for _, expose := range []bool{false, true} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		errorResponder{log: log, exposeInfo: expose}.respondError(c, storageErr)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		if expose {
			assert.Contains(t, w.Body.String(), "connection refused")
		} else {
			assert.NotContains(t, w.Body.String(), "connection refused")
			assert.Contains(t, w.Body.String(), "Server Error")
		}
	}
}
