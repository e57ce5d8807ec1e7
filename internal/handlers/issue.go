// internal/handlers/issue.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"fix-my-city/internal/middleware"
	"fix-my-city/internal/query"
	"fix-my-city/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

type IssueHandler struct {
	errorResponder
	issueService *services.IssueService
}

func NewIssueHandler(issueService *services.IssueService, log *logrus.Logger, exposeErrors bool) *IssueHandler {
	return &IssueHandler{
		errorResponder: errorResponder{log: log, exposeInfo: exposeErrors},
		issueService:   issueService,
	}
}

// GetIssues - GET /api/issues с фильтрами, сортировкой и пагинацией
func (h *IssueHandler) GetIssues(c *gin.Context) {
	req, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, err := h.issueService.Query(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if len(req.Select) == 0 {
		respondList(c, page.Items, len(page.Items), page.Pagination)
		return
	}

	projected := make([]map[string]any, 0, len(page.Items))
	for i := range page.Items {
		item, err := query.Project(&page.Items[i], req.Select)
		if err != nil {
			h.respondError(c, err)
			return
		}
		projected = append(projected, item)
	}
	respondList(c, projected, len(projected), page.Pagination)
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issue, err := h.issueService.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, issue)
}

func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req services.CreateIssueInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issue, err := h.issueService.Create(ctx, req, middleware.CurrentPrincipal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, issue)
}

func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	var req services.UpdateIssueInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issue, err := h.issueService.Update(ctx, c.Param("id"), req, middleware.CurrentPrincipal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, issue)
}

func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.issueService.Delete(ctx, c.Param("id"), middleware.CurrentPrincipal(c)); err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}

// UpvoteIssue - повторный вызов тем же пользователем снимает голос
func (h *IssueHandler) UpvoteIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issue, err := h.issueService.ToggleUpvote(ctx, c.Param("id"), middleware.CurrentPrincipal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, issue)
}
