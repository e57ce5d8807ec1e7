package handlers

import (
	"context"
	"net/http"

	"fix-my-city/internal/middleware"
	"fix-my-city/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CommentHandler struct {
	errorResponder
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService, log *logrus.Logger, exposeErrors bool) *CommentHandler {
	return &CommentHandler{
		errorResponder: errorResponder{log: log, exposeInfo: exposeErrors},
		commentService: commentService,
	}
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comments, err := h.commentService.List(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(comments),
		"data":    comments,
	})
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	var req services.AddCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.commentService.Add(ctx, c.Param("id"), req, middleware.CurrentPrincipal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, comment)
}
