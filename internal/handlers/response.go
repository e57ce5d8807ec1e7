package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fix-my-city/internal/errs"
	"fix-my-city/internal/query"
)

// errorResponder переводит ошибки сервисов в HTTP ответы.
// Подробности сбоев хранилища показываются только в development.
type errorResponder struct {
	log        *logrus.Logger
	exposeInfo bool
}

func (r errorResponder) respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Server Error"

	switch {
	case errors.Is(err, errs.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Not authorized to access this route"
	case errors.Is(err, errs.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, errs.ErrNotFound):
		status, message = http.StatusNotFound, "Issue not found"
	case errors.Is(err, errs.ErrVersionConflict):
		status, message = http.StatusConflict, "Issue was modified concurrently, please retry"
	default:
		if r.exposeInfo {
			message = err.Error()
		}
	}

	entry := r.log.WithError(err).WithFields(logrus.Fields{
		"status":     status,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("request_id"),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondList(c *gin.Context, data any, count int, pagination query.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      count,
		"pagination": pagination,
		"data":       data,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request data: " + err.Error(),
	})
}
