package handlers

import (
	"context"
	"net/http"
	"time"

	"fix-my-city/internal/config"
	"fix-my-city/internal/middleware"
	"fix-my-city/internal/models"
	"fix-my-city/internal/services"
	"fix-my-city/pkg/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const AppVersion = "1.0.0"

// Pinger проверяет доступность хранилища для /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Config         *config.Config
	Log            *logrus.Logger
	IssueService   *services.IssueService
	CommentService *services.CommentService
	JWTManager     *auth.JWTManager
	// CreateLimiter ограничивает создание проблем; nil - без ограничения
	CreateLimiter middleware.Limiter
	Storage       Pinger
}

// SetupRouter настраивает все маршруты
func SetupRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	startedAt := time.Now()

	router := gin.New()

	// Глобальные middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Log))

	// CORS настройки для поддержки frontend
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	exposeErrors := cfg.IsDevelopment()
	issueHandler := NewIssueHandler(deps.IssueService, deps.Log, exposeErrors)
	commentHandler := NewCommentHandler(deps.CommentService, deps.Log, exposeErrors)

	var devPrincipal *models.Principal
	if cfg.AuthBypassed() {
		role, ok := models.FromString(cfg.DevUserRole)
		if !ok {
			role = models.RoleAdmin
		}
		devPrincipal = &models.Principal{ID: cfg.DevUserID, Role: role}
		deps.Log.WithFields(logrus.Fields{"user_id": devPrincipal.ID, "role": devPrincipal.Role}).
			Warn("⚠️  Authentication bypass enabled (development only)")
	}
	protect := middleware.AuthMiddleware(deps.JWTManager, devPrincipal)

	setupHealthRoutes(router, cfg, deps.Storage, startedAt)

	issues := router.Group("/api/issues")
	{
		issues.GET("", issueHandler.GetIssues)
		issues.GET("/:id", issueHandler.GetIssue)

		create := []gin.HandlerFunc{protect}
		if deps.CreateLimiter != nil {
			create = append(create, middleware.RateLimit(deps.CreateLimiter, deps.Log))
		}
		create = append(create, issueHandler.CreateIssue)
		issues.POST("", create...)

		issues.PUT("/:id", protect, middleware.RequireAnyRole(models.RoleAdmin, models.RoleWorker), issueHandler.UpdateIssue)
		issues.DELETE("/:id", protect, middleware.RequireRole(models.RoleAdmin), issueHandler.DeleteIssue)
		issues.POST("/:id/upvote", protect, issueHandler.UpvoteIssue)

		issues.GET("/:id/comments", commentHandler.GetComments)
		issues.POST("/:id/comments", protect, commentHandler.AddComment)
	}

	// 404 handler для неизвестных маршрутов
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return router
}

// setupHealthRoutes настраивает маршруты health check и информации о сервере
func setupHealthRoutes(router *gin.Engine, cfg *config.Config, storage Pinger, startedAt time.Time) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Welcome to Fix My City API",
			"version":     AppVersion,
			"environment": cfg.Env,
		})
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).String(),
			"version":   AppVersion,
		})
	})

	// Readiness check: хранилище должно отвечать
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if storage != nil {
			if err := storage.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})

	// Liveness check для Kubernetes
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})
}
