// cmd/server/main.go - Fix My City Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Внутренние пакеты проекта
	"fix-my-city/internal/config"
	"fix-my-city/internal/database"
	"fix-my-city/internal/handlers"
	"fix-my-city/internal/middleware"
	"fix-my-city/internal/services"
	"fix-my-city/pkg/auth"
	"fix-my-city/pkg/validator"

	// Внешние зависимости
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := cfg.NewLogger()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	printStartupInfo(cfg, log)

	storage, err := database.OpenStorage(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to open storage")
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.WithError(err).Warn("⚠️  Error closing storage")
		}
	}()

	// Инициализируем валидатор
	validator.Init()

	// Инициализируем JWT менеджер
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiration)*time.Hour)

	// Инициализируем сервисы
	issueOpts := []services.Option{services.WithMaxRetries(cfg.MaxWriteRetries)}
	if cfg.StrictTransitions {
		issueOpts = append(issueOpts, services.WithTransitionPolicy(services.ForwardOnlyTransitions()))
	}
	issueService := services.NewIssueService(storage.Issues, storage.Comments, log, issueOpts...)
	commentService := services.NewCommentService(storage.Issues, storage.Comments, log)

	limiter, closeLimiter := setupRateLimiter(cfg, log)
	defer closeLimiter()

	router := handlers.SetupRouter(handlers.RouterDeps{
		Config:         cfg,
		Log:            log,
		IssueService:   issueService,
		CommentService: commentService,
		JWTManager:     jwtManager,
		CreateLimiter:  limiter,
		Storage:        storage.Issues,
	})

	// Создаем HTTP сервер
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Запускаем сервер в горутине
	go func() {
		log.Infof("🚀 Fix My City Backend v%s starting on http://%s:%s", handlers.AppVersion, cfg.Host, cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("❌ Server failed to start")
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")

	// Graceful shutdown с таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("⚠️  Server forced to shutdown")
	} else {
		log.Info("✅ Server gracefully stopped")
	}
}

// setupRateLimiter выбирает Redis, если он настроен, иначе лимит в памяти процесса.
func setupRateLimiter(cfg *config.Config, log *logrus.Logger) (middleware.Limiter, func()) {
	if !cfg.RateLimitEnabled {
		return nil, func() {}
	}

	client, err := database.NewRedis(cfg, log)
	if err != nil {
		log.WithError(err).Warn("⚠️  Redis unavailable, using in-memory rate limiter")
	}
	if client != nil {
		limiter := middleware.NewRedisRateLimiter(client, "fixmycity:create-issue", cfg.RateLimitRequests, cfg.RateLimitWindow)
		return limiter, func() { _ = client.Close() }
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	return limiter, limiter.Close
}

// printStartupInfo выводит информацию о запуске сервера
func printStartupInfo(cfg *config.Config, log *logrus.Logger) {
	log.WithFields(logrus.Fields{
		"version":      handlers.AppVersion,
		"environment":  cfg.Env,
		"host":         cfg.Host,
		"port":         cfg.Port,
		"storage":      cfg.Storage,
		"database":     cfg.DatabaseName,
		"cors_origins": cfg.AllowedOrigins,
		"rate_limit":   fmt.Sprintf("%d per %s", cfg.RateLimitRequests, cfg.RateLimitWindow),
		"strict":       cfg.StrictTransitions,
	}).Info("🏙️  Fix My City Backend Server")
}
