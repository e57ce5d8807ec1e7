package database

import (
	"context"
	"fmt"
	"time"

	"fix-my-city/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedis подключается к Redis. Пустой адрес означает, что Redis не используется.
func NewRedis(cfg *config.Config, log *logrus.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	log.WithField("addr", cfg.RedisAddr).Info("Подключен к Redis")
	return client, nil
}
