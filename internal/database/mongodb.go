// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"fix-my-city/internal/config"
	"fix-my-city/internal/repository/mongodb"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      *logrus.Logger
}

func NewMongoDB(cfg *config.Config, log *logrus.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	// Настройки клиента
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	// Проверка подключения
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ошибка пинга MongoDB: %w", err)
	}

	log.WithField("database", cfg.DatabaseName).Info("Успешно подключен к MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.DatabaseName),
		log:      log,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("ошибка отключения от MongoDB: %w", err)
	}

	m.log.Info("Отключен от MongoDB")
	return nil
}

// IssueIndexes - индексы коллекции проблем.
// ВАЖНО: bson.D вместо map, порядок ключей в составном индексе значим
func IssueIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Геопространственный индекс для поиска рядом
			Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}},
		},
		{
			// Сортировка по умолчанию
			Keys: bson.D{
				{Key: "priority", Value: -1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "createdBy", Value: 1}},
		},
	}
}

func CommentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "issueId", Value: 1},
				{Key: "createdAt", Value: 1},
			},
		},
	}
}

// CreateIndexes создает индексы для всех коллекций
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	issues := m.Database.Collection(mongodb.IssuesCollection)
	if _, err := issues.Indexes().CreateMany(ctx, IssueIndexes()); err != nil {
		return fmt.Errorf("ошибка создания индексов для проблем: %w", err)
	}

	comments := m.Database.Collection(mongodb.CommentsCollection)
	if _, err := comments.Indexes().CreateMany(ctx, CommentIndexes()); err != nil {
		return fmt.Errorf("ошибка создания индексов для комментариев: %w", err)
	}

	m.log.Info("✅ Индексы успешно созданы для всех коллекций")
	return nil
}
