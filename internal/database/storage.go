package database

import (
	"context"
	"fmt"
	"time"

	"fix-my-city/internal/config"
	"fix-my-city/internal/repository"
	"fix-my-city/internal/repository/memory"
	"fix-my-city/internal/repository/mongodb"

	"github.com/sirupsen/logrus"
)

// Storage - выбранная реализация хранилищ и функция закрытия соединений.
type Storage struct {
	Issues   repository.IssueRepository
	Comments repository.CommentRepository
	Close    func() error
}

// OpenStorage выбирает хранилище по cfg.Storage: "mongo" (по умолчанию) или "memory".
func OpenStorage(cfg *config.Config, log *logrus.Logger) (*Storage, error) {
	switch cfg.Storage {
	case "memory":
		log.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		return &Storage{
			Issues:   memory.NewIssueRepo(),
			Comments: memory.NewCommentRepo(),
			Close:    func() error { return nil },
		}, nil

	case "mongo", "":
		db, err := NewMongoDB(cfg, log)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
		defer cancel()
		if err := db.CreateIndexes(ctx); err != nil {
			log.WithError(err).Warn("⚠️  Failed to create some indexes")
		}

		return &Storage{
			Issues:   mongodb.NewIssueRepo(db.Database),
			Comments: mongodb.NewCommentRepo(db.Database),
			Close:    db.Close,
		}, nil
	}

	return nil, fmt.Errorf("неизвестное хранилище %q", cfg.Storage)
}
