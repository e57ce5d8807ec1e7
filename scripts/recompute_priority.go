package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"fix-my-city/internal/config"
	"fix-my-city/internal/database"
	"fix-my-city/internal/repository/mongodb"
	"fix-my-city/internal/services"
)

// Пересчёт рейтинга всех проблем. Запускать по расписанию:
// без записи рейтинг не убывает с возрастом проблемы.
func main() {
	cfg := config.Load()
	log := cfg.NewLogger()

	db, err := database.NewMongoDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to connect to MongoDB")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	issuesCollection := db.Database.Collection(mongodb.IssuesCollection)

	// Міграція: документи без версії не пройдуть перевірку при записі
	result, err := issuesCollection.UpdateMany(
		ctx,
		bson.M{"version": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"version": int64(0)}},
	)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to backfill versions")
	}
	fmt.Printf("Добавлена версия для %d проблем\n", result.ModifiedCount)

	service := services.NewIssueService(
		mongodb.NewIssueRepo(db.Database),
		mongodb.NewCommentRepo(db.Database),
		log,
		services.WithMaxRetries(cfg.MaxWriteRetries),
	)

	updated, err := service.RecomputePriorities(ctx)
	if err != nil {
		log.WithError(err).Fatal("❌ Recompute failed")
	}

	fmt.Printf("Пересчитано %d проблем\n", updated)
}
