package config

import (
	"context"
	"fmt"
	"time"

	"billing_api/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoPingTimeout = 10 * time.Second

// ConnectMongo connects to MongoDB, verifies the primary is reachable and
// makes sure the indexes the repositories depend on exist.
func ConnectMongo(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mongo configuration: %w", err)
	}

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
		err = client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			break
		}
		if attempt == maxRetries {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("unable to reach MongoDB after %d attempts: %w", maxRetries, err)
		}
		logger.Warn("failed to reach MongoDB",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryInterval),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, retryInterval); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.Database))

	db := client.Database(cfg.Database)
	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}
