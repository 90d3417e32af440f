package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	billsCollection = "bills"
)

// EnsureMongoIndexes creates the indexes the mongo repositories rely on:
// a unique index on user email and the owner/date index used for listing.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = db.Collection(billsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("owner_date"),
	})
	if err != nil {
		return fmt.Errorf("failed to create bills owner index: %w", err)
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// mongoTime truncates t to the millisecond precision BSON dates keep
func mongoTime(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}
