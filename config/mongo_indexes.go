package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buffers := db.Collection("turn_buffer")
	_, err := buffers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// expire rows at expires_at
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_expires_at").
				SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "turn_index", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_turn").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_session_ts"),
		},
	})
	if err != nil {
		return err
	}

	sessions := db.Collection("tutor_sessions")
	_, err = sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_created"),
		},
	})
	return err
}
