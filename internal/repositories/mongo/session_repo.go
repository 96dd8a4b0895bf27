package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.TutorSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.TutorSession, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.TutorSession, error)
	End(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int64) error
	SetStatus(ctx context.Context, sessionID, status string) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("tutor_sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.TutorSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.TutorSession, error) {
	var s models.TutorSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.TutorSession, error) {
	if limit <= 0 {
		limit = 50
	}

	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TutorSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) End(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"status":           "ended",
			"ended_at":         endedAt.UTC(),
			"duration_seconds": durationSeconds,
		}},
	)
	return err
}

func (r *sessionRepo) SetStatus(ctx context.Context, sessionID, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"status": status}},
	)
	return err
}
