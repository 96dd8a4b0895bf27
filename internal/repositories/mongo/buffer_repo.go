package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eureka-edu/studybuddy/internal/models"
)

type BufferRepository interface {
	InsertTurn(ctx context.Context, b *models.TurnBuffer) error
	UpdateSTT(ctx context.Context, sessionID string, turnIndex int64, transcript string, confidence float64, status string) error
	UpdateLLM(ctx context.Context, sessionID string, turnIndex int64, response string, status string, processingMS int64) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnBuffer, error)
}

type bufferRepo struct {
	col *mongo.Collection
}

func NewBufferRepo(db *mongo.Database) BufferRepository {
	return &bufferRepo{col: db.Collection("turn_buffer")}
}

func (r *bufferRepo) InsertTurn(ctx context.Context, b *models.TurnBuffer) error {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}
	if b.ExpiresAt.IsZero() {
		// The TTL index reaps stale pipeline rows after a day.
		b.ExpiresAt = b.Timestamp.Add(24 * time.Hour)
	}
	_, err := r.col.InsertOne(ctx, b)
	return err
}

func (r *bufferRepo) UpdateSTT(ctx context.Context, sessionID string, turnIndex int64, transcript string, confidence float64, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "turn_index": turnIndex},
		bson.M{"$set": bson.M{
			"transcript":     transcript,
			"stt_confidence": confidence,
			"stt_status":     status,
		}},
	)
	return err
}

func (r *bufferRepo) UpdateLLM(ctx context.Context, sessionID string, turnIndex int64, response string, status string, processingMS int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "turn_index": turnIndex},
		bson.M{"$set": bson.M{
			"llm_response":       response,
			"llm_status":         status,
			"processing_time_ms": processingMS,
		}},
	)
	return err
}

func (r *bufferRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnBuffer, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "turn_index", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TurnBuffer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
