package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TutorSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`

	Mode     string `bson:"mode" json:"mode"`         // text|voice
	Language string `bson:"language" json:"language"` // nl|en
	Status   string `bson:"status" json:"status"`     // active|ended

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	DurationSeconds int64 `bson:"duration_seconds" json:"duration_seconds"`
}
