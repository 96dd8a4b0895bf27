package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TurnBuffer tracks one voice turn while it moves through the
// transcribe -> respond pipeline. Rows expire via the TTL index.
type TurnBuffer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	TurnIndex int64              `bson:"turn_index" json:"turn_index"`

	Transcript    string  `bson:"transcript,omitempty" json:"transcript,omitempty"`
	STTStatus     string  `bson:"stt_status" json:"stt_status"` // pending|processing|done|rejected|failed
	STTConfidence float64 `bson:"stt_confidence,omitempty" json:"stt_confidence,omitempty"`

	LLMStatus   string `bson:"llm_status" json:"llm_status"` // pending|processing|done|failed
	LLMResponse string `bson:"llm_response,omitempty" json:"llm_response,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // TTL index key
}
