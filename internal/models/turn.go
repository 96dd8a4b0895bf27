package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Speaker is the closed set of conversation parties. String "role" tags only
// exist at the completion-provider boundary.
type Speaker string

const (
	SpeakerUser Speaker = "USER"
	SpeakerBot  Speaker = "BOT"
)

type ConversationTurn struct {
	ID        string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    string          `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID string          `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Speaker   Speaker         `gorm:"column:speaker;type:text" json:"speaker"`
	Text      string          `gorm:"column:text;type:text" json:"text"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"embedding"`
	Timestamp time.Time       `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (ConversationTurn) TableName() string { return "conversation_turns" }
