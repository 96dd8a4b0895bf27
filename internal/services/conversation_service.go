package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/eureka-edu/studybuddy/internal/models"
	pgrepo "github.com/eureka-edu/studybuddy/internal/repositories/postgres"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

// Embedder produces a semantic vector for a turn. Optional; turns are stored
// without an embedding when no embedder is configured or the call fails.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type ConversationService interface {
	Append(ctx context.Context, userID, sessionID string, speaker models.Speaker, text, source string) (*models.ConversationTurn, error)
	ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.ConversationTurn, error)
}

type conversationService struct {
	turns    pgrepo.ConversationRepository
	embedder Embedder
	log      *logrus.Logger
}

func NewConversationService(turns pgrepo.ConversationRepository, embedder Embedder, log *logrus.Logger) ConversationService {
	return &conversationService{turns: turns, embedder: embedder, log: log}
}

func (s *conversationService) Append(ctx context.Context, userID, sessionID string, speaker models.Speaker, text, source string) (*models.ConversationTurn, error) {
	const op = "ConversationService.Append"

	if userID == "" || sessionID == "" || text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, session_id, and text are required", nil)
	}
	switch speaker {
	case models.SpeakerUser, models.SpeakerBot:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown speaker", nil)
	}

	md, _ := json.Marshal(map[string]string{"source": source})

	row := &models.ConversationTurn{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now().UTC(),
		Metadata:  datatypes.JSON(md),
	}

	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, text); err != nil {
			s.log.WithError(err).Warn("turn embedding failed, storing without vector")
		} else if len(vec) > 0 {
			row.Embedding = pgvector.NewVector(vec)
		}
	}

	if err := s.turns.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert conversation turn", err)
	}
	return row, nil
}

func (s *conversationService) ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.ConversationTurn, error) {
	const op = "ConversationService.ListBySession"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}

	rows, err := s.turns.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list turns", err)
	}

	// A session belongs to exactly one user.
	out := rows[:0]
	for _, r := range rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
