package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/eureka-edu/studybuddy/internal/models"
)

type ConversationRepository interface {
	Insert(ctx context.Context, t *models.ConversationTurn) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error)
	LatestByUser(ctx context.Context, userID string, limit int) ([]models.ConversationTurn, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Insert(ctx context.Context, t *models.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// ListBySession returns turns oldest first so callers can replay the
// conversation in order. Limit <= 0 means no limit.
func (r *conversationRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error) {
	q := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.ConversationTurn
	err := q.Find(&rows).Error
	return rows, err
}

func (r *conversationRepo) LatestByUser(ctx context.Context, userID string, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
