package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/models"
	mongorepo "github.com/eureka-edu/studybuddy/internal/repositories/mongo"
	"github.com/eureka-edu/studybuddy/internal/tutor"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type BufferService interface {
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnBuffer, error)

	// Recorder returns a per-session view implementing the voice pipeline's
	// turn recorder. Writes are best effort and never block a turn.
	Recorder(sessionID string) tutor.TurnRecorder
}

type bufferService struct {
	buffers mongorepo.BufferRepository
	log     *logrus.Logger
}

func NewBufferService(buffers mongorepo.BufferRepository, log *logrus.Logger) BufferService {
	return &bufferService{buffers: buffers, log: log}
}

func (s *bufferService) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnBuffer, error) {
	const op = "BufferService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.buffers.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list turn buffer", err)
	}
	return rows, nil
}

func (s *bufferService) Recorder(sessionID string) tutor.TurnRecorder {
	return &sessionRecorder{svc: s, sessionID: sessionID}
}

type sessionRecorder struct {
	svc       *bufferService
	sessionID string
}

func (r *sessionRecorder) BeginTurn(ctx context.Context, turnIndex int64) {
	err := r.svc.buffers.InsertTurn(ctx, &models.TurnBuffer{
		SessionID: r.sessionID,
		TurnIndex: turnIndex,
		STTStatus: "processing",
		LLMStatus: "pending",
	})
	if err != nil {
		r.svc.log.WithError(err).WithField("session_id", r.sessionID).Warn("turn buffer insert failed")
	}
}

func (r *sessionRecorder) RecordTranscript(ctx context.Context, turnIndex int64, text string, confidence float64, status string) {
	err := r.svc.buffers.UpdateSTT(ctx, r.sessionID, turnIndex, text, confidence, status)
	if err != nil {
		r.svc.log.WithError(err).WithField("session_id", r.sessionID).Warn("turn buffer stt update failed")
	}
}

func (r *sessionRecorder) RecordResponse(ctx context.Context, turnIndex int64, response, status string, processingMS int64) {
	err := r.svc.buffers.UpdateLLM(ctx, r.sessionID, turnIndex, response, status, processingMS)
	if err != nil {
		r.svc.log.WithError(err).WithField("session_id", r.sessionID).Warn("turn buffer llm update failed")
	}
}
