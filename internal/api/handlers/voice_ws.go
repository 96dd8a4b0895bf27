package handlers

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/providers/llm"
	"github.com/eureka-edu/studybuddy/internal/providers/stt"
	"github.com/eureka-edu/studybuddy/internal/providers/tts"
	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/tutor"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type VoiceWSHandler struct {
	sessions services.SessionService
	convos   services.ConversationService
	docs     services.DocumentService
	buffers  services.BufferService
	provider llm.Provider

	sttPrimary  stt.Provider
	sttFallback stt.Provider
	synth       tts.Synthesizer // native mode: synthesized PCM streamed to the client
	engine      tts.Engine      // classic mode: local playback engine

	redis    *redis.Client
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewVoiceWSHandler(
	sessions services.SessionService,
	convos services.ConversationService,
	docs services.DocumentService,
	buffers services.BufferService,
	provider llm.Provider,
	sttPrimary, sttFallback stt.Provider,
	synth tts.Synthesizer,
	engine tts.Engine,
	rdb *redis.Client,
	log *logrus.Logger,
) *VoiceWSHandler {
	return &VoiceWSHandler{
		sessions:    sessions,
		convos:      convos,
		docs:        docs,
		buffers:     buffers,
		provider:    provider,
		sttPrimary:  sttPrimary,
		sttFallback: sttFallback,
		synth:       synth,
		engine:      engine,
		redis:       rdb,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

// wsAudioSink streams synthesized audio to the client as base64 PCM frames.
// Play returns once the frame has been written; the client buffers playback.
type wsAudioSink struct {
	conn *wsConn
}

func (s *wsAudioSink) Play(ctx context.Context, samples []float32, sampleRate int) error {
	pcm := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		}
		if f < -1 {
			f = -1
		}
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(f*32767)))
	}
	return s.conn.writeJSON(gin.H{
		"type":        "audio",
		"sample_rate": sampleRate,
		"pcm_base64":  base64.StdEncoding.EncodeToString(pcm),
	})
}

type wsVoiceEvents struct {
	conn *wsConn
}

func (e *wsVoiceEvents) OnStateChange(s tutor.VoiceState) {
	_ = e.conn.writeJSON(gin.H{"type": "state", "state": string(s)})
}

func (e *wsVoiceEvents) OnTranscript(text string) {
	_ = e.conn.writeJSON(gin.H{"type": "transcript", "text": text})
}

type voiceClientMsg struct {
	Type        string `json:"type"` // audio_chunk|endpoint|end_session
	AudioBase64 string `json:"audio_base64"`
}

func (h *VoiceWSHandler) SessionWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "VoiceWSHandler.SessionWS", "forbidden", nil))
		return
	}
	if sess.Mode != "voice" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VoiceWSHandler.SessionWS", "session is not a voice session", nil))
		return
	}

	mode := models.ModeAccess(contextString(c, "mode_access"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := h.speechBackend(mode, wc, sess.Language)
	if backend == nil {
		// One-time setup failure: the voice feature stays disabled for this
		// session, the socket closes cleanly.
		_ = wc.writeJSON(gin.H{"type": "voice_unavailable", "message": "spraak is niet beschikbaar op dit apparaat"})
		return
	}

	logEntry := h.log.WithField("session_id", sessionID)
	queue := tutor.NewSpeechQueue(backend, logEntry)

	orch := h.buildOrchestrator(ctx, wc, userID, sessionID, queue)

	voice := &tutor.VoiceOrchestrator{
		STT:      h.sttPrimary,
		Fallback: h.sttFallback,
		Turns:    orch,
		Speech:   queue,
		Events:   &wsVoiceEvents{conn: wc},
		Recorder: h.buffers.Recorder(sessionID),
		Config:   voiceConfigFor(sess.Language),
		Log:      logEntry,
	}
	if err := voice.Start(ctx); err != nil {
		_ = wc.writeJSON(gin.H{"type": "voice_unavailable", "message": "spraak is niet beschikbaar op dit apparaat"})
		return
	}
	defer voice.Close()

	conn.SetReadLimit(1 << 20)
	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}

		var msg voiceClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "invalid json"})
			continue
		}

		switch msg.Type {
		case "audio_chunk":
			frame, err := base64.StdEncoding.DecodeString(msg.AudioBase64)
			if err != nil {
				_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "invalid audio encoding"})
				continue
			}
			voice.PushAudio(frame)

		case "endpoint":
			voice.Endpoint()

		case "end_session":
			if _, err := h.sessions.End(ctx, sessionID); err != nil {
				logEntry.WithError(err).Warn("failed to end session on socket close")
			}
			return

		default:
			_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "unknown message type"})
		}
	}
}

// speechBackend picks the synthesis path for the student's access level.
// Native streams server-side synthesis to the client; classic drives the
// local playback engine.
func (h *VoiceWSHandler) speechBackend(mode models.ModeAccess, wc *wsConn, language string) tutor.Backend {
	if mode == models.ModeNative && h.synth != nil {
		return tutor.NewRemoteBackend(h.synth, &wsAudioSink{conn: wc})
	}
	if h.engine != nil {
		return tutor.NewEngineBackend(h.engine, language)
	}
	if h.synth != nil {
		return tutor.NewRemoteBackend(h.synth, &wsAudioSink{conn: wc})
	}
	return nil
}

func voiceConfigFor(language string) tutor.VoiceConfig {
	cfg := tutor.DefaultVoiceConfig()
	switch language {
	case "en":
		cfg.Language = "en-US"
	case "nl", "":
		cfg.Language = "nl-NL"
	default:
		cfg.Language = language
	}
	return cfg
}

func (h *VoiceWSHandler) buildOrchestrator(ctx context.Context, wc *wsConn, userID, sessionID string, queue *tutor.SpeechQueue) *tutor.Orchestrator {
	history := tutor.NewHistory()
	if rows, err := h.convos.ListBySession(ctx, userID, sessionID, 0); err == nil {
		for _, r := range rows {
			history.Append(tutor.Turn{
				ID:        r.ID,
				Speaker:   r.Speaker,
				Text:      r.Text,
				Timestamp: r.Timestamp,
			})
		}
	} else {
		h.log.WithError(err).Warn("failed to preload conversation history")
	}

	return &tutor.Orchestrator{
		LLM:     h.provider,
		History: history,
		Window:  tutor.DefaultWindow,
		ContextFn: func(ctx context.Context) (string, bool) {
			text, present, err := h.docs.StudyContext(ctx, userID)
			if err != nil {
				h.log.WithError(err).Warn("study context assembly failed")
				return "", false
			}
			return text, present
		},
		Publisher: &chatPublisher{conn: wc, redis: h.redis, sessionID: sessionID, log: h.log},
		Speech:    queue,
		Persist: func(ctx context.Context, t tutor.Turn) {
			if _, err := h.convos.Append(ctx, userID, sessionID, t.Speaker, t.Text, "voice"); err != nil {
				h.log.WithError(err).Warn("failed to persist turn")
			}
		},
		Log: h.log.WithField("session_id", sessionID),
	}
}
