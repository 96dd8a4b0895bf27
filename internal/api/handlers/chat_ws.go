package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/providers/llm"
	"github.com/eureka-edu/studybuddy/internal/services"
	"github.com/eureka-edu/studybuddy/internal/tutor"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

// apologyText is shown to the student when the completion provider fails.
const apologyText = "Oeps, even een foutje. Probeer het zo nog eens!"

type ChatWSHandler struct {
	sessions services.SessionService
	convos   services.ConversationService
	docs     services.DocumentService
	provider llm.Provider
	redis    *redis.Client
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewChatWSHandler(sessions services.SessionService, convos services.ConversationService, docs services.DocumentService, provider llm.Provider, rdb *redis.Client, log *logrus.Logger) *ChatWSHandler {
	return &ChatWSHandler{
		sessions: sessions,
		convos:   convos,
		docs:     docs,
		provider: provider,
		redis:    rdb,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

type wireTurn struct {
	ID        string    `json:"id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func toWireTurn(t tutor.Turn) wireTurn {
	return wireTurn{
		ID:        t.ID,
		Speaker:   string(t.Speaker),
		Text:      t.Text,
		Timestamp: t.Timestamp,
	}
}

// chatPublisher forwards orchestrator events to the socket and mirrors them
// to the session's Redis response channel for other listeners.
type chatPublisher struct {
	conn      *wsConn
	redis     *redis.Client
	sessionID string
	log       *logrus.Logger
}

func (p *chatPublisher) send(v any) {
	if err := p.conn.writeJSON(v); err != nil {
		p.log.WithError(err).Debug("chat socket write failed")
	}
	if p.redis != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = p.redis.Publish(context.Background(), "session:"+p.sessionID+":response", b).Err()
		}
	}
}

func (p *chatPublisher) PublishUserTurn(t tutor.Turn) {
	p.send(gin.H{"type": "user_turn", "turn": toWireTurn(t)})
}

func (p *chatPublisher) PublishPartial(text string) {
	p.send(gin.H{"type": "llm_chunk", "text": text})
}

func (p *chatPublisher) PublishFinal(t tutor.Turn) {
	p.send(gin.H{"type": "llm_complete", "turn": toWireTurn(t)})
}

func (p *chatPublisher) PublishFailure(err error) {
	p.send(gin.H{"type": "error", "code": utils.CodeUnavailable, "message": apologyText})
}

type chatClientMsg struct {
	Type string `json:"type"` // message|end_session
	Text string `json:"text"`
}

func (h *ChatWSHandler) SessionWS(c *gin.Context) {
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
		writeError(c, utils.E(utils.CodeForbidden, "ChatWSHandler.SessionWS", "forbidden", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := h.buildOrchestrator(ctx, wc, sess.UserID, sess.SessionID)

	conn.SetReadLimit(64 << 10)
	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}

		var msg chatClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "invalid json"})
			continue
		}

		switch msg.Type {
		case "message":
			if _, err := orch.Send(ctx, msg.Text); err != nil {
				// failure already published; invalid input gets a direct reply
				if utils.IsCode(err, utils.CodeInvalidArgument) {
					_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "message is empty"})
				}
			}

		case "end_session":
			if _, err := h.sessions.End(ctx, sessionID); err != nil {
				h.log.WithError(err).Warn("failed to end session on socket close")
			}
			return

		default:
			_ = wc.writeJSON(gin.H{"type": "error", "code": utils.CodeInvalidArgument, "message": "unknown message type"})
		}
	}
}

func (h *ChatWSHandler) buildOrchestrator(ctx context.Context, wc *wsConn, userID, sessionID string) *tutor.Orchestrator {
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
		Persist: func(ctx context.Context, t tutor.Turn) {
			source := "text"
			if _, err := h.convos.Append(ctx, userID, sessionID, t.Speaker, t.Text, source); err != nil {
				h.log.WithError(err).Warn("failed to persist turn")
			}
		},
		Log: h.log.WithField("session_id", sessionID),
	}
}
