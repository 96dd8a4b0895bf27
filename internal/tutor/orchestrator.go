package tutor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/providers/llm"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type State string

const (
	StateIdle           State = "IDLE"
	StateAwaitingStream State = "AWAITING_STREAM"
	StateStreaming      State = "STREAMING"
	StateFinalized      State = "FINALIZED"
	StateFailed         State = "FAILED"
)

// Publisher receives every observable event of a turn. The partial buffer is
// published after every chunk; there is no batching.
type Publisher interface {
	PublishUserTurn(t Turn)
	PublishPartial(text string)
	PublishFinal(t Turn)
	PublishFailure(err error)
}

// Orchestrator drives one request/response cycle against the completion
// provider. One logical conversation per orchestrator; a newer Send wins the
// right to publish, an older in-flight stream keeps running but its output
// is discarded.
type Orchestrator struct {
	LLM       llm.Provider
	History   *History
	Window    int
	ContextFn func(ctx context.Context) (string, bool)
	Publisher Publisher
	Speech    *SpeechQueue
	Persist   func(ctx context.Context, t Turn)
	Log       *logrus.Entry

	mu         sync.Mutex
	state      State
	generation uint64
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == "" {
		return StateIdle
	}
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Send runs a full turn: append the user message, stream the completion,
// finalize the bot turn. The returned Turn is the finalized bot turn.
// A whitespace-only submission is rejected before any state transition.
func (o *Orchestrator) Send(ctx context.Context, text string) (Turn, error) {
	const op = "Orchestrator.Send"

	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, utils.E(utils.CodeInvalidArgument, op, "message is empty", nil)
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.state = StateAwaitingStream
	o.mu.Unlock()

	// The user turn lands in history before the request goes out, so it
	// survives a provider failure and the UI reflects it immediately.
	userTurn := Turn{
		ID:        uuid.NewString(),
		Speaker:   models.SpeakerUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	o.History.Append(userTurn)
	if o.Persist != nil {
		o.Persist(ctx, userTurn)
	}
	if o.current(gen) && o.Publisher != nil {
		o.Publisher.PublishUserTurn(userTurn)
	}

	req := o.buildRequest(ctx)
	chunks, errs := o.LLM.StreamAnswer(ctx, req)

	var buf strings.Builder
	for chunk := range chunks {
		if buf.Len() == 0 {
			o.setState(StateStreaming)
		}
		buf.WriteString(chunk)
		if o.current(gen) && o.Publisher != nil {
			o.Publisher.PublishPartial(buf.String())
		}
	}

	var streamErr error
	select {
	case streamErr = <-errs:
	default:
	}

	if streamErr != nil && buf.Len() == 0 {
		// Nothing arrived: the turn failed. The user turn stays in history;
		// resending is the recovery path.
		o.setState(StateFailed)
		if o.Log != nil {
			o.Log.WithError(streamErr).Error("completion stream failed before first chunk")
		}
		if o.current(gen) && o.Publisher != nil {
			o.Publisher.PublishFailure(streamErr)
		}
		return Turn{}, utils.E(utils.CodeUnavailable, op, "completion provider failed", streamErr)
	}
	if streamErr != nil && o.Log != nil {
		// Mid-stream abort: treat the partial buffer as a degraded but
		// completed turn.
		o.Log.WithError(streamErr).Warn("completion stream aborted mid-response")
	}

	botTurn := Turn{
		ID:        uuid.NewString(),
		Speaker:   models.SpeakerBot,
		Text:      buf.String(),
		Timestamp: time.Now().UTC(),
	}
	o.History.Append(botTurn)
	o.setState(StateFinalized)
	if o.Persist != nil {
		o.Persist(ctx, botTurn)
	}
	if o.current(gen) && o.Publisher != nil {
		o.Publisher.PublishFinal(botTurn)
	}

	if o.Speech != nil && strings.TrimSpace(botTurn.Text) != "" {
		o.Speech.Enqueue(botTurn.Text)
	}
	return botTurn, nil
}

func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation == gen
}

func (o *Orchestrator) buildRequest(ctx context.Context) llm.Request {
	var studyContext string
	var present bool
	if o.ContextFn != nil {
		studyContext, present = o.ContextFn(ctx)
	}

	window := o.History.Window(o.Window)
	msgs := make([]llm.Message, 0, len(window))
	for _, t := range window {
		role := llm.RoleUser
		if t.Speaker == models.SpeakerBot {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}

	return llm.Request{
		SystemInstruction: SystemInstruction(studyContext, present),
		Messages:          msgs,
	}
}
