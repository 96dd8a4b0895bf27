package tutor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/providers/llm"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

// fakeLLM replays a fixed chunk sequence, optionally ending with an error.
type fakeLLM struct {
	chunks []string
	err    error

	mu       sync.Mutex
	lastReq  llm.Request
	requests int
}

func (f *fakeLLM) StreamAnswer(ctx context.Context, req llm.Request) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.lastReq = req
	f.requests++
	f.mu.Unlock()

	out := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, c := range f.chunks {
			out <- c
		}
		if f.err != nil {
			errs <- f.err
		}
	}()
	return out, errs
}

func (f *fakeLLM) Close() error { return nil }

type recordingPublisher struct {
	mu       sync.Mutex
	user     []Turn
	partials []string
	finals   []Turn
	failures []error
}

func (p *recordingPublisher) PublishUserTurn(t Turn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = append(p.user, t)
}

func (p *recordingPublisher) PublishPartial(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partials = append(p.partials, text)
}

func (p *recordingPublisher) PublishFinal(t Turn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finals = append(p.finals, t)
}

func (p *recordingPublisher) PublishFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, err)
}

func TestSendStreamsAndFinalizes(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"Hel", "lo ", "there"}}
	pub := &recordingPublisher{}
	o := &Orchestrator{
		LLM:       provider,
		History:   NewHistory(),
		Publisher: pub,
	}

	botTurn, err := o.Send(context.Background(), "Hoi!")
	require.NoError(t, err)

	assert.Equal(t, "Hello there", botTurn.Text)
	assert.Equal(t, models.SpeakerBot, botTurn.Speaker)
	assert.Equal(t, StateFinalized, o.State())

	// The partial buffer grows monotonically, one publish per chunk.
	assert.Equal(t, []string{"Hel", "Hello ", "Hello there"}, pub.partials)

	require.Len(t, pub.user, 1)
	assert.Equal(t, "Hoi!", pub.user[0].Text)
	require.Len(t, pub.finals, 1)
	assert.Equal(t, "Hello there", pub.finals[0].Text)

	// Both turns landed in history.
	assert.Equal(t, 2, o.History.Len())
}

func TestSendRejectsBlankInput(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"x"}}
	o := &Orchestrator{LLM: provider, History: NewHistory()}

	_, err := o.Send(context.Background(), "   \n\t ")

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Equal(t, 0, o.History.Len())
	assert.Equal(t, 0, provider.requests)
}

func TestSendFailureBeforeFirstChunk(t *testing.T) {
	provider := &fakeLLM{err: errors.New("connection refused")}
	pub := &recordingPublisher{}
	o := &Orchestrator{LLM: provider, History: NewHistory(), Publisher: pub}

	_, err := o.Send(context.Background(), "Hoi!")

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
	assert.Equal(t, StateFailed, o.State())

	// The user turn survives the failure; resending is the recovery path.
	assert.Equal(t, 1, o.History.Len())
	require.Len(t, pub.failures, 1)
	assert.Empty(t, pub.finals)
}

func TestSendMidStreamAbortFinalizesPartial(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"Gedeeltelijk "}, err: errors.New("stream reset")}
	pub := &recordingPublisher{}
	o := &Orchestrator{LLM: provider, History: NewHistory(), Publisher: pub}

	botTurn, err := o.Send(context.Background(), "Hoi!")

	require.NoError(t, err)
	assert.Equal(t, "Gedeeltelijk ", botTurn.Text)
	assert.Equal(t, StateFinalized, o.State())
	assert.Empty(t, pub.failures)
	require.Len(t, pub.finals, 1)
}

func TestSendEnqueuesSpeechOnFinalize(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"Lees dit voor."}}
	backend := &recordingBackend{}
	queue := NewSpeechQueue(backend, nil)
	o := &Orchestrator{LLM: provider, History: NewHistory(), Speech: queue}

	_, err := o.Send(context.Background(), "Hoi!")
	require.NoError(t, err)

	require.NoError(t, queue.WaitIdle(context.Background()))
	assert.Equal(t, []string{"Lees dit voor."}, backend.spoken())
}

func TestSendRequestCarriesWindowAndRoles(t *testing.T) {
	provider := &fakeLLM{chunks: []string{"ok"}}
	o := &Orchestrator{LLM: provider, History: NewHistory(), Window: 10}

	o.History.Append(Turn{Speaker: models.SpeakerBot, Text: "Welkom!"})

	_, err := o.Send(context.Background(), "Wat zijn aquaducten?")
	require.NoError(t, err)

	msgs := provider.lastReq.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleAssistant, msgs[0].Role)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Equal(t, "Wat zijn aquaducten?", msgs[1].Content)
	assert.Contains(t, provider.lastReq.SystemInstruction, "StudyBuddy")
}
