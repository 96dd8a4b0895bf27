package tutor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTT struct {
	text string
	conf float64
	err  error

	mu    sync.Mutex
	calls int
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.text, f.conf, f.err
}

func (f *fakeSTT) Close() error { return nil }

type stateRecorder struct {
	mu          sync.Mutex
	states      []VoiceState
	transcripts []string
}

func (r *stateRecorder) OnStateChange(s VoiceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) OnTranscript(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts = append(r.transcripts, text)
}

func (r *stateRecorder) seen(want VoiceState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s == want {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func newVoice(sttP *fakeSTT, provider *fakeLLM, backend *recordingBackend, ev *stateRecorder) *VoiceOrchestrator {
	queue := NewSpeechQueue(backend, nil)
	orch := &Orchestrator{
		LLM:     provider,
		History: NewHistory(),
		Speech:  queue,
	}
	cfg := DefaultVoiceConfig()
	cfg.ListenWindow = 200 * time.Millisecond
	return &VoiceOrchestrator{
		STT:    sttP,
		Turns:  orch,
		Speech: queue,
		Events: ev,
		Config: cfg,
	}
}

func TestVoiceLoopFullTurn(t *testing.T) {
	sttP := &fakeSTT{text: "Wat is een aquaduct?", conf: 0.92}
	provider := &fakeLLM{chunks: []string{"Een waterbrug."}}
	backend := &recordingBackend{}
	ev := &stateRecorder{}
	v := newVoice(sttP, provider, backend, ev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, v.Start(ctx))
	defer v.Close()

	waitFor(t, func() bool { return v.State() == VoiceListening }, "listening")
	v.PushAudio([]byte("opname"))
	v.Endpoint()

	waitFor(t, func() bool {
		ev.mu.Lock()
		defer ev.mu.Unlock()
		return len(ev.transcripts) > 0
	}, "transcript")

	waitFor(t, func() bool {
		return len(backend.spoken()) > 0
	}, "playback")

	assert.Equal(t, []string{"Een waterbrug."}, backend.spoken())
	assert.True(t, ev.seen(VoiceTranscribing))
	assert.True(t, ev.seen(VoiceResponding))
	assert.True(t, ev.seen(VoiceSpeaking))

	// Listening resumes only after playback drained.
	waitFor(t, func() bool { return v.State() == VoiceListening }, "relisten")
}

func TestVoiceRejectsLowQualityTranscript(t *testing.T) {
	sttP := &fakeSTT{text: "de de de de de de", conf: 0.4}
	provider := &fakeLLM{chunks: []string{"zou niet mogen"}}
	backend := &recordingBackend{}
	ev := &stateRecorder{}
	v := newVoice(sttP, provider, backend, ev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, v.Start(ctx))
	defer v.Close()

	waitFor(t, func() bool { return v.State() == VoiceListening }, "listening")
	v.PushAudio([]byte("ruis"))
	v.Endpoint()

	waitFor(t, func() bool {
		sttP.mu.Lock()
		defer sttP.mu.Unlock()
		return sttP.calls > 0
	}, "transcription attempt")

	// The degenerate transcript never reaches the conversation.
	waitFor(t, func() bool { return v.State() == VoiceListening }, "relisten")
	provider.mu.Lock()
	assert.Equal(t, 0, provider.requests)
	provider.mu.Unlock()
	assert.Empty(t, ev.transcripts)
	assert.Empty(t, backend.spoken())
}

func TestVoiceFallsBackToSecondaryTranscriber(t *testing.T) {
	primary := &fakeSTT{err: context.DeadlineExceeded}
	fallback := &fakeSTT{text: "Hallo daar.", conf: 0.8}
	provider := &fakeLLM{chunks: []string{"Hallo!"}}
	backend := &recordingBackend{}
	ev := &stateRecorder{}
	v := newVoice(primary, provider, backend, ev)
	v.Fallback = fallback

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, v.Start(ctx))
	defer v.Close()

	waitFor(t, func() bool { return v.State() == VoiceListening }, "listening")
	v.PushAudio([]byte("opname"))
	v.Endpoint()

	waitFor(t, func() bool { return len(backend.spoken()) > 0 }, "playback")
	assert.Equal(t, []string{"Hallo!"}, backend.spoken())
}

func TestVoiceFallsBackWhenPrimaryTranscriptRejected(t *testing.T) {
	primary := &fakeSTT{text: "de de de de de de", conf: 0.4}
	fallback := &fakeSTT{text: "Wat is een aquaduct?", conf: 0.9}
	provider := &fakeLLM{chunks: []string{"Een waterbrug."}}
	backend := &recordingBackend{}
	ev := &stateRecorder{}
	v := newVoice(primary, provider, backend, ev)
	v.Fallback = fallback

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, v.Start(ctx))
	defer v.Close()

	waitFor(t, func() bool { return v.State() == VoiceListening }, "listening")
	v.PushAudio([]byte("opname"))
	v.Endpoint()

	waitFor(t, func() bool { return len(backend.spoken()) > 0 }, "playback")
	assert.Equal(t, []string{"Een waterbrug."}, backend.spoken())

	// The degenerate primary transcript triggers the fallback instead of
	// discarding the turn.
	fallback.mu.Lock()
	assert.Equal(t, 1, fallback.calls)
	fallback.mu.Unlock()

	ev.mu.Lock()
	assert.Contains(t, ev.transcripts, "Wat is een aquaduct?")
	ev.mu.Unlock()
}

func TestVoiceStartRequiresBackends(t *testing.T) {
	v := &VoiceOrchestrator{}
	err := v.Start(context.Background())
	require.Error(t, err)

	v = &VoiceOrchestrator{STT: &fakeSTT{}, Turns: &Orchestrator{}}
	err = v.Start(context.Background())
	require.Error(t, err)
}

func TestVoiceDropsFramesOutsideListening(t *testing.T) {
	v := &VoiceOrchestrator{}
	v.PushAudio([]byte("te vroeg"))

	v.mu.Lock()
	defer v.mu.Unlock()
	assert.Nil(t, v.frames)
}

func TestVoiceCloseDropsEverything(t *testing.T) {
	sttP := &fakeSTT{text: "Hallo"}
	provider := &fakeLLM{chunks: []string{"Hoi"}}
	backend := &recordingBackend{}
	ev := &stateRecorder{}
	v := newVoice(sttP, provider, backend, ev)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, v.Start(ctx))

	waitFor(t, func() bool { return v.State() == VoiceListening }, "listening")
	v.PushAudio([]byte("opname"))
	v.Close()

	assert.Equal(t, VoiceClosed, v.State())
	assert.False(t, v.Speech.Speaking())

	// Closed is terminal: frames are dropped and the state sticks.
	v.PushAudio([]byte("na sluiting"))
	assert.Equal(t, VoiceClosed, v.State())
}

func TestQualityThresholds(t *testing.T) {
	q := DefaultQualityThresholds()

	assert.True(t, q.Usable("Wat is een aquaduct?"))
	assert.False(t, q.Usable(""))
	assert.False(t, q.Usable("   "))
	assert.False(t, q.Usable("de de de de de de"))
	assert.False(t, q.Usable(strings.Repeat("woord ", 50)))

	// Long but punctuated text passes the length check.
	long := strings.Repeat("abc ", 80) + "."
	q2 := QualityThresholds{MaxUnpunctuatedLen: 240}
	assert.True(t, q2.Usable(long))
}
