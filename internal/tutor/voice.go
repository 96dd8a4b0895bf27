package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eureka-edu/studybuddy/internal/providers/stt"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type VoiceState string

const (
	VoiceIdle         VoiceState = "IDLE"
	VoiceListening    VoiceState = "LISTENING"
	VoiceTranscribing VoiceState = "TRANSCRIBING"
	VoiceResponding   VoiceState = "RESPONDING"
	VoiceSpeaking     VoiceState = "SPEAKING"
	VoiceClosed       VoiceState = "CLOSED"
)

// QualityThresholds reject transcripts that look like recognizer noise.
// The values are tuning knobs, not load-bearing constants.
type QualityThresholds struct {
	MaxUnpunctuatedLen int     // reject very long transcripts with no sentence punctuation
	MinWords           int     // uniqueness check only applies from this many words
	MinUniqueRatio     float64 // unique words / total words
}

func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MaxUnpunctuatedLen: 240,
		MinWords:           6,
		MinUniqueRatio:     0.34,
	}
}

// Usable reports whether a transcript should advance the conversation.
func (q QualityThresholds) Usable(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if q.MaxUnpunctuatedLen > 0 && len([]rune(t)) > q.MaxUnpunctuatedLen &&
		!strings.ContainsAny(t, ".!?") {
		return false
	}

	words := strings.Fields(strings.ToLower(t))
	if q.MinWords > 0 && len(words) >= q.MinWords {
		unique := map[string]struct{}{}
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < q.MinUniqueRatio {
			return false
		}
	}
	return true
}

// VoiceEvents is how the transport layer observes the state machine.
type VoiceEvents interface {
	OnStateChange(s VoiceState)
	OnTranscript(text string)
}

// TurnRecorder persists per-turn pipeline status (the TTL'd turn buffer).
type TurnRecorder interface {
	BeginTurn(ctx context.Context, turnIndex int64)
	RecordTranscript(ctx context.Context, turnIndex int64, text string, confidence float64, status string)
	RecordResponse(ctx context.Context, turnIndex int64, response, status string, processingMS int64)
}

type VoiceConfig struct {
	Language     string        // BCP 47, ex: "nl-NL"
	MimeType     string        // capture container, ex: "audio/webm"
	ListenWindow time.Duration // bounded capture duration per turn
	Quality      QualityThresholds
}

func DefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		Language:     "nl-NL",
		MimeType:     "audio/webm",
		ListenWindow: 12 * time.Second,
		Quality:      DefaultQualityThresholds(),
	}
}

// VoiceOrchestrator runs the continuous capture -> transcribe -> respond ->
// speak loop. Turn-taking is strictly half-duplex: capture frames are only
// accepted while LISTENING, and listening never resumes before the speech
// queue reports idle.
type VoiceOrchestrator struct {
	STT      stt.Provider
	Fallback stt.Provider
	Turns    *Orchestrator
	Speech   *SpeechQueue
	Events   VoiceEvents
	Recorder TurnRecorder
	Config   VoiceConfig
	Log      *logrus.Entry

	mu        sync.Mutex
	state     VoiceState
	frames    []byte
	turnIndex int64

	endpoint chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start validates required capabilities and launches the loop. A missing
// backend is a one-time setup failure; the voice feature stays disabled.
func (v *VoiceOrchestrator) Start(ctx context.Context) error {
	const op = "VoiceOrchestrator.Start"

	if v.STT == nil && v.Fallback == nil {
		return utils.E(utils.CodeUnavailable, op, "no transcription backend available", nil)
	}
	if v.Turns == nil {
		return utils.E(utils.CodeInternal, op, "turn orchestrator is not configured", nil)
	}
	if v.Speech == nil {
		return utils.E(utils.CodeUnavailable, op, "no synthesis backend available", nil)
	}
	if v.Config.ListenWindow <= 0 {
		v.Config = DefaultVoiceConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	v.cancel = cancel
	v.endpoint = make(chan struct{}, 1)
	v.done = make(chan struct{})
	v.mu.Unlock()

	go v.run(ctx)
	return nil
}

func (v *VoiceOrchestrator) State() VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == "" {
		return VoiceIdle
	}
	return v.state
}

func (v *VoiceOrchestrator) setState(s VoiceState) {
	v.mu.Lock()
	if v.state == VoiceClosed {
		v.mu.Unlock()
		return
	}
	v.state = s
	v.mu.Unlock()

	if v.Events != nil {
		v.Events.OnStateChange(s)
	}
}

// PushAudio accepts one capture frame. Frames arriving outside LISTENING are
// dropped; that is the half-duplex rule, not an error.
func (v *VoiceOrchestrator) PushAudio(frame []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != VoiceListening {
		return
	}
	v.frames = append(v.frames, frame...)
}

// Endpoint signals that the speaker finished; capture for this turn ends.
func (v *VoiceOrchestrator) Endpoint() {
	v.mu.Lock()
	ep := v.endpoint
	v.mu.Unlock()
	if ep == nil {
		return
	}
	select {
	case ep <- struct{}{}:
	default:
	}
}

// Close tears the session down from any state: capture stops, pending
// speech is dropped, accumulators reset. In-flight provider calls may still
// complete; their results are discarded.
func (v *VoiceOrchestrator) Close() {
	v.mu.Lock()
	cancel := v.cancel
	v.state = VoiceClosed
	v.frames = nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if v.Speech != nil {
		v.Speech.Clear()
	}
	if v.Events != nil {
		v.Events.OnStateChange(VoiceClosed)
	}
}

func (v *VoiceOrchestrator) run(ctx context.Context) {
	defer close(v.done)

	for {
		if ctx.Err() != nil {
			return
		}

		// LISTENING: capture until endpoint signal or the bounded window.
		v.mu.Lock()
		v.frames = nil
		// drain a stale endpoint from the previous turn
		select {
		case <-v.endpoint:
		default:
		}
		v.mu.Unlock()
		v.setState(VoiceListening)

		timer := time.NewTimer(v.Config.ListenWindow)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-v.endpoint:
			timer.Stop()
		case <-timer.C:
		}

		v.mu.Lock()
		audio := v.frames
		v.frames = nil
		v.mu.Unlock()

		if len(audio) == 0 {
			continue
		}

		// TRANSCRIBING
		v.setState(VoiceTranscribing)
		v.mu.Lock()
		v.turnIndex++
		idx := v.turnIndex
		v.mu.Unlock()
		if v.Recorder != nil {
			v.Recorder.BeginTurn(ctx, idx)
		}

		text, conf, err := v.transcribe(ctx, audio)
		if err != nil || !v.Config.Quality.Usable(text) {
			if err != nil && v.Log != nil {
				v.Log.WithError(err).Warn("transcription failed")
			}
			if v.Recorder != nil {
				v.Recorder.RecordTranscript(ctx, idx, text, conf, "rejected")
			}
			continue
		}
		if v.Recorder != nil {
			v.Recorder.RecordTranscript(ctx, idx, text, conf, "done")
		}
		if v.Events != nil {
			v.Events.OnTranscript(text)
		}

		// RESPONDING: the full response accumulates before it is spoken;
		// the turn orchestrator enqueues it on finalize.
		v.setState(VoiceResponding)
		start := time.Now()
		turn, err := v.Turns.Send(ctx, text)
		if err != nil {
			if v.Recorder != nil {
				v.Recorder.RecordResponse(ctx, idx, "", "failed", time.Since(start).Milliseconds())
			}
			continue
		}
		if v.Recorder != nil {
			v.Recorder.RecordResponse(ctx, idx, turn.Text, "done", time.Since(start).Milliseconds())
		}

		// SPEAKING: hold off capture until playback fully drains.
		v.setState(VoiceSpeaking)
		if err := v.Speech.WaitIdle(ctx); err != nil {
			return
		}
	}
}

// transcribe runs the primary provider and, when it fails or its transcript
// does not pass the quality heuristics, the fallback. The caller re-checks
// quality on whatever comes back.
func (v *VoiceOrchestrator) transcribe(ctx context.Context, audio []byte) (string, float64, error) {
	var firstErr error

	if v.STT != nil {
		text, conf, err := v.STT.Transcribe(ctx, audio, v.Config.MimeType, v.Config.Language)
		if err == nil && v.Config.Quality.Usable(text) {
			return text, conf, nil
		}
		firstErr = err
		if v.Log != nil {
			if err != nil {
				v.Log.WithError(err).Warn("primary transcription failed, trying fallback")
			} else {
				v.Log.WithField("len", len(text)).Warn("primary transcript rejected, trying fallback")
			}
		}
	}

	if v.Fallback != nil {
		text, conf, err := v.Fallback.Transcribe(ctx, audio, v.Config.MimeType, v.Config.Language)
		if err == nil {
			return text, conf, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = errors.New("no usable transcript")
	}
	return "", 0, firstErr
}
