package tutor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend vocalizes a single unit of text and returns when playback has
// finished or failed. A failed unit is skipped, never retried.
type Backend interface {
	Speak(ctx context.Context, text string) error
}

// SpeechQueue serializes utterances so at most one is audible at a time.
// This is the only mutual-exclusion point for the audio output channel.
type SpeechQueue struct {
	backend Backend
	log     *logrus.Entry

	mu      sync.Mutex
	queue   []string
	playing bool
}

func NewSpeechQueue(backend Backend, log *logrus.Entry) *SpeechQueue {
	return &SpeechQueue{backend: backend, log: log}
}

// Enqueue pushes one unit and starts draining if nothing is playing.
func (q *SpeechQueue) Enqueue(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	q.mu.Lock()
	q.queue = append(q.queue, text)
	start := !q.playing
	if start {
		q.playing = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// drain plays the head unit, then on completion or error advances to the
// next, until the queue empties.
func (q *SpeechQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.playing = false
			q.mu.Unlock()
			return
		}
		text := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		if err := q.backend.Speak(context.Background(), text); err != nil && q.log != nil {
			q.log.WithError(err).Warn("synthesis failed, skipping unit")
		}
	}
}

// Speaking is true iff a unit is playing or units are waiting.
func (q *SpeechQueue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing || len(q.queue) > 0
}

// Clear drops all pending units. A unit already handed to the backend plays
// out; its completion finds an empty queue and stops the drain.
func (q *SpeechQueue) Clear() {
	q.mu.Lock()
	q.queue = nil
	q.mu.Unlock()
}

// WaitIdle blocks until the queue is empty and nothing is playing.
func (q *SpeechQueue) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !q.Speaking() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
