package tutor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend plays units instantly and remembers them in order.
type recordingBackend struct {
	mu     sync.Mutex
	played []string
	failOn map[string]error
	delay  time.Duration
}

func (b *recordingBackend) Speak(ctx context.Context, text string) error {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.failOn[text]; ok {
		return err
	}
	b.played = append(b.played, text)
	return nil
}

func (b *recordingBackend) spoken() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.played))
	copy(out, b.played)
	return out
}

func TestQueuePlaysInOrder(t *testing.T) {
	backend := &recordingBackend{}
	q := NewSpeechQueue(backend, nil)

	q.Enqueue("een")
	q.Enqueue("twee")
	q.Enqueue("drie")

	require.NoError(t, q.WaitIdle(context.Background()))
	assert.Equal(t, []string{"een", "twee", "drie"}, backend.spoken())
	assert.False(t, q.Speaking())
}

func TestQueueSkipsFailedUnit(t *testing.T) {
	backend := &recordingBackend{failOn: map[string]error{"twee": errors.New("synthesis failed")}}
	q := NewSpeechQueue(backend, nil)

	q.Enqueue("een")
	q.Enqueue("twee")
	q.Enqueue("drie")

	require.NoError(t, q.WaitIdle(context.Background()))

	// The failed unit is skipped, never retried, and playback continues.
	assert.Equal(t, []string{"een", "drie"}, backend.spoken())
	assert.False(t, q.Speaking())
}

func TestQueueIgnoresBlankUnits(t *testing.T) {
	backend := &recordingBackend{}
	q := NewSpeechQueue(backend, nil)

	q.Enqueue("")
	q.Enqueue("   ")

	assert.False(t, q.Speaking())
	assert.Empty(t, backend.spoken())
}

func TestSpeakingWhileDraining(t *testing.T) {
	backend := &recordingBackend{delay: 50 * time.Millisecond}
	q := NewSpeechQueue(backend, nil)

	q.Enqueue("langzame zin")
	assert.True(t, q.Speaking())

	require.NoError(t, q.WaitIdle(context.Background()))
	assert.False(t, q.Speaking())
}

func TestClearDropsPending(t *testing.T) {
	backend := &recordingBackend{delay: 50 * time.Millisecond}
	q := NewSpeechQueue(backend, nil)

	q.Enqueue("eerste")
	q.Enqueue("tweede")
	q.Enqueue("derde")
	q.Clear()

	require.NoError(t, q.WaitIdle(context.Background()))

	// The unit already handed to the backend plays out; the rest is gone.
	assert.LessOrEqual(t, len(backend.spoken()), 1)
}

func TestWaitIdleHonorsContext(t *testing.T) {
	backend := &recordingBackend{delay: time.Second}
	q := NewSpeechQueue(backend, nil)
	q.Enqueue("lang verhaal")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := q.WaitIdle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
