package tutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePCM16(t *testing.T) {
	// 0, max positive, min negative, little-endian
	in := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80}

	out := DecodePCM16(in)

	require.Len(t, out, 3)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, out[1], 1e-6)
	assert.InDelta(t, -1.0, out[2], 1e-6)
}

func TestDecodePCM16DropsTrailingOddByte(t *testing.T) {
	out := DecodePCM16([]byte{0x00, 0x00, 0xAB})
	assert.Len(t, out, 1)

	assert.Empty(t, DecodePCM16([]byte{0xAB}))
	assert.Empty(t, DecodePCM16(nil))
}

type captureSink struct {
	samples []float32
	rate    int
}

func (s *captureSink) Play(ctx context.Context, samples []float32, sampleRate int) error {
	s.samples = samples
	s.rate = sampleRate
	return nil
}

type fixedSynth struct {
	pcm  []byte
	rate int
}

func (f *fixedSynth) Synthesize(ctx context.Context, text string) ([]byte, int, error) {
	return f.pcm, f.rate, nil
}

func (f *fixedSynth) Close() error { return nil }

func TestRemoteBackendDecodesAndPlays(t *testing.T) {
	sink := &captureSink{}
	backend := NewRemoteBackend(&fixedSynth{pcm: []byte{0x00, 0x40}, rate: 24000}, sink)

	require.NoError(t, backend.Speak(context.Background(), "hallo"))

	assert.Equal(t, 24000, sink.rate)
	require.Len(t, sink.samples, 1)
	assert.InDelta(t, 0.5, sink.samples[0], 1e-3)
}
