package tutor

import (
	"context"
	"encoding/binary"

	"github.com/eureka-edu/studybuddy/internal/providers/tts"
)

// AudioSink plays decoded samples through a buffered output, returning when
// playback completed or failed.
type AudioSink interface {
	Play(ctx context.Context, samples []float32, sampleRate int) error
}

// DecodePCM16 converts signed 16-bit little-endian PCM into float amplitudes
// in [-1, 1). A trailing odd byte is dropped.
func DecodePCM16(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(b[2*i:]))
		out[i] = float32(v) / 32768.0
	}
	return out
}

// engineBackend adapts a local synthesis engine to the queue discipline.
type engineBackend struct {
	eng      tts.Engine
	language string
}

func NewEngineBackend(eng tts.Engine, language string) Backend {
	if language == "" {
		language = "nl"
	}
	return &engineBackend{eng: eng, language: language}
}

func (b *engineBackend) Speak(ctx context.Context, text string) error {
	return b.eng.Speak(ctx, text, b.language)
}

// remoteBackend synthesizes via a remote call, decodes the returned PCM and
// plays it through the sink. Same queue discipline as the local engine.
type remoteBackend struct {
	synth tts.Synthesizer
	sink  AudioSink
}

func NewRemoteBackend(synth tts.Synthesizer, sink AudioSink) Backend {
	return &remoteBackend{synth: synth, sink: sink}
}

func (b *remoteBackend) Speak(ctx context.Context, text string) error {
	pcm, rate, err := b.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return b.sink.Play(ctx, DecodePCM16(pcm), rate)
}
