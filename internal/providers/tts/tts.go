package tts

import "context"

// Synthesizer is the remote synthesis contract: text in, raw signed 16-bit
// little-endian PCM out at the reported sample rate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (pcm []byte, sampleRate int, err error)
	Close() error
}

// Engine is the local synthesis contract: the engine plays the utterance on
// its own output device and returns when playback finished or failed.
type Engine interface {
	Speak(ctx context.Context, text, language string) error
	Close() error
}
