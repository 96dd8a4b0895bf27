package tts

import (
	"bytes"
	"context"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

const googleTTSSampleRate = 24000

type GoogleTTS struct {
	c *texttospeech.Client

	LanguageCode string
	VoiceName    string
}

func NewGoogleTTS(ctx context.Context) (*GoogleTTS, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleTTS{
		c:            c,
		LanguageCode: "nl-NL",
		VoiceName:    "nl-NL-Wavenet-B",
	}, nil
}

func (g *GoogleTTS) Close() error { return g.c.Close() }

func (g *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, int, error) {
	resp, err := g.c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.LanguageCode,
			Name:         g.VoiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: googleTTSSampleRate,
		},
	})
	if err != nil {
		return nil, 0, err
	}

	// LINEAR16 responses carry a 44-byte WAV header; downstream wants bare frames.
	pcm := resp.AudioContent
	if len(pcm) > 44 && bytes.HasPrefix(pcm, []byte("RIFF")) {
		pcm = pcm[44:]
	}
	return pcm, googleTTSSampleRate, nil
}
