package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client

	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{c: c, SampleRateHz: 16000}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func encodingFor(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mt, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(mt, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}

// language example: "nl-NL", "en-US"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, float64, error) {
	if language == "" {
		language = "nl-NL"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingFor(mimeType),
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var bestText string
	var bestConf float64
	for _, r := range resp.Results {
		for _, alt := range r.Alternatives {
			if alt.Transcript != "" && float64(alt.Confidence) >= bestConf {
				bestText = alt.Transcript
				bestConf = float64(alt.Confidence)
			}
		}
	}

	return bestText, bestConf, nil
}
