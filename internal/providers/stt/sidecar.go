package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Sidecar talks to the local whisper/vosk transcription sidecar. It is the
// fallback path when the cloud recognizer fails or is not configured.
type Sidecar struct {
	URL    string
	Client *http.Client
}

func NewSidecar(url string) *Sidecar {
	if url == "" {
		url = "http://127.0.0.1:8001/transcribe"
	}
	return &Sidecar{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Sidecar) Close() error { return nil }

func extensionFor(mimeType string) string {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mt, "webm"):
		return "webm"
	case strings.Contains(mt, "ogg"):
		return "ogg"
	case strings.Contains(mt, "wav"):
		return "wav"
	case strings.Contains(mt, "mpeg"):
		return "mp3"
	case strings.Contains(mt, "mp4"):
		return "mp4"
	default:
		return "webm"
	}
}

func (s *Sidecar) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, float64, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	if language == "" {
		language = "nl"
	}
	// sidecar wants the bare language code, not a BCP 47 tag
	if i := strings.Index(language, "-"); i > 0 {
		language = language[:i]
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("language", language); err != nil {
		return "", 0, err
	}
	part, err := w.CreateFormFile("audio", "speech."+extensionFor(mimeType))
	if err != nil {
		return "", 0, err
	}
	if _, err := part.Write(audio); err != nil {
		return "", 0, err
	}
	if err := w.Close(); err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, &body)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", 0, fmt.Errorf("stt sidecar: %d %s", resp.StatusCode, strings.TrimSpace(string(details)))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(out.Text), 0, nil
}
