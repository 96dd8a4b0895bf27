package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SidecarEngine drives the local speech sidecar, which synthesizes and plays
// the utterance on the host's output device. The HTTP call returns once
// playback completed or failed, which gives the queue its completion signal.
type SidecarEngine struct {
	URL    string
	Client *http.Client
}

func NewSidecarEngine(url string) *SidecarEngine {
	if url == "" {
		url = "http://127.0.0.1:8001/speak"
	}
	return &SidecarEngine{
		URL:    url,
		Client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *SidecarEngine) Close() error { return nil }

func (e *SidecarEngine) Speak(ctx context.Context, text, language string) error {
	if language == "" {
		language = "nl"
	}

	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"language": language,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts sidecar: %d %s", resp.StatusCode, strings.TrimSpace(string(details)))
	}
	return nil
}
