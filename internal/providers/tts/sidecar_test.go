package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecarEngineSpeak(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewSidecarEngine(srv.URL)
	err := e.Speak(context.Background(), "Hallo leerling!", "nl")

	require.NoError(t, err)
	assert.Equal(t, "Hallo leerling!", got["text"])
	assert.Equal(t, "nl", got["language"])
}

func TestSidecarEngineDefaultsLanguage(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	e := NewSidecarEngine(srv.URL)
	require.NoError(t, e.Speak(context.Background(), "tekst", ""))
	assert.Equal(t, "nl", got["language"])
}

func TestSidecarEngineErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no audio device", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewSidecarEngine(srv.URL)
	err := e.Speak(context.Background(), "tekst", "nl")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "no audio device")
}
