package tutor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eureka-edu/studybuddy/internal/models"
)

func turn(speaker models.Speaker, text string) Turn {
	return Turn{Speaker: speaker, Text: text}
}

func TestWindowReturnsLastN(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 15; i++ {
		h.Append(turn(models.SpeakerUser, fmt.Sprintf("bericht %d", i)))
	}

	w := h.Window(10)

	assert.Len(t, w, 10)
	assert.Equal(t, "bericht 5", w[0].Text)
	assert.Equal(t, "bericht 14", w[9].Text)
}

func TestWindowDropsBlankTurns(t *testing.T) {
	h := NewHistory()
	h.Append(turn(models.SpeakerUser, "vraag"))
	h.Append(turn(models.SpeakerBot, "   "))
	h.Append(turn(models.SpeakerBot, "antwoord"))

	w := h.Window(10)

	assert.Len(t, w, 2)
	assert.Equal(t, "vraag", w[0].Text)
	assert.Equal(t, "antwoord", w[1].Text)
}

func TestWindowBlankInsideLastNShrinksResult(t *testing.T) {
	// The window is cut positionally first; blanks inside it are then
	// dropped rather than backfilled from older turns.
	h := NewHistory()
	for i := 0; i < 9; i++ {
		h.Append(turn(models.SpeakerUser, fmt.Sprintf("t%d", i)))
	}
	h.Append(turn(models.SpeakerBot, ""))

	w := h.Window(10)

	assert.Len(t, w, 9)
}

func TestWindowShorterHistory(t *testing.T) {
	h := NewHistory()
	h.Append(turn(models.SpeakerUser, "hallo"))

	assert.Len(t, h.Window(10), 1)
	assert.Empty(t, NewHistory().Window(10))
}

func TestWindowZeroUsesDefault(t *testing.T) {
	h := NewHistory()
	for i := 0; i < DefaultWindow+3; i++ {
		h.Append(turn(models.SpeakerUser, fmt.Sprintf("t%d", i)))
	}

	assert.Len(t, h.Window(0), DefaultWindow)
}
