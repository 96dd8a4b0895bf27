package tutor

import (
	"strings"
	"sync"
	"time"

	"github.com/eureka-edu/studybuddy/internal/models"
)

// DefaultWindow is the number of recent turns sent to the model.
const DefaultWindow = 10

type Turn struct {
	ID        string
	Speaker   models.Speaker
	Text      string
	Timestamp time.Time
}

// History is the append-only transcript of one conversation. Turns are never
// mutated after creation; in-flight streaming buffers live in the
// orchestrator and only land here once finalized.
type History struct {
	mu    sync.Mutex
	turns []Turn
}

func NewHistory() *History { return &History{} }

func (h *History) Append(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, t)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Window returns the last n turns, oldest first. Turns that are blank after
// trimming are dropped; some providers reject empty messages.
func (h *History) Window(n int) []Turn {
	if n <= 0 {
		n = DefaultWindow
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}

	out := make([]Turn, 0, n)
	for _, t := range h.turns[start:] {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
