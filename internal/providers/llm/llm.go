package llm

import "context"

// Provider-side role tags. Conversation speakers are converted to these at
// this boundary only.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Request struct {
	SystemInstruction string
	Messages          []Message // oldest first; last entry is the user message
}

type Provider interface {
	// StreamAnswer opens exactly one completion request and returns the
	// response as incremental text chunks. Both channels are closed when the
	// stream ends; a mid-stream failure delivers one error and terminates
	// the chunk stream. The sequence is finite and not restartable.
	StreamAnswer(ctx context.Context, req Request) (chunks <-chan string, errs <-chan error)
	Close() error
}
