package llm

import (
	"context"
	"time"

	"github.com/ollama/ollama/api"
)

const embeddingModel = "nomic-embed-text"

// Ollama serves completions from a locally hosted model. It doubles as the
// embedder for persisted conversation turns.
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(model string) (*Ollama, error) {
	c, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "llama3.1:8b"
	}
	return &Ollama{client: c, model: model}, nil
}

func (o *Ollama) Close() error { return nil }

func (o *Ollama) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		msgs := make([]api.Message, 0, len(req.Messages)+1)
		if req.SystemInstruction != "" {
			msgs = append(msgs, api.Message{Role: "system", Content: req.SystemInstruction})
		}
		for _, m := range req.Messages {
			msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
		}

		stream := true
		err := o.client.Chat(ctx, &api.ChatRequest{
			Model:    o.model,
			Messages: msgs,
			Stream:   &stream,
		}, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				out <- resp.Message.Content
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return out, errs
}

// Embed returns a 768-dim embedding for text, used to fill the pgvector
// column on persisted turns.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:     embeddingModel,
		Prompt:    text,
		KeepAlive: &api.Duration{Duration: 60 * time.Minute},
	})
	if err != nil {
		return nil, err
	}

	emb := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		emb[i] = float32(v)
	}
	return emb, nil
}
