package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, model: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		if len(req.Messages) == 0 {
			errs <- errors.New("empty message list")
			return
		}

		m := v.client.GenerativeModel(v.model)
		if req.SystemInstruction != "" {
			m.SystemInstruction = &vertexgenai.Content{
				Parts: []vertexgenai.Part{vertexgenai.Text(req.SystemInstruction)},
			}
		}

		// Vertex wants "model" for assistant turns.
		cs := m.StartChat()
		history := req.Messages[:len(req.Messages)-1]
		last := req.Messages[len(req.Messages)-1]
		for _, msg := range history {
			role := "user"
			if msg.Role == RoleAssistant {
				role = "model"
			}
			cs.History = append(cs.History, &vertexgenai.Content{
				Role:  role,
				Parts: []vertexgenai.Part{vertexgenai.Text(msg.Content)},
			})
		}

		it := cs.SendMessageStream(ctx, vertexgenai.Text(last.Content))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}
