package embedding

import "context"

// Result is a single generated embedding vector plus the model that
// produced it, so callers can meter usage per model.
type Result struct {
	Values []float32
	Model  string
}

// Provider generates text embeddings. Implementations call out over the
// network, so every Generate takes a context.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Result, error)
	Model() string
}
