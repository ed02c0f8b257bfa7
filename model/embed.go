package model

import (
	"context"
	"log/slog"
	"os"
)

// EmbedderInterface is implemented by anything that can turn text into a
// similarity-search vector.
type EmbedderInterface interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Embedder wraps the configured embedding backend (Ollama).
type Embedder struct {
	ollama *OllamaEmbedder
}

// NewEmbedder builds the embedder from OLLAMA_EMBEDDING_URL and
// OLLAMA_EMBEDDING_MODEL.
func NewEmbedder() *Embedder {
	ollamaURL := os.Getenv("OLLAMA_EMBEDDING_URL")
	ollamaModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")

	slog.Default().Info("using Ollama for embeddings", "model", ollamaModel)

	return &Embedder{
		ollama: NewOllamaEmbedder(ollamaURL, ollamaModel),
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.ollama.Embed(ctx, text)
}

// EmbedBatch embeds texts one by one, failing on the first error.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
