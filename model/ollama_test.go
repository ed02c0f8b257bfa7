package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req OllamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello world", req.Prompt)

		json.NewEncoder(w).Encode(OllamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text")
	embedding, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	require.Len(t, embedding, 2)
	assert.InDelta(t, 0.6, embedding[0], 1e-6)
	assert.InDelta(t, 0.8, embedding[1], 1e-6)
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "missing-model")
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestOllamaEmbedEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(OllamaEmbeddingResponse{})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text")
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}

func TestNormalize64(t *testing.T) {
	out := normalize64([]float64{0, 3, 4})
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.6, out[1], 1e-9)
	assert.InDelta(t, 0.8, out[2], 1e-9)

	// zero vector stays untouched instead of dividing by zero
	assert.Equal(t, []float64{0, 0}, normalize64([]float64{0, 0}))
}
