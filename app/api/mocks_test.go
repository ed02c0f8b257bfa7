package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"docsum/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// mockStore implements store.DBStorer with overridable behavior per test.
type mockStore struct {
	saveDocument  func(ctx context.Context, doc *types.Document) error
	getDocument   func(ctx context.Context, filename string) (*types.Document, error)
	getChunks     func(ctx context.Context, docID uuid.UUID) ([]types.Chunk, error)
	searchChunks  func(ctx context.Context, docID uuid.UUID, embedding []float32, limit int) ([]types.Chunk, error)
	updateSummary func(ctx context.Context, docID uuid.UUID, summary, classification, method string) error
}

func (m *mockStore) SaveDocument(ctx context.Context, doc *types.Document) error {
	if m.saveDocument == nil {
		return nil
	}
	return m.saveDocument(ctx, doc)
}

func (m *mockStore) GetDocumentByFilename(ctx context.Context, filename string) (*types.Document, error) {
	return m.getDocument(ctx, filename)
}

func (m *mockStore) GetChunksByDocID(ctx context.Context, docID uuid.UUID) ([]types.Chunk, error) {
	return m.getChunks(ctx, docID)
}

func (m *mockStore) SearchChunks(ctx context.Context, docID uuid.UUID, embedding []float32, limit int) ([]types.Chunk, error) {
	return m.searchChunks(ctx, docID, embedding, limit)
}

func (m *mockStore) UpdateSummary(ctx context.Context, docID uuid.UUID, summary, classification, method string) error {
	if m.updateSummary == nil {
		return nil
	}
	return m.updateSummary(ctx, docID, summary, classification, method)
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// fakeLLM satisfies summarizer.LLM and records every prompt.
type fakeLLM struct {
	calls []string
	reply string
	err   error
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestApp(method, path string, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Add(method, path, handler)
	return app
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", string(body))
	return out
}
