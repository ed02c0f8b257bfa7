package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"docsum/chunker"
	"docsum/extract"
	"docsum/model"
	"docsum/store"
	"docsum/summarizer"
	"docsum/types"

	"github.com/google/uuid"
)

// Pipeline runs the full upload flow: extract, summarize, chunk, embed,
// store. Both the upload handler and the drop-folder loader drive it.
type Pipeline struct {
	store      store.DBStorer
	embedder   model.EmbedderInterface
	summarizer *summarizer.DocumentSummarizer
	splitter   *chunker.RecursiveSplitter
	extractor  *extract.Extractor
	logger     *slog.Logger
}

func New(
	storer store.DBStorer,
	embedder model.EmbedderInterface,
	sum *summarizer.DocumentSummarizer,
	splitter *chunker.RecursiveSplitter,
	extractor *extract.Extractor,
) *Pipeline {
	return &Pipeline{
		store:      storer,
		embedder:   embedder,
		summarizer: sum,
		splitter:   splitter,
		extractor:  extractor,
		logger:     slog.Default(),
	}
}

// Ingest processes one file. No database write happens until every stage
// has succeeded, so a failed ingest leaves no document record behind.
func (p *Pipeline) Ingest(ctx context.Context, filename, mimeType, path string) (*types.Document, error) {
	res, err := p.extractor.Extract(ctx, path, mimeType)
	if err != nil {
		return nil, fmt.Errorf("document loading failed: %w", err)
	}
	p.logger.Info("text extracted", "file", filename, "chars", len(res.Text), "pages", res.PageEstimate)

	sum, err := p.summarizer.Summarize(ctx, res.Text)
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}
	p.logger.Info("document summarized", "file", filename, "classification", sum.Classification)

	contents := p.splitter.Split(res.Text)
	if len(contents) == 0 {
		return nil, fmt.Errorf("chunking failed: no content produced")
	}

	now := time.Now()
	doc := &types.Document{
		ID:               uuid.New(),
		Filename:         filename,
		Title:            generateTitle(filename),
		MimeType:         mimeType,
		PageCount:        res.PageEstimate,
		ChunkCount:       len(contents),
		Classification:   sum.Classification,
		Summary:          sum.Summary,
		ProcessingMethod: sum.ProcessingMethod,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}

	for i, content := range contents {
		embedding, err := p.embedder.Embed(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		doc.Chunks = append(doc.Chunks, types.Chunk{
			ID:        uuid.New(),
			DocID:     doc.ID,
			Position:  i,
			Content:   content,
			Embedding: embedding,
		})
	}

	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("vector store update failed: %w", err)
	}
	p.logger.Info("document stored", "file", filename, "chunks", doc.ChunkCount)

	return doc, nil
}

// generateTitle derives a display title from the filename.
func generateTitle(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
