package api

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docsum/config"
	"docsum/model"
	"docsum/store"
	"docsum/summarizer"
	"docsum/types"

	"github.com/gofiber/fiber/v2"
)

type QueryHandler struct {
	contextStore store.DBStorer
	embedder     model.EmbedderInterface
	summarizer   *summarizer.DocumentSummarizer
	cfg          config.RetrievalConfig
}

func NewQueryHandler(contextStore store.DBStorer, embedder model.EmbedderInterface, sum *summarizer.DocumentSummarizer, cfg config.RetrievalConfig) *QueryHandler {
	return &QueryHandler{
		contextStore: contextStore,
		embedder:     embedder,
		summarizer:   sum,
		cfg:          cfg,
	}
}

func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	doc, err := h.contextStore.GetDocumentByFilename(c.Context(), params.Filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound(params.Filename, "document")
		}
		return ErrProcessing("looking up the document", err)
	}

	chunks, err := h.retrieve(c, doc, params.Query)
	if err != nil {
		return ErrProcessing("retrieving document context", err)
	}

	var answer string
	if len(chunks) == 0 {
		answer = fmt.Sprintf("I couldn't find specific information in the document that directly answers your question: '%s'. The document may not contain relevant content for this query.", params.Query)
	} else {
		answer, err = h.summarizer.AnswerQuestion(c.Context(), params.Query, h.buildContext(chunks))
		if err != nil {
			return ErrProcessing("generating the answer", err)
		}
	}

	return c.JSON(types.QueryResponse{
		Filename:      doc.Filename,
		Query:         params.Query,
		Answer:        answer,
		ContextChunks: len(chunks),
	})
}

// retrieve picks the query context: every chunk in order for small
// documents, similarity search within the document otherwise.
func (h *QueryHandler) retrieve(c *fiber.Ctx, doc *types.Document, query string) ([]types.Chunk, error) {
	if doc.ChunkCount < h.cfg.SmallDocChunks {
		return h.contextStore.GetChunksByDocID(c.Context(), doc.ID)
	}

	embedding, err := h.embedder.Embed(c.Context(), query)
	if err != nil {
		return nil, err
	}
	return h.contextStore.SearchChunks(c.Context(), doc.ID, embedding, h.cfg.TopK)
}

// buildContext joins chunk text and trims oversized context down to its
// leading and trailing sentences.
func (h *QueryHandler) buildContext(chunks []types.Chunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Content
	}
	context := strings.Join(parts, " ")

	if len(context) > h.cfg.MaxContextChars {
		sentences := strings.Split(context, ". ")
		if len(sentences) > 20 {
			trimmed := append(sentences[:5], sentences[len(sentences)-5:]...)
			context = strings.Join(trimmed, ". ")
		}
	}
	return context
}
