package api

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"docsum/extract"
	"docsum/store"
	"docsum/summarizer"
	"docsum/types"

	"github.com/gofiber/fiber/v2"
)

// TextExtractor is the extraction surface the summarize handler needs.
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType string) (*extract.Result, error)
}

// Summarizer re-runs summary generation over extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*summarizer.Result, error)
}

type SummarizeHandler struct {
	contextStore store.DBStorer
	extractor    TextExtractor
	summarizer   Summarizer
	uploadDir    string
}

func NewSummarizeHandler(contextStore store.DBStorer, extractor TextExtractor, sum Summarizer, uploadDir string) *SummarizeHandler {
	return &SummarizeHandler{
		contextStore: contextStore,
		extractor:    extractor,
		summarizer:   sum,
		uploadDir:    uploadDir,
	}
}

// HandleSummarize regenerates the summary for an already-uploaded document.
func (h *SummarizeHandler) HandleSummarize(c *fiber.Ctx) error {
	var params types.SummarizeParams
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

	path := filepath.Join(h.uploadDir, doc.Filename)
	if _, err := os.Stat(path); err != nil {
		return ErrNotFound(doc.Filename, "document file")
	}

	res, err := h.extractor.Extract(c.Context(), path, doc.MimeType)
	if err != nil {
		return ErrProcessing("loading the document", err)
	}

	sum, err := h.summarizer.Summarize(c.Context(), res.Text)
	if err != nil {
		return ErrProcessing("summarizing the document", err)
	}

	if err := h.contextStore.UpdateSummary(c.Context(), doc.ID, sum.Summary, sum.Classification, sum.ProcessingMethod); err != nil {
		return ErrProcessing("updating the document record", err)
	}

	// chunk_count reflects the stored chunk rows, not the summarizer's own
	// working split
	return c.JSON(types.SummarizeResponse{
		Filename:         doc.Filename,
		Summary:          sum.Summary,
		Classification:   sum.Classification,
		ChunkCount:       doc.ChunkCount,
		ProcessingMethod: sum.ProcessingMethod,
	})
}
