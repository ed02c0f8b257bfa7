package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docsum/extract"
	"docsum/types"

	"github.com/gofiber/fiber/v2"
)

// Ingester runs the upload pipeline for a saved file.
type Ingester interface {
	Ingest(ctx context.Context, filename, mimeType, path string) (*types.Document, error)
}

type UploadHandler struct {
	pipeline  Ingester
	uploadDir string
	maxSize   int64
}

func NewUploadHandler(pipeline Ingester, uploadDir string) *UploadHandler {
	return &UploadHandler{
		pipeline:  pipeline,
		uploadDir: uploadDir,
		maxSize:   extract.MaxUploadSize,
	}
}

// HandleUpload validates the file before any backend work, saves it, and
// runs the ingest pipeline. A failed pipeline removes the saved file so the
// upload either fully succeeds or leaves nothing behind.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	mimeType := extract.ResolveType(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if !extract.AllowedType(mimeType) {
		return ErrUnsupportedType(fileHeader.Header.Get("Content-Type"))
	}
	if fileHeader.Size > h.maxSize {
		return ErrFileTooLarge(fileHeader.Size, h.maxSize)
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return ErrProcessing("saving the document", err)
	}
	filename := filepath.Base(fileHeader.Filename)
	path := filepath.Join(h.uploadDir, filename)

	// stage under a temporary name: a failed ingest must not clobber the
	// stored file of a previous upload with the same name
	tmpPath := filepath.Join(h.uploadDir, ".uploading-"+filename)
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return ErrProcessing("saving the document", err)
	}

	doc, err := h.pipeline.Ingest(c.Context(), filename, mimeType, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return ErrProcessing("processing the document", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return ErrProcessing("saving the document", err)
	}
	fmt.Printf("[UPLOAD] File saved to: %s\n", path)

	return c.JSON(types.UploadResponse{
		Filename:         doc.Filename,
		PageEstimate:     doc.PageCount,
		ChunkCount:       doc.ChunkCount,
		Summary:          doc.Summary,
		Classification:   doc.Classification,
		ProcessingMethod: doc.ProcessingMethod,
	})
}
