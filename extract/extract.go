package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docsum/config"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeTXT  = "text/plain"

	// MaxUploadSize bounds accepted uploads to 100 MiB.
	MaxUploadSize = 100 << 20

	wordsPerPage = 500
)

var extToMime = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".pptx": MimePPTX,
	".txt":  MimeTXT,
}

// AllowedType reports whether the MIME type is in the upload allowlist.
func AllowedType(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimeDOCX, MimePPTX, MimeTXT:
		return true
	}
	return false
}

// ResolveType picks the effective MIME type for a file. Browsers send
// generic content types for some files, so the extension wins over
// octet-stream and empty values.
func ResolveType(filename, contentType string) string {
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	if AllowedType(contentType) {
		return contentType
	}
	return TypeByExtension(filename)
}

// TypeByExtension maps a supported file extension to its MIME type,
// returning "" for anything else.
func TypeByExtension(filename string) string {
	return extToMime[strings.ToLower(filepath.Ext(filename))]
}

// Result is the outcome of text extraction for one file.
type Result struct {
	Text         string
	PageEstimate int
}

// Extractor turns uploaded files into plain text. TXT is read directly;
// PDF/DOCX/PPTX parsing and OCR belong to the external converter service.
type Extractor struct {
	converter *converterClient
	logger    *slog.Logger
	minChars  int
}

func New(cfg config.ConverterConfig) *Extractor {
	return &Extractor{
		converter: newConverterClient(cfg.URL, cfg.TimeoutSecs),
		logger:    slog.Default(),
		minChars:  cfg.MinTextChars,
	}
}

func (e *Extractor) Extract(ctx context.Context, path, mimeType string) (*Result, error) {
	switch mimeType {
	case MimeTXT:
		return e.extractText(path)
	case MimePDF:
		return e.extractPDF(ctx, path)
	case MimeDOCX:
		return e.extractConverted(ctx, path, 0)
	case MimePPTX:
		pages, err := slideCount(path)
		if err != nil {
			e.logger.Warn("slide count failed, falling back to word estimate", "file", filepath.Base(path), "error", err)
			pages = 0
		}
		return e.extractConverted(ctx, path, pages)
	}
	return nil, fmt.Errorf("unsupported file type: %s", mimeType)
}

func (e *Extractor) extractText(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("no text content in %s", filepath.Base(path))
	}
	return &Result{Text: text, PageEstimate: estimatePages(text)}, nil
}

// extractPDF converts via the external service, retrying with OCR forced
// when the first pass yields next to nothing (scanned documents).
func (e *Extractor) extractPDF(ctx context.Context, path string) (*Result, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PDF page count: %w", err)
	}

	text, err := e.converter.Convert(ctx, path, false)
	if err != nil {
		return nil, fmt.Errorf("converting PDF: %w", err)
	}
	if len(strings.TrimSpace(text)) < e.minChars {
		e.logger.Info("minimal text extracted, retrying with OCR", "file", filepath.Base(path), "chars", len(strings.TrimSpace(text)))
		text, err = e.converter.Convert(ctx, path, true)
		if err != nil {
			return nil, fmt.Errorf("converting PDF with OCR: %w", err)
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text content extracted from %s", filepath.Base(path))
	}
	if pages < 1 {
		pages = 1
	}
	return &Result{Text: text, PageEstimate: pages}, nil
}

func (e *Extractor) extractConverted(ctx context.Context, path string, pages int) (*Result, error) {
	text, err := e.converter.Convert(ctx, path, false)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", filepath.Base(path), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text content extracted from %s", filepath.Base(path))
	}
	if pages < 1 {
		pages = estimatePages(text)
	}
	return &Result{Text: text, PageEstimate: pages}, nil
}

func estimatePages(text string) int {
	pages := len(strings.Fields(text)) / wordsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
