package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docsum/chunker"
	"docsum/config"

	"github.com/pkoukk/tiktoken-go"
)

const wordsPerPage = 500

// LLM is the completion surface the summarizer needs.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classification describes a document's size bucket.
type Classification struct {
	IsLarge      bool
	WordCount    int
	PageEstimate int
	Label        string
}

// Result carries everything the upload response reports about a summary.
type Result struct {
	Summary          string
	Classification   string
	WordCount        int
	PageEstimate     int
	ChunkCount       int
	ProcessingMethod string
}

// DocumentSummarizer classifies documents by size and generates summaries:
// chunk-wise for small documents, hierarchical for large ones.
type DocumentSummarizer struct {
	llm      LLM
	splitter *chunker.RecursiveSplitter
	cfg      config.SummarizerConfig
	logger   *slog.Logger
	enc      *tiktoken.Tiktoken
}

func New(llm LLM, cfg config.SummarizerConfig) *DocumentSummarizer {
	// Encoder failure degrades to a character-based budget, not a startup error.
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		slog.Default().Warn("tiktoken encoder unavailable, using character budget", "error", err)
		enc = nil
	}
	return &DocumentSummarizer{
		llm:      llm,
		splitter: chunker.NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg:      cfg,
		logger:   slog.Default(),
		enc:      enc,
	}
}

// ClassifySize buckets a document as small or large by its word count.
func (s *DocumentSummarizer) ClassifySize(text string) Classification {
	words := len(strings.Fields(text))
	pages := words / wordsPerPage
	isLarge := pages > s.cfg.LargePageThreshold

	label := "Small Document"
	if isLarge {
		label = "Large Document"
	}
	return Classification{
		IsLarge:      isLarge,
		WordCount:    words,
		PageEstimate: pages,
		Label:        label,
	}
}

// Summarize produces the document summary and classification metadata.
func (s *DocumentSummarizer) Summarize(ctx context.Context, text string) (*Result, error) {
	cls := s.ClassifySize(text)
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text content to summarize")
	}

	var summary string
	var method string
	var err error
	if cls.IsLarge {
		summary, err = s.summarizeLarge(ctx, chunks)
		method = "Hierarchical Summarization"
	} else {
		summary, err = s.summarizeSmall(ctx, chunks)
		method = "Chunk-wise Summarization"
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Summary:          summary,
		Classification:   cls.Label,
		WordCount:        cls.WordCount,
		PageEstimate:     cls.PageEstimate,
		ChunkCount:       len(chunks),
		ProcessingMethod: method,
	}, nil
}

// summarizeSmall summarizes every chunk and condenses the combined result.
func (s *DocumentSummarizer) summarizeSmall(ctx context.Context, chunks []string) (string, error) {
	s.logger.Info("summarizing small document", "chunks", len(chunks))

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := s.chunkSummary(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("summarizing chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, summary)
	}
	return s.finalSummary(ctx, strings.Join(summaries, " "))
}

// summarizeLarge condenses chunk summaries through section summaries before
// the final pass.
func (s *DocumentSummarizer) summarizeLarge(ctx context.Context, chunks []string) (string, error) {
	s.logger.Info("summarizing large document hierarchically", "chunks", len(chunks))

	chunkSummaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := s.chunkSummary(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("summarizing chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkSummaries = append(chunkSummaries, summary)
	}

	sections := [][]string{chunkSummaries}
	if len(chunkSummaries) > s.cfg.SectionThreshold {
		sections = groupSections(chunkSummaries)
	}

	sectionSummaries := make([]string, 0, len(sections))
	for i, section := range sections {
		summary, err := s.chunkSummary(ctx, strings.Join(section, " "))
		if err != nil {
			return "", fmt.Errorf("summarizing section %d/%d: %w", i+1, len(sections), err)
		}
		sectionSummaries = append(sectionSummaries, summary)
	}

	return s.finalSummary(ctx, strings.Join(sectionSummaries, " "))
}

// groupSections buckets chunk summaries into roughly ten sections.
func groupSections(summaries []string) [][]string {
	sectionSize := len(summaries) / 10
	if sectionSize < 10 {
		sectionSize = 10
	}
	var sections [][]string
	for i := 0; i < len(summaries); i += sectionSize {
		end := i + sectionSize
		if end > len(summaries) {
			end = len(summaries)
		}
		sections = append(sections, summaries[i:end])
	}
	return sections
}

func (s *DocumentSummarizer) chunkSummary(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert document summarizer. Create a concise, accurate, and precise summary that captures only the most important information from the text chunk. Do not include unnecessary details. Provide the summary in plain text format without markdown formatting.

Text to summarize:
%s

Summary (concise, accurate, precise):`, s.truncate(text, s.cfg.ChunkTokenBudget))

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return CleanMarkdown(response), nil
}

func (s *DocumentSummarizer) finalSummary(ctx context.Context, combined string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert document summarizer. Create a concise, accurate, and precise final summary for the following combined text. Only include the most important points. Do not add unnecessary details. Provide the summary in plain text format.

Text:
%s

Final Summary (concise, accurate, precise):`, s.truncate(combined, s.cfg.ChunkTokenBudget))

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return CleanMarkdown(response), nil
}

// AnswerQuestion runs the question-answering prompt over retrieved context.
func (s *DocumentSummarizer) AnswerQuestion(ctx context.Context, query, context string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful assistant that answers questions based on document content. Provide comprehensive, accurate answers using the given context. Use plain text format without markdown. Provide detailed responses that fully address the user's question.

Question: %s

Context: %s

Answer (comprehensive, plain text):`, query, context)

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return CleanMarkdown(response), nil
}

// truncate caps text at a token budget, falling back to a rough four
// characters per token when no encoder is available.
func (s *DocumentSummarizer) truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	if s.enc == nil {
		if len(text) > maxTokens*4 {
			return text[:maxTokens*4]
		}
		return text
	}
	tokens := s.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return s.enc.Decode(tokens[:maxTokens])
}
