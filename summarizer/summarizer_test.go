package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docsum/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func testConfig() config.SummarizerConfig {
	return config.SummarizerConfig{
		ChunkSize:          1200,
		ChunkOverlap:       200,
		ChunkTokenBudget:   3000,
		LargePageThreshold: 15,
		SectionThreshold:   50,
	}
}

func TestClassifySize(t *testing.T) {
	s := New(&fakeLLM{}, testConfig())

	small := s.ClassifySize(strings.Repeat("word ", 400))
	assert.False(t, small.IsLarge)
	assert.Equal(t, "Small Document", small.Label)
	assert.Equal(t, 400, small.WordCount)

	large := s.ClassifySize(strings.Repeat("word ", 8100))
	assert.True(t, large.IsLarge)
	assert.Equal(t, "Large Document", large.Label)
	assert.Equal(t, 16, large.PageEstimate)
}

func TestSummarizeSmallDocument(t *testing.T) {
	llm := &fakeLLM{reply: "**Key** points of the chunk."}
	s := New(llm, testConfig())

	res, err := s.Summarize(context.Background(), strings.Repeat("word ", 100))
	require.NoError(t, err)

	assert.Equal(t, "Chunk-wise Summarization", res.ProcessingMethod)
	assert.Equal(t, "Small Document", res.Classification)
	assert.Equal(t, 1, res.ChunkCount)
	assert.Equal(t, "Key points of the chunk.", res.Summary)
	// one call per chunk plus the final pass
	assert.Len(t, llm.calls, res.ChunkCount+1)
}

func TestSummarizeLargeDocument(t *testing.T) {
	llm := &fakeLLM{reply: "section summary"}
	s := New(llm, testConfig())

	res, err := s.Summarize(context.Background(), strings.Repeat("word ", 8100))
	require.NoError(t, err)

	assert.Equal(t, "Hierarchical Summarization", res.ProcessingMethod)
	assert.Equal(t, "Large Document", res.Classification)
	assert.Greater(t, res.ChunkCount, 1)
	// chunk passes, one section pass, one final pass
	assert.Len(t, llm.calls, res.ChunkCount+2)
}

func TestSummarizeEmptyText(t *testing.T) {
	s := New(&fakeLLM{}, testConfig())

	_, err := s.Summarize(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSummarizePropagatesLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model unavailable")}
	s := New(llm, testConfig())

	_, err := s.Summarize(context.Background(), strings.Repeat("word ", 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestAnswerQuestion(t *testing.T) {
	llm := &fakeLLM{reply: "## Answer\nParis is the capital."}
	s := New(llm, testConfig())

	answer, err := s.AnswerQuestion(context.Background(), "What is the capital?", "France's capital is Paris.")
	require.NoError(t, err)

	assert.Equal(t, "Answer\nParis is the capital.", answer)
	require.Len(t, llm.calls, 1)
	assert.Contains(t, llm.calls[0], "Question: What is the capital?")
	assert.Contains(t, llm.calls[0], "France's capital is Paris.")
}

func TestGroupSections(t *testing.T) {
	summaries := make([]string, 120)
	for i := range summaries {
		summaries[i] = "s"
	}
	sections := groupSections(summaries)
	assert.Len(t, sections, 10)
	assert.Len(t, sections[0], 12)

	sections = groupSections(summaries[:60])
	assert.Len(t, sections, 6)
	assert.Len(t, sections[0], 10)
}
