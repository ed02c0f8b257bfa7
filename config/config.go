package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how extracted text is split for the vector index.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// SummarizerConfig configures document classification and summary generation.
type SummarizerConfig struct {
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	ChunkTokenBudget   int `yaml:"chunk_token_budget"`
	LargePageThreshold int `yaml:"large_page_threshold"`
	SectionThreshold   int `yaml:"section_threshold"`
}

// RetrievalConfig configures per-document context retrieval for queries.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	SmallDocChunks  int `yaml:"small_doc_chunks"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// ConverterConfig points at the external document converter service that
// owns PDF/DOCX/PPTX parsing and OCR.
type ConverterConfig struct {
	URL          string `yaml:"url"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
	MinTextChars int    `yaml:"min_text_chars"`
}

type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Converter  ConverterConfig  `yaml:"converter"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault honours CONFIG_PATH and falls back to ./config.yaml.
func LoadDefault() (*AppConfig, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Chunker.Size <= 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Overlap < 0 || cfg.Chunker.Overlap >= cfg.Chunker.Size {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Summarizer.ChunkSize <= 0 {
		cfg.Summarizer.ChunkSize = 1200
	}
	if cfg.Summarizer.ChunkOverlap < 0 || cfg.Summarizer.ChunkOverlap >= cfg.Summarizer.ChunkSize {
		cfg.Summarizer.ChunkOverlap = 200
	}
	if cfg.Summarizer.ChunkTokenBudget <= 0 {
		cfg.Summarizer.ChunkTokenBudget = 3000
	}
	if cfg.Summarizer.LargePageThreshold <= 0 {
		cfg.Summarizer.LargePageThreshold = 15
	}
	if cfg.Summarizer.SectionThreshold <= 0 {
		cfg.Summarizer.SectionThreshold = 50
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.SmallDocChunks <= 0 {
		cfg.Retrieval.SmallDocChunks = 20
	}
	if cfg.Retrieval.MaxContextChars <= 0 {
		cfg.Retrieval.MaxContextChars = 8000
	}
	if cfg.Converter.URL == "" {
		cfg.Converter.URL = os.Getenv("CONVERTER_URL")
	}
	if cfg.Converter.URL == "" {
		cfg.Converter.URL = "http://localhost:5001"
	}
	if cfg.Converter.TimeoutSecs <= 0 {
		cfg.Converter.TimeoutSecs = 120
	}
	if cfg.Converter.MinTextChars <= 0 {
		cfg.Converter.MinTextChars = 50
	}
}
