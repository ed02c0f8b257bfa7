package types

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID               uuid.UUID // Unique document identifier
	Filename         string    // Stored filename, unique per uploaded document
	Title            string    // Human-readable title derived from the filename
	MimeType         string
	PageCount        int // Page (or slide) estimate
	ChunkCount       int
	Classification   string // "Small Document" / "Large Document"
	Summary          string
	ProcessingMethod string
	Chunks           []Chunk
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int
}

type Chunk struct {
	ID        uuid.UUID
	DocID     uuid.UUID
	Position  int
	Content   string
	Embedding []float32
	Distance  float64
}
