package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// PaperEmbedding caches one abstract embedding per arXiv id so repeat
// searches skip the embedding provider.
type PaperEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArxivId   string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (PaperEmbedding) TableName() string {
	return "paper_embeddings"
}
