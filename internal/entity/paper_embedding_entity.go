package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaperEmbedding struct {
	Id        uuid.UUID
	ArxivId   string
	Vector    []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}
