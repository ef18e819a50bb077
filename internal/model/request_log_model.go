package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestLog is one persisted pipeline run, for usage dashboards.
type RequestLog struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   string         `gorm:"type:uuid;not null;index"`
	Kind        string         `gorm:"type:varchar(16);not null"` // search, load, chat
	Query       string         `gorm:"type:text"`
	Steps       datatypes.JSON `gorm:"type:jsonb"`
	ResultCount int            `gorm:"default:0"`
	ChunksUsed  int            `gorm:"default:0"`
	LatencyMs   int64          `gorm:"default:0"`
	Error       string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}
