package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores ERROR+ log records so failed turns can be queried later.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Level     string         `gorm:"size:10;not null;index" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	SenderID  string         `gorm:"size:64;index" json:"sender_id"`
	Event     string         `gorm:"size:32;index" json:"event"`
	Op        string         `gorm:"size:64" json:"op"`
	Error     string         `gorm:"type:text" json:"error"`
	RequestID string         `gorm:"size:36;index" json:"request_id"`
	Extra     datatypes.JSON `json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
}
