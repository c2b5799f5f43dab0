package models

import "time"

const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
)

// Message is one piece of content collected for a report. For images Text
// holds the attachment URL.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uint      `gorm:"not null;index" json:"report_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Type      string    `gorm:"size:10;not null;default:'TEXT'" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
