package models

import "time"

// Post is authored by a moderator one field at a time, in column order.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;not null;index" json:"user_id"`
	Title       *string   `gorm:"size:255" json:"title"`
	Link        *string   `gorm:"size:2048" json:"link"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"size:2048" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Post) Complete() bool {
	return p.Title != nil && p.Link != nil && p.Description != nil && p.ImageURL != nil
}
