package models

import "time"

const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleNGO       = "NGO"
)

// User is keyed by the page-scoped id the platform assigns to the sender.
// IsReporting and IsPosting hold the open Report/Post id, 0 when idle.
type User struct {
	FacebookID  string    `gorm:"primaryKey;size:64;column:facebook_id" json:"facebook_id"`
	Role        string    `gorm:"size:20;not null;default:'USER';index" json:"role"`
	IsReporting uint      `gorm:"not null;default:0" json:"is_reporting"`
	IsPosting   uint      `gorm:"not null;default:0" json:"is_posting"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleNGO:
		return true
	}
	return false
}
