package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is the directory record for a member of the network. The chat
// subsystem only reads it: display resolution and the connection check.
// Account lifecycle (signup, profile edits) lives outside this service.
type User struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Username       string         `gorm:"uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex" json:"email,omitempty"`
	ProfilePicture string         `json:"profilePicture"`
	Headline       string         `json:"headline"`
	Skills         pq.StringArray `gorm:"type:text[]" json:"skills,omitempty"`

	// Connections holds the accepted, bidirectional connection edges. Both
	// directions are written, so membership can be checked from either side.
	Connections []*User `gorm:"many2many:user_connections" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID when no ID is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// UserSummary is the display projection embedded in conversation, message
// and presence payloads.
type UserSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	Headline       string `json:"headline,omitempty"`
}

// Summary returns the user's display projection.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Headline:       u.Headline,
	}
}
