package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a durable two-party chat thread. The participant pair is
// stored normalized (lexicographically low/high) under a composite unique
// index, so at most one conversation exists per unordered pair. The last
// message fields are a denormalized preview refreshed on every send.
type Conversation struct {
	ID                string `gorm:"primaryKey" json:"id"`
	ParticipantLowID  string `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"-"`
	ParticipantHighID string `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"-"`
	LastMessage       string `gorm:"type:text" json:"lastMessage"`
	LastSenderID      string `json:"lastSender"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID when no ID is set.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// NormalizePair orders two participant ids into the stored (low, high) form.
// A self-conversation collapses to an equal pair.
func NormalizePair(a, b string) (low, high string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether id is one of the two participants.
func (c *Conversation) HasParticipant(id string) bool {
	return id == c.ParticipantLowID || id == c.ParticipantHighID
}

// ParticipantIDs returns the distinct participant ids. A self-conversation
// yields a single id.
func (c *Conversation) ParticipantIDs() []string {
	if c.ParticipantLowID == c.ParticipantHighID {
		return []string{c.ParticipantLowID}
	}
	return []string{c.ParticipantLowID, c.ParticipantHighID}
}

// ConversationView is the API shape of a conversation with participant
// display fields resolved.
type ConversationView struct {
	ID           string        `json:"id"`
	Participants []UserSummary `json:"participants"`
	LastMessage  string        `json:"lastMessage"`
	LastSender   string        `json:"lastSender"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
