package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one chat message inside a conversation. Rows are immutable:
// they are inserted once and never updated or deleted.
type Message struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"not null;index:idx_message_order" json:"conversation"`
	SenderID       string    `gorm:"not null" json:"-"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"index:idx_message_order" json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID when no ID is set.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// MessageView is the API shape of a message with the sender's display
// fields resolved.
type MessageView struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation"`
	Sender         UserSummary `json:"sender"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"createdAt"`
}
