package storage

import (
	"github.com/pkg/errors"

	"linkedup/backend/internal/models"
)

// SaveMessage inserts a new message. Messages are append-only.
func (s *Service) SaveMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		return errors.Wrap(err, "save message")
	}
	return nil
}

// ListMessages returns a conversation's messages in ascending creation
// order.
func (s *Service) ListMessages(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return messages, nil
}
