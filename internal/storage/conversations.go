package storage

import (
	goerrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkedup/backend/internal/models"
)

// FindConversationByPair looks up the conversation for an unordered
// participant pair. Returns (nil, nil) when none exists.
func (s *Service) FindConversationByPair(userA, userB string) (*models.Conversation, error) {
	low, high := models.NormalizePair(userA, userB)

	var convo models.Conversation
	err := s.DB.
		Where("participant_low_id = ? AND participant_high_id = ?", low, high).
		First(&convo).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find conversation by pair")
	}
	return &convo, nil
}

// GetConversationByID loads one conversation. Returns (nil, nil) when it
// does not exist.
func (s *Service) GetConversationByID(id string) (*models.Conversation, error) {
	var convo models.Conversation
	err := s.DB.First(&convo, "id = ?", id).Error
	if goerrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get conversation %s", id)
	}
	return &convo, nil
}

// SaveConversation persists a conversation. A racing create for the same
// pair trips the composite unique index and surfaces here as an error.
func (s *Service) SaveConversation(convo *models.Conversation) error {
	if err := s.DB.Save(convo).Error; err != nil {
		return errors.Wrap(err, "save conversation")
	}
	return nil
}

// ListConversationsForUser returns every conversation the user participates
// in, most recently updated first.
func (s *Service) ListConversationsForUser(userID string) ([]models.Conversation, error) {
	var convos []models.Conversation
	err := s.DB.
		Where("participant_low_id = ? OR participant_high_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&convos).Error
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	return convos, nil
}

// SetLastMessage refreshes the conversation's denormalized preview and bumps
// its updated timestamp. This is a separate write from the message insert;
// a crash in between leaves a stale preview that heals on the next send.
func (s *Service) SetLastMessage(conversationID, content, senderID string) error {
	err := s.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":   content,
			"last_sender_id": senderID,
		}).Error
	if err != nil {
		return errors.Wrap(err, "set last message")
	}
	return nil
}
