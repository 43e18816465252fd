// Package chat is the authorization-enforcing facade over the conversation
// and message stores. Both transports (REST handlers and the realtime
// gateway) send messages through here, so the participant check applies on
// every path.
package chat

import (
	"strings"

	"github.com/rs/zerolog/log"

	"linkedup/backend/internal/models"
	"linkedup/backend/internal/storage"
)

// Service implements the chat operations.
type Service struct {
	Storage storage.Storage
}

// NewService creates the chat facade.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// CreateConversation returns the conversation between requester and
// participant, creating it if absent. Creation is idempotent per unordered
// pair. The second return value reports whether a new record was created.
//
// Requester must either be the participant (self-conversation) or hold a
// connection with them.
func (s *Service) CreateConversation(requesterID, participantID string) (*models.ConversationView, bool, error) {
	participant, err := s.Storage.GetUserByID(participantID)
	if err != nil {
		return nil, false, err
	}
	if participant == nil {
		return nil, false, ErrUserNotFound
	}

	if requesterID != participantID {
		connected, err := s.Storage.AreConnected(requesterID, participantID)
		if err != nil {
			return nil, false, err
		}
		if !connected {
			return nil, false, ErrNotConnected
		}
	}

	existing, err := s.Storage.FindConversationByPair(requesterID, participantID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		view, err := s.conversationView(existing)
		return view, false, err
	}

	low, high := models.NormalizePair(requesterID, participantID)
	convo := &models.Conversation{ParticipantLowID: low, ParticipantHighID: high}
	if err := s.Storage.SaveConversation(convo); err != nil {
		// A racing create for the same pair hits the unique index; the
		// winner's record is the conversation to return.
		if raced, findErr := s.Storage.FindConversationByPair(requesterID, participantID); findErr == nil && raced != nil {
			view, viewErr := s.conversationView(raced)
			return view, false, viewErr
		}
		return nil, false, err
	}

	view, err := s.conversationView(convo)
	return view, true, err
}

// ListConversations returns the requester's conversations, most recently
// updated first, with participant display fields resolved.
func (s *Service) ListConversations(requesterID string) ([]models.ConversationView, error) {
	convos, err := s.Storage.ListConversationsForUser(requesterID)
	if err != nil {
		return nil, err
	}

	views := make([]models.ConversationView, 0, len(convos))
	for i := range convos {
		view, err := s.conversationView(&convos[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ListMessages returns a conversation's messages in ascending creation
// order. The requester must be a participant.
func (s *Service) ListMessages(requesterID, conversationID string) ([]models.MessageView, error) {
	convo, err := s.Storage.GetConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if convo == nil {
		return nil, ErrConversationNotFound
	}
	if !convo.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	messages, err := s.Storage.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}

	senders := make(map[string]models.UserSummary)
	views := make([]models.MessageView, 0, len(messages))
	for i := range messages {
		sender, err := s.senderSummary(senders, messages[i].SenderID)
		if err != nil {
			return nil, err
		}
		views = append(views, messageView(&messages[i], sender))
	}
	return views, nil
}

// SendMessage persists a message and refreshes the conversation's preview.
// Content must be non-empty after trimming. The caller is responsible for
// fanning the returned message out to the conversation's room.
func (s *Service) SendMessage(requesterID, conversationID, content string) (*models.MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	convo, err := s.Storage.GetConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if convo == nil {
		return nil, ErrConversationNotFound
	}
	if !convo.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       requesterID,
		Content:        content,
	}
	if err := s.Storage.SaveMessage(msg); err != nil {
		return nil, err
	}

	// Separate write from the insert above; the message is durable even if
	// the preview update fails.
	if err := s.Storage.SetLastMessage(conversationID, content, requesterID); err != nil {
		return nil, err
	}

	sender, err := s.senderSummary(nil, requesterID)
	if err != nil {
		return nil, err
	}
	view := messageView(msg, sender)
	return &view, nil
}

// ResolveUser returns a user's display fields, or nil when unknown.
func (s *Service) ResolveUser(userID string) (*models.UserSummary, error) {
	return s.Storage.GetUserSummary(userID)
}

// ResolveUsers returns display fields for a set of users, skipping ids that
// cannot be resolved.
func (s *Service) ResolveUsers(ids []string) ([]models.UserSummary, error) {
	return s.Storage.GetUserSummaries(ids)
}

func (s *Service) conversationView(convo *models.Conversation) (*models.ConversationView, error) {
	participants, err := s.Storage.GetUserSummaries(convo.ParticipantIDs())
	if err != nil {
		return nil, err
	}
	return &models.ConversationView{
		ID:           convo.ID,
		Participants: participants,
		LastMessage:  convo.LastMessage,
		LastSender:   convo.LastSenderID,
		CreatedAt:    convo.CreatedAt,
		UpdatedAt:    convo.UpdatedAt,
	}, nil
}

// senderSummary resolves a sender's display fields through an optional
// per-call cache. A sender missing from the directory degrades to a bare id
// so message history stays readable.
func (s *Service) senderSummary(cache map[string]models.UserSummary, senderID string) (models.UserSummary, error) {
	if cache != nil {
		if summary, ok := cache[senderID]; ok {
			return summary, nil
		}
	}

	summary, err := s.Storage.GetUserSummary(senderID)
	if err != nil {
		return models.UserSummary{}, err
	}
	if summary == nil {
		log.Debug().Str("user_id", senderID).Msg("message sender missing from directory")
		summary = &models.UserSummary{ID: senderID}
	}
	if cache != nil {
		cache[senderID] = *summary
	}
	return *summary, nil
}

func messageView(msg *models.Message, sender models.UserSummary) models.MessageView {
	return models.MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         sender,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}
