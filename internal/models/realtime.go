package models

import "encoding/json"

// Client -> server event names.
const (
	EventRegister          = "register"
	EventJoinConversation  = "joinConversation"
	EventLeaveConversation = "leaveConversation"
	EventSendMessage       = "sendMessage"
	EventGetConnectedUsers = "getConnectedUsers"
)

// Server -> client event names.
const (
	EventConnectedUsers   = "connectedUsers"
	EventUserConnected    = "userConnected"
	EventUserDisconnected = "userDisconnected"
	EventNewMessage       = "newMessage"
)

// ClientEvent is the tagged envelope for everything a client sends over the
// realtime channel. The payload stays raw until the type is known; the
// gateway decodes and validates it before dispatch.
type ClientEvent struct {
	Type    string          `json:"type" validate:"required,oneof=register joinConversation leaveConversation sendMessage getConnectedUsers"`
	Payload json.RawMessage `json:"payload"`
}

// RegisterPayload binds a user identity to the connection.
type RegisterPayload struct {
	UserID string `json:"userId" validate:"required"`
}

// ConversationPayload targets a conversation room (join/leave).
type ConversationPayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

// SendMessagePayload is the fire-and-forget realtime send.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	Content        string `json:"content" validate:"required"`
}

// ServerEvent is the envelope for everything pushed to clients.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
